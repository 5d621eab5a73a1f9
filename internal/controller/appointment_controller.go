package controller

import (
	"errors"
	"mindconnect_backend/internal/model"
	"mindconnect_backend/internal/service"
	"mindconnect_backend/internal/util"
	"time"

	"github.com/gin-gonic/gin"
)

type AppointmentController struct {
	Appointments *service.AppointmentService
}

func NewAppointmentController(appointments *service.AppointmentService) *AppointmentController {
	return &AppointmentController{Appointments: appointments}
}

// swagger:model BookConsultationRequest
type BookConsultationRequest struct {
	MatchID         string    `json:"matchId" binding:"required"`
	Datetime        time.Time `json:"datetime" binding:"required"`
	DurationMinutes int       `json:"durationMinutes"`
	MeetingLocation string    `json:"meetingLocation"`
	Notes           string    `json:"notes"`
}

// BookConsultation godoc
// @Summary Book the free first consultation on a match
// @Tags appointments
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body BookConsultationRequest true "booking data"
// @Success 201 {object} util.Response{data=model.Appointment}
// @Failure 404 {object} util.Response
// @Failure 409 {object} util.Response
// @Router /api/appointments/consultation [post]
func (c *AppointmentController) BookConsultation(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req BookConsultationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	appt, err := c.Appointments.BookConsultation(claims.UserID, service.BookConsultationInput{
		MatchID:         req.MatchID,
		Datetime:        req.Datetime,
		DurationMinutes: req.DurationMinutes,
		MeetingLocation: req.MeetingLocation,
		Notes:           req.Notes,
	})
	if err != nil {
		switch {
		case errors.Is(err, util.ErrMatchNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrPermissionDenied):
			util.Forbidden(ctx)
		case errors.Is(err, util.ErrInvalidMatchStatus):
			util.Conflict(ctx, "match is not bookable in its current status")
		case errors.Is(err, util.ErrSlotUnavailable):
			util.Conflict(ctx, "requested slot is not available")
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Created(ctx, appt)
}

// List godoc
// @Summary Appointments of the calling user
// @Tags appointments
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.Appointment}
// @Router /api/appointments [get]
func (c *AppointmentController) List(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var (
		appts interface{}
		err   error
	)
	if claims.Role == model.Psychologist {
		appts, err = c.Appointments.ListForPsychologist(claims.UserID)
	} else {
		appts, err = c.Appointments.ListForPatient(claims.UserID)
	}
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, appts)
}

// Complete godoc
// @Summary Mark a consultation as held
// @Description Psychologist-only. Completing a consultation advances the linked match to consultation_completed.
// @Tags appointments
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "appointment id"
// @Success 200 {object} util.Response{data=model.Appointment}
// @Failure 404 {object} util.Response
// @Router /api/appointments/{id}/complete [put]
func (c *AppointmentController) Complete(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	appt, err := c.Appointments.Complete(claims.UserID, ctx.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, util.ErrAppointmentNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrPermissionDenied):
			util.Forbidden(ctx)
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, appt)
}

// swagger:model CancelAppointmentRequest
type CancelAppointmentRequest struct {
	Reason string `json:"reason"`
}

// Cancel godoc
// @Summary Cancel an appointment
// @Tags appointments
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "appointment id"
// @Param body body CancelAppointmentRequest false "cancellation reason"
// @Success 200 {object} util.Response{data=model.Appointment}
// @Failure 404 {object} util.Response
// @Router /api/appointments/{id}/cancel [put]
func (c *AppointmentController) Cancel(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req CancelAppointmentRequest
	_ = ctx.ShouldBindJSON(&req)

	appt, err := c.Appointments.Cancel(claims.UserID, ctx.Param("id"), req.Reason)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrAppointmentNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrPermissionDenied):
			util.Forbidden(ctx)
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, appt)
}

// swagger:model FeedbackRequest
type FeedbackRequest struct {
	AppointmentID         string `json:"appointmentId" binding:"required"`
	Rating                int    `json:"rating" binding:"required,min=1,max=5"`
	FeedbackText          string `json:"feedbackText"`
	WouldChooseForTherapy bool   `json:"wouldChooseForTherapy"`
	CommunicationRating   int    `json:"communicationRating" binding:"omitempty,min=1,max=5"`
	EmpathyRating         int    `json:"empathyRating" binding:"omitempty,min=1,max=5"`
	ProfessionalismRating int    `json:"professionalismRating" binding:"omitempty,min=1,max=5"`
}

// SubmitFeedback godoc
// @Summary Leave feedback after a consultation
// @Tags appointments
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body FeedbackRequest true "feedback"
// @Success 201 {object} util.Response{data=model.ConsultationFeedback}
// @Failure 404 {object} util.Response
// @Failure 409 {object} util.Response
// @Router /api/appointments/feedback [post]
func (c *AppointmentController) SubmitFeedback(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req FeedbackRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	fb, err := c.Appointments.SubmitFeedback(claims.UserID, service.FeedbackInput{
		AppointmentID:         req.AppointmentID,
		Rating:                req.Rating,
		FeedbackText:          req.FeedbackText,
		WouldChooseForTherapy: req.WouldChooseForTherapy,
		CommunicationRating:   req.CommunicationRating,
		EmpathyRating:         req.EmpathyRating,
		ProfessionalismRating: req.ProfessionalismRating,
	})
	if err != nil {
		switch {
		case errors.Is(err, util.ErrAppointmentNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrPermissionDenied):
			util.Forbidden(ctx)
		case errors.Is(err, util.ErrFeedbackAlreadyGiven):
			util.Conflict(ctx, "feedback already submitted for this appointment")
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Created(ctx, fb)
}

// Availability management, psychologist side.

// swagger:model AvailabilityRequest
type AvailabilityRequest struct {
	DayOfWeek int    `json:"dayOfWeek" binding:"min=0,max=6"`
	StartTime string `json:"startTime" binding:"required"`
	EndTime   string `json:"endTime" binding:"required"`
}

// ListAvailability godoc
// @Summary Weekly availability of the calling psychologist
// @Tags availability
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.PsychologistAvailability}
// @Router /api/availability [get]
func (c *AppointmentController) ListAvailability(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	slots, err := c.Appointments.ListAvailability(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, slots)
}

// AddAvailability godoc
// @Summary Publish a weekly availability slot
// @Tags availability
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body AvailabilityRequest true "slot, times as HH:MM"
// @Success 201 {object} util.Response{data=model.PsychologistAvailability}
// @Failure 400 {object} util.Response
// @Router /api/availability [post]
func (c *AppointmentController) AddAvailability(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req AvailabilityRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	slot, err := c.Appointments.AddAvailability(claims.UserID, req.DayOfWeek, req.StartTime, req.EndTime)
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	util.Created(ctx, slot)
}

// RemoveAvailability godoc
// @Summary Delete a weekly availability slot
// @Tags availability
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "slot id"
// @Success 200 {object} util.Response
// @Router /api/availability/{id} [delete]
func (c *AppointmentController) RemoveAvailability(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	if err := c.Appointments.RemoveAvailability(claims.UserID, ctx.Param("id")); err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, nil)
}
