package controller

import (
	"errors"
	"mindconnect_backend/internal/model"
	"mindconnect_backend/internal/service"
	"mindconnect_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type MatchController struct {
	Matching *service.MatchingService
}

func NewMatchController(matching *service.MatchingService) *MatchController {
	return &MatchController{Matching: matching}
}

// List godoc
// @Summary Active matches for the calling patient
// @Description Returns the patient's current match set ordered by rank, with psychologist details.
// @Tags matches
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.TherapyMatch}
// @Router /api/matches [get]
func (c *MatchController) List(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	matches, err := c.Matching.GetPatientMatches(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, matches)
}

// ListForPsychologist godoc
// @Summary Matches proposing the calling psychologist
// @Tags matches
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.TherapyMatch}
// @Router /api/matches/received [get]
func (c *MatchController) ListForPsychologist(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	matches, err := c.Matching.GetPsychologistMatches(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, matches)
}

// swagger:model GenerateMatchesRequest
type GenerateMatchesRequest struct {
	QuestionnaireResponseID string `json:"questionnaireResponseId" binding:"required"`
}

// Generate godoc
// @Summary Generate matches for a submission
// @Description Synchronous variant of match generation. Repeating the call for the same submission returns the original set unchanged.
// @Tags matches
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body GenerateMatchesRequest true "submission reference"
// @Success 200 {object} util.Response{data=[]model.TherapyMatch}
// @Failure 400 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/matches/generate [post]
func (c *MatchController) Generate(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req GenerateMatchesRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	matches, err := c.Matching.GenerateMatches(claims.UserID, req.QuestionnaireResponseID)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrSubmissionNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrInvalidSubmission):
			util.BadRequest(ctx, "submission is missing therapy type or responses")
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, matches)
}

// swagger:model UpdateMatchStatusRequest
type UpdateMatchStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateStatus godoc
// @Summary Advance a match through its lifecycle
// @Description Valid moves: active→consultation_booked, active→declined, consultation_booked→consultation_completed, consultation_completed→selected_for_therapy, consultation_completed→declined.
// @Tags matches
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "match id"
// @Param body body UpdateMatchStatusRequest true "target status"
// @Success 200 {object} util.Response{data=model.TherapyMatch}
// @Failure 400 {object} util.Response
// @Failure 404 {object} util.Response
// @Failure 409 {object} util.Response
// @Router /api/matches/{id}/status [put]
func (c *MatchController) UpdateStatus(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req UpdateMatchStatusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	to, err := model.ParseMatchStatus(req.Status)
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	match, err := c.Matching.UpdateMatchStatus(ctx.Param("id"), claims.UserID, to)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrMatchNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrPermissionDenied):
			util.Forbidden(ctx)
		case errors.Is(err, util.ErrInvalidMatchStatus):
			util.Conflict(ctx, "transition not allowed from current status")
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, match)
}
