package service

import (
	"errors"
	"fmt"
	"mindconnect_backend/internal/model"
	"mindconnect_backend/internal/repository"
	"mindconnect_backend/internal/util"
	"time"

	"gorm.io/gorm"
)

type AppointmentService struct {
	Appointments *repository.AppointmentRepository
	Matching     *MatchingService
}

func NewAppointmentService(appointments *repository.AppointmentRepository, matching *MatchingService) *AppointmentService {
	return &AppointmentService{
		Appointments: appointments,
		Matching:     matching,
	}
}

// BookConsultationInput books the free first consultation on a match.
type BookConsultationInput struct {
	MatchID         string
	Datetime        time.Time
	DurationMinutes int
	MeetingLocation string
	Notes           string
}

// BookConsultation creates the free consultation appointment for an active
// match and moves the match to consultation_booked. Availability is only
// enforced when the psychologist has published weekly slots.
func (s *AppointmentService) BookConsultation(patientID string, in BookConsultationInput) (*model.Appointment, error) {
	match, err := s.Matching.Matches.FindByID(in.MatchID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrMatchNotFound
		}
		return nil, err
	}
	if match.PatientID != patientID {
		return nil, util.ErrPermissionDenied
	}
	if !match.Status.CanTransitionTo(model.MatchConsultationBooked) {
		return nil, util.ErrInvalidMatchStatus
	}

	if in.DurationMinutes <= 0 {
		in.DurationMinutes = 50
	}
	end := in.Datetime.Add(time.Duration(in.DurationMinutes) * time.Minute)

	slots, err := s.Appointments.FindAvailability(match.PsychologistID)
	if err != nil {
		return nil, err
	}
	if len(slots) > 0 && !withinAvailability(slots, in.Datetime, in.DurationMinutes) {
		return nil, util.ErrSlotUnavailable
	}

	overlapping, err := s.Appointments.CountOverlapping(match.PsychologistID, in.Datetime, end)
	if err != nil {
		return nil, err
	}
	if overlapping > 0 {
		return nil, util.ErrSlotUnavailable
	}

	appt := &model.Appointment{
		PatientID:           patientID,
		PsychologistID:      match.PsychologistID,
		TherapyMatchID:      &match.ID,
		AppointmentDatetime: in.Datetime,
		DurationMinutes:     in.DurationMinutes,
		AppointmentType:     model.AppointmentConsultation,
		Status:              model.AppointmentScheduled,
		IsFreeConsultation:  true,
		MeetingLocation:     in.MeetingLocation,
		Notes:               in.Notes,
	}
	if err := s.Appointments.Create(appt); err != nil {
		return nil, fmt.Errorf("creating appointment: %w", err)
	}

	if _, err := s.Matching.TransitionMatch(match.ID, model.MatchConsultationBooked); err != nil {
		return nil, err
	}
	return appt, nil
}

// withinAvailability reports whether the [start, start+duration) window
// falls inside one of the psychologist's weekly slots.
func withinAvailability(slots []model.PsychologistAvailability, start time.Time, durationMinutes int) bool {
	day := int(start.Weekday())
	startMin := start.Hour()*60 + start.Minute()
	endMin := startMin + durationMinutes

	for _, slot := range slots {
		if slot.DayOfWeek != day {
			continue
		}
		from, err1 := parseClock(slot.StartTime)
		to, err2 := parseClock(slot.EndTime)
		if err1 != nil || err2 != nil {
			continue
		}
		if startMin >= from && endMin <= to {
			return true
		}
	}
	return false
}

// parseClock converts "HH:MM" to minutes since midnight.
func parseClock(hhmm string) (int, error) {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}

// Complete marks a consultation as held and advances the linked match.
func (s *AppointmentService) Complete(psychologistID, appointmentID string) (*model.Appointment, error) {
	appt, err := s.Appointments.FindByID(appointmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrAppointmentNotFound
		}
		return nil, err
	}
	if appt.PsychologistID != psychologistID {
		return nil, util.ErrPermissionDenied
	}

	appt.Status = model.AppointmentCompleted
	if err := s.Appointments.Update(appt); err != nil {
		return nil, err
	}

	if appt.TherapyMatchID != nil && appt.AppointmentType == model.AppointmentConsultation {
		if _, err := s.Matching.TransitionMatch(*appt.TherapyMatchID, model.MatchConsultationCompleted); err != nil {
			// The appointment is completed regardless; a match already out
			// of consultation_booked only means the transition is stale.
			if !errors.Is(err, util.ErrInvalidMatchStatus) {
				return nil, err
			}
		}
	}
	return appt, nil
}

// Cancel voids an appointment on behalf of either party.
func (s *AppointmentService) Cancel(actorID, appointmentID, reason string) (*model.Appointment, error) {
	appt, err := s.Appointments.FindByID(appointmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrAppointmentNotFound
		}
		return nil, err
	}
	if appt.PatientID != actorID && appt.PsychologistID != actorID {
		return nil, util.ErrPermissionDenied
	}

	now := time.Now()
	appt.Status = model.AppointmentCancelled
	appt.CancelledAt = &now
	appt.CancellationReason = reason
	if err := s.Appointments.Update(appt); err != nil {
		return nil, err
	}
	return appt, nil
}

func (s *AppointmentService) ListForPatient(patientID string) ([]model.Appointment, error) {
	return s.Appointments.FindByPatientID(patientID)
}

func (s *AppointmentService) ListForPsychologist(psychologistID string) ([]model.Appointment, error) {
	return s.Appointments.FindByPsychologistID(psychologistID)
}

// FeedbackInput carries the post-consultation questionnaire.
type FeedbackInput struct {
	AppointmentID         string
	Rating                int
	FeedbackText          string
	WouldChooseForTherapy bool
	CommunicationRating   int
	EmpathyRating         int
	ProfessionalismRating int
}

func (s *AppointmentService) SubmitFeedback(patientID string, in FeedbackInput) (*model.ConsultationFeedback, error) {
	appt, err := s.Appointments.FindByID(in.AppointmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrAppointmentNotFound
		}
		return nil, err
	}
	if appt.PatientID != patientID {
		return nil, util.ErrPermissionDenied
	}

	if _, err := s.Appointments.FindFeedbackByAppointmentID(appt.ID); err == nil {
		return nil, util.ErrFeedbackAlreadyGiven
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	fb := &model.ConsultationFeedback{
		AppointmentID:         appt.ID,
		PatientID:             patientID,
		PsychologistID:        appt.PsychologistID,
		Rating:                in.Rating,
		FeedbackText:          in.FeedbackText,
		WouldChooseForTherapy: in.WouldChooseForTherapy,
		CommunicationRating:   in.CommunicationRating,
		EmpathyRating:         in.EmpathyRating,
		ProfessionalismRating: in.ProfessionalismRating,
	}
	if err := s.Appointments.CreateFeedback(fb); err != nil {
		return nil, err
	}
	return fb, nil
}

// Availability management for psychologists.

func (s *AppointmentService) ListAvailability(psychologistID string) ([]model.PsychologistAvailability, error) {
	return s.Appointments.FindAvailability(psychologistID)
}

func (s *AppointmentService) AddAvailability(psychologistID string, dayOfWeek int, startTime, endTime string) (*model.PsychologistAvailability, error) {
	if dayOfWeek < 0 || dayOfWeek > 6 {
		return nil, fmt.Errorf("day_of_week must be in [0,6], got %d", dayOfWeek)
	}
	from, err := parseClock(startTime)
	if err != nil {
		return nil, fmt.Errorf("invalid start_time %q", startTime)
	}
	to, err := parseClock(endTime)
	if err != nil {
		return nil, fmt.Errorf("invalid end_time %q", endTime)
	}
	if from >= to {
		return nil, fmt.Errorf("start_time must precede end_time")
	}

	slot := &model.PsychologistAvailability{
		PsychologistID: psychologistID,
		DayOfWeek:      dayOfWeek,
		StartTime:      startTime,
		EndTime:        endTime,
		IsActive:       true,
	}
	if err := s.Appointments.CreateAvailability(slot); err != nil {
		return nil, err
	}
	return slot, nil
}

func (s *AppointmentService) RemoveAvailability(psychologistID, slotID string) error {
	return s.Appointments.DeleteAvailability(slotID, psychologistID)
}
