package util

import "errors"

var (
	ErrUserNotFound          = errors.New("user not found")
	ErrEmailRegistered       = errors.New("email already registered")
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrPermissionDenied      = errors.New("permission denied")
	ErrSubmissionNotFound    = errors.New("questionnaire submission not found")
	ErrSubmissionClaimed     = errors.New("questionnaire submission already claimed")
	ErrInvalidSubmission     = errors.New("submission is missing therapy type or responses")
	ErrMatchNotFound         = errors.New("match not found")
	ErrInvalidMatchStatus    = errors.New("match status transition not allowed")
	ErrAppointmentNotFound   = errors.New("appointment not found")
	ErrSlotUnavailable       = errors.New("psychologist is not available at the requested time")
	ErrFeedbackAlreadyGiven  = errors.New("feedback already submitted for this appointment")
)
