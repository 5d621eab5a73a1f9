package model

import "time"

type AppointmentType string

const (
	AppointmentConsultation AppointmentType = "consultation"
	AppointmentTherapy      AppointmentType = "therapy"
	AppointmentFollowUp     AppointmentType = "follow_up"
)

type AppointmentStatus string

const (
	AppointmentScheduled AppointmentStatus = "scheduled"
	AppointmentConfirmed AppointmentStatus = "confirmed"
	AppointmentCompleted AppointmentStatus = "completed"
	AppointmentCancelled AppointmentStatus = "cancelled"
	AppointmentNoShow    AppointmentStatus = "no_show"
)

// swagger:model Appointment
type Appointment struct {
	UUIDBase
	PatientID           string            `gorm:"index;type:varchar(36);not null" json:"patientId"`
	PsychologistID      string            `gorm:"index;type:varchar(36);not null" json:"psychologistId"`
	TherapyMatchID      *string           `gorm:"index;type:varchar(36)" json:"therapyMatchId,omitempty"`
	AppointmentDatetime time.Time         `gorm:"index;not null" json:"appointmentDatetime"`
	DurationMinutes     int               `gorm:"default:50" json:"durationMinutes"`
	AppointmentType     AppointmentType   `gorm:"size:20;default:'consultation'" json:"appointmentType"`
	Status              AppointmentStatus `gorm:"size:20;default:'scheduled'" json:"status"`
	IsFreeConsultation  bool              `gorm:"default:false" json:"isFreeConsultation"`
	Price               float64           `gorm:"default:0" json:"price"`
	MeetingLink         string            `gorm:"size:255" json:"meetingLink,omitempty"`
	MeetingLocation     string            `gorm:"size:255" json:"meetingLocation,omitempty"`
	Notes               string            `gorm:"type:text" json:"notes,omitempty"`
	CancelledAt         *time.Time        `json:"cancelledAt,omitempty"`
	CancellationReason  string            `gorm:"size:255" json:"cancellationReason,omitempty"`
}

func (Appointment) TableName() string {
	return "appointments"
}

// PsychologistAvailability is one weekly recurring slot.
// swagger:model PsychologistAvailability
type PsychologistAvailability struct {
	UUIDBase
	PsychologistID string `gorm:"index;type:varchar(36);not null" json:"psychologistId"`
	DayOfWeek      int    `gorm:"not null" json:"dayOfWeek"` // 0 = Sunday
	StartTime      string `gorm:"size:5;not null" json:"startTime"` // HH:MM
	EndTime        string `gorm:"size:5;not null" json:"endTime"`   // HH:MM
	IsActive       bool   `gorm:"default:true" json:"isActive"`
}

func (PsychologistAvailability) TableName() string {
	return "psychologist_availability"
}

// swagger:model ConsultationFeedback
type ConsultationFeedback struct {
	UUIDBase
	AppointmentID          string `gorm:"index;type:varchar(36);not null" json:"appointmentId"`
	PatientID              string `gorm:"index;type:varchar(36);not null" json:"patientId"`
	PsychologistID         string `gorm:"index;type:varchar(36);not null" json:"psychologistId"`
	Rating                 int    `gorm:"not null" json:"rating"` // 1-5
	FeedbackText           string `gorm:"type:text" json:"feedbackText,omitempty"`
	WouldChooseForTherapy  bool   `gorm:"default:false" json:"wouldChooseForTherapy"`
	CommunicationRating    int    `gorm:"default:0" json:"communicationRating,omitempty"`
	EmpathyRating          int    `gorm:"default:0" json:"empathyRating,omitempty"`
	ProfessionalismRating  int    `gorm:"default:0" json:"professionalismRating,omitempty"`
}

func (ConsultationFeedback) TableName() string {
	return "consultation_feedback"
}
