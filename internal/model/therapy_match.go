// TherapyMatch lifecycle:
//
//	active ──► consultation_booked ──► consultation_completed ──► selected_for_therapy
//	   │                                         │
//	   └─────────────────────────────────────────┴──► declined
//
// selected_for_therapy and declined are terminal. A patient may decline an
// active match without ever booking; every other step follows the chain.
package model

import "fmt"

type MatchStatus string

const (
	MatchActive                MatchStatus = "active"
	MatchConsultationBooked    MatchStatus = "consultation_booked"
	MatchConsultationCompleted MatchStatus = "consultation_completed"
	MatchSelectedForTherapy    MatchStatus = "selected_for_therapy"
	MatchDeclined              MatchStatus = "declined"
)

// matchTransitions lists every allowed (from → to) pair.
var matchTransitions = map[MatchStatus][]MatchStatus{
	MatchActive:                {MatchConsultationBooked, MatchDeclined},
	MatchConsultationBooked:    {MatchConsultationCompleted},
	MatchConsultationCompleted: {MatchSelectedForTherapy, MatchDeclined},
	// selected_for_therapy and declined are terminal
}

// ParseMatchStatus converts a raw string to a MatchStatus, returning an
// error for unknown values.
func ParseMatchStatus(s string) (MatchStatus, error) {
	st := MatchStatus(s)
	switch st {
	case MatchActive, MatchConsultationBooked, MatchConsultationCompleted,
		MatchSelectedForTherapy, MatchDeclined:
		return st, nil
	}
	return "", fmt.Errorf("unknown match status %q", s)
}

// CanTransitionTo reports whether moving from → to is permitted by the
// state machine. States are never revisited.
func (from MatchStatus) CanTransitionTo(to MatchStatus) bool {
	for _, s := range matchTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status has no outgoing transitions.
func (s MatchStatus) IsTerminal() bool {
	return len(matchTransitions[s]) == 0
}

// TherapyMatch is a persisted, ranked pairing of a patient submission with
// a psychologist. Score, reasons and rank are fixed at creation; status is
// the only mutable field.
// swagger:model TherapyMatch
type TherapyMatch struct {
	UUIDBase
	PatientID               string       `gorm:"index;type:varchar(36);not null" json:"patientId"`
	PsychologistID          string       `gorm:"index;type:varchar(36);not null" json:"psychologistId"`
	Psychologist            *User        `gorm:"foreignKey:PsychologistID" json:"psychologist,omitempty"`
	QuestionnaireResponseID string       `gorm:"index;type:varchar(36);not null" json:"questionnaireResponseId"`
	CompatibilityScore      int          `gorm:"not null" json:"compatibilityScore"`
	ReasonsForMatch         StringList   `gorm:"type:json" json:"reasonsForMatch"`
	MatchRank               int          `gorm:"not null" json:"matchRank"`
	Status                  MatchStatus  `gorm:"size:30;default:'active';index" json:"status"`
}

func (TherapyMatch) TableName() string {
	return "therapy_matches"
}
