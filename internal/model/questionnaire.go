package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

type TherapyType string

const (
	TherapyIndividual TherapyType = "individual"
	TherapyCouple     TherapyType = "couple"
	TherapyChild      TherapyType = "child"
)

// ParseTherapyType converts a raw string to a TherapyType, returning an
// error for unknown values.
func ParseTherapyType(s string) (TherapyType, error) {
	t := TherapyType(s)
	switch t {
	case TherapyIndividual, TherapyCouple, TherapyChild:
		return t, nil
	}
	return "", fmt.Errorf("unknown therapy type %q", s)
}

// AnswerType tags the variant carried by an Answer.
type AnswerType string

const (
	AnswerSingleChoice   AnswerType = "single-choice"
	AnswerMultipleChoice AnswerType = "multiple-choice"
	AnswerScale          AnswerType = "scale"
	AnswerMultiScale     AnswerType = "multi-scale"
	AnswerText           AnswerType = "text"
	AnswerAgeGender      AnswerType = "age-gender"
)

// Answer is one questionnaire answer as a tagged variant. Only the field
// matching Type is meaningful; the rest stay zero-valued.
type Answer struct {
	Type    AnswerType     `json:"type"`
	Choice  string         `json:"choice,omitempty"`
	Choices []string       `json:"choices,omitempty"`
	Scale   int            `json:"scale,omitempty"`
	Scales  map[string]int `json:"scales,omitempty"`
	Text    string         `json:"text,omitempty"`
	Age     int            `json:"age,omitempty"`
	Gender  string         `json:"gender,omitempty"`
}

// SingleChoice is a convenience constructor used by tests and seeders.
func SingleChoice(option string) Answer {
	return Answer{Type: AnswerSingleChoice, Choice: option}
}

// ResponseMap maps question keys to answers, stored as a JSON column.
type ResponseMap map[string]Answer

func (m ResponseMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	return string(b), err
}

func (m *ResponseMap) Scan(value interface{}) error {
	if value == nil {
		*m = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	}
	return fmt.Errorf("cannot scan %T into ResponseMap", value)
}

// Has reports whether any answer was recorded under key.
func (m ResponseMap) Has(key string) bool {
	_, ok := m[key]
	return ok
}

// Choice returns the selected option of a single-choice answer, or "" if
// the key is absent or holds another variant.
func (m ResponseMap) Choice(key string) string {
	a, ok := m[key]
	if !ok || a.Type != AnswerSingleChoice {
		return ""
	}
	return a.Choice
}

// FirstChoice walks keys in order and returns the first single-choice
// answer found. The second return reports whether any key was present.
func (m ResponseMap) FirstChoice(keys ...string) (string, bool) {
	for _, k := range keys {
		if a, ok := m[k]; ok {
			if a.Type == AnswerSingleChoice {
				return a.Choice, true
			}
			return "", true
		}
	}
	return "", false
}

// Question keys the matching engine reads. The questionnaire front-end owns
// the full key set; only these have backend semantics.
const (
	KeySessionModality       = "session_modality"
	KeySessionModalityCouple = "session_modality_couple"
	KeySessionModalityChild  = "session_modality_child"
	KeyTherapistGender       = "therapist_gender"
	KeyTherapistGenderCouple = "therapist_gender_preference_couple"
	KeyTherapistPrefsChild   = "therapist_preferences_child"
	KeyTherapyApproach       = "therapy_approach"
)

// QuestionnaireResponse is one completed questionnaire. It is created once,
// anonymously (session id) or for a logged-in patient (user id), and is
// immutable afterwards except for the claim that attaches a user id.
// swagger:model QuestionnaireResponse
type QuestionnaireResponse struct {
	UUIDBase
	UserID                *string     `gorm:"index;type:varchar(36)" json:"userId,omitempty"`
	SessionID             *string     `gorm:"index;type:varchar(64)" json:"sessionId,omitempty"`
	TherapyType           TherapyType `gorm:"size:20;not null" json:"therapyType"`
	Responses             ResponseMap `gorm:"type:json" json:"responses"`
	LocationCity          string      `gorm:"size:100" json:"locationCity"`
	LocationCAP           string      `gorm:"size:10" json:"locationCap"`
	CompletedAt           time.Time   `json:"completedAt"`
	QuestionnaireVersion  string      `gorm:"size:20;default:'1.0'" json:"questionnaireVersion"`
	CompletionTimeMinutes int         `gorm:"default:0" json:"completionTimeMinutes"`
}

func (QuestionnaireResponse) TableName() string {
	return "questionnaire_responses"
}
