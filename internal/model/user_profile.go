package model

type MatchingStatus string

const (
	MatchingPending                MatchingStatus = "pending"
	MatchingMatched                MatchingStatus = "matched"
	MatchingConsultationsCompleted MatchingStatus = "consultations_completed"
	MatchingTherapyStarted         MatchingStatus = "therapy_started"
)

// UserProfile holds the per-role profile attached to a User. Patient and
// psychologist columns share the table; the unused side stays zero-valued.
// swagger:model UserProfile
type UserProfile struct {
	UUIDBase
	UserID            string `gorm:"index;type:varchar(36);not null" json:"userId"`
	User              *User  `gorm:"foreignKey:UserID" json:"user,omitempty"`
	PreferredLanguage string `gorm:"size:20" json:"preferredLanguage"`
	LocationCity      string `gorm:"size:100;index" json:"locationCity"`
	LocationCAP       string `gorm:"size:10" json:"locationCap"`
	LocationRegion    string `gorm:"size:100" json:"locationRegion"`
	Bio               string `gorm:"type:text" json:"bio"`

	// Patient side
	EmergencyContact          string         `gorm:"size:255" json:"emergencyContact,omitempty"`
	MedicalHistory            string         `gorm:"type:text" json:"medicalHistory,omitempty"`
	CurrentMedications        string         `gorm:"type:text" json:"currentMedications,omitempty"`
	InsuranceProvider         string         `gorm:"size:100" json:"insuranceProvider,omitempty"`
	HasCompletedQuestionnaire bool           `gorm:"default:false" json:"hasCompletedQuestionnaire"`
	MatchingStatus            MatchingStatus `gorm:"size:30;default:'pending'" json:"matchingStatus"`

	// Psychologist side
	LicenseNumber          string     `gorm:"size:50" json:"licenseNumber,omitempty"`
	Specializations        StringList `gorm:"type:json" json:"specializations,omitempty"`
	YearsOfExperience      int        `gorm:"default:0" json:"yearsOfExperience"`
	Education              StringList `gorm:"type:json" json:"education,omitempty"`
	Languages              StringList `gorm:"type:json" json:"languages,omitempty"`
	HourlyRate             float64    `gorm:"default:0" json:"hourlyRate"`
	IsVerifiedProfessional bool       `gorm:"default:false;index" json:"isVerifiedProfessional"`
	Rating                 float64    `gorm:"default:0" json:"rating"`
	ReviewCount            int        `gorm:"default:0" json:"reviewCount"`
}

func (UserProfile) TableName() string {
	return "user_profiles"
}
