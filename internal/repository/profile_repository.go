package repository

import (
	"mindconnect_backend/internal/model"

	"gorm.io/gorm"
)

type ProfileRepository struct {
	DB *gorm.DB
}

func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{DB: db}
}

func (r *ProfileRepository) Create(profile *model.UserProfile) error {
	return r.DB.Create(profile).Error
}

func (r *ProfileRepository) FindByUserID(userID string) (*model.UserProfile, error) {
	var profile model.UserProfile
	err := r.DB.Where("user_id = ?", userID).First(&profile).Error
	return &profile, err
}

func (r *ProfileRepository) Update(profile *model.UserProfile) error {
	return r.DB.Save(profile).Error
}

func (r *ProfileRepository) UpdateMatchingStatus(userID string, status model.MatchingStatus) error {
	return r.DB.Model(&model.UserProfile{}).
		Where("user_id = ?", userID).
		Update("matching_status", status).
		Error
}

// FindVerifiedPsychologists returns profiles of verified professionals whose
// user role is psychologist, optionally restricted to a city. Specialization
// overlap is evaluated in the service layer; the JSON column is not queryable
// portably.
func (r *ProfileRepository) FindVerifiedPsychologists(city string) ([]model.UserProfile, error) {
	var profiles []model.UserProfile
	q := r.DB.
		Joins("JOIN users ON users.id = user_profiles.user_id").
		Where("users.role = ?", model.Psychologist).
		Where("user_profiles.is_verified_professional = ?", true)
	if city != "" {
		q = q.Where("user_profiles.location_city = ?", city)
	}
	err := q.Preload("User").Find(&profiles).Error
	return profiles, err
}
