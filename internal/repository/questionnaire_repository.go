package repository

import (
	"mindconnect_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type QuestionnaireRepository struct {
	DB *gorm.DB
}

func NewQuestionnaireRepository(db *gorm.DB) *QuestionnaireRepository {
	return &QuestionnaireRepository{DB: db}
}

func (r *QuestionnaireRepository) Create(resp *model.QuestionnaireResponse) error {
	return r.DB.Create(resp).Error
}

func (r *QuestionnaireRepository) FindByID(id string) (*model.QuestionnaireResponse, error) {
	var resp model.QuestionnaireResponse
	err := r.DB.First(&resp, "id = ?", id).Error
	return &resp, err
}

func (r *QuestionnaireRepository) FindBySessionID(sessionID string) (*model.QuestionnaireResponse, error) {
	var resp model.QuestionnaireResponse
	err := r.DB.Where("session_id = ?", sessionID).
		Order("completed_at DESC").
		First(&resp).Error
	return &resp, err
}

func (r *QuestionnaireRepository) FindLatestByUserID(userID string) (*model.QuestionnaireResponse, error) {
	var resp model.QuestionnaireResponse
	err := r.DB.Where("user_id = ?", userID).
		Order("completed_at DESC").
		First(&resp).Error
	return &resp, err
}

// AttachUser links an anonymous submission to a registered patient.
func (r *QuestionnaireRepository) AttachUser(id, userID string) error {
	return r.DB.Model(&model.QuestionnaireResponse{}).
		Where("id = ?", id).
		Update("user_id", userID).
		Error
}

// DeleteUnclaimedBefore removes anonymous submissions never linked to a user
// and completed before the cutoff. Used by the retention cron job.
func (r *QuestionnaireRepository) DeleteUnclaimedBefore(cutoff time.Time) (int64, error) {
	res := r.DB.Where("user_id IS NULL AND completed_at < ?", cutoff).
		Delete(&model.QuestionnaireResponse{})
	return res.RowsAffected, res.Error
}
