package repository

import (
	"mindconnect_backend/internal/model"

	"gorm.io/gorm"
)

type MatchRepository struct {
	DB *gorm.DB
}

func NewMatchRepository(db *gorm.DB) *MatchRepository {
	return &MatchRepository{DB: db}
}

// CreateBatch inserts a full match set in one transaction. Either every
// record lands or none does.
func (r *MatchRepository) CreateBatch(matches []model.TherapyMatch) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&matches).Error
	})
}

func (r *MatchRepository) FindByID(id string) (*model.TherapyMatch, error) {
	var match model.TherapyMatch
	err := r.DB.First(&match, "id = ?", id).Error
	return &match, err
}

func (r *MatchRepository) FindBySubmissionID(submissionID string) ([]model.TherapyMatch, error) {
	var matches []model.TherapyMatch
	err := r.DB.Where("questionnaire_response_id = ?", submissionID).
		Order("match_rank").
		Find(&matches).Error
	return matches, err
}

func (r *MatchRepository) FindActiveByPatientID(patientID string) ([]model.TherapyMatch, error) {
	var matches []model.TherapyMatch
	err := r.DB.Where("patient_id = ? AND status = ?", patientID, model.MatchActive).
		Order("match_rank").
		Preload("Psychologist").
		Find(&matches).Error
	return matches, err
}

func (r *MatchRepository) FindByPsychologistID(psychologistID string) ([]model.TherapyMatch, error) {
	var matches []model.TherapyMatch
	err := r.DB.Where("psychologist_id = ?", psychologistID).
		Order("created_at DESC").
		Find(&matches).Error
	return matches, err
}

func (r *MatchRepository) UpdateStatus(id string, status model.MatchStatus) error {
	return r.DB.Model(&model.TherapyMatch{}).
		Where("id = ?", id).
		Update("status", status).
		Error
}
