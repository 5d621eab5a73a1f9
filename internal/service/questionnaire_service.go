package service

import (
	"errors"
	"mindconnect_backend/internal/model"
	"mindconnect_backend/internal/util"
	"mindconnect_backend/pkg/logger"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// QuestionnaireStore is the persistence surface the service needs. The
// gorm repository satisfies it; tests use an in-memory fake.
type QuestionnaireStore interface {
	Create(resp *model.QuestionnaireResponse) error
	FindByID(id string) (*model.QuestionnaireResponse, error)
	FindBySessionID(sessionID string) (*model.QuestionnaireResponse, error)
	FindLatestByUserID(userID string) (*model.QuestionnaireResponse, error)
	AttachUser(id, userID string) error
	DeleteUnclaimedBefore(cutoff time.Time) (int64, error)
}

type QuestionnaireService struct {
	Questionnaires QuestionnaireStore
}

func NewQuestionnaireService(store QuestionnaireStore) *QuestionnaireService {
	return &QuestionnaireService{Questionnaires: store}
}

// SubmitInput carries one completed questionnaire. UserID is empty for
// anonymous submissions made before registration.
type SubmitInput struct {
	UserID                string
	TherapyType           string
	Responses             model.ResponseMap
	LocationCity          string
	LocationCAP           string
	QuestionnaireVersion  string
	CompletionTimeMinutes int
}

// Submit validates and stores a questionnaire. Anonymous submissions get a
// generated session token the client presents again at registration to
// claim the submission.
func (s *QuestionnaireService) Submit(in SubmitInput) (*model.QuestionnaireResponse, error) {
	therapyType, err := model.ParseTherapyType(in.TherapyType)
	if err != nil {
		return nil, util.ErrInvalidSubmission
	}
	if len(in.Responses) == 0 {
		return nil, util.ErrInvalidSubmission
	}

	resp := &model.QuestionnaireResponse{
		TherapyType:           therapyType,
		Responses:             in.Responses,
		LocationCity:          in.LocationCity,
		LocationCAP:           in.LocationCAP,
		CompletedAt:           time.Now(),
		QuestionnaireVersion:  in.QuestionnaireVersion,
		CompletionTimeMinutes: in.CompletionTimeMinutes,
	}
	if resp.QuestionnaireVersion == "" {
		resp.QuestionnaireVersion = "1.0"
	}

	if in.UserID != "" {
		resp.UserID = &in.UserID
	} else {
		sessionID := model.GenerateUUID()
		resp.SessionID = &sessionID
	}

	if err := s.Questionnaires.Create(resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (s *QuestionnaireService) GetByID(id string) (*model.QuestionnaireResponse, error) {
	resp, err := s.Questionnaires.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrSubmissionNotFound
		}
		return nil, err
	}
	return resp, nil
}

// LatestForUser returns the user's most recent submission.
func (s *QuestionnaireService) LatestForUser(userID string) (*model.QuestionnaireResponse, error) {
	resp, err := s.Questionnaires.FindLatestByUserID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrSubmissionNotFound
		}
		return nil, err
	}
	return resp, nil
}

// Claim attaches an anonymous submission, identified by its session token,
// to a registered patient. Claiming is a one-shot operation; a submission
// already owned by another user is rejected.
func (s *QuestionnaireService) Claim(sessionID, userID string) (*model.QuestionnaireResponse, error) {
	resp, err := s.Questionnaires.FindBySessionID(sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrSubmissionNotFound
		}
		return nil, err
	}

	if resp.UserID != nil {
		if *resp.UserID == userID {
			return resp, nil
		}
		return nil, util.ErrSubmissionClaimed
	}

	if err := s.Questionnaires.AttachUser(resp.ID, userID); err != nil {
		return nil, err
	}
	resp.UserID = &userID
	return resp, nil
}

// PurgeUnclaimed deletes anonymous submissions older than the retention
// window. Invoked by the cron scheduler.
func (s *QuestionnaireService) PurgeUnclaimed(retentionDays int) {
	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	deleted, err := s.Questionnaires.DeleteUnclaimedBefore(cutoff)
	if err != nil {
		logger.Log.Error("purging unclaimed submissions failed", zap.Error(err))
		return
	}
	if deleted > 0 {
		logger.Log.Info("purged unclaimed submissions", zap.Int64("count", deleted))
	}
}
