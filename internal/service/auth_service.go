package service

import (
	"errors"
	"mindconnect_backend/internal/config"
	"mindconnect_backend/internal/model"
	"mindconnect_backend/internal/repository"
	"mindconnect_backend/internal/util"
	"mindconnect_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthService struct {
	UserRepo       *repository.UserRepository
	ProfileRepo    *repository.ProfileRepository
	Questionnaires *QuestionnaireService
	Matching       *MatchingService
	Cfg            *config.Config
}

func NewAuthService(userRepo *repository.UserRepository, profileRepo *repository.ProfileRepository, questionnaires *QuestionnaireService, matching *MatchingService, cfg *config.Config) *AuthService {
	return &AuthService{
		UserRepo:       userRepo,
		ProfileRepo:    profileRepo,
		Questionnaires: questionnaires,
		Matching:       matching,
		Cfg:            cfg,
	}
}

// Register creates the user and profile. When the client presents the
// session token of a questionnaire completed before signing up, the
// submission is claimed and match generation starts as a detached task:
// its failure is logged, never surfaced to the registration caller.
func (s *AuthService) Register(user *model.User, questionnaireSessionID string) error {
	_, err := s.UserRepo.FindByEmail(user.Email)
	if err == nil {
		return util.ErrEmailRegistered
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.Password = string(hashedPassword)

	if err := s.UserRepo.Create(user); err != nil {
		return err
	}

	profile := &model.UserProfile{
		UserID:         user.ID,
		MatchingStatus: model.MatchingPending,
	}

	var submission *model.QuestionnaireResponse
	if user.Role == model.Patient && questionnaireSessionID != "" {
		submission, err = s.Questionnaires.Claim(questionnaireSessionID, user.ID)
		if err != nil {
			// A stale or foreign token must not block registration.
			logger.Log.Warn("questionnaire claim failed during registration",
				zap.String("user_id", user.ID), zap.Error(err))
			submission = nil
		}
	}

	if submission != nil {
		profile.HasCompletedQuestionnaire = true
		profile.MatchingStatus = model.MatchingMatched
		profile.LocationCity = submission.LocationCity
		profile.LocationCAP = submission.LocationCAP
	}

	if err := s.ProfileRepo.Create(profile); err != nil {
		// Registration stays valid without a profile row.
		logger.Log.Warn("profile creation failed during registration",
			zap.String("user_id", user.ID), zap.Error(err))
	}

	if submission != nil {
		s.Matching.GenerateMatchesAsync(user.ID, submission.ID)
	}

	return nil
}

func (s *AuthService) Login(email, password string) (string, error) {
	user, err := s.UserRepo.FindByEmail(email)
	if err != nil {
		return "", util.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", util.ErrInvalidCredentials
	}

	if user.Disabled {
		return "", util.ErrPermissionDenied
	}

	if err := s.UserRepo.UpdateLastLogin(user.ID); err != nil {
		logger.Log.Warn("last_login update failed", zap.String("user_id", user.ID), zap.Error(err))
	}

	return util.GenerateJWT(user, s.Cfg.JWT.Secret, s.Cfg.JWT.ExpireTime)
}

func (s *AuthService) GetCurrentUser(c *gin.Context) *model.User {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		return nil
	}

	user, _ := s.UserRepo.FindByID(claims.UserID)
	return user
}
