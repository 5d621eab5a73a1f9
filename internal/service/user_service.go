package service

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"mindconnect_backend/internal/model"
	"mindconnect_backend/internal/repository"
	"mindconnect_backend/internal/util"
	"path/filepath"

	"gorm.io/gorm"
)

type UserService struct {
	UserRepo    *repository.UserRepository
	ProfileRepo *repository.ProfileRepository
	Storage     *StorageService
}

func NewUserService(userRepo *repository.UserRepository, profileRepo *repository.ProfileRepository, storage *StorageService) *UserService {
	return &UserService{
		UserRepo:    userRepo,
		ProfileRepo: profileRepo,
		Storage:     storage,
	}
}

// UserWithProfile bundles the account row with its profile for API output.
type UserWithProfile struct {
	User    *model.User        `json:"user"`
	Profile *model.UserProfile `json:"profile,omitempty"`
}

func (s *UserService) GetUserWithProfile(userID string) (*UserWithProfile, error) {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrUserNotFound
		}
		return nil, err
	}

	out := &UserWithProfile{User: user}
	profile, err := s.ProfileRepo.FindByUserID(userID)
	if err == nil {
		out.Profile = profile
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	return out, nil
}

// ProfileUpdate carries the mutable profile fields. Pointer fields
// distinguish "leave unchanged" from "set to zero value".
type ProfileUpdate struct {
	PreferredLanguage  *string
	LocationCity       *string
	LocationCAP        *string
	LocationRegion     *string
	Bio                *string
	EmergencyContact   *string
	MedicalHistory     *string
	CurrentMedications *string
	InsuranceProvider  *string
	LicenseNumber      *string
	Specializations    []string
	YearsOfExperience  *int
	Education          []string
	Languages          []string
	HourlyRate         *float64
}

func (s *UserService) UpdateProfile(userID string, update ProfileUpdate) (*model.UserProfile, error) {
	profile, err := s.ProfileRepo.FindByUserID(userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		profile = &model.UserProfile{UserID: userID, MatchingStatus: model.MatchingPending}
		if err := s.ProfileRepo.Create(profile); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}

	setString := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	setString(&profile.PreferredLanguage, update.PreferredLanguage)
	setString(&profile.LocationCity, update.LocationCity)
	setString(&profile.LocationCAP, update.LocationCAP)
	setString(&profile.LocationRegion, update.LocationRegion)
	setString(&profile.Bio, update.Bio)
	setString(&profile.EmergencyContact, update.EmergencyContact)
	setString(&profile.MedicalHistory, update.MedicalHistory)
	setString(&profile.CurrentMedications, update.CurrentMedications)
	setString(&profile.InsuranceProvider, update.InsuranceProvider)
	setString(&profile.LicenseNumber, update.LicenseNumber)

	if update.Specializations != nil {
		profile.Specializations = update.Specializations
	}
	if update.Education != nil {
		profile.Education = update.Education
	}
	if update.Languages != nil {
		profile.Languages = update.Languages
	}
	if update.YearsOfExperience != nil {
		profile.YearsOfExperience = *update.YearsOfExperience
	}
	if update.HourlyRate != nil {
		profile.HourlyRate = *update.HourlyRate
	}

	if err := s.ProfileRepo.Update(profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// UploadAvatar stores the image and records its URL on the user.
func (s *UserService) UploadAvatar(ctx context.Context, userID string, file *multipart.FileHeader) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	filename := fmt.Sprintf("avatars/%s%s", userID, filepath.Ext(file.Filename))
	url, err := s.Storage.Upload(ctx, filename, src, file.Size, file.Header.Get("Content-Type"))
	if err != nil {
		return "", err
	}

	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return "", err
	}
	user.AvatarURL = url
	if err := s.UserRepo.Update(user); err != nil {
		return "", err
	}
	return url, nil
}
