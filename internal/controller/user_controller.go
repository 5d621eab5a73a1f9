package controller

import (
	"errors"
	"mindconnect_backend/internal/service"
	"mindconnect_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type UserController struct {
	UserService *service.UserService
}

func NewUserController(userService *service.UserService) *UserController {
	return &UserController{UserService: userService}
}

// swagger:model UpdateProfileRequest
type UpdateProfileRequest struct {
	PreferredLanguage  *string  `json:"preferredLanguage"`
	LocationCity       *string  `json:"locationCity"`
	LocationCAP        *string  `json:"locationCap"`
	LocationRegion     *string  `json:"locationRegion"`
	Bio                *string  `json:"bio"`
	EmergencyContact   *string  `json:"emergencyContact"`
	MedicalHistory     *string  `json:"medicalHistory"`
	CurrentMedications *string  `json:"currentMedications"`
	InsuranceProvider  *string  `json:"insuranceProvider"`
	LicenseNumber      *string  `json:"licenseNumber"`
	Specializations    []string `json:"specializations"`
	YearsOfExperience  *int     `json:"yearsOfExperience"`
	Education          []string `json:"education"`
	Languages          []string `json:"languages"`
	HourlyRate         *float64 `json:"hourlyRate"`
}

// UpdateProfile godoc
// @Summary Update own profile
// @Tags user
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body UpdateProfileRequest true "fields to change"
// @Success 200 {object} util.Response{data=model.UserProfile}
// @Router /api/user/profile [put]
func (c *UserController) UpdateProfile(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req UpdateProfileRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	profile, err := c.UserService.UpdateProfile(claims.UserID, service.ProfileUpdate{
		PreferredLanguage:  req.PreferredLanguage,
		LocationCity:       req.LocationCity,
		LocationCAP:        req.LocationCAP,
		LocationRegion:     req.LocationRegion,
		Bio:                req.Bio,
		EmergencyContact:   req.EmergencyContact,
		MedicalHistory:     req.MedicalHistory,
		CurrentMedications: req.CurrentMedications,
		InsuranceProvider:  req.InsuranceProvider,
		LicenseNumber:      req.LicenseNumber,
		Specializations:    req.Specializations,
		YearsOfExperience:  req.YearsOfExperience,
		Education:          req.Education,
		Languages:          req.Languages,
		HourlyRate:         req.HourlyRate,
	})
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, profile)
}

// UploadAvatar godoc
// @Summary Upload a profile picture
// @Tags user
// @Accept mpfd
// @Produce json
// @Security ApiKeyAuth
// @Param avatar formData file true "image file"
// @Success 200 {object} util.Response
// @Router /api/user/avatar/upload [post]
func (c *UserController) UploadAvatar(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	file, err := ctx.FormFile("avatar")
	if err != nil {
		util.BadRequest(ctx, "avatar file is required")
		return
	}

	url, err := c.UserService.UploadAvatar(ctx.Request.Context(), claims.UserID, file)
	if err != nil {
		if errors.Is(err, util.ErrUserNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, gin.H{"avatarUrl": url})
}
