package controller

import (
	"errors"
	"mindconnect_backend/internal/model"
	"mindconnect_backend/internal/service"
	"mindconnect_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type QuestionnaireController struct {
	Questionnaires *service.QuestionnaireService
	Matching       *service.MatchingService
}

func NewQuestionnaireController(questionnaires *service.QuestionnaireService, matching *service.MatchingService) *QuestionnaireController {
	return &QuestionnaireController{
		Questionnaires: questionnaires,
		Matching:       matching,
	}
}

// swagger:model SubmitQuestionnaireRequest
type SubmitQuestionnaireRequest struct {
	TherapyType           string            `json:"therapyType" binding:"required"`
	Responses             model.ResponseMap `json:"responses" binding:"required"`
	LocationCity          string            `json:"locationCity"`
	LocationCAP           string            `json:"locationCap"`
	QuestionnaireVersion  string            `json:"questionnaireVersion"`
	CompletionTimeMinutes int               `json:"completionTimeMinutes"`
}

// Submit godoc
// @Summary Submit a completed questionnaire
// @Description Accepts both authenticated and anonymous submissions. Anonymous callers receive a sessionId to present at registration. Authenticated patients trigger match generation in the background.
// @Tags questionnaire
// @Accept json
// @Produce json
// @Param body body SubmitQuestionnaireRequest true "questionnaire payload"
// @Success 201 {object} util.Response{data=model.QuestionnaireResponse}
// @Failure 400 {object} util.Response
// @Router /api/questionnaire [post]
func (c *QuestionnaireController) Submit(ctx *gin.Context) {
	var req SubmitQuestionnaireRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	in := service.SubmitInput{
		TherapyType:           req.TherapyType,
		Responses:             req.Responses,
		LocationCity:          req.LocationCity,
		LocationCAP:           req.LocationCAP,
		QuestionnaireVersion:  req.QuestionnaireVersion,
		CompletionTimeMinutes: req.CompletionTimeMinutes,
	}
	if claims := util.GetUserFromContext(ctx); claims != nil {
		in.UserID = claims.UserID
	}

	resp, err := c.Questionnaires.Submit(in)
	if err != nil {
		if errors.Is(err, util.ErrInvalidSubmission) {
			util.BadRequest(ctx, "therapy type or responses are invalid")
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	if resp.UserID != nil {
		c.Matching.GenerateMatchesAsync(*resp.UserID, resp.ID)
	}

	util.Created(ctx, resp)
}

// Get godoc
// @Summary Fetch a submission by id
// @Tags questionnaire
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "submission id"
// @Success 200 {object} util.Response{data=model.QuestionnaireResponse}
// @Failure 404 {object} util.Response
// @Router /api/questionnaire/{id} [get]
func (c *QuestionnaireController) Get(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	resp, err := c.Questionnaires.GetByID(ctx.Param("id"))
	if err != nil {
		if errors.Is(err, util.ErrSubmissionNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	owned := resp.UserID != nil && *resp.UserID == claims.UserID
	if !owned && claims.Role != model.Admin {
		util.Forbidden(ctx)
		return
	}

	util.Success(ctx, resp)
}

// Latest godoc
// @Summary Most recent submission of the calling patient
// @Tags questionnaire
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=model.QuestionnaireResponse}
// @Failure 404 {object} util.Response
// @Router /api/questionnaire/latest [get]
func (c *QuestionnaireController) Latest(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	resp, err := c.Questionnaires.LatestForUser(claims.UserID)
	if err != nil {
		if errors.Is(err, util.ErrSubmissionNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, resp)
}

// swagger:model ClaimQuestionnaireRequest
type ClaimQuestionnaireRequest struct {
	SessionID string `json:"sessionId" binding:"required"`
}

// Claim godoc
// @Summary Claim an anonymous submission
// @Description Attaches a pre-registration submission, identified by its session token, to the calling patient and starts match generation.
// @Tags questionnaire
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body ClaimQuestionnaireRequest true "session token"
// @Success 200 {object} util.Response{data=model.QuestionnaireResponse}
// @Failure 404 {object} util.Response
// @Failure 409 {object} util.Response
// @Router /api/questionnaire/claim [post]
func (c *QuestionnaireController) Claim(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req ClaimQuestionnaireRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	resp, err := c.Questionnaires.Claim(req.SessionID, claims.UserID)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrSubmissionNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrSubmissionClaimed):
			util.Conflict(ctx, "submission already belongs to another user")
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	c.Matching.GenerateMatchesAsync(claims.UserID, resp.ID)

	util.Success(ctx, resp)
}
