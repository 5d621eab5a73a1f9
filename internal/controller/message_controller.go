package controller

import (
	"errors"
	"mindconnect_backend/internal/model"
	"mindconnect_backend/internal/service"
	"mindconnect_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

type MessageController struct {
	Messages *service.MessageService
}

func NewMessageController(messages *service.MessageService) *MessageController {
	return &MessageController{Messages: messages}
}

// swagger:model SendMessageRequest
type SendMessageRequest struct {
	ReceiverID  string `json:"receiverId" binding:"required"`
	Content     string `json:"content" binding:"required"`
	MessageType string `json:"messageType"`
}

// Send godoc
// @Summary Send a message
// @Tags messages
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body SendMessageRequest true "message"
// @Success 201 {object} util.Response{data=model.Message}
// @Failure 404 {object} util.Response
// @Router /api/messages [post]
func (c *MessageController) Send(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req SendMessageRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	msg, err := c.Messages.Send(claims.UserID, req.ReceiverID, req.Content, model.MessageType(req.MessageType))
	if err != nil {
		if errors.Is(err, util.ErrUserNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Created(ctx, msg)
}

// Conversation godoc
// @Summary Message thread with another user
// @Description Returns the thread and marks the other party's messages as read.
// @Tags messages
// @Produce json
// @Security ApiKeyAuth
// @Param userId path string true "other user id"
// @Param limit query int false "max messages, default 100"
// @Success 200 {object} util.Response{data=[]model.Message}
// @Router /api/messages/{userId} [get]
func (c *MessageController) Conversation(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	limit, _ := strconv.Atoi(ctx.Query("limit"))
	msgs, err := c.Messages.Conversation(claims.UserID, ctx.Param("userId"), limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, msgs)
}

// UnreadCount godoc
// @Summary Count of unread messages
// @Tags messages
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response
// @Router /api/messages/unread/count [get]
func (c *MessageController) UnreadCount(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	count, err := c.Messages.UnreadCount(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"unread": count})
}
