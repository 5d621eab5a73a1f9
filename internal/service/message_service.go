package service

import (
	"errors"
	"fmt"
	"mindconnect_backend/internal/model"
	"mindconnect_backend/internal/repository"
	"mindconnect_backend/internal/util"

	"gorm.io/gorm"
)

type MessageService struct {
	Messages *repository.MessageRepository
	Users    *repository.UserRepository
}

func NewMessageService(messages *repository.MessageRepository, users *repository.UserRepository) *MessageService {
	return &MessageService{Messages: messages, Users: users}
}

func (s *MessageService) Send(senderID, receiverID, content string, msgType model.MessageType) (*model.Message, error) {
	if content == "" {
		return nil, fmt.Errorf("message content is empty")
	}
	if msgType == "" {
		msgType = model.MessageText
	}

	if _, err := s.Users.FindByID(receiverID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrUserNotFound
		}
		return nil, err
	}

	msg := &model.Message{
		SenderID:    senderID,
		ReceiverID:  receiverID,
		Content:     content,
		MessageType: msgType,
	}
	if err := s.Messages.Create(msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// Conversation returns the thread with otherID and marks their messages as
// read by userID.
func (s *MessageService) Conversation(userID, otherID string, limit int) ([]model.Message, error) {
	if limit <= 0 || limit > 200 {
		limit = 100
	}
	msgs, err := s.Messages.FindConversation(userID, otherID, limit)
	if err != nil {
		return nil, err
	}
	if err := s.Messages.MarkRead(userID, otherID); err != nil {
		return nil, err
	}
	return msgs, nil
}

func (s *MessageService) UnreadCount(userID string) (int64, error) {
	return s.Messages.CountUnread(userID)
}
