package repository

import (
	"mindconnect_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type MessageRepository struct {
	DB *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{DB: db}
}

func (r *MessageRepository) Create(msg *model.Message) error {
	return r.DB.Create(msg).Error
}

// FindConversation returns messages between two users, oldest first.
func (r *MessageRepository) FindConversation(userA, userB string, limit int) ([]model.Message, error) {
	var msgs []model.Message
	err := r.DB.
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
			userA, userB, userB, userA).
		Order("created_at").
		Limit(limit).
		Find(&msgs).Error
	return msgs, err
}

// MarkRead flags every unread message sent by senderID to readerID.
func (r *MessageRepository) MarkRead(readerID, senderID string) error {
	now := time.Now()
	return r.DB.Model(&model.Message{}).
		Where("receiver_id = ? AND sender_id = ? AND is_read = ?", readerID, senderID, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": now}).
		Error
}

func (r *MessageRepository) CountUnread(userID string) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Message{}).
		Where("receiver_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}
