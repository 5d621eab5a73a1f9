package model

import "time"

type MessageType string

const (
	MessageText  MessageType = "text"
	MessageFile  MessageType = "file"
	MessageImage MessageType = "image"
)

// swagger:model Message
type Message struct {
	UUIDBase
	SenderID      string      `gorm:"index;type:varchar(36);not null" json:"senderId"`
	ReceiverID    string      `gorm:"index;type:varchar(36);not null" json:"receiverId"`
	Content       string      `gorm:"type:text;not null" json:"content"`
	MessageType   MessageType `gorm:"size:10;default:'text'" json:"messageType"`
	AttachmentURL string      `gorm:"size:255" json:"attachmentUrl,omitempty"`
	IsRead        bool        `gorm:"default:false" json:"isRead"`
	ReadAt        *time.Time  `json:"readAt,omitempty"`
}

func (Message) TableName() string {
	return "messages"
}
