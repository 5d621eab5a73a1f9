package model

import (
	"time"
)

type UserRole string

const (
	Patient      UserRole = "patient"
	Psychologist UserRole = "psychologist"
	Admin        UserRole = "admin"
)

// swagger:model User
type User struct {
	UUIDBase
	Email      string    `gorm:"size:100;unique;not null" json:"email"`
	Password   string    `gorm:"size:100;not null" json:"-"`
	FirstName  string    `gorm:"size:100;not null" json:"firstName"`
	LastName   string    `gorm:"size:100;not null" json:"lastName"`
	Role       UserRole  `gorm:"type:enum('patient','psychologist','admin');default:'patient'" json:"role"`
	AvatarURL  string    `gorm:"size:255" json:"avatarUrl"`
	IsVerified bool      `gorm:"default:false" json:"isVerified"`
	Disabled   bool      `gorm:"default:false" json:"disabled"`
	LastLogin  time.Time `gorm:"default:CURRENT_TIMESTAMP(3)" json:"lastLogin"`
}

func (User) TableName() string {
	return "users"
}
