package models

import (
	"kumpul/src/types"
	"time"
)

type User struct {
	ID            uint           `gorm:"primarykey" json:"id"`
	Name          string         `json:"name,omitempty"`
	Email         string         `json:"email,omitempty"`
	Phone         string         `json:"phone,omitempty"`
	Role          string         `json:"role,omitempty"`
	UID           string         `json:"uid,omitempty"`
	Country       string         `gorm:"default:'ID'" json:"country,omitempty"`
	Active        bool           `gorm:"default:true" json:"active,omitempty"`
	EmailVerified bool           `json:"email_verified,omitempty"`
	VerifiedAt    *time.Time     `json:"verified_at,omitempty"`
	Metadata      types.Metadata `gorm:"type:jsonb" json:"-"`

	Transactions  []Transaction      `gorm:"foreignKey:user_id" json:"transactions,omitempty"`
	Subscriptions []UserSubscription `gorm:"foreignKey:user_id" json:"subscriptions,omitempty"`

	types.Timestamps
}
