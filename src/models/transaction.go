package models

import (
	"kumpul/src/types"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Transaction struct {
	ID uuid.UUID `gorm:"primarykey;type:uuid;default:gen_random_uuid()" json:"id"`

	ExternalID      string                  `gorm:"uniqueIndex" json:"external_id"`
	UserID          uint                    `json:"user_id"`
	Type            types.TransactionType   `json:"type"`
	Status          types.TransactionStatus `gorm:"default:'pending'" json:"status"`
	Currency        string                  `json:"currency"`
	Amount          decimal.Decimal         `gorm:"type:numeric" json:"amount"`
	TotalFee        decimal.Decimal         `gorm:"type:numeric" json:"total_fee"`
	FinalAmount     decimal.Decimal         `gorm:"type:numeric" json:"final_amount"`
	PaymentMethodID uint                    `json:"payment_method_id"`
	EventID         *uint                   `json:"event_id,omitempty"`
	SubscriptionID  *uint                   `json:"subscription_id,omitempty"`
	PaymentID       *string                 `json:"payment_id,omitempty"`
	PaidAt          *time.Time              `json:"paid_at,omitempty"`
	ExpiresAt       *time.Time              `json:"expires_at,omitempty"`
	Metadata        types.Metadata          `gorm:"type:jsonb" json:"-"`

	PaymentMethod PaymentMethod       `gorm:"foreignKey:payment_method_id" json:"payment_method,omitempty"`
	Event         *Event              `gorm:"foreignKey:event_id" json:"event,omitempty"`
	Subscription  *UserSubscription   `gorm:"foreignKey:subscription_id" json:"subscription,omitempty"`
	User          User                `gorm:"foreignKey:user_id" json:"-"`
	Actions       []TransactionAction `gorm:"foreignKey:transaction_id" json:"actions,omitempty"`

	types.Timestamps
}

type TransactionAction struct {
	ID            uint                   `gorm:"primarykey" json:"id"`
	TransactionID uuid.UUID              `gorm:"type:uuid" json:"transaction_id"`
	Type          string                 `json:"type,omitempty"`
	Descriptor    types.ActionDescriptor `json:"descriptor"`
	Value         string                 `json:"value"`

	types.Timestamps
}
