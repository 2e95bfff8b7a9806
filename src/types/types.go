package types

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"
)

type Timestamps struct {
	CreatedAt time.Time      `gorm:"autoCreateTime:nano" json:"created_at,omitempty"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime:nano" json:"updated_at,omitempty"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty,omitnil"`
}

type JSONB map[string]any

func (a JSONB) Value() (driver.Value, error) {
	valueString, err := json.Marshal(a)
	return string(valueString), err
}
func (a *JSONB) Scan(value any) error {
	b, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	return nil
}

type Metadata map[string]any

func (a Metadata) Value() (driver.Value, error) {
	valueString, err := json.Marshal(a)
	return string(valueString), err
}
func (a *Metadata) Scan(value any) error {
	b, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	return nil
}

type TransactionStatus string

const (
	TRANSACTION_PENDING  TransactionStatus = "pending"
	TRANSACTION_PAID     TransactionStatus = "paid"
	TRANSACTION_FAILED   TransactionStatus = "failed"
	TRANSACTION_EXPIRED  TransactionStatus = "expired"
	TRANSACTION_REFUNDED TransactionStatus = "refunded"
)

// IsTerminal reports whether no further gateway-driven transition is allowed
// from this status.
func (s TransactionStatus) IsTerminal() bool {
	switch s {
	case TRANSACTION_PAID, TRANSACTION_FAILED, TRANSACTION_EXPIRED, TRANSACTION_REFUNDED:
		return true
	}
	return false
}

type TransactionType string

const (
	TRANSACTION_TYPE_EVENT        TransactionType = "event"
	TRANSACTION_TYPE_SUBSCRIPTION TransactionType = "subscription"
)

type PaymentMethodType string

const (
	PAYMENT_METHOD_EWALLET          PaymentMethodType = "EWALLET"
	PAYMENT_METHOD_QR_CODE          PaymentMethodType = "QR_CODE"
	PAYMENT_METHOD_BANK_TRANSFER    PaymentMethodType = "BANK_TRANSFER"
	PAYMENT_METHOD_OVER_THE_COUNTER PaymentMethodType = "OVER_THE_COUNTER"
)

type ActionDescriptor string

const (
	ACTION_WEB_URL                ActionDescriptor = "WEB_URL"
	ACTION_PAYMENT_CODE           ActionDescriptor = "PAYMENT_CODE"
	ACTION_QR_STRING              ActionDescriptor = "QR_STRING"
	ACTION_VIRTUAL_ACCOUNT_NUMBER ActionDescriptor = "VIRTUAL_ACCOUNT_NUMBER"
)

type SubscriptionStatus string

const (
	SUBSCRIPTION_PENDING   SubscriptionStatus = "pending"
	SUBSCRIPTION_ACTIVE    SubscriptionStatus = "active"
	SUBSCRIPTION_CANCELLED SubscriptionStatus = "cancelled"
)

type EventStatus string

const (
	EVENT_DRAFT     EventStatus = "draft"
	EVENT_PUBLISHED EventStatus = "published"
	EVENT_COMPLETED EventStatus = "completed"
	EVENT_CANCELED  EventStatus = "canceled"
)

type CreatePaymentRequestBody struct {
	Type            TransactionType `json:"type" binding:"required,oneof=event subscription"`
	EventID         *uint           `json:"event_id,omitempty"`
	PlanID          *uint           `json:"plan_id,omitempty"`
	PaymentMethodID uint            `json:"payment_method_id" binding:"required"`
	Description     string          `json:"description,omitempty"`
}

type PreviewFeeRequestBody struct {
	Amount          string `json:"amount" binding:"required,decimalamount"`
	PaymentMethodID uint   `json:"payment_method_id" binding:"required"`
}

type TransactionQueryFilters struct {
	Status  string `form:"status,omitempty" binding:"omitempty,oneof=pending paid failed expired refunded"`
	EventID uint   `form:"event_id,omitempty"`
	Search  string `form:"search,omitempty"`
	Page    int    `form:"page,default=1" binding:"omitempty,min=1"`
	Limit   int    `form:"limit,default=20" binding:"omitempty,min=1,max=100"`
}

type CreatePaymentResponse struct {
	TransactionID        string  `json:"transaction_id"`
	ExternalID           string  `json:"external_id"`
	Status               string  `json:"status"`
	Amount               string  `json:"amount"`
	TotalFee             string  `json:"total_fee"`
	FinalAmount          string  `json:"final_amount"`
	Currency             string  `json:"currency"`
	ExpiresAt            *string `json:"expires_at,omitempty"`
	PaymentURL           *string `json:"payment_url,omitempty"`
	PaymentCode          *string `json:"payment_code,omitempty"`
	QRString             *string `json:"qr_string,omitempty"`
	VirtualAccountNumber *string `json:"virtual_account_number,omitempty"`
}

type EventEmailPayload struct {
	ID           uint   `json:"id"`
	Title        string `json:"title"`
	Slug         string `json:"slug"`
	EventDate    string `json:"eventDate"`
	StartTime    string `json:"startTime"`
	EndTime      string `json:"endTime"`
	Venue        string `json:"venue"`
	Address      string `json:"address"`
	City         string `json:"city"`
	MapsURL      string `json:"mapsUrl"`
	Requirements string `json:"requirements"`
}
