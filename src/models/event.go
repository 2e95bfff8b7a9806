package models

import (
	"kumpul/src/types"
	"time"

	"github.com/shopspring/decimal"
)

type Event struct {
	ID           uint              `gorm:"primarykey" json:"id"`
	Title        string            `json:"title,omitempty"`
	Slug         string            `gorm:"uniqueIndex" json:"slug,omitempty"`
	About        *string           `json:"about,omitempty"`
	Venue        string            `json:"venue,omitempty"`
	Address      string            `json:"address,omitempty"`
	City         string            `json:"city,omitempty"`
	MapsURL      string            `json:"maps_url,omitempty"`
	Requirements string            `json:"requirements,omitempty"`
	EventDate    time.Time         `json:"event_date,omitempty"`
	StartTime    string            `json:"start_time,omitempty"`
	EndTime      string            `json:"end_time,omitempty"`
	Price        decimal.Decimal   `gorm:"type:numeric" json:"price,omitempty"`
	Currency     string            `gorm:"default:'IDR'" json:"currency,omitempty"`
	Seats        uint              `json:"seats,omitempty"`
	Participants uint              `json:"participants,omitempty"`
	Status       types.EventStatus `gorm:"default:'draft'" json:"status,omitempty"`
	CreatedBy    uint              `json:"created_by,omitempty"`

	Creator      User          `gorm:"foreignKey:created_by" json:"-"`
	Transactions []Transaction `gorm:"foreignKey:event_id" json:"-"`

	types.Timestamps
}
