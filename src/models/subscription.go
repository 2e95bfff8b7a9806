package models

import (
	"kumpul/src/types"
	"time"

	"github.com/shopspring/decimal"
)

type SubscriptionPlan struct {
	ID               uint    `gorm:"primarykey" json:"id"`
	Name             string  `json:"name,omitempty"`
	Description      *string `json:"description,omitempty"`
	DurationInMonths int     `json:"duration_in_months,omitempty"`
	IsActive         bool    `gorm:"default:true" json:"is_active,omitempty"`

	Prices []PlanPrice `gorm:"foreignKey:plan_id" json:"prices,omitempty"`

	types.Timestamps
}

// PlanPrice is the country-specific price of a plan. A plan with no price row
// for a country cannot be purchased from that country.
type PlanPrice struct {
	ID          uint            `gorm:"primarykey" json:"id"`
	PlanID      uint            `gorm:"index:idx_plan_country,unique" json:"plan_id"`
	CountryCode string          `gorm:"index:idx_plan_country,unique" json:"country_code"`
	Currency    string          `json:"currency"`
	Price       decimal.Decimal `gorm:"type:numeric" json:"price"`

	types.Timestamps
}

type UserSubscription struct {
	ID        uint                     `gorm:"primarykey" json:"id"`
	UserID    uint                     `json:"user_id"`
	PlanID    uint                     `json:"plan_id"`
	Status    types.SubscriptionStatus `gorm:"default:'pending'" json:"status"`
	StartDate *time.Time               `json:"start_date,omitempty"`
	EndDate   *time.Time               `json:"end_date,omitempty"`
	Metadata  types.Metadata           `gorm:"type:jsonb" json:"metadata,omitempty"`

	User User             `gorm:"foreignKey:user_id" json:"-"`
	Plan SubscriptionPlan `gorm:"foreignKey:plan_id" json:"plan,omitempty"`

	types.Timestamps
}
