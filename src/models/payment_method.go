package models

import (
	"kumpul/src/types"

	"github.com/shopspring/decimal"
)

type PaymentMethod struct {
	ID            uint                    `gorm:"primarykey" json:"id"`
	Name          string                  `json:"name,omitempty"`
	ChannelCode   string                  `json:"channel_code,omitempty"`
	Type          types.PaymentMethodType `json:"type,omitempty"`
	CountryCode   string                  `json:"country_code,omitempty"`
	Currency      string                  `json:"currency,omitempty"`
	MinAmount     decimal.Decimal         `gorm:"type:numeric" json:"min_amount,omitempty"`
	MaxAmount     decimal.Decimal         `gorm:"type:numeric" json:"max_amount,omitempty"`
	AdminFeeRate  decimal.Decimal         `gorm:"type:numeric" json:"admin_fee_rate,omitempty"`
	AdminFeeFixed decimal.Decimal         `gorm:"type:numeric" json:"admin_fee_fixed,omitempty"`
	IsActive      bool                    `gorm:"default:true" json:"is_active,omitempty"`

	types.Timestamps
}
