package payments

import (
	"fmt"
	"kumpul/src/models"

	"github.com/shopspring/decimal"
)

// FeeBreakdown carries the computed amounts for one payment attempt. All
// values are exact decimals; finalAmount = amount + totalFee always holds.
type FeeBreakdown struct {
	Amount      decimal.Decimal `json:"amount"`
	FeeRate     decimal.Decimal `json:"fee_rate"`
	FeeFixed    decimal.Decimal `json:"fee_fixed"`
	TotalFee    decimal.Decimal `json:"total_fee"`
	FinalAmount decimal.Decimal `json:"final_amount"`
}

// CalculateFee validates amount against the payment method's limits and
// computes the admin fee. This is the single amount-bounds checkpoint: callers
// must run it before any gateway call.
func CalculateFee(amount decimal.Decimal, method *models.PaymentMethod) (*FeeBreakdown, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("amount must be greater than zero, got %s", amount.String())
	}
	if amount.LessThan(method.MinAmount) || amount.GreaterThan(method.MaxAmount) {
		return nil, fmt.Errorf(
			"amount %s is outside the allowed range [%s, %s] for %s",
			amount.String(),
			method.MinAmount.String(),
			method.MaxAmount.String(),
			method.Name,
		)
	}
	totalFee := amount.Mul(method.AdminFeeRate).Add(method.AdminFeeFixed)
	return &FeeBreakdown{
		Amount:      amount,
		FeeRate:     method.AdminFeeRate,
		FeeFixed:    method.AdminFeeFixed,
		TotalFee:    totalFee,
		FinalAmount: amount.Add(totalFee),
	}, nil
}

// PayableAmount is the fee-inclusive amount sent to the gateway, rounded up
// to the smallest currency unit.
func (b *FeeBreakdown) PayableAmount() decimal.Decimal {
	return b.FinalAmount.RoundUp(0)
}
