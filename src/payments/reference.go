package payments

import (
	"fmt"
	"kumpul/src/types"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Default expiry windows per channel. VA and counter payments give the payer
// a day to pay; e-wallet and QR sessions are short lived.
const (
	EwalletExpiry = 15 * time.Minute
	QRExpiry      = 15 * time.Minute
	VAExpiry      = 24 * time.Hour
	CounterExpiry = 24 * time.Hour
)

// Fixed UTC offsets per country code. No DST handling: the supported markets
// do not observe it. Unknown countries fall back to UTC.
var countryUTCOffsets = map[string]int{
	"ID": 7,
	"PH": 8,
	"MY": 8,
	"SG": 8,
	"TH": 7,
	"VN": 7,
}

// NewReferenceID builds the externally-visible unique reference for a payment
// request. Uniqueness comes from the user id plus a millisecond timestamp; a
// short random suffix guards against two requests from the same user landing
// on the same millisecond.
func NewReferenceID(prefix string, userID uint) string {
	suffix := strings.Split(uuid.NewString(), "-")[0][:6]
	return fmt.Sprintf("%s-%d-%d-%s", prefix, userID, time.Now().UnixMilli(), suffix)
}

// DefaultExpiryWindow returns the channel's default payment window.
func DefaultExpiryWindow(channel types.PaymentMethodType) (time.Duration, error) {
	switch channel {
	case types.PAYMENT_METHOD_EWALLET:
		return EwalletExpiry, nil
	case types.PAYMENT_METHOD_QR_CODE:
		return QRExpiry, nil
	case types.PAYMENT_METHOD_BANK_TRANSFER:
		return VAExpiry, nil
	case types.PAYMENT_METHOD_OVER_THE_COUNTER:
		return CounterExpiry, nil
	}
	return 0, fmt.Errorf("no expiry window configured for channel type [%s]", channel)
}

// ExpiryFor computes the expiry timestamp for a payment created at now,
// shifted into the destination country's fixed UTC offset. Pass a zero
// override to use the channel default.
func ExpiryFor(channel types.PaymentMethodType, countryCode string, now time.Time, override time.Duration) (time.Time, error) {
	window := override
	if window == 0 {
		def, err := DefaultExpiryWindow(channel)
		if err != nil {
			return time.Time{}, err
		}
		window = def
	}
	offset := countryUTCOffsets[countryCode]
	loc := time.FixedZone(countryCode, offset*3600)
	return now.Add(window).In(loc), nil
}
