package payments

import (
	"fmt"
	"kumpul/src/types"
	"time"

	"github.com/shopspring/decimal"
)

// BuildInput is everything a channel builder needs to shape a gateway
// payment request.
type BuildInput struct {
	ReferenceID   string
	Amount        decimal.Decimal
	Currency      string
	ChannelCode   string
	CustomerName  string
	CustomerEmail string
	Description   string
	ExpiresAt     time.Time
	AppHost       string
}

type payloadBuilder func(in *BuildInput) types.JSONB

// One builder per channel type. Adding a channel is a new entry here plus its
// builder function below.
var payloadBuilders = map[types.PaymentMethodType]payloadBuilder{
	types.PAYMENT_METHOD_EWALLET:          buildEwalletPayload,
	types.PAYMENT_METHOD_QR_CODE:          buildQRPayload,
	types.PAYMENT_METHOD_BANK_TRANSFER:    buildVirtualAccountPayload,
	types.PAYMENT_METHOD_OVER_THE_COUNTER: buildOverTheCounterPayload,
}

// BuildPayload produces the channel-specific payment request body. An
// unconfigured channel type is a configuration error, never silently
// defaulted.
func BuildPayload(channel types.PaymentMethodType, in *BuildInput) (types.JSONB, error) {
	builder, ok := payloadBuilders[channel]
	if !ok {
		return nil, fmt.Errorf("no payload builder configured for channel type [%s]", channel)
	}
	return builder(in), nil
}

func basePayload(in *BuildInput) types.JSONB {
	return types.JSONB{
		"reference_id": in.ReferenceID,
		"amount":       in.Amount.InexactFloat64(),
		"currency":     in.Currency,
		"channel_code": in.ChannelCode,
		"customer": types.JSONB{
			"given_names": in.CustomerName,
			"email":       in.CustomerEmail,
		},
	}
}

func buildEwalletPayload(in *BuildInput) types.JSONB {
	payload := basePayload(in)
	payload["channel_properties"] = types.JSONB{
		"success_redirect_url": fmt.Sprintf("%s/payment/callback/success", in.AppHost),
		"pending_redirect_url": fmt.Sprintf("%s/payment/callback/pending", in.AppHost),
		"failure_redirect_url": fmt.Sprintf("%s/payment/callback/failure", in.AppHost),
		"cancel_redirect_url":  fmt.Sprintf("%s/payment/callback/cancel", in.AppHost),
	}
	return payload
}

func buildQRPayload(in *BuildInput) types.JSONB {
	payload := basePayload(in)
	payload["channel_properties"] = types.JSONB{
		"expires_at": in.ExpiresAt.Format(time.RFC3339),
	}
	return payload
}

func buildVirtualAccountPayload(in *BuildInput) types.JSONB {
	payload := basePayload(in)
	payload["channel_properties"] = types.JSONB{
		"display_name": in.CustomerName,
		"description":  in.Description,
		"expires_at":   in.ExpiresAt.Format(time.RFC3339),
	}
	return payload
}

func buildOverTheCounterPayload(in *BuildInput) types.JSONB {
	payload := basePayload(in)
	payload["channel_properties"] = types.JSONB{
		"payer_name": in.CustomerName,
		"expires_at": in.ExpiresAt.Format(time.RFC3339),
	}
	return payload
}
