package payments

import (
	"encoding/json"
	"kumpul/src/types"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/tidwall/gjson"
)

func buildInput() *BuildInput {
	return &BuildInput{
		ReferenceID:   "KMPL-42-1700000000000-a1b2c3",
		Amount:        decimal.NewFromInt(151_050),
		Currency:      "IDR",
		ChannelCode:   "SHOPEEPAY",
		CustomerName:  "Budi Santoso",
		CustomerEmail: "budi@example.com",
		Description:   "Jakarta Tech Meetup",
		ExpiresAt:     time.Date(2025, 3, 1, 17, 15, 0, 0, time.FixedZone("ID", 7*3600)),
		AppHost:       "https://app.example.com",
	}
}

func marshal(t *testing.T, payload types.JSONB) string {
	b, err := json.Marshal(payload)
	assert.NoError(t, err)
	return string(b)
}

func TestBuildPayloadBaseFields(t *testing.T) {
	payload, err := BuildPayload(types.PAYMENT_METHOD_EWALLET, buildInput())
	assert.NoError(t, err)
	body := marshal(t, payload)
	assert.Equal(t, "KMPL-42-1700000000000-a1b2c3", gjson.Get(body, "reference_id").String())
	assert.Equal(t, float64(151_050), gjson.Get(body, "amount").Float())
	assert.Equal(t, "IDR", gjson.Get(body, "currency").String())
	assert.Equal(t, "SHOPEEPAY", gjson.Get(body, "channel_code").String())
	assert.Equal(t, "Budi Santoso", gjson.Get(body, "customer.given_names").String())
	assert.Equal(t, "budi@example.com", gjson.Get(body, "customer.email").String())
}

func TestBuildPayloadEwalletRedirects(t *testing.T) {
	payload, err := BuildPayload(types.PAYMENT_METHOD_EWALLET, buildInput())
	assert.NoError(t, err)
	body := marshal(t, payload)
	props := gjson.Get(body, "channel_properties")
	assert.Equal(t, "https://app.example.com/payment/callback/success", props.Get("success_redirect_url").String())
	assert.Equal(t, "https://app.example.com/payment/callback/pending", props.Get("pending_redirect_url").String())
	assert.Equal(t, "https://app.example.com/payment/callback/failure", props.Get("failure_redirect_url").String())
	assert.Equal(t, "https://app.example.com/payment/callback/cancel", props.Get("cancel_redirect_url").String())
	assert.False(t, props.Get("expires_at").Exists())
}

func TestBuildPayloadQRExpiry(t *testing.T) {
	in := buildInput()
	payload, err := BuildPayload(types.PAYMENT_METHOD_QR_CODE, in)
	assert.NoError(t, err)
	body := marshal(t, payload)
	assert.Equal(t, "2025-03-01T17:15:00+07:00", gjson.Get(body, "channel_properties.expires_at").String())
	assert.False(t, gjson.Get(body, "channel_properties.success_redirect_url").Exists())
}

func TestBuildPayloadVirtualAccount(t *testing.T) {
	payload, err := BuildPayload(types.PAYMENT_METHOD_BANK_TRANSFER, buildInput())
	assert.NoError(t, err)
	body := marshal(t, payload)
	props := gjson.Get(body, "channel_properties")
	assert.Equal(t, "Budi Santoso", props.Get("display_name").String())
	assert.Equal(t, "Jakarta Tech Meetup", props.Get("description").String())
	assert.Equal(t, "2025-03-01T17:15:00+07:00", props.Get("expires_at").String())
}

func TestBuildPayloadOverTheCounter(t *testing.T) {
	payload, err := BuildPayload(types.PAYMENT_METHOD_OVER_THE_COUNTER, buildInput())
	assert.NoError(t, err)
	body := marshal(t, payload)
	props := gjson.Get(body, "channel_properties")
	assert.Equal(t, "Budi Santoso", props.Get("payer_name").String())
	assert.Equal(t, "2025-03-01T17:15:00+07:00", props.Get("expires_at").String())
	assert.False(t, props.Get("display_name").Exists())
}

func TestBuildPayloadUnknownChannel(t *testing.T) {
	_, err := BuildPayload("CARD", buildInput())
	assert.ErrorContains(t, err, "no payload builder configured")
}
