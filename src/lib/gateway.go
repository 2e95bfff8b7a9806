package lib

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"kumpul/src/config"
	"kumpul/src/payments"
	"kumpul/src/types"
	"log"
	"net/http"
	"os"
	"time"
)

// GatewayError wraps a non-2xx response from the payment gateway, carrying
// the gateway's own error message back to the caller.
type GatewayError struct {
	StatusCode int    `json:"status_code"`
	ErrorCode  string `json:"error_code"`
	Message    string `json:"message"`
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("gateway error [%s]: %s", e.ErrorCode, e.Message)
}

// GatewayResponse is the normalized body of a successful payment request.
type GatewayResponse struct {
	PaymentRequestID  string                   `json:"payment_request_id"`
	ReferenceID       string                   `json:"reference_id"`
	Status            string                   `json:"status"`
	Actions           []payments.GatewayAction `json:"actions"`
	ChannelProperties map[string]any           `json:"channel_properties"`
}

// WebhookPayload is the envelope of an inbound gateway callback.
type WebhookPayload struct {
	Event      string      `json:"event"`
	BusinessID string      `json:"business_id"`
	Created    string      `json:"created"`
	Data       WebhookData `json:"data"`
}

type WebhookData struct {
	PaymentID     string  `json:"payment_id"`
	Status        string  `json:"status"`
	ReferenceID   string  `json:"reference_id"`
	RequestAmount float64 `json:"request_amount"`
	ChannelCode   string  `json:"channel_code,omitempty"`
	FailureCode   string  `json:"failure_code,omitempty"`
}

type GatewayClient struct {
	baseURL       string
	apiKey        string
	webhookSecret string
	http          *http.Client
}

var gatewayClient *GatewayClient

func GetGatewayClient() *GatewayClient {
	if gatewayClient != nil {
		return gatewayClient
	}
	gatewayClient = &GatewayClient{
		baseURL:       os.Getenv("GATEWAY_BASE_URL"),
		apiKey:        os.Getenv("GATEWAY_SECRET_KEY"),
		webhookSecret: os.Getenv("GATEWAY_WEBHOOK_SECRET"),
		http:          &http.Client{Timeout: 30 * time.Second},
	}
	return gatewayClient
}

// NewGatewayClient Replace gateway instance with custom client implementation
func NewGatewayClient(baseURL, apiKey, webhookSecret string, httpClient *http.Client) *GatewayClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	gatewayClient = &GatewayClient{
		baseURL:       baseURL,
		apiKey:        apiKey,
		webhookSecret: webhookSecret,
		http:          httpClient,
	}
	return gatewayClient
}

// basicAuth builds the Authorization header value from the secret key. The
// key itself must never reach the logs.
func (c *GatewayClient) basicAuth() string {
	token := base64.StdEncoding.EncodeToString([]byte(c.apiKey + ":"))
	return fmt.Sprintf("Basic %s", token)
}

// CreatePaymentRequest posts the built channel payload to the gateway. A
// non-2xx response becomes a *GatewayError; the caller must not persist any
// transaction state when an error is returned.
func (c *GatewayClient) CreatePaymentRequest(ctx context.Context, payload types.JSONB) (*GatewayResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	url := fmt.Sprintf("%s/payment_requests", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", c.basicAuth())
	req.Header.Set("api-version", config.GATEWAY_API_VERSION)

	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gateway request failed: %w", err)
	}
	defer res.Body.Close()
	resBody, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		gerr := &GatewayError{StatusCode: res.StatusCode}
		if err := json.Unmarshal(resBody, gerr); err != nil {
			gerr.Message = string(resBody)
		}
		log.Printf("[Gateway] payment request rejected: status=%d code=%s\n", res.StatusCode, gerr.ErrorCode)
		return nil, gerr
	}
	var parsed GatewayResponse
	if err := json.Unmarshal(resBody, &parsed); err != nil {
		return nil, fmt.Errorf("error parsing gateway response: %w", err)
	}
	return &parsed, nil
}

// VerifyWebhookSignature recomputes the HMAC-SHA256 of the raw callback body
// and compares it, constant time, with the provided signature header.
func (c *GatewayClient) VerifyWebhookSignature(body []byte, signature string) bool {
	mac := hmac.New(sha256.New, []byte(c.webhookSecret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
