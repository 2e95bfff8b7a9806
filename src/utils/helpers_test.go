package utils

import (
	"kumpul/src/db"
	"kumpul/src/lib"
	"kumpul/src/models"
	"kumpul/src/types"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestValidatePaymentMethod(t *testing.T) {
	method := &models.PaymentMethod{Name: "GCash", CountryCode: "PH", IsActive: true}
	assert.NoError(t, ValidatePaymentMethod(method, "PH"))
}

func TestValidatePaymentMethodInactive(t *testing.T) {
	method := &models.PaymentMethod{Name: "GCash", CountryCode: "PH", IsActive: false}
	err := ValidatePaymentMethod(method, "PH")
	assert.ErrorContains(t, err, "not available")
}

func TestValidatePaymentMethodCountryMismatch(t *testing.T) {
	method := &models.PaymentMethod{Name: "GCash", CountryCode: "PH", IsActive: true}
	err := ValidatePaymentMethod(method, "ID")
	assert.ErrorContains(t, err, "not available in country [ID]")
}

func TestEventEmailPayloadSlugFallback(t *testing.T) {
	payload := EventEmailPayloadFrom(&models.Event{ID: 5, Title: "Jakarta Tech Meetup"})
	assert.Equal(t, "jakarta-tech-meetup", payload.Slug)

	payload = EventEmailPayloadFrom(&models.Event{ID: 5, Title: "Jakarta Tech Meetup", Slug: "jtm-2025"})
	assert.Equal(t, "jtm-2025", payload.Slug)
}

func paymentTestContext(t *testing.T) *gin.Context {
	gin.SetMode(gin.TestMode)
	ctx, _ := gin.CreateTestContext(httptest.NewRecorder())
	req, err := http.NewRequest(http.MethodPost, "/api/v1/payments", nil)
	assert.NoError(t, err)
	ctx.Request = req
	ctx.Set("id", uint(1))
	ctx.Set("country", "ID")
	return ctx
}

func expectPaymentLookups(mock sqlmock.Sqlmock, methodCountry string, methodActive bool) {
	mock.ExpectQuery(`SELECT (.+) FROM "users"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "country", "active"}).
			AddRow(1, "Budi Santoso", "budi@example.com", "ID", true))
	mock.ExpectQuery(`SELECT (.+) FROM "events"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "price", "currency", "status"}).
			AddRow(5, "Jakarta Tech Meetup", "150000", "IDR", "published"))
	mock.ExpectQuery(`SELECT (.+) FROM "payment_methods"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "channel_code", "type", "country_code", "currency", "min_amount", "max_amount", "admin_fee_rate", "admin_fee_fixed", "is_active"}).
			AddRow(3, "ShopeePay", "SHOPEEPAY", "EWALLET", methodCountry, "IDR", "1000", "20000000", "0.007", "0", methodActive))
}

func TestCreatePaymentGatewayFailurePersistsNothing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"error_code": "SERVER_ERROR", "message": "try again later"}`))
	}))
	defer srv.Close()
	lib.NewGatewayClient(srv.URL, "sk_test_abc", "whsecret", srv.Client())

	_, mock := db.GetMockDB()
	expectPaymentLookups(mock, "ID", true)

	eventId := uint(5)
	res, err := CreatePayment(paymentTestContext(t), &types.CreatePaymentRequestBody{
		Type:            types.TRANSACTION_TYPE_EVENT,
		EventID:         &eventId,
		PaymentMethodID: 3,
	})
	assert.Nil(t, res)
	var gerr *lib.GatewayError
	assert.ErrorAs(t, err, &gerr)
	// No INSERT was expected on the mock: a gateway failure must leave no
	// transaction behind.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreatePaymentRejectsCountryMismatchBeforeGateway(t *testing.T) {
	gatewayCalled := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gatewayCalled = true
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()
	lib.NewGatewayClient(srv.URL, "sk_test_abc", "whsecret", srv.Client())

	_, mock := db.GetMockDB()
	expectPaymentLookups(mock, "PH", true)

	eventId := uint(5)
	_, err := CreatePayment(paymentTestContext(t), &types.CreatePaymentRequestBody{
		Type:            types.TRANSACTION_TYPE_EVENT,
		EventID:         &eventId,
		PaymentMethodID: 3,
	})
	assert.ErrorContains(t, err, "not available in country [ID]")
	assert.False(t, gatewayCalled)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreatePaymentRejectsOutOfRangeAmountBeforeGateway(t *testing.T) {
	gatewayCalled := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gatewayCalled = true
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()
	lib.NewGatewayClient(srv.URL, "sk_test_abc", "whsecret", srv.Client())

	_, mock := db.GetMockDB()
	mock.ExpectQuery(`SELECT (.+) FROM "users"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "country", "active"}).
			AddRow(1, "Budi Santoso", "budi@example.com", "ID", true))
	mock.ExpectQuery(`SELECT (.+) FROM "events"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "price", "currency", "status"}).
			AddRow(5, "VIP Gala", "50000000", "IDR", "published"))
	mock.ExpectQuery(`SELECT (.+) FROM "payment_methods"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "channel_code", "type", "country_code", "currency", "min_amount", "max_amount", "admin_fee_rate", "admin_fee_fixed", "is_active"}).
			AddRow(3, "ShopeePay", "SHOPEEPAY", "EWALLET", "ID", "IDR", "1000", "20000000", "0.007", "0", true))

	eventId := uint(5)
	_, err := CreatePayment(paymentTestContext(t), &types.CreatePaymentRequestBody{
		Type:            types.TRANSACTION_TYPE_EVENT,
		EventID:         &eventId,
		PaymentMethodID: 3,
	})
	assert.ErrorContains(t, err, "outside the allowed range")
	assert.False(t, gatewayCalled)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPreviewFeeInvalidAmount(t *testing.T) {
	_, err := PreviewFee("abc", 3, "ID")
	assert.ErrorContains(t, err, "invalid amount")
}

func TestResolveItemRejectsMissingIDs(t *testing.T) {
	gdb, _ := db.GetMockDB()
	_, err := resolveItem(gdb, &types.CreatePaymentRequestBody{Type: types.TRANSACTION_TYPE_EVENT}, "ID")
	assert.ErrorContains(t, err, "event_id is required")
	_, err = resolveItem(gdb, &types.CreatePaymentRequestBody{Type: types.TRANSACTION_TYPE_SUBSCRIPTION}, "ID")
	assert.ErrorContains(t, err, "plan_id is required")
}

func TestResolveItemPlanWithoutCountryPrice(t *testing.T) {
	gdb, mock := db.GetMockDB()
	mock.ExpectQuery(`SELECT (.+) FROM "subscription_plans"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "duration_in_months", "is_active"}).
			AddRow(2, "Pro", 12, true))
	mock.ExpectQuery(`SELECT (.+) FROM "plan_prices"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	planId := uint(2)
	_, err := resolveItem(gdb, &types.CreatePaymentRequestBody{
		Type:   types.TRANSACTION_TYPE_SUBSCRIPTION,
		PlanID: &planId,
	}, "VN")
	assert.ErrorContains(t, err, "no price configured for country [VN]")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResolveItemPublishedEventPrice(t *testing.T) {
	gdb, mock := db.GetMockDB()
	mock.ExpectQuery(`SELECT (.+) FROM "events"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "price", "currency", "status"}).
			AddRow(5, "Jakarta Tech Meetup", "150000", "IDR", "published"))

	eventId := uint(5)
	item, err := resolveItem(gdb, &types.CreatePaymentRequestBody{
		Type:    types.TRANSACTION_TYPE_EVENT,
		EventID: &eventId,
	}, "ID")
	assert.NoError(t, err)
	assert.True(t, item.price.Equal(decimal.NewFromInt(150_000)))
	assert.Equal(t, "IDR", item.currency)
	assert.Equal(t, "Jakarta Tech Meetup", item.description)
}
