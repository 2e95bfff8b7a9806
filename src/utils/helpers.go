package utils

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"kumpul/src/config"
	"kumpul/src/db"
	"kumpul/src/lib"
	"kumpul/src/lib/mailer"
	"kumpul/src/models"
	"kumpul/src/payments"
	"kumpul/src/realtime"
	"kumpul/src/types"
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const countdownInterval = 30 * time.Second

// resolvedItem is the purchasable an incoming payment request points at.
type resolvedItem struct {
	price       decimal.Decimal
	currency    string
	description string
	event       *models.Event
	plan        *models.SubscriptionPlan
}

func resolveItem(tx *gorm.DB, body *types.CreatePaymentRequestBody, country string) (*resolvedItem, error) {
	switch body.Type {
	case types.TRANSACTION_TYPE_EVENT:
		if body.EventID == nil {
			return nil, errors.New("event_id is required for event payments")
		}
		var event models.Event
		if err := tx.Where(&models.Event{ID: *body.EventID}).First(&event).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("event [%d] not found", *body.EventID)
			}
			return nil, err
		}
		if event.Status != types.EVENT_PUBLISHED {
			return nil, fmt.Errorf("event [%s] is not open for registration", event.Title)
		}
		return &resolvedItem{
			price:       event.Price,
			currency:    event.Currency,
			description: event.Title,
			event:       &event,
		}, nil
	case types.TRANSACTION_TYPE_SUBSCRIPTION:
		if body.PlanID == nil {
			return nil, errors.New("plan_id is required for subscription payments")
		}
		var plan models.SubscriptionPlan
		if err := tx.Where(&models.SubscriptionPlan{ID: *body.PlanID}).First(&plan).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("subscription plan [%d] not found", *body.PlanID)
			}
			return nil, err
		}
		if !plan.IsActive {
			return nil, fmt.Errorf("subscription plan [%s] is not active", plan.Name)
		}
		var price models.PlanPrice
		if err := tx.Where(&models.PlanPrice{PlanID: plan.ID, CountryCode: country}).First(&price).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("plan [%s] has no price configured for country [%s]", plan.Name, country)
			}
			return nil, err
		}
		return &resolvedItem{
			price:       price.Price,
			currency:    price.Currency,
			description: fmt.Sprintf("%s subscription", plan.Name),
			plan:        &plan,
		}, nil
	}
	return nil, fmt.Errorf("unknown transaction type [%s]", body.Type)
}

// ValidatePaymentMethod enforces the channel preconditions: the method must
// be active and its country must match the purchasing user's resolved
// country. A mismatch is a hard rejection, never a currency conversion.
func ValidatePaymentMethod(method *models.PaymentMethod, country string) error {
	if !method.IsActive {
		return fmt.Errorf("payment method [%s] is not available", method.Name)
	}
	if method.CountryCode != country {
		return fmt.Errorf("payment method [%s] is not available in country [%s]", method.Name, country)
	}
	return nil
}

// CreatePayment runs the whole orchestration: resolve and validate the item
// and channel, compute fees, call the gateway, then persist the PENDING
// transaction with its actions in one write. Nothing is persisted when the
// gateway call fails.
func CreatePayment(ctx *gin.Context, body *types.CreatePaymentRequestBody) (*types.CreatePaymentResponse, error) {
	userId := ctx.GetUint("id")
	country := ctx.GetString("country")

	gdb := db.GetDb()
	var user models.User
	if err := gdb.Where(&models.User{ID: userId}).First(&user).Error; err != nil {
		return nil, errors.New("could not retrieve user information")
	}

	item, err := resolveItem(gdb, body, country)
	if err != nil {
		return nil, err
	}
	if !item.price.IsPositive() {
		return nil, fmt.Errorf("item price must be greater than zero, got %s", item.price.String())
	}

	var method models.PaymentMethod
	if err := gdb.Where(&models.PaymentMethod{ID: body.PaymentMethodID}).First(&method).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("payment method [%d] not found", body.PaymentMethodID)
		}
		return nil, err
	}
	if err := ValidatePaymentMethod(&method, country); err != nil {
		return nil, err
	}

	breakdown, err := payments.CalculateFee(item.price, &method)
	if err != nil {
		return nil, err
	}

	referenceId := payments.NewReferenceID(config.ReferencePrefix(), userId)
	expiresAt, err := payments.ExpiryFor(method.Type, method.CountryCode, time.Now(), 0)
	if err != nil {
		return nil, err
	}

	description := body.Description
	if description == "" {
		description = item.description
	}
	payload, err := payments.BuildPayload(method.Type, &payments.BuildInput{
		ReferenceID:   referenceId,
		Amount:        breakdown.PayableAmount(),
		Currency:      method.Currency,
		ChannelCode:   method.ChannelCode,
		CustomerName:  user.Name,
		CustomerEmail: user.Email,
		Description:   description,
		ExpiresAt:     expiresAt,
		AppHost:       os.Getenv("APP_HOST"),
	})
	if err != nil {
		return nil, err
	}

	gw := lib.GetGatewayClient()
	res, err := gw.CreatePaymentRequest(ctx.Request.Context(), payload)
	if err != nil {
		log.Printf("[CreatePayment] gateway call failed for reference [%s]: %s\n", referenceId, err.Error())
		return nil, err
	}
	fields := payments.ParseActions(res.Actions)

	txnId := uuid.New()
	txn := &models.Transaction{
		ID:              txnId,
		ExternalID:      referenceId,
		UserID:          userId,
		Type:            body.Type,
		Status:          types.TRANSACTION_PENDING,
		Currency:        method.Currency,
		Amount:          breakdown.Amount,
		TotalFee:        breakdown.TotalFee,
		FinalAmount:     breakdown.FinalAmount,
		PaymentMethodID: method.ID,
		PaymentID:       &res.PaymentRequestID,
		ExpiresAt:       &expiresAt,
	}
	if item.event != nil {
		txn.EventID = &item.event.ID
	}
	for _, action := range res.Actions {
		txn.Actions = append(txn.Actions, models.TransactionAction{
			Type:       action.Type,
			Descriptor: action.Descriptor,
			Value:      action.Value,
		})
	}

	err = gdb.Transaction(func(tx *gorm.DB) error {
		if item.plan != nil {
			sub, err := findOrCreateSubscription(tx, userId, item.plan.ID, txnId)
			if err != nil {
				return err
			}
			txn.SubscriptionID = &sub.ID
		}
		if err := tx.Create(txn).Error; err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		log.Printf("[CreatePayment] error persisting transaction [%s]: %s\n", referenceId, err.Error())
		return nil, err
	}

	if item.event != nil {
		go func() {
			if err := mailer.SendPaymentPendingEmail(&user, EventEmailPayloadFrom(item.event), txn); err != nil {
				log.Printf("[CreatePayment] could not send pending email for [%s]: %s\n", referenceId, err.Error())
			}
		}()
	}
	realtime.GetHub().StartCountdown(txnId.String(), expiresAt, countdownInterval)

	sExpiresAt := expiresAt.Format(time.RFC3339)
	return &types.CreatePaymentResponse{
		TransactionID:        txnId.String(),
		ExternalID:           referenceId,
		Status:               string(types.TRANSACTION_PENDING),
		Amount:               breakdown.Amount.String(),
		TotalFee:             breakdown.TotalFee.String(),
		FinalAmount:          breakdown.FinalAmount.String(),
		Currency:             method.Currency,
		ExpiresAt:            &sExpiresAt,
		PaymentURL:           fields.PaymentURL,
		PaymentCode:          fields.PaymentCode,
		QRString:             fields.QRString,
		VirtualAccountNumber: fields.VirtualAccountNumber,
	}, nil
}

// findOrCreateSubscription is the idempotent create-if-absent: one PENDING
// subscription per transaction id.
func findOrCreateSubscription(tx *gorm.DB, userId uint, planId uint, txnId uuid.UUID) (*models.UserSubscription, error) {
	var sub models.UserSubscription
	err := tx.
		Model(&models.UserSubscription{}).
		Where("metadata ->> 'transaction_id' = ?", txnId.String()).
		First(&sub).
		Error
	if err == nil {
		return &sub, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	sub = models.UserSubscription{
		UserID: userId,
		PlanID: planId,
		Status: types.SUBSCRIPTION_PENDING,
		Metadata: types.Metadata{
			"transaction_id": txnId.String(),
		},
	}
	if err := tx.Create(&sub).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}

// ListPaymentMethods returns the active channels for the user's country,
// cached for a short while.
func ListPaymentMethods(country string) ([]models.PaymentMethod, error) {
	cacheKey := fmt.Sprintf("payment_methods:%s", country)
	rd := lib.GetRedisClient()
	if rd != nil {
		if cached, err := rd.Get(context.Background(), cacheKey).Result(); err == nil && cached != "" {
			var methods []models.PaymentMethod
			if err := json.Unmarshal([]byte(cached), &methods); err == nil {
				return methods, nil
			}
		}
	}
	var methods []models.PaymentMethod
	gdb := db.GetDb()
	if err := gdb.
		Where(&models.PaymentMethod{CountryCode: country, IsActive: true}).
		Order("name asc").
		Find(&methods).
		Error; err != nil {
		return nil, err
	}
	if rd != nil {
		if b, err := json.Marshal(methods); err == nil {
			if err := rd.SetEx(context.Background(), cacheKey, string(b), 5*time.Minute).Err(); err != nil {
				log.Printf("Error caching value [%s]: %s\n", cacheKey, err.Error())
			}
		}
	}
	return methods, nil
}

// PreviewFee runs the fee calculator without persisting anything.
func PreviewFee(amount string, paymentMethodId uint, country string) (*payments.FeeBreakdown, error) {
	value, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount [%s]", amount)
	}
	var method models.PaymentMethod
	gdb := db.GetDb()
	if err := gdb.Where(&models.PaymentMethod{ID: paymentMethodId}).First(&method).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("payment method [%d] not found", paymentMethodId)
		}
		return nil, err
	}
	if err := ValidatePaymentMethod(&method, country); err != nil {
		return nil, err
	}
	return payments.CalculateFee(value, &method)
}

// EventEmailPayloadFrom shapes the event details block used by the mailer.
func EventEmailPayloadFrom(event *models.Event) *types.EventEmailPayload {
	eventSlug := event.Slug
	if eventSlug == "" {
		eventSlug = slug.Make(event.Title)
	}
	return &types.EventEmailPayload{
		ID:           event.ID,
		Title:        event.Title,
		Slug:         eventSlug,
		EventDate:    event.EventDate.Format("2006-01-02"),
		StartTime:    event.StartTime,
		EndTime:      event.EndTime,
		Venue:        event.Venue,
		Address:      event.Address,
		City:         event.City,
		MapsURL:      event.MapsURL,
		Requirements: event.Requirements,
	}
}
