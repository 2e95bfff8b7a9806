package utils

import (
	"errors"
	"kumpul/src/db"
	"kumpul/src/lib"
	"kumpul/src/lib/mailer"
	"kumpul/src/models"
	"kumpul/src/realtime"
	"kumpul/src/types"
	"log"
	"time"

	"gorm.io/gorm"
)

// Human-readable close reasons, recorded on the cancelled subscription and
// repeated in the notification email.
const (
	reasonPaymentFailed  = "Payment failed"
	reasonPaymentExpired = "Payment expired"
)

// TransitionFor maps a gateway webhook event to the target transaction
// status. Unknown events return ok=false and must be ignored, never treated
// as failures.
func TransitionFor(event string) (types.TransactionStatus, bool) {
	switch event {
	case "payment.capture", "payment.authorization":
		return types.TRANSACTION_PAID, true
	case "payment.failure":
		return types.TRANSACTION_FAILED, true
	case "payment.expired":
		return types.TRANSACTION_EXPIRED, true
	}
	return "", false
}

// ReconcileWebhook applies a verified gateway callback to the matching
// transaction. The status flip and its business effects run in one database
// transaction guarded by a conditional update, so a replayed or out-of-order
// callback becomes a no-op instead of a double booking.
func ReconcileWebhook(payload *lib.WebhookPayload) error {
	target, ok := TransitionFor(payload.Event)
	if !ok {
		log.Printf("[ReconcileWebhook] ignoring unknown event [%s] for reference [%s]\n", payload.Event, payload.Data.ReferenceID)
		return nil
	}

	gdb := db.GetDb()
	var txn models.Transaction
	if err := gdb.
		Preload("Event").
		Preload("Subscription").
		Preload("User").
		Where(&models.Transaction{ExternalID: payload.Data.ReferenceID}).
		First(&txn).
		Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("[ReconcileWebhook] no transaction for reference [%s], dropping event [%s]\n", payload.Data.ReferenceID, payload.Event)
			return nil
		}
		return err
	}
	if txn.Status.IsTerminal() {
		log.Printf("[ReconcileWebhook] transaction [%s] already [%s], skipping event [%s]\n", txn.ID, txn.Status, payload.Event)
		return nil
	}

	now := time.Now()
	applied := false
	err := gdb.Transaction(func(tx *gorm.DB) error {
		updates := map[string]any{"status": target}
		if target == types.TRANSACTION_PAID {
			updates["paid_at"] = now
		}
		if payload.Data.PaymentID != "" {
			updates["payment_id"] = payload.Data.PaymentID
		}
		result := tx.
			Model(&models.Transaction{}).
			Where("id = ? AND status = ?", txn.ID, types.TRANSACTION_PENDING).
			Updates(updates)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			log.Printf("[ReconcileWebhook] transaction [%s] lost the race for event [%s], skipping\n", txn.ID, payload.Event)
			return nil
		}
		applied = true

		switch target {
		case types.TRANSACTION_PAID:
			return applyPaid(tx, &txn, now)
		case types.TRANSACTION_FAILED:
			return applyClosed(tx, &txn, reasonPaymentFailed)
		case types.TRANSACTION_EXPIRED:
			return applyClosed(tx, &txn, reasonPaymentExpired)
		}
		return nil
	})
	if err != nil {
		log.Printf("[ReconcileWebhook] error applying event [%s] to transaction [%s]: %s\n", payload.Event, txn.ID, err.Error())
		return err
	}
	if !applied {
		return nil
	}

	txn.Status = target
	go notifyStatusChange(&txn, target)
	broadcastStatusChange(&txn, target, payload.Data.FailureCode)
	return nil
}

func applyPaid(tx *gorm.DB, txn *models.Transaction, now time.Time) error {
	if txn.EventID != nil {
		if err := tx.
			Model(&models.Event{}).
			Where(&models.Event{ID: *txn.EventID}).
			Update("participants", gorm.Expr("participants + ?", 1)).
			Error; err != nil {
			return err
		}
	}
	if txn.SubscriptionID != nil {
		var sub models.UserSubscription
		if err := tx.
			Preload("Plan").
			Where(&models.UserSubscription{ID: *txn.SubscriptionID}).
			First(&sub).
			Error; err != nil {
			return err
		}
		endDate := now.AddDate(0, sub.Plan.DurationInMonths, 0)
		if err := tx.
			Model(&sub).
			Updates(map[string]any{
				"status":     types.SUBSCRIPTION_ACTIVE,
				"start_date": now,
				"end_date":   endDate,
			}).
			Error; err != nil {
			return err
		}
	}
	return nil
}

func applyClosed(tx *gorm.DB, txn *models.Transaction, reason string) error {
	if txn.SubscriptionID == nil {
		return nil
	}
	return tx.
		Model(&models.UserSubscription{}).
		Where("id = ? AND status = ?", *txn.SubscriptionID, types.SUBSCRIPTION_PENDING).
		Updates(map[string]any{
			"status":   types.SUBSCRIPTION_CANCELLED,
			"metadata": gorm.Expr("COALESCE(metadata, '{}'::jsonb) || ?", types.Metadata{"reason": reason}),
		}).
		Error
}

// notifyStatusChange sends the status email. It runs after the database
// transaction committed, so a mail failure never rolls back the settlement.
func notifyStatusChange(txn *models.Transaction, target types.TransactionStatus) {
	var err error
	switch target {
	case types.TRANSACTION_PAID:
		var event *types.EventEmailPayload
		if txn.Event != nil {
			event = EventEmailPayloadFrom(txn.Event)
		}
		err = mailer.SendPaymentPaidEmail(&txn.User, event, txn)
	case types.TRANSACTION_FAILED:
		err = mailer.SendPaymentClosedEmail(&txn.User, txn, reasonPaymentFailed)
	case types.TRANSACTION_EXPIRED:
		err = mailer.SendPaymentClosedEmail(&txn.User, txn, reasonPaymentExpired)
	}
	if err != nil {
		log.Printf("[ReconcileWebhook] could not send [%s] email for transaction [%s]: %s\n", target, txn.ID, err.Error())
	}
}

func broadcastStatusChange(txn *models.Transaction, target types.TransactionStatus, failureCode string) {
	hub := realtime.GetHub()
	txnId := txn.ID.String()
	hub.EmitStatusUpdate(txnId, string(target))
	switch target {
	case types.TRANSACTION_PAID:
		hub.EmitSuccess(txnId, txn.UserID, types.JSONB{
			"transaction_id": txnId,
			"external_id":    txn.ExternalID,
			"status":         string(target),
			"amount":         txn.FinalAmount.String(),
			"currency":       txn.Currency,
		})
	case types.TRANSACTION_FAILED:
		hub.EmitFailed(txnId, txn.UserID, types.JSONB{
			"transaction_id": txnId,
			"external_id":    txn.ExternalID,
			"status":         string(target),
			"failure_code":   failureCode,
		})
	case types.TRANSACTION_EXPIRED:
		hub.EmitExpired(txnId, txn.UserID)
	}
	hub.StopCountdown(txnId)
}
