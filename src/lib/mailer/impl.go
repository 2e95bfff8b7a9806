package mailer

import (
	"fmt"
	"kumpul/src/lib"
	"kumpul/src/models"
	"kumpul/src/types"
	"os"
)

func fromAddress() (string, string) {
	from := os.Getenv("SMTP_FROM")
	return from, "noreply"
}

// SendPaymentPendingEmail tells the payer how to finish paying for an event.
// Callers treat a failure as non-fatal.
func SendPaymentPendingEmail(user *models.User, event *types.EventEmailPayload, txn *models.Transaction) error {
	from, fromName := fromAddress()
	body := fmt.Sprintf(`
		<p>Hi %s,</p>
		<p>Your payment for <strong>%s</strong> is waiting to be completed.</p>
		<p>Amount due: %s %s</p>
		<p>Reference: %s</p>
		<p>Venue: %s, %s, %s</p>
	`, user.Name, event.Title, txn.Currency, txn.FinalAmount.String(), txn.ExternalID, event.Venue, event.Address, event.City)
	return lib.SendMail(&lib.SendMailInput{
		From:     from,
		FromName: fromName,
		To:       []string{user.Email},
		Subject:  fmt.Sprintf("Complete your payment for %s", event.Title),
		Body:     body,
		Html:     true,
	})
}

// SendPaymentPaidEmail is the receipt sent after a capture webhook. For event
// purchases it carries the full event details block.
func SendPaymentPaidEmail(user *models.User, event *types.EventEmailPayload, txn *models.Transaction) error {
	from, fromName := fromAddress()
	details := ""
	if event != nil {
		details = fmt.Sprintf(`
		<p><strong>%s</strong></p>
		<p>Date: %s (%s - %s)</p>
		<p>Venue: %s, %s, %s</p>
		<p>Map: %s</p>
		<p>What to bring: %s</p>
	`, event.Title, event.EventDate, event.StartTime, event.EndTime, event.Venue, event.Address, event.City, event.MapsURL, event.Requirements)
	}
	body := fmt.Sprintf(`
		<p>Hi %s,</p>
		<p>We received your payment of %s %s. Reference: %s</p>
		%s
	`, user.Name, txn.Currency, txn.FinalAmount.String(), txn.ExternalID, details)
	return lib.SendMail(&lib.SendMailInput{
		From:     from,
		FromName: fromName,
		To:       []string{user.Email},
		Subject:  "Payment received",
		Body:     body,
		Html:     true,
	})
}

// SendPaymentClosedEmail covers the failed and expired outcomes.
func SendPaymentClosedEmail(user *models.User, txn *models.Transaction, reason string) error {
	from, fromName := fromAddress()
	body := fmt.Sprintf(`
		<p>Hi %s,</p>
		<p>%s</p>
		<p>Reference: %s</p>
		<p>You can start a new payment at any time.</p>
	`, user.Name, reason, txn.ExternalID)
	return lib.SendMail(&lib.SendMailInput{
		From:     from,
		FromName: fromName,
		To:       []string{user.Email},
		Subject:  "About your payment",
		Body:     body,
		Html:     true,
	})
}
