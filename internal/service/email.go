package service

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// sendGridNotifier delivers operational emails through SendGrid.
type sendGridNotifier struct {
	apiKey    string
	fromEmail string
	fromName  string
	toEmail   string
}

func NewSendGridNotifier(apiKey, fromEmail, fromName, toEmail string) Notifier {
	return &sendGridNotifier{
		apiKey:    apiKey,
		fromEmail: fromEmail,
		fromName:  fromName,
		toEmail:   toEmail,
	}
}

// NewNopNotifier returns a Notifier that silently discards every
// notification. Used when no SendGrid API key is configured.
func NewNopNotifier() Notifier { return nopNotifier{} }

type nopNotifier struct{}

func (nopNotifier) SendRentDueSummary(ctx context.Context, subject, body string) error { return nil }

func (n *sendGridNotifier) SendRentDueSummary(ctx context.Context, subject, body string) error {
	from := mail.NewEmail(n.fromName, n.fromEmail)
	recipient := mail.NewEmail("", n.toEmail)
	message := mail.NewSingleEmail(from, subject, recipient, body, "")

	client := sendgrid.NewSendClient(n.apiKey)
	response, err := client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid error: status %d, body: %s", response.StatusCode, response.Body)
	}
	return nil
}
