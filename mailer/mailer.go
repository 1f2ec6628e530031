// Package mailer sends the payment receipt once an order is paid.
package mailer

import (
	"context"
	"fmt"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"

	"github.com/boostbench/ecommerce-api/config"
	"github.com/boostbench/ecommerce-api/models"
)

type Mailer interface {
	SendPaymentReceipt(ctx context.Context, order models.Order) error
}

// New returns a SendGrid mailer, or Noop when no API key is configured.
func New(cfg config.Mail) Mailer {
	if cfg.SendGridAPIKey == "" {
		zap.L().Info("SENDGRID_API_KEY not set, payment receipts disabled")
		return Noop{}
	}
	return newSendGrid(cfg, "")
}

type Noop struct{}

func (Noop) SendPaymentReceipt(context.Context, models.Order) error { return nil }

type SendGrid struct {
	client *sendgrid.Client
	from   *mail.Email
}

// newSendGrid targets host, or the public SendGrid API when host is empty.
func newSendGrid(cfg config.Mail, host string) *SendGrid {
	req := sendgrid.GetRequest(cfg.SendGridAPIKey, "/v3/mail/send", host)
	req.Method = "POST"
	return &SendGrid{
		client: &sendgrid.Client{Request: req},
		from:   mail.NewEmail(cfg.FromName, cfg.FromAddress),
	}
}

func (s *SendGrid) SendPaymentReceipt(ctx context.Context, order models.Order) error {
	to := order.Customer.Email
	if to == "" {
		return nil
	}

	subject := fmt.Sprintf("Payment received for order %s", order.OrderRef)
	body := ReceiptBody(order)
	name := strings.TrimSpace(order.Customer.FirstName + " " + order.Customer.LastName)
	message := mail.NewSingleEmail(s.from, subject, mail.NewEmail(name, to), body, "<pre>"+body+"</pre>")

	resp, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("sendgrid send error: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid send failed: status=%d, body=%s", resp.StatusCode, resp.Body)
	}

	zap.L().Info("payment receipt sent",
		zap.Uint("order_id", order.ID),
		zap.Int("status", resp.StatusCode),
	)
	return nil
}

// ReceiptBody renders the plain-text receipt.
func ReceiptBody(order models.Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Thank you for your order %s.\n\n", order.OrderRef)
	for _, item := range order.Items {
		fmt.Fprintf(&b, "%d x %s @ %s = %s\n",
			item.Quantity, item.ProductName, item.Price.StringFixed(2), item.LineTotal().StringFixed(2))
	}
	fmt.Fprintf(&b, "\nTotal: %s LKR\n", order.TotalAmount.StringFixed(2))
	if order.PaymentID != "" {
		fmt.Fprintf(&b, "Payment ID: %s\n", order.PaymentID)
	}
	return b.String()
}
