package payhereControllers

import (
	"crypto/md5"
	"crypto/subtle"
	"encoding/hex"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/boostbench/ecommerce-api/apperr"
	"github.com/boostbench/ecommerce-api/config"
	"github.com/boostbench/ecommerce-api/models"
	"github.com/boostbench/ecommerce-api/settlement"
)

const (
	Currency = "LKR"

	StatusSuccess   = "2"
	StatusPending   = "0"
	StatusCancelled = "-1"
	StatusFailed    = "-2"

	maxItemsLength = 100
)

// Notification is the form PayHere posts to the notify URL. The card fields
// are accepted so the form binds cleanly but are never logged or stored.
type Notification struct {
	MerchantID     string `form:"merchant_id"`
	OrderID        string `form:"order_id"`
	Amount         string `form:"payhere_amount"`
	Currency       string `form:"payhere_currency"`
	StatusCode     string `form:"status_code"`
	MD5Sig         string `form:"md5sig"`
	Custom1        string `form:"custom_1"`
	Custom2        string `form:"custom_2"`
	Method         string `form:"method"`
	StatusMessage  string `form:"status_message"`
	CardHolderName string `form:"card_holder_name"`
	CardNo         string `form:"card_no"`
	CardExpiry     string `form:"card_expiry"`
	PaymentID      string `form:"payment_id"`
}

// Gateway signs checkout requests and verifies notifications with the
// merchant secret.
type Gateway struct {
	cfg          config.PayHere
	hashedSecret string
}

func NewGateway(cfg config.PayHere) *Gateway {
	return &Gateway{cfg: cfg, hashedSecret: md5Upper(cfg.MerchantSecret)}
}

func md5Upper(s string) string {
	sum := md5.Sum([]byte(s))
	return strings.ToUpper(hex.EncodeToString(sum[:]))
}

// FormatAmount renders an amount the way PayHere signs it: two decimals.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// CheckoutHash is UPPER(MD5(merchant_id + order_id + amount + currency + UPPER(MD5(secret)))).
func (g *Gateway) CheckoutHash(orderID string, amount decimal.Decimal) string {
	return md5Upper(g.cfg.MerchantID + orderID + FormatAmount(amount) + Currency + g.hashedSecret)
}

// NotificationHash recomputes md5sig from the fields PayHere signs.
func (g *Gateway) NotificationHash(n Notification) string {
	return md5Upper(n.MerchantID + n.OrderID + n.Amount + n.Currency + n.StatusCode + g.hashedSecret)
}

// Verify fails with SecurityViolation unless md5sig matches exactly.
func (g *Gateway) Verify(n Notification) error {
	expected := g.NotificationHash(n)
	if subtle.ConstantTimeCompare([]byte(expected), []byte(n.MD5Sig)) != 1 {
		return apperr.New(apperr.SecurityViolation, "invalid payment notification hash")
	}
	return nil
}

// TransitionFor maps a PayHere status code onto a payment outcome.
func TransitionFor(n Notification) (settlement.Transition, error) {
	t := settlement.Transition{PaymentID: n.PaymentID, PaymentMethod: n.Method}
	switch n.StatusCode {
	case StatusSuccess:
		t.PaymentStatus = models.PaymentStatusPaid
	case StatusPending:
		t.PaymentStatus = models.PaymentStatusPending
	case StatusCancelled:
		t.PaymentStatus = models.PaymentStatusCancelled
	case StatusFailed:
		t.PaymentStatus = models.PaymentStatusFailed
	default:
		return t, apperr.New(apperr.InvalidState, "unknown payment status: %s", n.StatusCode)
	}
	return t, nil
}

// ItemsDescription joins product names, cut to 97 characters plus "..."
// when longer than 100. Lengths count runes.
func ItemsDescription(items []models.OrderItem) string {
	names := make([]string, 0, len(items))
	for _, item := range items {
		names = append(names, item.ProductName)
	}
	s := []rune(strings.Join(names, ", "))
	if len(s) > maxItemsLength {
		return string(s[:maxItemsLength-3]) + "..."
	}
	return string(s)
}

// StatusMessage is the human readable text for a payment status.
func StatusMessage(status models.PaymentStatus) string {
	switch status {
	case models.PaymentStatusPending:
		return "Payment is pending"
	case models.PaymentStatusPaid:
		return "Payment completed successfully"
	case models.PaymentStatusFailed:
		return "Payment failed"
	case models.PaymentStatusCancelled:
		return "Payment was cancelled"
	case models.PaymentStatusRefunded:
		return "Payment has been refunded"
	default:
		return "Unknown payment status"
	}
}
