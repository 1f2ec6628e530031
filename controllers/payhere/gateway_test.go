package payhereControllers

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boostbench/ecommerce-api/apperr"
	"github.com/boostbench/ecommerce-api/config"
	"github.com/boostbench/ecommerce-api/models"
)

func testGateway() *Gateway {
	return NewGateway(config.PayHere{
		MerchantID:     "M1",
		MerchantSecret: "S1",
		Sandbox:        true,
		SandboxURL:     "https://sandbox.payhere.lk/pay/checkout",
		FrontendURL:    "https://shop.example",
		BackendURL:     "https://api.example",
	})
}

func TestCheckoutHashIsDeterministic(t *testing.T) {
	g := testGateway()

	assert.Equal(t, "67F6274E0AC0BD892F9B1EC09A2253FC", md5Upper("S1"))
	assert.Equal(t, "0F20DB72A06D86BE59E7D26B90B65681", g.CheckoutHash("100", decimal.RequireFromString("250")))
	assert.Equal(t, g.CheckoutHash("100", decimal.RequireFromString("250.00")), g.CheckoutHash("100", decimal.RequireFromString("250")))
}

func signed(g *Gateway, n Notification) Notification {
	n.MD5Sig = g.NotificationHash(n)
	return n
}

func TestNotificationHash(t *testing.T) {
	g := testGateway()
	n := Notification{MerchantID: "M1", OrderID: "100", Amount: "250.00", Currency: "LKR", StatusCode: "2"}

	assert.Equal(t, "F330CAB37A43F38BF55A3AEF2212402A", g.NotificationHash(n))
	assert.NoError(t, g.Verify(signed(g, n)))
}

func TestVerifyRejectsAnySingleFieldChange(t *testing.T) {
	g := testGateway()
	good := signed(g, Notification{MerchantID: "M1", OrderID: "100", Amount: "250.00", Currency: "LKR", StatusCode: "2"})

	tampered := []func(n *Notification){
		func(n *Notification) { n.MerchantID = "M2" },
		func(n *Notification) { n.OrderID = "101" },
		func(n *Notification) { n.Amount = "250.01" },
		func(n *Notification) { n.Currency = "USD" },
		func(n *Notification) { n.StatusCode = "0" },
		func(n *Notification) { n.MD5Sig = strings.ToLower(n.MD5Sig) },
		func(n *Notification) { n.MD5Sig = "" },
	}
	for i, mutate := range tampered {
		n := good
		mutate(&n)
		err := g.Verify(n)
		assert.True(t, apperr.Is(err, apperr.SecurityViolation), "case %d", i)
	}

	other := NewGateway(config.PayHere{MerchantID: "M1", MerchantSecret: "S2"})
	assert.True(t, apperr.Is(other.Verify(good), apperr.SecurityViolation))
}

func TestTransitionFor(t *testing.T) {
	cases := map[string]models.PaymentStatus{
		"2":  models.PaymentStatusPaid,
		"0":  models.PaymentStatusPending,
		"-1": models.PaymentStatusCancelled,
		"-2": models.PaymentStatusFailed,
	}
	for code, want := range cases {
		tr, err := TransitionFor(Notification{StatusCode: code, PaymentID: "p", Method: "VISA"})
		require.NoError(t, err)
		assert.Equal(t, want, tr.PaymentStatus)
		assert.Equal(t, "p", tr.PaymentID)
	}

	_, err := TransitionFor(Notification{StatusCode: "-3"})
	assert.True(t, apperr.Is(err, apperr.InvalidState))
}

func TestItemsDescription(t *testing.T) {
	short := []models.OrderItem{{ProductName: "Lamp"}, {ProductName: "Rug"}}
	assert.Equal(t, "Lamp, Rug", ItemsDescription(short))

	long := []models.OrderItem{
		{ProductName: strings.Repeat("a", 60)},
		{ProductName: strings.Repeat("b", 60)},
	}
	got := ItemsDescription(long)
	assert.Len(t, got, 100)
	assert.True(t, strings.HasSuffix(got, "..."))
	assert.Equal(t, strings.Repeat("a", 60)+", "+strings.Repeat("b", 35)+"...", got)

	exact := []models.OrderItem{{ProductName: strings.Repeat("c", 100)}}
	assert.Equal(t, strings.Repeat("c", 100), ItemsDescription(exact))
}

func TestStatusMessage(t *testing.T) {
	assert.Equal(t, "Payment is pending", StatusMessage(models.PaymentStatusPending))
	assert.Equal(t, "Payment completed successfully", StatusMessage(models.PaymentStatusPaid))
	assert.Equal(t, "Payment failed", StatusMessage(models.PaymentStatusFailed))
	assert.Equal(t, "Payment was cancelled", StatusMessage(models.PaymentStatusCancelled))
	assert.Equal(t, "Payment has been refunded", StatusMessage(models.PaymentStatusRefunded))
}

func configWithSecret(secret string) config.PayHere {
	return config.PayHere{MerchantID: "M1", MerchantSecret: secret, FrontendURL: "https://shop.example", BackendURL: "https://api.example"}
}
