package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("PAYHERE_SANDBOX", "")
	t.Setenv("TOKEN_TTL_HOURS", "")
	t.Setenv("CORS_ALLOWED_ORIGINS", "")
	t.Setenv("FRONTEND_URL", "https://shop.example.lk/")

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.True(t, cfg.PayHere.Sandbox)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.Equal(t, "https://shop.example.lk", cfg.PayHere.FrontendURL)
	assert.Equal(t, "https://sandbox.payhere.lk/pay/checkout", cfg.PayHere.CheckoutURL())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PAYHERE_SANDBOX", "false")
	t.Setenv("TOKEN_TTL_HOURS", "2")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.lk, https://b.lk,,")

	cfg := Load()

	assert.False(t, cfg.PayHere.Sandbox)
	assert.Equal(t, 2*time.Hour, cfg.TokenTTL)
	assert.Equal(t, []string{"https://a.lk", "https://b.lk"}, cfg.AllowedOrigins)
	assert.Equal(t, cfg.PayHere.ProductionURL, cfg.PayHere.CheckoutURL())
}

func TestValidate(t *testing.T) {
	err := Config{}.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
	assert.Contains(t, err.Error(), "PAYHERE_MERCHANT_SECRET")

	ok := Config{JWTSecret: "s", PayHere: PayHere{MerchantID: "M1", MerchantSecret: "S1"}}
	assert.NoError(t, ok.Validate())
}

func TestDSN(t *testing.T) {
	cfg := Config{DBHost: "db", DBUser: "u", DBPassword: "p", DBName: "shop", DBPort: "5433"}
	assert.Equal(t, "host=db user=u password=p dbname=shop port=5433 sslmode=disable", cfg.DSN())

	cfg.DatabaseURL = "postgres://x"
	assert.Equal(t, "postgres://x", cfg.DSN())
}
