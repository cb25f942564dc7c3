package config

import (
	"fmt"
	"os"
)

type SMTPConfig struct {
	Host          string
	Port          string
	User          string
	Pass          string
	TLSMode       string // "", "tls", "starttls"
	SkipVerifyTLS bool
}

type StripeConfig struct {
	SecretKey      string // STRIPE_SECRET_KEY
	EndpointSecret string // STRIPE_ENDPOINT_SECRET, signs webhook payloads
	PriceID        string // STRIPE_PRICE_ID, the monthly donation price
	ReturnURL      string // where the client lands after confirmation
}

type MailConfig struct {
	Driver   string // "mailtrap", "smtp", "mock"
	FromAddr string
	FromName string
	SMTP     SMTPConfig
}

type Config struct {
	Port   string
	DBDSN  string
	Stripe StripeConfig
	Mail   MailConfig
}

// Load reads configuration from the environment. godotenv is the caller's
// concern; by the time Load runs the env is whatever it is.
func Load() (Config, error) {
	cfg := Config{
		Port:  envOr("PORT", "3001"),
		DBDSN: os.Getenv("DB_DSN"),
		Stripe: StripeConfig{
			SecretKey:      os.Getenv("STRIPE_SECRET_KEY"),
			EndpointSecret: os.Getenv("STRIPE_ENDPOINT_SECRET"),
			PriceID:        os.Getenv("STRIPE_PRICE_ID"),
			ReturnURL:      envOr("STRIPE_RETURN_URL", "http://localhost:3000/payment-success"),
		},
		Mail: MailConfig{
			Driver:   envOr("MAIL_DRIVER", "mailtrap"),
			FromAddr: envOr("EMAIL_FROM", "receipts@change4change.local"),
			FromName: envOr("EMAIL_FROM_NAME", "Change 4 Change"),
			SMTP: SMTPConfig{
				Host:          os.Getenv("SMTP_HOST"),
				Port:          envOr("SMTP_PORT", "587"),
				User:          os.Getenv("SMTP_USER"),
				Pass:          os.Getenv("SMTP_PASS"),
				TLSMode:       os.Getenv("SMTP_TLS_MODE"),
				SkipVerifyTLS: os.Getenv("SMTP_SKIP_VERIFY_TLS") == "true",
			},
		},
	}

	if cfg.DBDSN == "" {
		return Config{}, fmt.Errorf("config: DB_DSN is required")
	}
	if cfg.Stripe.SecretKey == "" {
		return Config{}, fmt.Errorf("config: STRIPE_SECRET_KEY is required")
	}
	if cfg.Stripe.EndpointSecret == "" {
		return Config{}, fmt.Errorf("config: STRIPE_ENDPOINT_SECRET is required")
	}
	if cfg.Stripe.PriceID == "" {
		// monthly donations subscribe against this price
		return Config{}, fmt.Errorf("config: STRIPE_PRICE_ID is required")
	}
	return cfg, nil
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
