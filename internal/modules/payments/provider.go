package payments

import (
	"context"
	"net/http"
	"time"
)

type CreateIntentRequest struct {
	AmountMinor        int64
	Currency           string
	CustomerID         string
	PaymentMethodID    string
	DestinationAccount string // the charity's connected account
	CharityID          int64
	Frequency          string
	ReturnURL          string
}

type CreateIntentResponse struct {
	IntentID     string
	ClientSecret string
	Status       string // processor-reported: succeeded, requires_action, ...
}

type CreateSubscriptionRequest struct {
	CustomerID         string
	PaymentMethodID    string
	DestinationAccount string
	CharityID          int64
}

type CreateSubscriptionResponse struct {
	SubscriptionID string
	IntentID       string // payment intent behind the first invoice
	ClientSecret   string
	Status         string // subscription status: active, incomplete, ...
}

// WebhookEvent is a processor notification after signature verification.
// TransactionRef is the natural key for the transaction row: the payment
// intent id when present, the invoice id otherwise.
type WebhookEvent struct {
	EventID         string
	Type            string
	TransactionRef  string
	SubscriptionRef string
	AmountMinor     int64
	Currency        string
	CharityID       int64 // 0 when metadata was absent
	Frequency       string
	OccurredAt      time.Time // processor-generated timestamp
}

// Provider is the single seam to the payment processor. Binding a payer
// identity (EnsureCustomer + AttachDefaultPaymentMethod) must fully succeed
// before any charge names that identity.
type Provider interface {
	Name() string

	EnsureCustomer(ctx context.Context, email string) (customerID string, err error)
	AttachDefaultPaymentMethod(ctx context.Context, customerID, paymentMethodID string) error

	CreateDonationIntent(ctx context.Context, req CreateIntentRequest) (CreateIntentResponse, error)
	CreateRecurringDonation(ctx context.Context, req CreateSubscriptionRequest) (CreateSubscriptionResponse, error)

	// VerifyAndParseWebhook authenticates the raw body against the signature
	// header before anything is parsed; the signature covers the exact bytes.
	VerifyAndParseWebhook(ctx context.Context, headers http.Header, body []byte) (WebhookEvent, error)
}
