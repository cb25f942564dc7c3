package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/client"
	"github.com/stripe/stripe-go/v74/webhook"

	"github.com/judychuepursuit/change-4-change-back/internal/config"
	"github.com/judychuepursuit/change-4-change-back/internal/shared/apperr"
)

const (
	metaCharityID = "charity_id"
	metaFrequency = "donation_frequency"
)

// StripeProvider implements Provider against the Stripe API. It owns the
// recurring price id and the webhook endpoint secret; nothing outside this
// file talks to the Stripe SDK.
type StripeProvider struct {
	client         *client.API
	endpointSecret string
	priceID        string
	returnURL      string
	logger         *slog.Logger
}

func NewStripeProvider(cfg config.StripeConfig, logger *slog.Logger) *StripeProvider {
	api := &client.API{}
	api.Init(cfg.SecretKey, nil)
	return &StripeProvider{
		client:         api,
		endpointSecret: cfg.EndpointSecret,
		priceID:        cfg.PriceID,
		returnURL:      cfg.ReturnURL,
		logger:         logger,
	}
}

func (p *StripeProvider) Name() string { return "stripe" }

func (p *StripeProvider) EnsureCustomer(ctx context.Context, email string) (string, error) {
	params := &stripe.CustomerParams{Email: stripe.String(email)}
	params.Context = ctx

	cust, err := p.client.Customers.New(params)
	if err != nil {
		return "", wrapStripeErr(err)
	}
	return cust.ID, nil
}

func (p *StripeProvider) AttachDefaultPaymentMethod(ctx context.Context, customerID, paymentMethodID string) error {
	attach := &stripe.PaymentMethodAttachParams{Customer: stripe.String(customerID)}
	attach.Context = ctx
	if _, err := p.client.PaymentMethods.Attach(paymentMethodID, attach); err != nil {
		return wrapStripeErr(err)
	}

	update := &stripe.CustomerParams{
		InvoiceSettings: &stripe.CustomerInvoiceSettingsParams{
			DefaultPaymentMethod: stripe.String(paymentMethodID),
		},
	}
	update.Context = ctx
	if _, err := p.client.Customers.Update(customerID, update); err != nil {
		return wrapStripeErr(err)
	}
	return nil
}

func (p *StripeProvider) CreateDonationIntent(ctx context.Context, req CreateIntentRequest) (CreateIntentResponse, error) {
	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(req.AmountMinor),
		Currency:           stripe.String(req.Currency),
		Customer:           stripe.String(req.CustomerID),
		PaymentMethod:      stripe.String(req.PaymentMethodID),
		ConfirmationMethod: stripe.String(string(stripe.PaymentIntentConfirmationMethodManual)),
		Confirm:            stripe.Bool(true),
		ReturnURL:          stripe.String(p.returnURL),
		TransferData: &stripe.PaymentIntentTransferDataParams{
			Destination: stripe.String(req.DestinationAccount),
		},
	}
	params.Context = ctx
	params.AddMetadata(metaCharityID, strconv.FormatInt(req.CharityID, 10))
	params.AddMetadata(metaFrequency, req.Frequency)

	pi, err := p.client.PaymentIntents.New(params)
	if err != nil {
		return CreateIntentResponse{}, wrapStripeErr(err)
	}
	return CreateIntentResponse{
		IntentID:     pi.ID,
		ClientSecret: pi.ClientSecret,
		Status:       string(pi.Status),
	}, nil
}

func (p *StripeProvider) CreateRecurringDonation(ctx context.Context, req CreateSubscriptionRequest) (CreateSubscriptionResponse, error) {
	params := &stripe.SubscriptionParams{
		Customer: stripe.String(req.CustomerID),
		Items: []*stripe.SubscriptionItemsParams{
			{Price: stripe.String(p.priceID)},
		},
		DefaultPaymentMethod: stripe.String(req.PaymentMethodID),
		TransferData: &stripe.SubscriptionTransferDataParams{
			Destination: stripe.String(req.DestinationAccount),
		},
	}
	params.Context = ctx
	params.AddMetadata(metaCharityID, strconv.FormatInt(req.CharityID, 10))
	params.AddMetadata(metaFrequency, "monthly")
	// the client confirms the first invoice's payment intent browser-side
	params.AddExpand("latest_invoice.payment_intent")

	sub, err := p.client.Subscriptions.New(params)
	if err != nil {
		return CreateSubscriptionResponse{}, wrapStripeErr(err)
	}

	resp := CreateSubscriptionResponse{
		SubscriptionID: sub.ID,
		Status:         string(sub.Status),
	}
	if sub.LatestInvoice != nil && sub.LatestInvoice.PaymentIntent != nil {
		resp.IntentID = sub.LatestInvoice.PaymentIntent.ID
		resp.ClientSecret = sub.LatestInvoice.PaymentIntent.ClientSecret
		if resp.Status != string(stripe.SubscriptionStatusActive) {
			// surface the underlying intent status when the sub is not active yet
			resp.Status = string(sub.LatestInvoice.PaymentIntent.Status)
		}
	}
	return resp, nil
}

func (p *StripeProvider) VerifyAndParseWebhook(ctx context.Context, headers http.Header, body []byte) (WebhookEvent, error) {
	event, err := webhook.ConstructEvent(body, headers.Get("Stripe-Signature"), p.endpointSecret)
	if err != nil {
		return WebhookEvent{}, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	ev := WebhookEvent{
		EventID:    event.ID,
		Type:       string(event.Type),
		OccurredAt: time.Unix(event.Created, 0),
	}

	switch event.Type {
	case "payment_intent.succeeded", "payment_intent.payment_failed":
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			p.logger.Warn("stripe event payload not a payment intent", "event_id", event.ID, "err", err)
			return ev, nil
		}
		ev.TransactionRef = pi.ID
		ev.AmountMinor = pi.Amount
		ev.Currency = string(pi.Currency)
		ev.CharityID = parseCharityID(pi.Metadata)
		ev.Frequency = pi.Metadata[metaFrequency]
		if pi.Created > 0 {
			ev.OccurredAt = time.Unix(pi.Created, 0)
		}

	case "invoice.payment_succeeded":
		var inv stripe.Invoice
		if err := json.Unmarshal(event.Data.Raw, &inv); err != nil {
			p.logger.Warn("stripe event payload not an invoice", "event_id", event.ID, "err", err)
			return ev, nil
		}
		ev.TransactionRef = inv.ID
		if inv.PaymentIntent != nil && inv.PaymentIntent.ID != "" {
			ev.TransactionRef = inv.PaymentIntent.ID
		}
		ev.AmountMinor = inv.AmountPaid
		ev.Currency = string(inv.Currency)
		ev.Frequency = "monthly"
		if inv.Created > 0 {
			ev.OccurredAt = time.Unix(inv.Created, 0)
		}
		if inv.Subscription != nil {
			ev.SubscriptionRef = inv.Subscription.ID
			ev.CharityID = p.charityFromSubscription(ctx, inv.Subscription)
		}
	}

	return ev, nil
}

// charityFromSubscription resolves the charity recorded on the billing
// identity's metadata. The invoice payload only carries the subscription id,
// so a lookup is needed unless the metadata came expanded.
func (p *StripeProvider) charityFromSubscription(ctx context.Context, sub *stripe.Subscription) int64 {
	if id := parseCharityID(sub.Metadata); id > 0 {
		return id
	}

	params := &stripe.SubscriptionParams{}
	params.Context = ctx
	full, err := p.client.Subscriptions.Get(sub.ID, params)
	if err != nil {
		p.logger.Warn("failed to resolve subscription metadata", "subscription", sub.ID, "err", err)
		return 0
	}
	return parseCharityID(full.Metadata)
}

func parseCharityID(metadata map[string]string) int64 {
	raw, ok := metadata[metaCharityID]
	if !ok {
		return 0
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0
	}
	return id
}

// wrapStripeErr keeps card declines distinguishable from transport faults
// without ever exposing Stripe's own message to the caller.
func wrapStripeErr(err error) error {
	var se *stripe.Error
	if errors.As(err, &se) && se.Type == stripe.ErrorTypeCard {
		return apperr.DeclinedErr("The payment was declined.")
	}
	return apperr.Wrap(err)
}
