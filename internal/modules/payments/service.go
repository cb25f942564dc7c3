package payments

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/judychuepursuit/change-4-change-back/internal/modules/charities"
	"github.com/judychuepursuit/change-4-change-back/internal/modules/donations"
	"github.com/judychuepursuit/change-4-change-back/internal/modules/receipts"
	"github.com/judychuepursuit/change-4-change-back/internal/shared/apperr"
	"github.com/judychuepursuit/change-4-change-back/internal/shared/money"
)

// ReceiptSender lets tests stand in for the receipt notifier.
type ReceiptSender interface {
	Send(ctx context.Context, r receipts.Receipt) error
}

// Service is the donation intake orchestrator. One call runs the whole
// sequence: resolve charity, bind payer identity, charge or subscribe,
// record the transaction, send the receipt.
type Service struct {
	charities *charities.Repo
	txRepo    *donations.Repo
	provider  Provider
	notifier  ReceiptSender
	logger    *slog.Logger
}

func NewService(ch *charities.Repo, tx *donations.Repo, p Provider, n ReceiptSender, logger *slog.Logger) *Service {
	return &Service{charities: ch, txRepo: tx, provider: p, notifier: n, logger: logger}
}

type DonationInput struct {
	Amount          decimal.Decimal // major units, positive
	Currency        string          // 3-letter code
	CharityID       int64           // canonical reference
	CharityName     string          // compatibility shim when CharityID is 0
	PaymentMethodID string
	Email           string
	FirstName       string
	LastName        string
	Frequency       string // one-time | monthly
}

type DonationResult struct {
	ClientSecret string
	Status       string
	// NotificationFailed reports that funds moved but the receipt email did
	// not go out. Callers must not present this as a payment failure.
	NotificationFailed bool
}

func (s *Service) Donate(ctx context.Context, in DonationInput) (DonationResult, error) {
	if err := validateInput(in); err != nil {
		return DonationResult{}, err
	}

	// Charity must resolve before anything is provisioned processor-side; a
	// donation to an unknown charity never creates a customer.
	charity, err := s.resolveCharity(ctx, in)
	if err != nil {
		return DonationResult{}, err
	}

	customerID, err := s.provider.EnsureCustomer(ctx, in.Email)
	if err != nil {
		return DonationResult{}, err
	}
	if err := s.provider.AttachDefaultPaymentMethod(ctx, customerID, in.PaymentMethodID); err != nil {
		return DonationResult{}, err
	}

	switch in.Frequency {
	case donations.FrequencyOneTime:
		return s.donateOnce(ctx, in, charity, customerID)
	case donations.FrequencyMonthly:
		return s.donateMonthly(ctx, in, charity, customerID)
	default:
		return DonationResult{}, apperr.InvalidErr("Invalid donation frequency.", nil)
	}
}

func (s *Service) donateOnce(ctx context.Context, in DonationInput, charity charities.Charity, customerID string) (DonationResult, error) {
	resp, err := s.provider.CreateDonationIntent(ctx, CreateIntentRequest{
		AmountMinor:        money.ToMinor(in.Amount),
		Currency:           in.Currency,
		CustomerID:         customerID,
		PaymentMethodID:    in.PaymentMethodID,
		DestinationAccount: charity.StripeAccountID,
		CharityID:          charity.ID,
		Frequency:          donations.FrequencyOneTime,
	})
	if err != nil {
		return DonationResult{}, err
	}

	if resp.Status != "succeeded" {
		return DonationResult{}, apperr.DeclinedErr(fmt.Sprintf("Payment was not completed (status: %s).", resp.Status))
	}

	s.record(ctx, charity.ID, in, resp.IntentID, donations.FrequencyOneTime)

	result := DonationResult{ClientSecret: resp.ClientSecret, Status: resp.Status}
	result.NotificationFailed = s.notify(ctx, in, charity.Name, resp.IntentID)
	return result, nil
}

func (s *Service) donateMonthly(ctx context.Context, in DonationInput, charity charities.Charity, customerID string) (DonationResult, error) {
	resp, err := s.provider.CreateRecurringDonation(ctx, CreateSubscriptionRequest{
		CustomerID:         customerID,
		PaymentMethodID:    in.PaymentMethodID,
		DestinationAccount: charity.StripeAccountID,
		CharityID:          charity.ID,
	})
	if err != nil {
		return DonationResult{}, err
	}

	if resp.Status != "active" && resp.Status != "succeeded" {
		return DonationResult{}, apperr.DeclinedErr(fmt.Sprintf("Subscription was not activated (status: %s).", resp.Status))
	}

	// The subscription id is the natural key; the renewal invoices that
	// arrive through the webhook carry their own payment intent ids.
	s.record(ctx, charity.ID, in, resp.SubscriptionID, donations.FrequencyMonthly)

	result := DonationResult{ClientSecret: resp.ClientSecret, Status: resp.Status}
	result.NotificationFailed = s.notify(ctx, in, charity.Name, resp.SubscriptionID)
	return result, nil
}

// record persists the transaction row. The charge already settled, so a
// failure here is logged and absorbed: the webhook reconciler independently
// attempts the same insert and the unique key makes the race safe.
func (s *Service) record(ctx context.Context, charityID int64, in DonationInput, ref, frequency string) {
	created, err := s.txRepo.Record(ctx, donations.Transaction{
		CharityID:           charityID,
		Amount:              in.Amount,
		Currency:            in.Currency,
		DonationFrequency:   frequency,
		StripeTransactionID: ref,
		CreatedAt:           time.Now(),
	})
	if err != nil {
		s.logger.Error("failed to record transaction after settled payment",
			"charity_id", charityID, "ref", ref, "err", err)
		return
	}
	if !created {
		s.logger.Info("transaction already recorded", "ref", ref)
	}
}

func (s *Service) notify(ctx context.Context, in DonationInput, charityName, ref string) (failed bool) {
	err := s.notifier.Send(ctx, receipts.Receipt{
		DonorEmail:     in.Email,
		DonorFirstName: in.FirstName,
		DonorLastName:  in.LastName,
		CharityName:    charityName,
		Amount:         in.Amount,
		Currency:       in.Currency,
		Frequency:      in.Frequency,
		Reference:      ref,
		CreatedAt:      time.Now(),
	})
	if err != nil {
		s.logger.Error("receipt notification failed after successful payment", "ref", ref, "err", err)
		return true
	}
	return false
}

func (s *Service) resolveCharity(ctx context.Context, in DonationInput) (charities.Charity, error) {
	var c charities.Charity
	var err error
	if in.CharityID > 0 {
		c, err = s.charities.GetByID(ctx, in.CharityID)
	} else {
		c, err = s.charities.GetByName(ctx, in.CharityName)
	}
	// On intake the charity reference is client input, so an unknown charity
	// is a bad request rather than a missing resource.
	if ae, ok := apperr.As(err); ok && ae.Kind == apperr.NotFound {
		return charities.Charity{}, apperr.InvalidErr("Invalid charity.", map[string]string{
			"charityId": "Unknown charity.",
		})
	}
	return c, err
}

func validateInput(in DonationInput) error {
	fields := map[string]string{}
	if !in.Amount.IsPositive() {
		fields["amount"] = "Amount must be positive."
	}
	if len(in.Currency) != 3 {
		fields["currency"] = "Currency must be a 3-letter code."
	}
	if in.CharityID <= 0 && in.CharityName == "" {
		fields["charityId"] = "A charity is required."
	}
	if in.PaymentMethodID == "" {
		fields["paymentMethodId"] = "Payment method is required."
	}
	if in.Email == "" {
		fields["email"] = "Email is required."
	}
	if in.FirstName == "" {
		fields["firstName"] = "First name is required."
	}
	if in.LastName == "" {
		fields["lastName"] = "Last name is required."
	}
	if in.Frequency != donations.FrequencyOneTime && in.Frequency != donations.FrequencyMonthly {
		fields["donationFrequency"] = "Invalid donation frequency."
	}
	if len(fields) > 0 {
		return apperr.InvalidErr("Invalid donation request.", fields)
	}
	return nil
}
