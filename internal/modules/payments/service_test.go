package payments

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/judychuepursuit/change-4-change-back/internal/modules/charities"
	"github.com/judychuepursuit/change-4-change-back/internal/modules/donations"
	"github.com/judychuepursuit/change-4-change-back/internal/modules/receipts"
	"github.com/judychuepursuit/change-4-change-back/internal/shared/apperr"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(&charities.Charity{}, &donations.Transaction{}, &ProviderEvent{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedCharity(t *testing.T, db *gorm.DB) charities.Charity {
	t.Helper()
	c := charities.Charity{Name: "Ocean Cleanup Fund", StripeAccountID: "acct_test_1"}
	if err := db.Create(&c).Error; err != nil {
		t.Fatalf("seed charity: %v", err)
	}
	return c
}

// stubProvider scripts processor responses and records every call.
type stubProvider struct {
	customerCalls int
	attachCalls   int
	intentCalls   int
	subCalls      int

	intentStatus string
	subStatus    string
	intentErr    error

	lastIntentReq CreateIntentRequest
	lastSubReq    CreateSubscriptionRequest
}

func (p *stubProvider) Name() string { return "stub" }

func (p *stubProvider) EnsureCustomer(ctx context.Context, email string) (string, error) {
	p.customerCalls++
	return "cus_test_1", nil
}

func (p *stubProvider) AttachDefaultPaymentMethod(ctx context.Context, customerID, pmID string) error {
	p.attachCalls++
	return nil
}

func (p *stubProvider) CreateDonationIntent(ctx context.Context, req CreateIntentRequest) (CreateIntentResponse, error) {
	p.intentCalls++
	p.lastIntentReq = req
	if p.intentErr != nil {
		return CreateIntentResponse{}, p.intentErr
	}
	return CreateIntentResponse{IntentID: "pi_test_1", ClientSecret: "pi_test_1_secret", Status: p.intentStatus}, nil
}

func (p *stubProvider) CreateRecurringDonation(ctx context.Context, req CreateSubscriptionRequest) (CreateSubscriptionResponse, error) {
	p.subCalls++
	p.lastSubReq = req
	return CreateSubscriptionResponse{SubscriptionID: "sub_test_1", IntentID: "pi_sub_1", ClientSecret: "pi_sub_1_secret", Status: p.subStatus}, nil
}

func (p *stubProvider) VerifyAndParseWebhook(ctx context.Context, h http.Header, body []byte) (WebhookEvent, error) {
	return WebhookEvent{}, nil
}

func (p *stubProvider) totalCalls() int {
	return p.customerCalls + p.attachCalls + p.intentCalls + p.subCalls
}

type stubNotifier struct {
	calls int
	err   error
	last  receipts.Receipt
}

func (n *stubNotifier) Send(ctx context.Context, r receipts.Receipt) error {
	n.calls++
	n.last = r
	return n.err
}

func newTestService(t *testing.T, db *gorm.DB, p Provider, n ReceiptSender) *Service {
	t.Helper()
	return NewService(charities.NewRepo(db), donations.NewRepo(db), p, n, slog.Default())
}

func validInput(charityID int64) DonationInput {
	return DonationInput{
		Amount:          decimal.NewFromInt(25),
		Currency:        "usd",
		CharityID:       charityID,
		PaymentMethodID: "pm_x",
		Email:           "a@b.com",
		FirstName:       "A",
		LastName:        "B",
		Frequency:       donations.FrequencyOneTime,
	}
}

func TestDonateOneTimeSuccess(t *testing.T) {
	db := testDB(t)
	charity := seedCharity(t, db)
	provider := &stubProvider{intentStatus: "succeeded"}
	notifier := &stubNotifier{}
	svc := newTestService(t, db, provider, notifier)

	res, err := svc.Donate(context.Background(), validInput(charity.ID))
	if err != nil {
		t.Fatalf("Donate: %v", err)
	}
	if res.ClientSecret != "pi_test_1_secret" || res.Status != "succeeded" {
		t.Errorf("unexpected result: %+v", res)
	}
	if res.NotificationFailed {
		t.Error("NotificationFailed unexpectedly set")
	}

	// amount converted to minor units exactly once
	if provider.lastIntentReq.AmountMinor != 2500 {
		t.Errorf("AmountMinor = %d, want 2500", provider.lastIntentReq.AmountMinor)
	}
	if provider.lastIntentReq.DestinationAccount != "acct_test_1" {
		t.Errorf("DestinationAccount = %q", provider.lastIntentReq.DestinationAccount)
	}

	var tx donations.Transaction
	if err := db.First(&tx, "stripe_transaction_id = ?", "pi_test_1").Error; err != nil {
		t.Fatalf("transaction row: %v", err)
	}
	if !tx.Amount.Equal(decimal.NewFromInt(25)) {
		t.Errorf("stored amount = %s, want 25 (major units, not double-converted)", tx.Amount)
	}
	if tx.CharityID != charity.ID || tx.DonationFrequency != donations.FrequencyOneTime || tx.Currency != "usd" {
		t.Errorf("row mismatch: %+v", tx)
	}

	if notifier.calls != 1 {
		t.Errorf("notifier calls = %d, want 1", notifier.calls)
	}
	if notifier.last.CharityName != charity.Name || notifier.last.Reference != "pi_test_1" {
		t.Errorf("receipt mismatch: %+v", notifier.last)
	}
}

func TestDonateValidationRejectsBeforeUpstream(t *testing.T) {
	db := testDB(t)
	seedCharity(t, db)
	provider := &stubProvider{intentStatus: "succeeded"}
	svc := newTestService(t, db, provider, &stubNotifier{})

	in := validInput(1)
	in.Email = ""
	in.PaymentMethodID = ""

	_, err := svc.Donate(context.Background(), in)
	ae, ok := apperr.As(err)
	if !ok || ae.Kind != apperr.Invalid {
		t.Fatalf("expected invalid error, got %v", err)
	}
	if ae.Fields["email"] == "" || ae.Fields["paymentMethodId"] == "" {
		t.Errorf("missing field messages: %v", ae.Fields)
	}
	if provider.totalCalls() != 0 {
		t.Errorf("provider was called %d times for invalid input", provider.totalCalls())
	}
	assertTransactionCount(t, db, 0)
}

func TestDonateUnknownCharityBeforeProcessor(t *testing.T) {
	db := testDB(t)
	provider := &stubProvider{intentStatus: "succeeded"}
	svc := newTestService(t, db, provider, &stubNotifier{})

	_, err := svc.Donate(context.Background(), validInput(7))
	ae, ok := apperr.As(err)
	if !ok || ae.Kind != apperr.Invalid {
		t.Fatalf("expected invalid, got %v", err)
	}
	// no customer or payment method may be provisioned for a doomed request
	if provider.totalCalls() != 0 {
		t.Errorf("provider was called %d times", provider.totalCalls())
	}
}

func TestDonateOneTimeNotSucceeded(t *testing.T) {
	db := testDB(t)
	charity := seedCharity(t, db)
	provider := &stubProvider{intentStatus: "requires_action"}
	notifier := &stubNotifier{}
	svc := newTestService(t, db, provider, notifier)

	_, err := svc.Donate(context.Background(), validInput(charity.ID))
	ae, ok := apperr.As(err)
	if !ok || ae.Kind != apperr.Declined {
		t.Fatalf("expected declined, got %v", err)
	}
	assertTransactionCount(t, db, 0)
	if notifier.calls != 0 {
		t.Errorf("notifier called after failed payment")
	}
}

func TestDonateMonthlyActive(t *testing.T) {
	db := testDB(t)
	charity := seedCharity(t, db)
	provider := &stubProvider{subStatus: "active"}
	notifier := &stubNotifier{}
	svc := newTestService(t, db, provider, notifier)

	in := validInput(charity.ID)
	in.Frequency = donations.FrequencyMonthly

	res, err := svc.Donate(context.Background(), in)
	if err != nil {
		t.Fatalf("Donate: %v", err)
	}
	if res.Status != "active" {
		t.Errorf("status = %q", res.Status)
	}

	// the recurring billing identifier is the natural key
	var tx donations.Transaction
	if err := db.First(&tx, "stripe_transaction_id = ?", "sub_test_1").Error; err != nil {
		t.Fatalf("transaction row: %v", err)
	}
	if tx.DonationFrequency != donations.FrequencyMonthly {
		t.Errorf("frequency = %q, want monthly", tx.DonationFrequency)
	}
	if provider.lastSubReq.DestinationAccount != "acct_test_1" {
		t.Errorf("DestinationAccount = %q", provider.lastSubReq.DestinationAccount)
	}
}

func TestDonateMonthlyNotActive(t *testing.T) {
	db := testDB(t)
	charity := seedCharity(t, db)
	provider := &stubProvider{subStatus: "incomplete"}
	svc := newTestService(t, db, provider, &stubNotifier{})

	in := validInput(charity.ID)
	in.Frequency = donations.FrequencyMonthly

	_, err := svc.Donate(context.Background(), in)
	ae, ok := apperr.As(err)
	if !ok || ae.Kind != apperr.Declined {
		t.Fatalf("expected declined, got %v", err)
	}
	assertTransactionCount(t, db, 0)
}

func TestDonateNotifierFailureDowngrades(t *testing.T) {
	db := testDB(t)
	charity := seedCharity(t, db)
	provider := &stubProvider{intentStatus: "succeeded"}
	notifier := &stubNotifier{err: errors.New("smtp down")}
	svc := newTestService(t, db, provider, notifier)

	res, err := svc.Donate(context.Background(), validInput(charity.ID))
	if err != nil {
		t.Fatalf("a notifier failure must not fail the donation: %v", err)
	}
	if !res.NotificationFailed {
		t.Error("NotificationFailed not set")
	}
	// the charge and its row still stand
	assertTransactionCount(t, db, 1)
}

func TestDonateUpstreamErrorSurfacesGeneric(t *testing.T) {
	db := testDB(t)
	charity := seedCharity(t, db)
	provider := &stubProvider{intentErr: apperr.Wrap(errors.New("stripe: connection reset"))}
	svc := newTestService(t, db, provider, &stubNotifier{})

	_, err := svc.Donate(context.Background(), validInput(charity.ID))
	if err == nil {
		t.Fatal("expected error")
	}
	if msg := apperr.PublicMessage(err); msg != "An unexpected error occurred." {
		t.Errorf("public message leaks detail: %q", msg)
	}
	assertTransactionCount(t, db, 0)
}

func assertTransactionCount(t *testing.T, db *gorm.DB, want int64) {
	t.Helper()
	var n int64
	if err := db.Model(&donations.Transaction{}).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != want {
		t.Errorf("transaction count = %d, want %d", n, want)
	}
}
