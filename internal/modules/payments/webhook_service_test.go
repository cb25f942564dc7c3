package payments

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/judychuepursuit/change-4-change-back/internal/modules/donations"
)

func succeededEvent(charityID int64) WebhookEvent {
	return WebhookEvent{
		EventID:        "evt_1",
		Type:           "payment_intent.succeeded",
		TransactionRef: "pi_hook_1",
		AmountMinor:    2550,
		Currency:       "usd",
		CharityID:      charityID,
		Frequency:      donations.FrequencyOneTime,
		OccurredAt:     time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func newWebhookService(db *gorm.DB) *WebhookService {
	return NewWebhookService(db, donations.NewRepo(db), slog.Default())
}

func TestWebhookPaymentSucceededRecordsTransaction(t *testing.T) {
	db := testDB(t)
	charity := seedCharity(t, db)
	svc := newWebhookService(db)

	out := svc.Handle(context.Background(), "stripe", succeededEvent(charity.ID), []byte(`{"id":"evt_1"}`))
	if !out.Processed || out.Duplicate {
		t.Fatalf("outcome = %+v", out)
	}

	var tx donations.Transaction
	if err := db.First(&tx, "stripe_transaction_id = ?", "pi_hook_1").Error; err != nil {
		t.Fatalf("transaction row: %v", err)
	}
	// 2550 cents arrive, 25.50 major units are stored
	if !tx.Amount.Equal(decimal.RequireFromString("25.50")) {
		t.Errorf("amount = %s, want 25.50", tx.Amount)
	}
	if tx.DonationFrequency != donations.FrequencyOneTime || tx.CharityID != charity.ID {
		t.Errorf("row mismatch: %+v", tx)
	}

	var pe ProviderEvent
	if err := db.First(&pe, "event_id = ?", "evt_1").Error; err != nil {
		t.Fatalf("event row: %v", err)
	}
	if pe.ProcessedAt == nil || pe.ProcessError != nil {
		t.Errorf("event not marked processed: %+v", pe)
	}
}

func TestWebhookReplayDeduplicates(t *testing.T) {
	db := testDB(t)
	charity := seedCharity(t, db)
	svc := newWebhookService(db)
	ev := succeededEvent(charity.ID)
	body := []byte(`{"id":"evt_1"}`)

	first := svc.Handle(context.Background(), "stripe", ev, body)
	second := svc.Handle(context.Background(), "stripe", ev, body)

	if first.Duplicate {
		t.Error("first delivery flagged duplicate")
	}
	if !second.Duplicate || !second.Processed {
		t.Errorf("replay outcome = %+v", second)
	}
	assertTransactionCount(t, db, 1)

	var events int64
	if err := db.Model(&ProviderEvent{}).Count(&events).Error; err != nil {
		t.Fatal(err)
	}
	if events != 1 {
		t.Errorf("event rows = %d, want 1", events)
	}
}

func TestWebhookBackstopsIntakeInsert(t *testing.T) {
	db := testDB(t)
	charity := seedCharity(t, db)

	// the sync intake path already wrote the row for this intent
	if err := db.Create(&donations.Transaction{
		CharityID:           charity.ID,
		Amount:              decimal.RequireFromString("25.50"),
		Currency:            "usd",
		DonationFrequency:   donations.FrequencyOneTime,
		StripeTransactionID: "pi_hook_1",
		CreatedAt:           time.Now(),
	}).Error; err != nil {
		t.Fatal(err)
	}

	out := newWebhookService(db).Handle(context.Background(), "stripe", succeededEvent(charity.ID), []byte(`{}`))
	if !out.Processed {
		t.Fatalf("outcome = %+v", out)
	}
	assertTransactionCount(t, db, 1)
}

func TestWebhookInvoiceForcesMonthly(t *testing.T) {
	db := testDB(t)
	charity := seedCharity(t, db)

	ev := succeededEvent(charity.ID)
	ev.EventID = "evt_inv_1"
	ev.Type = "invoice.payment_succeeded"
	ev.TransactionRef = "pi_renewal_1"
	ev.SubscriptionRef = "sub_test_1"
	ev.Frequency = "" // renewal invoices may carry no intent metadata

	out := newWebhookService(db).Handle(context.Background(), "stripe", ev, []byte(`{}`))
	if !out.Processed {
		t.Fatalf("outcome = %+v", out)
	}

	var tx donations.Transaction
	if err := db.First(&tx, "stripe_transaction_id = ?", "pi_renewal_1").Error; err != nil {
		t.Fatalf("transaction row: %v", err)
	}
	if tx.DonationFrequency != donations.FrequencyMonthly {
		t.Errorf("frequency = %q, want monthly", tx.DonationFrequency)
	}
}

func TestWebhookMissingMetadataDegrades(t *testing.T) {
	db := testDB(t)
	seedCharity(t, db)

	ev := succeededEvent(0) // no charity_id metadata
	ev.Frequency = ""

	out := newWebhookService(db).Handle(context.Background(), "stripe", ev, []byte(`{}`))
	if !out.Processed {
		t.Fatalf("outcome = %+v", out)
	}

	var tx donations.Transaction
	if err := db.First(&tx, "stripe_transaction_id = ?", "pi_hook_1").Error; err != nil {
		t.Fatalf("transaction row: %v", err)
	}
	if tx.CharityID != 0 || tx.DonationFrequency != donations.FrequencyOneTime {
		t.Errorf("degraded row mismatch: %+v", tx)
	}
}

func TestWebhookMissingRefAcknowledgedNotProcessed(t *testing.T) {
	db := testDB(t)
	seedCharity(t, db)

	ev := succeededEvent(1)
	ev.TransactionRef = ""

	out := newWebhookService(db).Handle(context.Background(), "stripe", ev, []byte(`{}`))
	if out.Processed || out.Duplicate {
		t.Fatalf("outcome = %+v", out)
	}
	assertTransactionCount(t, db, 0)

	// the delivery itself is kept, with the failure on record
	var pe ProviderEvent
	if err := db.First(&pe, "event_id = ?", "evt_1").Error; err != nil {
		t.Fatalf("event row: %v", err)
	}
	if pe.ProcessedAt != nil || pe.ProcessError == nil {
		t.Errorf("event row not flagged: %+v", pe)
	}
}

func TestWebhookUnhandledTypeIsProcessed(t *testing.T) {
	db := testDB(t)

	ev := WebhookEvent{EventID: "evt_x", Type: "customer.created", OccurredAt: time.Now()}
	out := newWebhookService(db).Handle(context.Background(), "stripe", ev, []byte(`{}`))
	if !out.Processed {
		t.Fatalf("outcome = %+v", out)
	}
	assertTransactionCount(t, db, 0)
}

func TestWebhookPaymentFailedRecordsNothing(t *testing.T) {
	db := testDB(t)

	ev := succeededEvent(1)
	ev.Type = "payment_intent.payment_failed"

	out := newWebhookService(db).Handle(context.Background(), "stripe", ev, []byte(`{}`))
	if !out.Processed {
		t.Fatalf("outcome = %+v", out)
	}
	assertTransactionCount(t, db, 0)
}
