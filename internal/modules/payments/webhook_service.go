package payments

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/judychuepursuit/change-4-change-back/internal/modules/donations"
	"github.com/judychuepursuit/change-4-change-back/internal/shared/money"
)

// ProviderEvent keeps every authenticated webhook delivery. The unique
// (provider, event_id) pair deduplicates replays; process_error marks events
// that were acknowledged but not applied, for out-of-band reconciliation.
type ProviderEvent struct {
	ID          string         `gorm:"type:char(36);primaryKey"`
	Provider    string         `gorm:"type:varchar(64);not null;uniqueIndex:ux_provider_events_provider_event,priority:1"`
	EventID     string         `gorm:"type:varchar(128);not null;uniqueIndex:ux_provider_events_provider_event,priority:2"`
	EventType   string         `gorm:"type:varchar(64);not null"`
	PayloadJSON datatypes.JSON `gorm:"type:json;not null"`

	ReceivedAt   time.Time  `gorm:"not null"`
	ProcessedAt  *time.Time
	ProcessError *string    `gorm:"type:varchar(255)"`
}

func (ProviderEvent) TableName() string { return "provider_events" }

// WebhookOutcome separates "event acknowledged" from "event processed".
// The HTTP handler acknowledges every authenticated event regardless, so the
// processor never retry-storms over our own persistence problems.
type WebhookOutcome struct {
	Duplicate bool
	Processed bool
}

type WebhookService struct {
	db     *gorm.DB
	txRepo *donations.Repo
	logger *slog.Logger
}

func NewWebhookService(db *gorm.DB, txRepo *donations.Repo, logger *slog.Logger) *WebhookService {
	return &WebhookService{db: db, txRepo: txRepo, logger: logger}
}

// Handle records and applies one verified event. It never returns an error to
// the HTTP layer: failures land in the event row and the logs instead.
func (s *WebhookService) Handle(ctx context.Context, providerName string, ev WebhookEvent, rawBody []byte) WebhookOutcome {
	pe := ProviderEvent{
		ID:          uuid.NewString(),
		Provider:    providerName,
		EventID:     ev.EventID,
		EventType:   ev.Type,
		PayloadJSON: datatypes.JSON(rawBody),
		ReceivedAt:  time.Now(),
	}

	// dedupe: unique(provider, event_id)
	if err := s.db.WithContext(ctx).Create(&pe).Error; err != nil {
		if isDupKey(err) {
			s.logger.Info("webhook event deduplicated", "provider", providerName, "event_id", ev.EventID, "type", ev.Type)
			return WebhookOutcome{Duplicate: true, Processed: true}
		}
		s.logger.Error("failed to persist provider event", "provider", providerName, "event_id", ev.EventID, "err", err)
		return WebhookOutcome{}
	}

	applyErr := s.apply(ctx, ev)
	if applyErr != nil {
		msg := truncate(applyErr.Error(), 250)
		if err := s.db.WithContext(ctx).Model(&ProviderEvent{}).
			Where("id = ?", pe.ID).
			Updates(map[string]any{"process_error": msg}).Error; err != nil {
			s.logger.Error("failed to record webhook process error", "event_id", ev.EventID, "err", err)
		}
		s.logger.Error("webhook event apply failed", "provider", providerName, "event_id", ev.EventID, "type", ev.Type, "error", msg)
		return WebhookOutcome{}
	}

	processed := time.Now()
	if err := s.db.WithContext(ctx).Model(&ProviderEvent{}).
		Where("id = ?", pe.ID).
		Updates(map[string]any{"processed_at": &processed, "process_error": nil}).Error; err != nil {
		s.logger.Error("failed to mark webhook event processed", "event_id", ev.EventID, "err", err)
	}

	s.logger.Info("webhook event processed", "provider", providerName, "event_id", ev.EventID, "type", ev.Type)
	return WebhookOutcome{Processed: true}
}

func (s *WebhookService) apply(ctx context.Context, ev WebhookEvent) error {
	switch ev.Type {
	case "payment_intent.succeeded":
		return s.applyPaymentSucceeded(ctx, ev, "")
	case "invoice.payment_succeeded":
		// renewal invoices are always the recurring plan settling
		return s.applyPaymentSucceeded(ctx, ev, donations.FrequencyMonthly)
	case "payment_intent.payment_failed":
		// no persistence; reserved for alerting
		s.logger.Warn("payment failed", "ref", ev.TransactionRef, "event_id", ev.EventID)
		return nil
	default:
		s.logger.Info("unhandled webhook event type", "type", ev.Type, "event_id", ev.EventID)
		return nil
	}
}

func (s *WebhookService) applyPaymentSucceeded(ctx context.Context, ev WebhookEvent, forceFrequency string) error {
	if ev.TransactionRef == "" {
		return ErrMissingRef
	}

	frequency := forceFrequency
	if frequency == "" {
		frequency = ev.Frequency
	}
	if frequency == "" {
		// absent metadata degrades, it does not reject the event
		s.logger.Warn("event missing donation_frequency metadata, defaulting", "event_id", ev.EventID, "ref", ev.TransactionRef)
		frequency = donations.FrequencyOneTime
	}
	if ev.CharityID == 0 {
		s.logger.Warn("event missing charity_id metadata", "event_id", ev.EventID, "ref", ev.TransactionRef)
	}

	created, err := s.txRepo.Record(ctx, donations.Transaction{
		CharityID:           ev.CharityID,
		Amount:              money.FromMinor(ev.AmountMinor),
		Currency:            ev.Currency,
		DonationFrequency:   frequency,
		StripeTransactionID: ev.TransactionRef,
		CreatedAt:           ev.OccurredAt,
	})
	if err != nil {
		return err
	}
	if !created {
		s.logger.Info("transaction already recorded", "ref", ev.TransactionRef, "event_id", ev.EventID)
	}
	return nil
}

func isDupKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == 1062
	}
	return false
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
