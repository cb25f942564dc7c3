package donations

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	FrequencyOneTime = "one-time"
	FrequencyMonthly = "monthly"
)

// Transaction is the authoritative record of a settled donation. Amount is in
// major currency units; conversion from the processor's minor units happens in
// the money package, exactly once per lifecycle.
//
// StripeTransactionID is the natural key: the payment-intent id for one-time
// donations, the subscription id (or invoice id from reconciliation) for
// recurring ones. The unique index makes the synchronous success path and the
// webhook path safe to race; the second writer is a no-op.
type Transaction struct {
	ID                  string          `gorm:"type:char(36);primaryKey"`
	CharityID           int64           `gorm:"not null;index:ix_transactions_charity_id"`
	Amount              decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Currency            string          `gorm:"type:char(3);not null"`
	DonationFrequency   string          `gorm:"type:varchar(16);not null"`
	StripeTransactionID string          `gorm:"column:stripe_transaction_id;type:varchar(128);not null;uniqueIndex:ux_transactions_stripe_transaction_id"`
	CreatedAt           time.Time       `gorm:"not null"`
}

func (Transaction) TableName() string { return "transactions" }
