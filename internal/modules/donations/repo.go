package donations

import (
	"context"
	"errors"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Repo struct{ db *gorm.DB }

func NewRepo(db *gorm.DB) *Repo { return &Repo{db: db} }

// Record inserts a transaction row keyed on the processor transaction id.
// A duplicate key means another path (intake vs. webhook) already recorded the
// same settlement: that is success, not an error.
func (r *Repo) Record(ctx context.Context, t Transaction) (created bool, err error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}

	if err := r.db.WithContext(ctx).Create(&t).Error; err != nil {
		if isDup(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

type TransactionWithCharity struct {
	Amount            decimal.Decimal `json:"amount"`
	Currency          string          `json:"currency"`
	DonationFrequency string          `json:"donation_frequency"`
	Name              string          `json:"name"`
	CreatedAt         time.Time       `json:"created_at"`
}

// ListWithCharity backs GET /transactions: every recorded donation joined with
// its charity's display name, newest first.
func (r *Repo) ListWithCharity(ctx context.Context) ([]TransactionWithCharity, error) {
	var out []TransactionWithCharity
	err := r.db.WithContext(ctx).
		Table("transactions t").
		Select("t.amount, t.currency, t.donation_frequency, c.name, t.created_at").
		Joins("JOIN charities c ON t.charity_id = c.id").
		Order("t.created_at DESC").
		Scan(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func isDup(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == 1062
	}
	return false
}
