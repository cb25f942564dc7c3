package charities

// Charity rows are provisioned by an administrative process; this service only
// ever reads them. StripeAccountID is the connected account donations settle to.
type Charity struct {
	ID              int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Name            string `gorm:"type:varchar(255);not null;uniqueIndex:ux_charities_name" json:"name"`
	StripeAccountID string `gorm:"column:stripe_account_id;type:varchar(64);not null" json:"-"`
}

func (Charity) TableName() string { return "charities" }
