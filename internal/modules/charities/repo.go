package charities

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/judychuepursuit/change-4-change-back/internal/shared/apperr"
)

type Repo struct{ db *gorm.DB }

func NewRepo(db *gorm.DB) *Repo { return &Repo{db: db} }

// GetByID is the canonical lookup. Every donation must resolve its charity's
// payout account through here (or GetByName) before any processor call.
func (r *Repo) GetByID(ctx context.Context, id int64) (Charity, error) {
	if id <= 0 {
		return Charity{}, apperr.InvalidErr("Invalid charity.", nil)
	}

	var c Charity
	err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Charity{}, apperr.NotFoundErr("Charity not found.")
	}
	if err != nil {
		return Charity{}, apperr.Wrap(err)
	}
	return c, nil
}

// GetByName exists for clients that still send charityName instead of
// charityId. The name is trimmed before matching.
func (r *Repo) GetByName(ctx context.Context, name string) (Charity, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Charity{}, apperr.InvalidErr("Invalid charity name.", nil)
	}

	var c Charity
	err := r.db.WithContext(ctx).First(&c, "name = ?", name).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Charity{}, apperr.NotFoundErr("Charity not found.")
	}
	if err != nil {
		return Charity{}, apperr.Wrap(err)
	}
	return c, nil
}

func (r *Repo) List(ctx context.Context) ([]Charity, error) {
	var out []Charity
	if err := r.db.WithContext(ctx).Order("name").Find(&out).Error; err != nil {
		return nil, apperr.Wrap(err)
	}
	return out, nil
}
