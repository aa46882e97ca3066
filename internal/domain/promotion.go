package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type Promotion struct {
	ID              int
	Code            string
	DiscountPercent decimal.Decimal
	StartDate       time.Time
	EndDate         time.Time
}

// Active reports whether asOf falls on a day within [StartDate, EndDate].
// Both bounds are whole days in UTC.
func (p Promotion) Active(asOf time.Time) bool {
	day := truncateDay(asOf)

	return !day.Before(truncateDay(p.StartDate)) && !day.After(truncateDay(p.EndDate))
}

// ValidDiscount reports whether DiscountPercent lies in (0, 100].
func (p Promotion) ValidDiscount() bool {
	return p.DiscountPercent.IsPositive() && p.DiscountPercent.LessThanOrEqual(decimal.NewFromInt(100))
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

type PromotionRepository interface {
	GetByCode(ctx context.Context, code string) (*Promotion, error)
}
