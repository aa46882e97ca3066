package pricing

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"strings"
	"time"

	"github.com/metinatakli/cinex-booking/internal/domain"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// PriceTable maps each ticket type to its unit price.
type PriceTable map[domain.TicketType]decimal.Decimal

func DefaultPriceTable() PriceTable {
	return PriceTable{
		domain.TicketAdult:  decimal.RequireFromString("12.00"),
		domain.TicketChild:  decimal.RequireFromString("8.00"),
		domain.TicketSenior: decimal.RequireFromString("10.00"),
	}
}

// ParsePriceTable reads overrides in the form "adult=12.50,child=7". Types
// that are not mentioned keep their default price.
func ParsePriceTable(s string) (PriceTable, error) {
	table := DefaultPriceTable()

	s = strings.TrimSpace(s)
	if s == "" {
		return table, nil
	}

	for _, pair := range strings.Split(s, ",") {
		name, value, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok {
			return nil, fmt.Errorf("malformed price entry %q", pair)
		}

		ticketType := domain.TicketType(strings.ToLower(strings.TrimSpace(name)))
		if _, known := table[ticketType]; !known {
			return nil, fmt.Errorf("%w: %q", domain.ErrUnknownTicketType, name)
		}

		price, err := decimal.NewFromString(strings.TrimSpace(value))
		if err != nil {
			return nil, fmt.Errorf("invalid price for %s: %w", ticketType, err)
		}

		if price.IsNegative() {
			return nil, fmt.Errorf("price for %s must not be negative", ticketType)
		}

		table[ticketType] = price
	}

	return table, nil
}

type Quote struct {
	Tickets   []domain.Ticket
	PromoCode *string
	Subtotal  decimal.Decimal
	Discount  decimal.Decimal
	Total     decimal.Decimal
}

type Engine struct {
	prices     PriceTable
	promotions domain.PromotionRepository
}

func NewEngine(prices PriceTable, promotions domain.PromotionRepository) *Engine {
	return &Engine{
		prices:     maps.Clone(prices),
		promotions: promotions,
	}
}

func (e *Engine) PriceOf(ticketType domain.TicketType) (decimal.Decimal, error) {
	price, ok := e.prices[ticketType]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %q", domain.ErrUnknownTicketType, ticketType)
	}

	return price, nil
}

// Prices returns a copy of the configured price table.
func (e *Engine) Prices() PriceTable {
	return maps.Clone(e.prices)
}

// Quote prices the tickets and applies the promotion, if any, as of asOf.
// It has no side effects, so calling it twice with the same input yields the
// same result as long as the promotion data does not change in between.
func (e *Engine) Quote(
	ctx context.Context,
	tickets []domain.TicketRequest,
	promoCode *string,
	asOf time.Time) (*Quote, error) {

	quote := &Quote{
		Tickets:  make([]domain.Ticket, len(tickets)),
		Subtotal: decimal.Zero,
		Discount: decimal.Zero,
	}

	for i, t := range tickets {
		price, err := e.PriceOf(t.Type)
		if err != nil {
			return nil, err
		}

		quote.Tickets[i] = domain.Ticket{SeatID: t.SeatID, Type: t.Type, UnitPrice: price}
		quote.Subtotal = quote.Subtotal.Add(price)
	}

	code := NormalizePromoCode(promoCode)
	if code != "" {
		promotion, err := e.promotions.GetByCode(ctx, code)
		if err != nil {
			if errors.Is(err, domain.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: %s", domain.ErrPromotionNotFound, code)
			}

			return nil, fmt.Errorf("failed to look up promotion %s: %w", code, err)
		}

		if !promotion.Active(asOf) {
			return nil, fmt.Errorf("%w: %s", domain.ErrPromotionExpired, code)
		}

		if !promotion.ValidDiscount() {
			return nil, fmt.Errorf("%w: %s has %s%%", domain.ErrPromotionInvalid, code, promotion.DiscountPercent)
		}

		quote.PromoCode = &code
		quote.Discount = Discount(quote.Subtotal, promotion.DiscountPercent)
	}

	quote.Total = quote.Subtotal.Sub(quote.Discount)
	if quote.Total.IsNegative() {
		quote.Total = decimal.Zero
	}

	return quote, nil
}

// Discount is subtotal * percent / 100 rounded half up to cents.
func Discount(subtotal, percent decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(percent).Div(hundred).Round(2)
}

// NormalizePromoCode trims and upper-cases a promo code. Nil and blank codes
// yield "".
func NormalizePromoCode(code *string) string {
	if code == nil {
		return ""
	}

	return strings.ToUpper(strings.TrimSpace(*code))
}
