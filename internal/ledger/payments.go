package ledger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/metinatakli/cinex-booking/internal/domain"
)

// MemoryPayments keeps payment records next to a MemoryStore so that the
// booking a payment points at lives in the same process.
type MemoryPayments struct {
	mu       sync.Mutex
	bookings *MemoryStore
	payments map[int]domain.Payment
	nextID   int
	now      func() time.Time
}

func NewMemoryPayments(bookings *MemoryStore) *MemoryPayments {
	return &MemoryPayments{
		bookings: bookings,
		payments: make(map[int]domain.Payment),
		now:      time.Now,
	}
}

func (p *MemoryPayments) Create(ctx context.Context, payment *domain.Payment) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.nextID++
	payment.ID = p.nextID
	payment.CreatedAt = p.now()
	p.payments[payment.ID] = *payment

	return nil
}

// Update rejects a booking reference the store does not know, like the
// payments.booking_id foreign key does.
func (p *MemoryPayments) Update(ctx context.Context, payment *domain.Payment) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if payment.BookingID != nil && !p.bookings.hasBooking(*payment.BookingID) {
		return fmt.Errorf("%w: booking %d", domain.ErrRecordNotFound, *payment.BookingID)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	stored, ok := p.payments[payment.ID]
	if !ok {
		return domain.ErrRecordNotFound
	}

	now := p.now()
	stored.Status = payment.Status
	stored.ChargeID = payment.ChargeID
	stored.BookingID = payment.BookingID
	stored.ErrorMsg = payment.ErrorMsg
	stored.UpdatedAt = &now
	p.payments[payment.ID] = stored

	payment.UpdatedAt = &now

	return nil
}

func (p *MemoryPayments) Get(paymentID int) (domain.Payment, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	payment, ok := p.payments[paymentID]
	return payment, ok
}
