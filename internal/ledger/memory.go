package ledger

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/metinatakli/cinex-booking/internal/domain"
)

var ErrTokenInUse = errors.New("holder token already holds seats of another showtime")

type showtimeState struct {
	mu     sync.Mutex
	holds  map[domain.SeatID]domain.SeatHold
	booked map[domain.SeatID]int
}

// MemoryStore keeps the ledger in process. Every showtime has its own lock.
// The registry lock guards the showtime, token and booking maps and is never
// held while waiting for a showtime lock.
type MemoryStore struct {
	mu        sync.Mutex
	showtimes map[int]*showtimeState
	tokens    map[string]int
	bookings  map[int]*domain.Booking
	nextID    int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		showtimes: make(map[int]*showtimeState),
		tokens:    make(map[string]int),
		bookings:  make(map[int]*domain.Booking),
	}
}

func (m *MemoryStore) state(showtimeID int, create bool) *showtimeState {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok := m.showtimes[showtimeID]
	if !ok && create {
		st = &showtimeState{
			holds:  make(map[domain.SeatID]domain.SeatHold),
			booked: make(map[domain.SeatID]int),
		}
		m.showtimes[showtimeID] = st
	}

	return st
}

func (m *MemoryStore) tokenShowtime(holderToken string) (int, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	showtimeID, ok := m.tokens[holderToken]
	return showtimeID, ok
}

func (m *MemoryStore) TryHold(
	ctx context.Context,
	showtimeID int,
	seats []domain.SeatID,
	holderToken string,
	expiresAt time.Time,
	now time.Time) ([]domain.SeatHold, error) {

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if other, ok := m.tokenShowtime(holderToken); ok && other != showtimeID {
		return nil, ErrTokenInUse
	}

	st := m.state(showtimeID, true)

	st.mu.Lock()
	defer st.mu.Unlock()

	var conflicts []domain.SeatID
	for _, seat := range seats {
		if _, ok := st.booked[seat]; ok {
			conflicts = append(conflicts, seat)
			continue
		}

		if hold, ok := st.holds[seat]; ok && hold.Live(now) {
			conflicts = append(conflicts, seat)
		}
	}

	if len(conflicts) > 0 {
		domain.SortSeats(conflicts)
		return nil, &domain.SeatConflictError{ShowtimeID: showtimeID, Seats: conflicts}
	}

	holds := make([]domain.SeatHold, len(seats))
	for i, seat := range seats {
		hold := domain.SeatHold{
			ShowtimeID:  showtimeID,
			SeatID:      seat,
			HolderToken: holderToken,
			ExpiresAt:   expiresAt,
		}
		st.holds[seat] = hold
		holds[i] = hold
	}

	m.mu.Lock()
	m.tokens[holderToken] = showtimeID
	m.mu.Unlock()

	return holds, nil
}

func (m *MemoryStore) ReleaseHold(ctx context.Context, holderToken string) error {
	showtimeID, ok := m.tokenShowtime(holderToken)
	if !ok {
		return nil
	}

	st := m.state(showtimeID, false)
	if st != nil {
		st.mu.Lock()
		for seat, hold := range st.holds {
			if hold.HolderToken == holderToken {
				delete(st.holds, seat)
			}
		}
		st.mu.Unlock()
	}

	m.mu.Lock()
	delete(m.tokens, holderToken)
	m.mu.Unlock()

	return nil
}

func (m *MemoryStore) Commit(
	ctx context.Context,
	holderToken string,
	draft domain.BookingDraft,
	now time.Time) (*domain.Booking, error) {

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	showtimeID, ok := m.tokenShowtime(holderToken)
	if !ok || showtimeID != draft.ShowtimeID {
		return nil, domain.ErrHoldNotFound
	}

	st := m.state(showtimeID, false)
	if st == nil {
		return nil, domain.ErrHoldNotFound
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	var held []domain.SeatID
	expired := false
	for seat, hold := range st.holds {
		if hold.HolderToken != holderToken {
			continue
		}

		held = append(held, seat)
		if !hold.Live(now) {
			expired = true
		}
	}

	if len(held) == 0 {
		return nil, domain.ErrHoldNotFound
	}

	if expired {
		return nil, domain.ErrHoldExpired
	}

	if !SameSeats(held, draft.Tickets) {
		return nil, fmt.Errorf("%w: held seats differ from the tickets", domain.ErrHoldNotFound)
	}

	m.mu.Lock()
	m.nextID++
	booking := &domain.Booking{
		ID:          m.nextID,
		ShowtimeID:  draft.ShowtimeID,
		UserID:      draft.UserID,
		Tickets:     slices.Clone(draft.Tickets),
		PromoCode:   draft.PromoCode,
		Subtotal:    draft.Subtotal,
		Discount:    draft.Discount,
		Total:       draft.Total,
		Status:      domain.BookingConfirmed,
		ChargeID:    draft.ChargeID,
		BookingDate: now,
	}
	m.bookings[booking.ID] = booking
	delete(m.tokens, holderToken)
	m.mu.Unlock()

	for _, seat := range held {
		delete(st.holds, seat)
		st.booked[seat] = booking.ID
	}

	out := *booking
	return &out, nil
}

func (m *MemoryStore) SweepExpired(ctx context.Context, now time.Time) (int, error) {
	m.mu.Lock()
	states := make([]*showtimeState, 0, len(m.showtimes))
	for _, st := range m.showtimes {
		states = append(states, st)
	}
	m.mu.Unlock()

	released := 0

	for _, st := range states {
		if err := ctx.Err(); err != nil {
			return released, err
		}

		st.mu.Lock()

		dropped := make(map[string]struct{})
		for seat, hold := range st.holds {
			if !hold.Live(now) {
				delete(st.holds, seat)
				dropped[hold.HolderToken] = struct{}{}
				released++
			}
		}

		for _, hold := range st.holds {
			delete(dropped, hold.HolderToken)
		}

		if len(dropped) > 0 {
			m.mu.Lock()
			for token := range dropped {
				delete(m.tokens, token)
			}
			m.mu.Unlock()
		}

		st.mu.Unlock()
	}

	return released, nil
}

func (m *MemoryStore) Occupancy(ctx context.Context, showtimeID int, now time.Time) (domain.Occupancy, error) {
	occupancy := domain.NewOccupancy(showtimeID)

	st := m.state(showtimeID, false)
	if st == nil {
		return occupancy, nil
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	for seat := range st.booked {
		occupancy.Booked[seat] = struct{}{}
	}

	for seat, hold := range st.holds {
		if hold.Live(now) {
			occupancy.Held[seat] = struct{}{}
		}
	}

	return occupancy, nil
}

func (m *MemoryStore) GetByIDAndUserID(ctx context.Context, bookingID, userID int) (*domain.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	booking, ok := m.bookings[bookingID]
	if !ok || booking.UserID != userID {
		return nil, domain.ErrRecordNotFound
	}

	out := *booking
	return &out, nil
}

func (m *MemoryStore) GetByUserID(
	ctx context.Context,
	userID int,
	pagination domain.Pagination) ([]domain.Booking, *domain.Metadata, error) {

	m.mu.Lock()
	var all []domain.Booking
	for _, b := range m.bookings {
		if b.UserID == userID {
			all = append(all, *b)
		}
	}
	m.mu.Unlock()

	slices.SortFunc(all, func(a, b domain.Booking) int {
		return cmp.Compare(b.ID, a.ID)
	})

	start := min(pagination.Offset(), len(all))
	end := min(start+pagination.Limit(), len(all))

	return all[start:end], domain.NewMetadata(len(all), pagination), nil
}

func (m *MemoryStore) hasBooking(bookingID int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.bookings[bookingID]
	return ok
}
