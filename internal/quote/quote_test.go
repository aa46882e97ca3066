package quote

import (
	"context"
	"testing"
	"time"

	"github.com/metinatakli/cinex-booking/internal/domain"
	"github.com/metinatakli/cinex-booking/internal/ledger"
	"github.com/metinatakli/cinex-booking/internal/mocks"
	"github.com/metinatakli/cinex-booking/internal/pricing"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

var now = time.Date(2025, time.October, 15, 18, 0, 0, 0, time.UTC)

type QuoteServiceTestSuite struct {
	suite.Suite
	showtimeRepo *mocks.MockShowtimeRepo
	promoRepo    *mocks.MockPromotionRepo
	ledger       *ledger.Ledger
	service      *Service
}

func TestQuoteServiceSuite(t *testing.T) {
	suite.Run(t, new(QuoteServiceTestSuite))
}

func (s *QuoteServiceTestSuite) SetupTest() {
	s.showtimeRepo = new(mocks.MockShowtimeRepo)
	s.promoRepo = new(mocks.MockPromotionRepo)
	s.ledger = ledger.New(ledger.NewMemoryStore(), ledger.WithClock(func() time.Time { return now }))

	engine := pricing.NewEngine(pricing.DefaultPriceTable(), s.promoRepo)
	s.service = NewService(s.showtimeRepo, s.ledger, engine, func() time.Time { return now })

	s.showtimeRepo.On("GetByID", mock.Anything, 1).Return(&domain.Showtime{
		ID:       1,
		Showroom: domain.Showroom{ID: 1, NumRows: 5, NumCols: 8, SeatCount: 40},
	}, nil).Maybe()
	s.showtimeRepo.On("GetByID", mock.Anything, 99).Return(nil, domain.ErrRecordNotFound).Maybe()
}

func (s *QuoteServiceTestSuite) tickets(labels ...string) []domain.TicketRequest {
	out := make([]domain.TicketRequest, len(labels))
	for i, l := range labels {
		id, err := domain.ParseSeatID(l)
		s.Require().NoError(err)
		out[i] = domain.TicketRequest{SeatID: id, Type: domain.TicketAdult}
	}
	return out
}

func (s *QuoteServiceTestSuite) TestPreviewReportsUnavailableSeats() {
	ctx := context.Background()

	held := s.tickets("A2")
	_, err := s.ledger.TryHold(ctx, 1, []domain.SeatID{held[0].SeatID}, "other", time.Minute)
	s.Require().NoError(err)

	preview, err := s.service.Preview(ctx, 1, s.tickets("A1", "A2", "A3"), nil)
	s.Require().NoError(err)

	s.True(decimal.NewFromInt(36).Equal(preview.Quote.Total))
	s.Equal([]domain.SeatID{held[0].SeatID}, preview.UnavailableSeats)

	// Previewing never reserves anything.
	occupancy, err := s.ledger.Occupancy(ctx, 1)
	s.Require().NoError(err)
	s.Len(occupancy.Held, 1)
}

func (s *QuoteServiceTestSuite) TestPreviewIsIdempotent() {
	s.promoRepo.On("GetByCode", mock.Anything, "FALL25").Return(&domain.Promotion{
		Code:            "FALL25",
		DiscountPercent: decimal.NewFromInt(25),
		StartDate:       now.AddDate(0, -1, 0),
		EndDate:         now.AddDate(0, 1, 0),
	}, nil)

	code := "FALL25"
	first, err := s.service.Preview(context.Background(), 1, s.tickets("B1", "B2"), &code)
	s.Require().NoError(err)

	second, err := s.service.Preview(context.Background(), 1, s.tickets("B1", "B2"), &code)
	s.Require().NoError(err)

	s.True(first.Quote.Total.Equal(second.Quote.Total))
	s.True(decimal.NewFromInt(18).Equal(second.Quote.Total))
	s.Empty(second.UnavailableSeats)
}

func (s *QuoteServiceTestSuite) TestPreviewValidatesSelection() {
	tests := []struct {
		name       string
		showtimeID int
		tickets    []domain.TicketRequest
		wantErr    error
	}{
		{name: "empty selection", showtimeID: 1, tickets: nil, wantErr: domain.ErrEmptySelection},
		{name: "seat outside showroom", showtimeID: 1, tickets: s.tickets("F1"), wantErr: domain.ErrInvalidSeat},
		{name: "column outside showroom", showtimeID: 1, tickets: s.tickets("A9"), wantErr: domain.ErrInvalidSeat},
		{name: "duplicate seat", showtimeID: 1, tickets: s.tickets("A1", "A1"), wantErr: domain.ErrInvalidSeat},
		{name: "unknown showtime", showtimeID: 99, tickets: s.tickets("A1"), wantErr: domain.ErrRecordNotFound},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			_, err := s.service.Preview(context.Background(), tt.showtimeID, tt.tickets, nil)
			s.ErrorIs(err, tt.wantErr)
		})
	}
}

func (s *QuoteServiceTestSuite) TestPreviewPropagatesPricingErrors() {
	tickets := s.tickets("C1")
	tickets[0].Type = "student"

	_, err := s.service.Preview(context.Background(), 1, tickets, nil)
	s.ErrorIs(err, domain.ErrUnknownTicketType)
}
