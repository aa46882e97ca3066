package mocks

import (
	"context"

	"github.com/metinatakli/cinex-booking/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type MockPaymentAuthority struct {
	mock.Mock
}

func (m *MockPaymentAuthority) Authorize(
	ctx context.Context,
	cardRef string,
	amount decimal.Decimal,
	metadata map[string]string) (*domain.Authorization, error) {

	args := m.Called(ctx, cardRef, amount, metadata)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Authorization), args.Error(1)
}

func (m *MockPaymentAuthority) Capture(ctx context.Context, chargeID string) error {
	args := m.Called(ctx, chargeID)
	return args.Error(0)
}

func (m *MockPaymentAuthority) Void(ctx context.Context, chargeID string) error {
	args := m.Called(ctx, chargeID)
	return args.Error(0)
}
