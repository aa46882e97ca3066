package payment

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/metinatakli/cinex-booking/internal/domain"
	"github.com/shopspring/decimal"
)

// Card references understood by MockPaymentAuthority.
const (
	MockCardApproved = "pm_card_visa"
	MockCardDeclined = "pm_card_chargeDeclined"
)

// MockPaymentAuthority approves every card except the ones whose reference
// contains "declined". It is used for local runs and integration tests.
type MockPaymentAuthority struct {
	mu       sync.Mutex
	captured map[string]int
	voided   map[string]int
}

func NewMockPaymentAuthority() *MockPaymentAuthority {
	return &MockPaymentAuthority{
		captured: make(map[string]int),
		voided:   make(map[string]int),
	}
}

func (m *MockPaymentAuthority) Authorize(
	ctx context.Context,
	cardRef string,
	amount decimal.Decimal,
	metadata map[string]string) (*domain.Authorization, error) {

	if strings.Contains(strings.ToLower(cardRef), "declined") {
		return nil, &domain.PaymentDeclinedError{Reason: "your card was declined"}
	}

	if cardRef == "" {
		return nil, fmt.Errorf("card reference is required")
	}

	return &domain.Authorization{
		ChargeID: "pi_mock_" + uuid.NewString(),
		Amount:   amount,
	}, nil
}

func (m *MockPaymentAuthority) Capture(ctx context.Context, chargeID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.voided[chargeID] > 0 {
		return fmt.Errorf("charge %s was voided", chargeID)
	}

	m.captured[chargeID]++
	return nil
}

func (m *MockPaymentAuthority) CaptureCount(chargeID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.captured[chargeID]
}

func (m *MockPaymentAuthority) Void(ctx context.Context, chargeID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.voided[chargeID]++
	return nil
}

func (m *MockPaymentAuthority) VoidCount(chargeID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.voided[chargeID]
}
