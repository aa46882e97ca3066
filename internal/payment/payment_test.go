package payment

import (
	"context"
	"testing"

	"github.com/metinatakli/cinex-booking/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToCents(t *testing.T) {
	assert.Equal(t, int64(2400), toCents(decimal.RequireFromString("24.00")))
	assert.Equal(t, int64(877), toCents(decimal.RequireFromString("8.77")))
	assert.Equal(t, int64(1), toCents(decimal.RequireFromString("0.005")))
}

func TestMockPaymentAuthority(t *testing.T) {
	authority := NewMockPaymentAuthority()
	ctx := context.Background()

	auth, err := authority.Authorize(ctx, MockCardApproved, decimal.NewFromInt(12), nil)
	require.NoError(t, err)
	assert.NotEmpty(t, auth.ChargeID)

	_, err = authority.Authorize(ctx, MockCardDeclined, decimal.NewFromInt(12), nil)
	assert.ErrorIs(t, err, domain.ErrPaymentDeclined)

	require.NoError(t, authority.Capture(ctx, auth.ChargeID))
	assert.Equal(t, 1, authority.CaptureCount(auth.ChargeID))

	voided, err := authority.Authorize(ctx, MockCardApproved, decimal.NewFromInt(12), nil)
	require.NoError(t, err)

	require.NoError(t, authority.Void(ctx, voided.ChargeID))
	assert.Equal(t, 1, authority.VoidCount(voided.ChargeID))
	assert.Error(t, authority.Capture(ctx, voided.ChargeID))
}
