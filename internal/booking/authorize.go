package booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/metinatakli/cinex-booking/internal/domain"
	"github.com/shopspring/decimal"
)

// authorize records a pending payment and asks the authority to approve the
// total. A zero total needs no charge.
func (tx *transaction) authorize(ctx context.Context, total decimal.Decimal) error {
	m := tx.manager

	if total.IsZero() {
		tx.logger.Info("total is zero, skipping payment authorization")
		return nil
	}

	payment := &domain.Payment{
		UserID:     tx.req.UserID,
		ShowtimeID: tx.req.ShowtimeID,
		Amount:     total,
		Currency:   m.cfg.Currency,
		Status:     domain.PaymentStatusPending,
	}

	err := m.payments.Create(ctx, payment)
	if err != nil {
		return fmt.Errorf("failed to create payment record: %w", err)
	}
	tx.payment = payment

	auth, err := m.authority.Authorize(ctx, tx.req.CardRef, total, paymentMetadata(tx.req, tx.holderToken))
	if err != nil {
		msg := err.Error()

		var declined *domain.PaymentDeclinedError
		if errors.As(err, &declined) {
			m.updatePayment(context.WithoutCancel(ctx), tx.logger, payment, domain.PaymentStatusDeclined, &msg)
			return err
		}

		m.updatePayment(context.WithoutCancel(ctx), tx.logger, payment, domain.PaymentStatusFailed, &msg)
		return fmt.Errorf("payment authorization failed: %w", err)
	}

	tx.authorization = auth
	payment.ChargeID = &auth.ChargeID
	m.updatePayment(ctx, tx.logger, payment, domain.PaymentStatusAuthorized, nil)

	tx.logger.Info("payment authorized", "charge_id", auth.ChargeID, "amount", total.StringFixed(2))

	return nil
}
