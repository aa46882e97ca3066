package app

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/metinatakli/cinex-booking/api"
	"github.com/metinatakli/cinex-booking/internal/booking"
	"github.com/metinatakli/cinex-booking/internal/idempotency"
)

const (
	IdempotencyKeyHeader     = "Idempotency-Key"
	IdempotentReplayedHeader = "Idempotent-Replayed"
)

func (app *Application) Checkout(w http.ResponseWriter, r *http.Request, showtimeID api.ShowtimeId, params api.CheckoutParams) {
	logger := app.contextGetLogger(r)

	var input api.CheckoutJSONRequestBody

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(input)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	tickets, err := toTicketRequests(input.Tickets)
	if err != nil {
		app.bookingErrorResponse(w, r, err)
		return
	}

	req := booking.CheckoutRequest{
		UserID:     app.contextGetUserId(r),
		ShowtimeID: showtimeID,
		Tickets:    tickets,
		PromoCode:  input.PromoCode,
		CardRef:    input.PaymentMethodId,
	}

	if params.IdempotencyKey == nil || *params.IdempotencyKey == "" {
		app.runCheckout(w, r, req)
		return
	}

	key := *params.IdempotencyKey

	stored, err := app.idempotency.Begin(r.Context(), req.UserID, key)
	if err != nil {
		app.bookingErrorResponse(w, r, err)
		return
	}

	if stored != nil {
		logger.Info("replaying stored checkout response", "idempotency_key", key, "status", stored.Status)

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set(IdempotentReplayedHeader, "true")
		w.WriteHeader(stored.Status)
		w.Write(stored.Body)
		return
	}

	var body bytes.Buffer

	ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
	ww.Tee(&body)

	app.runCheckout(ww, r, req)

	// The outcome is recorded even if the client has gone away.
	ctx := context.WithoutCancel(r.Context())

	if ww.Status() >= http.StatusInternalServerError {
		err = app.idempotency.Abandon(ctx, req.UserID, key)
	} else {
		err = app.idempotency.Complete(ctx, req.UserID, key, idempotency.Response{
			Status: ww.Status(),
			Body:   bytes.Clone(body.Bytes()),
		})
	}

	if err != nil {
		logger.Error("failed to record checkout outcome", "idempotency_key", key, "error", err)
	}
}

func (app *Application) runCheckout(w http.ResponseWriter, r *http.Request, req booking.CheckoutRequest) {
	confirmed, err := app.bookings.Checkout(r.Context(), req)
	if err != nil {
		app.bookingErrorResponse(w, r, err)
		return
	}

	headers := make(http.Header)
	headers.Set("Location", fmt.Sprintf("/bookings/%d", confirmed.ID))

	resp := api.BookingResponse{
		Booking: toApiBooking(confirmed, app.config.Booking.Currency),
	}

	err = app.writeJSON(w, http.StatusCreated, resp, headers)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
