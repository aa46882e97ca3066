package app

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/metinatakli/cinex-booking/api"
	"github.com/metinatakli/cinex-booking/internal/domain"
	"github.com/metinatakli/cinex-booking/internal/idempotency"
	appvalidator "github.com/metinatakli/cinex-booking/internal/validator"
)

const (
	ErrInternalServer   = "The server encountered a problem and could not process your request"
	ErrNotFound         = "The requested resource not found"
	ErrUnauthorized     = "You must be authenticated to access this resource"
	ErrMethodNotAllowed = "The method is not supported for this resource"
	ErrValidationFailed = "One or more fields are invalid"
)

// Error codes carried in every error body.
const (
	CodeBadRequest        = "bad_request"
	CodeValidationFailed  = "validation_failed"
	CodeNotFound          = "not_found"
	CodeMethodNotAllowed  = "method_not_allowed"
	CodeUnauthorized      = "unauthorized"
	CodeForbidden         = "forbidden"
	CodeSeatConflict      = "seat_conflict"
	CodeHoldExpired       = "hold_expired"
	CodeInvalidSelection  = "invalid_selection"
	CodePromotionNotFound = "promotion_not_found"
	CodePromotionExpired  = "promotion_expired"
	CodePromotionInvalid  = "promotion_invalid"
	CodePaymentDeclined   = "payment_declined"
	CodeRequestInProgress = "request_in_progress"
	CodeInternalError     = "internal_error"
)

func (app *Application) logError(r *http.Request, err error) {
	var (
		method = r.Method
		uri    = r.URL.RequestURI()
	)

	app.contextGetLogger(r).Error(err.Error(), "method", method, "uri", uri)
}

// The errorResponse() method is a generic helper for sending JSON-formatted error
// messages to the client with a given status code.
func (app *Application) errorResponse(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	resp := api.ErrorResponse{
		Code:      code,
		Message:   message,
		RequestId: middleware.GetReqID(r.Context()),
		Timestamp: time.Now(),
	}

	app.sendError(w, r, status, resp)
}

func (app *Application) sendError(w http.ResponseWriter, r *http.Request, status int, resp any) {
	err := app.writeJSON(w, status, resp, nil)
	if err != nil {
		app.logError(r, err)
		w.WriteHeader(500)
	}
}

func (app *Application) serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logError(r, err)
	app.errorResponse(w, r, http.StatusInternalServerError, CodeInternalError, ErrInternalServer)
}

func (app *Application) notFoundResponse(w http.ResponseWriter, r *http.Request) {
	app.errorResponse(w, r, http.StatusNotFound, CodeNotFound, ErrNotFound)
}

func (app *Application) notFoundResponseWithErr(w http.ResponseWriter, r *http.Request, err error) {
	app.errorResponse(w, r, http.StatusNotFound, CodeNotFound, err.Error())
}

func (app *Application) methodNotAllowedResponse(w http.ResponseWriter, r *http.Request) {
	app.errorResponse(w, r, http.StatusMethodNotAllowed, CodeMethodNotAllowed, ErrMethodNotAllowed)
}

func (app *Application) badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.errorResponse(w, r, http.StatusBadRequest, CodeBadRequest, err.Error())
}

func (app *Application) unauthorizedAccessResponse(w http.ResponseWriter, r *http.Request) {
	app.errorResponse(w, r, http.StatusUnauthorized, CodeUnauthorized, ErrUnauthorized)
}

func (app *Application) editConflictResponseWithErr(w http.ResponseWriter, r *http.Request, code string, err error) {
	app.errorResponse(w, r, http.StatusConflict, code, err.Error())
}

func (app *Application) unprocessableEntityResponse(w http.ResponseWriter, r *http.Request, code string, err error) {
	app.errorResponse(w, r, http.StatusUnprocessableEntity, code, err.Error())
}

func (app *Application) failedValidationResponse(w http.ResponseWriter, r *http.Request, err error) {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		app.badRequestResponse(w, r, err)
		return
	}

	resp := api.ValidationErrorResponse{
		Code:             CodeValidationFailed,
		Message:          ErrValidationFailed,
		RequestId:        middleware.GetReqID(r.Context()),
		Timestamp:        time.Now(),
		ValidationErrors: make([]api.ValidationError, 0, len(validationErrors)),
	}

	for _, fe := range validationErrors {
		resp.ValidationErrors = append(resp.ValidationErrors, api.ValidationError{
			Field: fieldPath(fe),
			Issue: appvalidator.ValidationMessage(fe),
		})
	}

	app.sendError(w, r, http.StatusUnprocessableEntity, resp)
}

// fieldPath drops the root struct name, so "QuoteRequest.tickets[0].seatId"
// becomes "tickets[0].seatId".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}

	return ns
}

func (app *Application) seatConflictResponse(w http.ResponseWriter, r *http.Request, conflict *domain.SeatConflictError) {
	resp := api.ErrorResponse{
		Code:             CodeSeatConflict,
		Message:          domain.ErrSeatConflict.Error(),
		RequestId:        middleware.GetReqID(r.Context()),
		Timestamp:        time.Now(),
		ConflictingSeats: domain.SeatLabels(conflict.Seats),
	}

	app.sendError(w, r, http.StatusConflict, resp)
}

// bookingErrorResponse maps the errors of the booking core to responses.
// Anything it does not recognise is a server error.
func (app *Application) bookingErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	var (
		conflict *domain.SeatConflictError
		declined *domain.PaymentDeclinedError
	)

	switch {
	case errors.As(err, &conflict):
		app.seatConflictResponse(w, r, conflict)

	case errors.Is(err, domain.ErrSeatConflict):
		app.editConflictResponseWithErr(w, r, CodeSeatConflict, domain.ErrSeatConflict)

	case errors.Is(err, domain.ErrHoldExpired), errors.Is(err, domain.ErrHoldNotFound):
		app.editConflictResponseWithErr(w, r, CodeHoldExpired, domain.ErrHoldExpired)

	case errors.As(err, &declined):
		app.errorResponse(w, r, http.StatusPaymentRequired, CodePaymentDeclined, declined.Error())

	case errors.Is(err, domain.ErrPaymentDeclined):
		app.errorResponse(w, r, http.StatusPaymentRequired, CodePaymentDeclined, domain.ErrPaymentDeclined.Error())

	case errors.Is(err, domain.ErrPromotionNotFound):
		app.unprocessableEntityResponse(w, r, CodePromotionNotFound, domain.ErrPromotionNotFound)

	case errors.Is(err, domain.ErrPromotionExpired):
		app.unprocessableEntityResponse(w, r, CodePromotionExpired, domain.ErrPromotionExpired)

	case errors.Is(err, domain.ErrPromotionInvalid):
		app.unprocessableEntityResponse(w, r, CodePromotionInvalid, domain.ErrPromotionInvalid)

	case errors.Is(err, domain.ErrInvalidSeat),
		errors.Is(err, domain.ErrEmptySelection),
		errors.Is(err, domain.ErrUnknownTicketType):
		app.unprocessableEntityResponse(w, r, CodeInvalidSelection, err)

	case errors.Is(err, domain.ErrBookingNotAllowed):
		app.errorResponse(w, r, http.StatusForbidden, CodeForbidden, domain.ErrBookingNotAllowed.Error())

	case errors.Is(err, domain.ErrRecordNotFound):
		app.notFoundResponse(w, r)

	case errors.Is(err, idempotency.ErrInProgress):
		app.editConflictResponseWithErr(w, r, CodeRequestInProgress, idempotency.ErrInProgress)

	default:
		app.serverErrorResponse(w, r, err)
	}
}
