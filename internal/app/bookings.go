package app

import (
	"errors"
	"net/http"

	"github.com/metinatakli/cinex-booking/api"
	"github.com/metinatakli/cinex-booking/internal/domain"
)

func (app *Application) GetBooking(w http.ResponseWriter, r *http.Request, bookingID int) {
	userId := app.contextGetUserId(r)

	b, err := app.bookings.Booking(r.Context(), bookingID, userId)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}

		return
	}

	resp := api.BookingResponse{
		Booking: toApiBooking(b, app.config.Booking.Currency),
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) GetBookingsOfUser(w http.ResponseWriter, r *http.Request, params api.GetBookingsOfUserParams) {
	err := app.validator.Struct(params)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	userId := app.contextGetUserId(r)

	bookings, metadata, err := app.bookings.History(r.Context(), userId, toPagination(params))
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	resp := api.BookingsResponse{
		Bookings: make([]api.Booking, len(bookings)),
		Metadata: toApiMetadata(metadata),
	}

	for i := range bookings {
		resp.Bookings[i] = toApiBooking(&bookings[i], app.config.Booking.Currency)
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func toPagination(params api.GetBookingsOfUserParams) domain.Pagination {
	pagination := domain.Pagination{
		Page:     DefaultPage,
		PageSize: DefaultPageSize,
	}

	if params.Page != nil {
		pagination.Page = *params.Page
	}
	if params.PageSize != nil {
		pagination.PageSize = *params.PageSize
	}

	return pagination
}

func toApiMetadata(metadata *domain.Metadata) api.Metadata {
	if metadata == nil {
		return api.Metadata{}
	}

	return api.Metadata{
		CurrentPage:  metadata.CurrentPage,
		FirstPage:    metadata.FirstPage,
		LastPage:     metadata.LastPage,
		PageSize:     metadata.PageSize,
		TotalRecords: metadata.TotalRecords,
	}
}

func toApiBooking(b *domain.Booking, currency string) api.Booking {
	return api.Booking{
		Id:         b.ID,
		ShowtimeId: b.ShowtimeID,
		Status:     string(b.Status),
		Tickets:    toTicketLines(b.Tickets),
		PromoCode:  b.PromoCode,
		Subtotal:   b.Subtotal,
		Discount:   b.Discount,
		Total:      b.Total,
		Currency:   currency,
		CreatedAt:  b.BookingDate,
	}
}
