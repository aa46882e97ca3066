package app

import (
	"net/http"

	"github.com/metinatakli/cinex-booking/api"
	"github.com/metinatakli/cinex-booking/internal/domain"
)

func (app *Application) QuoteSelection(w http.ResponseWriter, r *http.Request, showtimeID api.ShowtimeId) {
	var input api.QuoteSelectionJSONRequestBody

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

	preview, err := app.quotes.Preview(r.Context(), showtimeID, tickets, input.PromoCode)
	if err != nil {
		app.bookingErrorResponse(w, r, err)
		return
	}

	resp := api.QuoteResponse{
		ShowtimeId:       showtimeID,
		Tickets:          toTicketLines(preview.Quote.Tickets),
		PromoCode:        preview.Quote.PromoCode,
		Subtotal:         preview.Quote.Subtotal,
		Discount:         preview.Quote.Discount,
		Total:            preview.Quote.Total,
		Currency:         app.config.Booking.Currency,
		UnavailableSeats: domain.SeatLabels(preview.UnavailableSeats),
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func toTicketRequests(selections []api.TicketSelection) ([]domain.TicketRequest, error) {
	tickets := make([]domain.TicketRequest, len(selections))

	for i, s := range selections {
		seat, err := domain.ParseSeatID(s.SeatId)
		if err != nil {
			return nil, err
		}

		tickets[i] = domain.TicketRequest{SeatID: seat, Type: domain.TicketType(s.TicketType)}
	}

	return tickets, nil
}

func toTicketLines(tickets []domain.Ticket) []api.TicketLine {
	lines := make([]api.TicketLine, len(tickets))

	for i, t := range tickets {
		lines[i] = api.TicketLine{
			SeatId:     t.SeatID.String(),
			TicketType: api.TicketType(t.Type),
			UnitPrice:  t.UnitPrice,
		}
	}

	return lines
}
