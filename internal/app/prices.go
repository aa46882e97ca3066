package app

import (
	"net/http"

	"github.com/metinatakli/cinex-booking/api"
	"github.com/metinatakli/cinex-booking/internal/domain"
)

var ticketTypeOrder = []domain.TicketType{domain.TicketAdult, domain.TicketChild, domain.TicketSenior}

func (app *Application) GetPrices(w http.ResponseWriter, r *http.Request) {
	table := app.pricing.Prices()

	resp := api.PricesResponse{
		Currency: app.config.Booking.Currency,
		Prices:   make([]api.TicketPrice, 0, len(table)),
	}

	for _, t := range ticketTypeOrder {
		price, ok := table[t]
		if !ok {
			continue
		}

		resp.Prices = append(resp.Prices, api.TicketPrice{
			TicketType: api.TicketType(t),
			Price:      price,
		})
	}

	err := app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
