package app

import (
	"errors"
	"net/http"

	"github.com/metinatakli/cinex-booking/api"
	"github.com/metinatakli/cinex-booking/internal/domain"
	"github.com/metinatakli/cinex-booking/internal/seatmap"
)

func (app *Application) GetSeatMap(w http.ResponseWriter, r *http.Request, showtimeID api.ShowtimeId) {
	logger := app.contextGetLogger(r)

	showtime, err := app.showtimes.GetByID(r.Context(), showtimeID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRecordNotFound):
			logger.Warn("seat map requested for unknown showtime", "showtime_id", showtimeID)
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}

		return
	}

	grid, err := app.seatMap.Grid(r.Context(), showtime)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, toSeatMapResponse(showtime, grid), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func toSeatMapResponse(showtime *domain.Showtime, grid *seatmap.Grid) api.SeatMapResponse {
	resp := api.SeatMapResponse{
		ShowtimeId:   showtime.ID,
		MovieTitle:   showtime.MovieTitle,
		StartTime:    showtime.StartTime,
		ShowroomId:   grid.Showroom.ID,
		ShowroomName: grid.Showroom.Name,
		SeatRows:     make([]api.SeatRow, len(grid.Rows)),
	}

	for i, row := range grid.Rows {
		seats := make([]api.Seat, len(row.Seats))

		for j, seat := range row.Seats {
			seats[j] = api.Seat{
				Id:     seat.ID.String(),
				Row:    row.Label,
				Column: seat.ID.Col,
				Status: api.SeatStatus(seat.Status),
			}
		}

		resp.SeatRows[i] = api.SeatRow{Row: row.Label, Seats: seats}
	}

	return resp
}
