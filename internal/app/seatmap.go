package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/osmanyildiz/cinema-booking-system/api"
	"github.com/osmanyildiz/cinema-booking-system/internal/domain"
	"github.com/osmanyildiz/cinema-booking-system/internal/stream"
)

func (app *application) GetSeatMapByShowtime(w http.ResponseWriter, r *http.Request) {
	showtimeID, err := app.readShowtimeID(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	snapshot, err := app.hub.BuildSnapshot(r.Context(), showtimeID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			app.notFoundResponse(w, r)
			return
		}
		app.serverErrorResponse(w, r, err)
		return
	}

	resp := toSeatMapResponse(snapshot)

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// GetSeatEventsByShowtime streams seat state transitions as server-sent
// events. Clients are expected to fetch the seat map first and treat the
// stream as deltas from that point.
func (app *application) GetSeatEventsByShowtime(w http.ResponseWriter, r *http.Request) {
	showtimeID, err := app.readShowtimeID(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		app.serverErrorResponse(w, r, fmt.Errorf("streaming is not supported by the underlying connection"))
		return
	}

	sub, err := app.hub.Subscribe(r.Context(), showtimeID)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
	defer app.hub.Unsubscribe(sub)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case event, ok := <-sub.C:
			if !ok {
				// Dropped for falling behind; the client should reconnect
				// and refetch the seat map.
				return
			}

			payload, err := json.Marshal(event)
			if err != nil {
				app.logger.Error("failed to marshal seat event", "error", err)
				continue
			}

			fmt.Fprintf(w, "event: seat\ndata: %s\n\n", payload)
			flusher.Flush()
		}
	}
}

func toSeatMapResponse(snapshot *stream.Snapshot) api.SeatMapResponse {
	return api.SeatMapResponse{
		ShowtimeId:  snapshot.ShowtimeID,
		MovieName:   snapshot.MovieTitle,
		TheaterName: snapshot.TheaterName,
		HallName:    snapshot.HallName,
		StartTime:   snapshot.StartTime,
		SeatRows:    toSeatRows(snapshot.Seats),
	}
}

func toSeatRows(seats []stream.SeatStatus) []api.SeatRow {
	// Seats are pre-sorted by Row,Column (ascending).
	// This allows us to process them in a single pass without additional sorting or mapping.

	if len(seats) == 0 {
		return nil
	}

	var seatRows []api.SeatRow
	currentRow := api.SeatRow{Row: seats[0].Row}

	for _, v := range seats {
		if v.Row != currentRow.Row {
			seatRows = append(seatRows, currentRow)
			currentRow = api.SeatRow{Row: v.Row}
		}

		currentRow.Seats = append(currentRow.Seats, api.SeatMapSeat{
			Id:     v.SeatID,
			Row:    v.Row,
			Column: v.Col,
			Type:   v.Type,
			State:  toApiSeatState(v.State),
		})
	}

	seatRows = append(seatRows, currentRow)

	return seatRows
}

func toApiSeatState(state domain.SeatState) api.SeatState {
	switch state {
	case domain.SeatStateLocked:
		return api.SeatLocked
	case domain.SeatStateSold:
		return api.SeatSold
	default:
		return api.SeatAvailable
	}
}
