package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/study-room-reservation/internal/reservation"
)

// SlotCounts reads slot occupancy for display.
type SlotCounts interface {
	CountsByDate(ctx context.Context, date string) (map[string]int, error)
}

// SlotHandler serves the public occupancy listing the booking calendar
// is built from.  Reads go straight to the counters outside any
// transaction; the response cache in front of this handler makes the
// endpoint cheap under load.
type SlotHandler struct {
	Slots SlotCounts
}

func NewSlotHandler(s SlotCounts) *SlotHandler { return &SlotHandler{Slots: s} }

type slotDTO struct {
	Start     string `json:"start"`
	Occupied  int    `json:"occupied"`
	Capacity  int    `json:"capacity"`
	Remaining int    `json:"remaining"`
	Full      bool   `json:"full"`
}

// List returns occupancy for every catalog slot on ?date=YYYY-MM-DD.
// Slots nobody booked yet report zero.
func (h *SlotHandler) List(c echo.Context) error {
	date := c.QueryParam("date")
	if !reservation.ValidDate(date) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "bad date"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	counts, err := h.Slots.CountsByDate(ctx, date)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	slots := make([]slotDTO, 0, len(reservation.SlotStarts))
	for _, start := range reservation.SlotStarts {
		n := counts[start]
		slots = append(slots, slotDTO{
			Start:     start,
			Occupied:  n,
			Capacity:  reservation.MaxSeatsPerSlot,
			Remaining: reservation.MaxSeatsPerSlot - n,
			Full:      n >= reservation.MaxSeatsPerSlot,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"date": date, "slots": slots})
}
