package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/study-room-reservation/internal/metrics"
	"github.com/iliyamo/study-room-reservation/internal/middleware"
	"github.com/iliyamo/study-room-reservation/internal/model"
	"github.com/iliyamo/study-room-reservation/internal/queue"
	"github.com/iliyamo/study-room-reservation/internal/reservation"
	queue_publisher "github.com/iliyamo/study-room-reservation/internal/service"
)

// ReservationEngine is the slice of the admission engine the handlers
// need.  Taking an interface keeps the handlers testable without a
// database.
type ReservationEngine interface {
	Reserve(ctx context.Context, studentID, date string, starts []string, details model.BookingDetails) ([]string, error)
	Cancel(ctx context.Context, bookingID string) (*model.Booking, error)
	Usage(ctx context.Context, studentID, month string) (used, limit int, err error)
}

// BookingLister lists a student's own bookings.
type BookingLister interface {
	ListByStudentAndDate(ctx context.Context, studentID, date string) ([]model.Booking, error)
	ListByStudentAndMonth(ctx context.Context, studentID, month string) ([]model.Booking, error)
}

// ReservationHandler serves the student-facing reservation endpoints.
type ReservationHandler struct {
	Engine   ReservationEngine
	Bookings BookingLister

	// PublishEvents controls whether commit/cancel events go to the
	// broker; handler tests turn it off.
	PublishEvents bool
}

func NewReservationHandler(e ReservationEngine, b BookingLister) *ReservationHandler {
	return &ReservationHandler{Engine: e, Bookings: b, PublishEvents: true}
}

// ----- DTOs -----

type reserveReq struct {
	Date    string   `json:"date"`
	Starts  []string `json:"starts"`
	Subject string   `json:"subject"`
	Purpose string   `json:"purpose"`
	Unit    string   `json:"unit"`
	Memo    string   `json:"memo"`
}

type bookingDTO struct {
	ID      string `json:"id"`
	Date    string `json:"date"`
	Start   string `json:"start"`
	Hours   uint8  `json:"hours"`
	Subject string `json:"subject,omitempty"`
	Purpose string `json:"purpose,omitempty"`
	Unit    string `json:"unit,omitempty"`
	Memo    string `json:"memo,omitempty"`
}

func toBookingDTO(b model.Booking) bookingDTO {
	return bookingDTO{
		ID: b.ID, Date: b.Date, Start: b.Start, Hours: b.Hours,
		Subject: b.Subject, Purpose: b.Purpose, Unit: b.Unit, Memo: b.Memo,
	}
}

func inCatalog(catalog []string, v string) bool {
	for _, c := range catalog {
		if c == v {
			return true
		}
	}
	return false
}

// reservationError translates an engine error into its HTTP response
// and counts the rejection.  Contention maps to 503 because the request
// had no effect and is safe to retry; business rejections are final.
func reservationError(c echo.Context, err error) error {
	type mapping struct {
		sentinel error
		status   int
		reason   string
	}
	for _, m := range []mapping{
		{reservation.ErrInvalidRequest, http.StatusBadRequest, "invalid_request"},
		{reservation.ErrMonthlyQuotaExceeded, http.StatusConflict, "monthly_quota"},
		{reservation.ErrDailyQuotaExceeded, http.StatusConflict, "daily_quota"},
		{reservation.ErrSlotFull, http.StatusConflict, "slot_full"},
		{reservation.ErrDuplicateBooking, http.StatusConflict, "duplicate"},
		{reservation.ErrCutoffViolation, http.StatusConflict, "cutoff"},
		{reservation.ErrNotFound, http.StatusNotFound, "not_found"},
		{reservation.ErrContention, http.StatusServiceUnavailable, "contention"},
	} {
		if errors.Is(err, m.sentinel) {
			metrics.RejectionsTotal.WithLabelValues(m.reason).Inc()
			return c.JSON(m.status, echo.Map{"error": err.Error()})
		}
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "reservation failed"})
}

// Create books one or two slots for the authenticated student.
func (h *ReservationHandler) Create(c echo.Context) error {
	studentID := subjectFrom(c)
	var req reserveReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Subject != "" && !inCatalog(model.Subjects, req.Subject) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown subject"})
	}
	if req.Purpose != "" && !inCatalog(model.Purposes, req.Purpose) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown purpose"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	ids, err := h.Engine.Reserve(ctx, studentID, req.Date, req.Starts, model.BookingDetails{
		Subject: req.Subject,
		Purpose: req.Purpose,
		Unit:    strings.TrimSpace(req.Unit),
		Memo:    strings.TrimSpace(req.Memo),
	})
	if err != nil {
		return reservationError(c, err)
	}
	metrics.ReservationsTotal.Add(float64(len(ids)))

	if h.PublishEvents {
		ev := queue.ReservationConfirmedEvent{
			StudentID:   studentID,
			Date:        req.Date,
			Starts:      req.Starts,
			BookingIDs:  ids,
			Subject:     req.Subject,
			ConfirmedAt: time.Now().UTC().Format(time.RFC3339),
		}
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = queue_publisher.PublishReservationConfirmed(ctx, ev)
		}()
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"booking_ids": ids,
		"date":        req.Date,
	})
}

// Cancel removes one booking.  Students may only cancel their own; the
// natural-key ID makes ownership a prefix check.  Admin tokens skip the
// ownership check but not the cutoff.
func (h *ReservationHandler) Cancel(c echo.Context) error {
	id := c.Param("id")
	if roleFrom(c) != middleware.RoleAdmin {
		if !strings.HasPrefix(id, subjectFrom(c)+"_") {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		}
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	b, err := h.Engine.Cancel(ctx, id)
	if err != nil {
		return reservationError(c, err)
	}
	metrics.CancellationsTotal.Inc()

	if h.PublishEvents {
		ev := queue.ReservationCancelledEvent{
			BookingID:   b.ID,
			StudentID:   b.StudentID,
			Date:        b.Date,
			Start:       b.Start,
			CancelledAt: time.Now().UTC().Format(time.RFC3339),
		}
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = queue_publisher.PublishReservationCancelled(ctx, ev)
		}()
	}

	return c.JSON(http.StatusOK, echo.Map{"cancelled": toBookingDTO(*b)})
}

// MyReservations lists the student's bookings for ?date=YYYY-MM-DD or
// ?month=YYYY-MM.
func (h *ReservationHandler) MyReservations(c echo.Context) error {
	studentID := subjectFrom(c)
	date := c.QueryParam("date")
	month := c.QueryParam("month")

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	var (
		bookings []model.Booking
		err      error
	)
	switch {
	case date != "":
		if !reservation.ValidDate(date) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "bad date"})
		}
		bookings, err = h.Bookings.ListByStudentAndDate(ctx, studentID, date)
	case month != "":
		if !reservation.ValidMonth(month) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "bad month"})
		}
		bookings, err = h.Bookings.ListByStudentAndMonth(ctx, studentID, month)
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date or month required"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	out := make([]bookingDTO, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, toBookingDTO(b))
	}
	return c.JSON(http.StatusOK, echo.Map{"reservations": out})
}

// Usage reports the student's booked hours for ?month=YYYY-MM against
// the monthly cap.
func (h *ReservationHandler) Usage(c echo.Context) error {
	month := c.QueryParam("month")

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	used, limit, err := h.Engine.Usage(ctx, subjectFrom(c), month)
	if err != nil {
		return reservationError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"month":      month,
		"used_hours": used,
		"limit":      limit,
	})
}
