package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/xuri/excelize/v2"

	"github.com/iliyamo/study-room-reservation/internal/model"
	"github.com/iliyamo/study-room-reservation/internal/reservation"
)

// AdminBookingLister lists bookings across all students.
type AdminBookingLister interface {
	ListByDate(ctx context.Context, date string) ([]model.Booking, error)
	ListByMonth(ctx context.Context, month string) ([]model.Booking, error)
}

// AdminReservationHandler serves the admin views over bookings: the
// day roster and the monthly spreadsheet export.
type AdminReservationHandler struct {
	Bookings AdminBookingLister
}

func NewAdminReservationHandler(b AdminBookingLister) *AdminReservationHandler {
	return &AdminReservationHandler{Bookings: b}
}

type adminBookingDTO struct {
	bookingDTO
	StudentID string `json:"student_id"`
}

// ListByDate returns every booking on ?date=YYYY-MM-DD.
func (h *AdminReservationHandler) ListByDate(c echo.Context) error {
	date := c.QueryParam("date")
	if !reservation.ValidDate(date) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "bad date"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	bookings, err := h.Bookings.ListByDate(ctx, date)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]adminBookingDTO, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, adminBookingDTO{bookingDTO: toBookingDTO(b), StudentID: b.StudentID})
	}
	return c.JSON(http.StatusOK, echo.Map{"date": date, "reservations": out})
}

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportMonth streams every booking of ?month=YYYY-MM as an .xlsx
// workbook, one row per booked slot, ordered by day, start and student.
func (h *AdminReservationHandler) ExportMonth(c echo.Context) error {
	month := c.QueryParam("month")
	if !reservation.ValidMonth(month) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "bad month"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	bookings, err := h.Bookings.ListByMonth(ctx, month)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	const sheet = "Sheet1"

	header := []interface{}{"Date", "Start", "Student", "Hours", "Subject", "Purpose", "Unit", "Memo", "Booked At"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "export failed"})
	}
	for i, b := range bookings {
		row := []interface{}{
			b.Date, b.Start + ":00", b.StudentID, int(b.Hours),
			b.Subject, b.Purpose, b.Unit, b.Memo,
			b.CreatedAt.Format("2006-01-02 15:04"),
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "export failed"})
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "export failed"})
	}
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="reservations-%s.xlsx"`, month))
	return c.Blob(http.StatusOK, xlsxContentType, buf.Bytes())
}
