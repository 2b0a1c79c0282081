package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/study-room-reservation/internal/middleware"
	"github.com/iliyamo/study-room-reservation/internal/model"
)

// RecordStore is the slice of the record repository the handlers use.
type RecordStore interface {
	Get(ctx context.Context, id string) (*model.StudyRecord, error)
	EnsureFromBooking(ctx context.Context, b *model.Booking) (*model.StudyRecord, error)
	UpdateStudentFields(ctx context.Context, id, goal, reflection string, selfMark *string) (bool, error)
	Confirm(ctx context.Context, id, confirmedBy string, at time.Time) error
	SetTeacherComment(ctx context.Context, id, comment string) error
}

// BookingGetter loads a single booking by ID.
type BookingGetter interface {
	Get(ctx context.Context, id string) (*model.Booking, error)
}

// RecordHandler serves study-record endpoints.  A record is created
// lazily from its booking on first access, so students see a draft to
// fill in without an extra creation step.
type RecordHandler struct {
	Records  RecordStore
	Bookings BookingGetter
}

func NewRecordHandler(r RecordStore, b BookingGetter) *RecordHandler {
	return &RecordHandler{Records: r, Bookings: b}
}

type recordUpdateReq struct {
	Goal       string `json:"goal"`
	Reflection string `json:"reflection"`
	SelfMark   string `json:"self_mark"`
}

type recordDTO struct {
	ID             string  `json:"id"`
	Date           string  `json:"date"`
	Start          string  `json:"start"`
	Subject        string  `json:"subject,omitempty"`
	Purpose        string  `json:"purpose,omitempty"`
	Unit           string  `json:"unit,omitempty"`
	Memo           string  `json:"memo,omitempty"`
	Goal           string  `json:"goal"`
	Reflection     string  `json:"reflection"`
	SelfMark       *string `json:"self_mark"`
	TeacherComment string  `json:"teacher_comment"`
	Status         string  `json:"status"`
}

func toRecordDTO(r *model.StudyRecord) recordDTO {
	return recordDTO{
		ID: r.ID, Date: r.Date, Start: r.Start,
		Subject: r.Subject, Purpose: r.Purpose, Unit: r.Unit, Memo: r.Memo,
		Goal: r.Goal, Reflection: r.Reflection, SelfMark: r.SelfMark,
		TeacherComment: r.TeacherComment, Status: r.Status,
	}
}

// load fetches the record, creating the draft from its booking when it
// does not exist yet.  Returns (nil, nil) when neither exists.
func (h *RecordHandler) load(ctx context.Context, id string) (*model.StudyRecord, error) {
	rec, err := h.Records.Get(ctx, id)
	if err != nil || rec != nil {
		return rec, err
	}
	b, err := h.Bookings.Get(ctx, id)
	if err != nil || b == nil {
		return nil, err
	}
	return h.Records.EnsureFromBooking(ctx, b)
}

func (h *RecordHandler) ownershipOK(c echo.Context, id string) bool {
	if roleFrom(c) == middleware.RoleAdmin {
		return true
	}
	return strings.HasPrefix(id, subjectFrom(c)+"_")
}

// Get returns one study record, creating the draft on first access.
func (h *RecordHandler) Get(c echo.Context) error {
	id := c.Param("id")
	if !h.ownershipOK(c, id) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rec, err := h.load(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if rec == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "record not found"})
	}
	return c.JSON(http.StatusOK, toRecordDTO(rec))
}

// Update stores the student's goal, reflection and self mark.  Confirmed
// records are immutable and answer 409.
func (h *RecordHandler) Update(c echo.Context) error {
	id := c.Param("id")
	if !h.ownershipOK(c, id) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	var req recordUpdateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	var selfMark *string
	if req.SelfMark != "" {
		if req.SelfMark != model.SelfMarkGood && req.SelfMark != model.SelfMarkBad {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown self_mark"})
		}
		selfMark = &req.SelfMark
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rec, err := h.load(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if rec == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "record not found"})
	}

	updated, err := h.Records.UpdateStudentFields(ctx, id, req.Goal, req.Reflection, selfMark)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	if !updated {
		return c.JSON(http.StatusConflict, echo.Map{"error": "record already confirmed"})
	}

	rec, err = h.Records.Get(ctx, id)
	if err != nil || rec == nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, toRecordDTO(rec))
}

// Confirm marks a record as signed off by the admin, optionally storing
// a teacher comment first.
func (h *RecordHandler) Confirm(c echo.Context) error {
	id := c.Param("id")

	var req struct {
		TeacherComment string `json:"teacher_comment"`
	}
	_ = c.Bind(&req)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rec, err := h.load(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if rec == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "record not found"})
	}

	if req.TeacherComment != "" {
		if err := h.Records.SetTeacherComment(ctx, id, req.TeacherComment); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
		}
	}
	if err := h.Records.Confirm(ctx, id, subjectFrom(c), time.Now().UTC()); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "confirm failed"})
	}

	rec, err = h.Records.Get(ctx, id)
	if err != nil || rec == nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, toRecordDTO(rec))
}
