package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/study-room-reservation/internal/middleware"
	"github.com/iliyamo/study-room-reservation/internal/model"
)

type fakeRecordStore struct {
	records map[string]*model.StudyRecord
}

func newFakeRecordStore() *fakeRecordStore {
	return &fakeRecordStore{records: make(map[string]*model.StudyRecord)}
}

func (f *fakeRecordStore) Get(_ context.Context, id string) (*model.StudyRecord, error) {
	if r, ok := f.records[id]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeRecordStore) EnsureFromBooking(_ context.Context, b *model.Booking) (*model.StudyRecord, error) {
	if r, ok := f.records[b.ID]; ok {
		cp := *r
		return &cp, nil
	}
	r := &model.StudyRecord{
		ID: b.ID, BookingID: b.ID, StudentID: b.StudentID,
		Date: b.Date, Start: b.Start,
		Subject: b.Subject, Purpose: b.Purpose, Unit: b.Unit, Memo: b.Memo,
		Status: model.RecordStatusDraft,
	}
	f.records[b.ID] = r
	cp := *r
	return &cp, nil
}

func (f *fakeRecordStore) UpdateStudentFields(_ context.Context, id, goal, reflection string, selfMark *string) (bool, error) {
	r, ok := f.records[id]
	if !ok || r.Status != model.RecordStatusDraft {
		return false, nil
	}
	r.Goal, r.Reflection, r.SelfMark = goal, reflection, selfMark
	return true, nil
}

func (f *fakeRecordStore) Confirm(_ context.Context, id, confirmedBy string, at time.Time) error {
	if r, ok := f.records[id]; ok {
		r.Status = model.RecordStatusConfirmed
		r.ConfirmedBy = &confirmedBy
		r.ConfirmedAt = &at
	}
	return nil
}

func (f *fakeRecordStore) SetTeacherComment(_ context.Context, id, comment string) error {
	if r, ok := f.records[id]; ok {
		r.TeacherComment = comment
	}
	return nil
}

type fakeBookingGetter struct {
	bookings map[string]*model.Booking
}

func (f *fakeBookingGetter) Get(_ context.Context, id string) (*model.Booking, error) {
	if b, ok := f.bookings[id]; ok {
		cp := *b
		return &cp, nil
	}
	return nil, nil
}

func recordTestContext(t *testing.T, method, target, body, id string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)
	c.Set("student_id", "s1")
	c.Set("role", middleware.RoleStudent)
	c.SetParamNames("id")
	c.SetParamValues(id)
	return c, rec
}

func TestRecordGetCreatesDraftLazily(t *testing.T) {
	store := newFakeRecordStore()
	bookings := &fakeBookingGetter{bookings: map[string]*model.Booking{
		"s1_2026-02-08_17": {
			ID: "s1_2026-02-08_17", StudentID: "s1", Date: "2026-02-08", Start: "17",
			Subject: "math", Status: model.BookingStatusActive,
		},
	}}
	h := NewRecordHandler(store, bookings)

	c, rec := recordTestContext(t, http.MethodGet, "/v1/records/s1_2026-02-08_17", "", "s1_2026-02-08_17")
	if err := h.Get(c); err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}
	if store.records["s1_2026-02-08_17"] == nil {
		t.Fatalf("draft record was not created from the booking")
	}
	if got := store.records["s1_2026-02-08_17"].Subject; got != "math" {
		t.Fatalf("record subject = %q, want booking metadata copied", got)
	}
}

func TestRecordGetUnknownBooking(t *testing.T) {
	h := NewRecordHandler(newFakeRecordStore(), &fakeBookingGetter{bookings: map[string]*model.Booking{}})
	c, rec := recordTestContext(t, http.MethodGet, "/v1/records/s1_2026-02-08_17", "", "s1_2026-02-08_17")
	if err := h.Get(c); err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestRecordForeignAccessForbidden(t *testing.T) {
	h := NewRecordHandler(newFakeRecordStore(), &fakeBookingGetter{})
	c, rec := recordTestContext(t, http.MethodGet, "/v1/records/s2_2026-02-08_17", "", "s2_2026-02-08_17")
	if err := h.Get(c); err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}

func TestRecordUpdateAndConfirmLock(t *testing.T) {
	store := newFakeRecordStore()
	bookings := &fakeBookingGetter{bookings: map[string]*model.Booking{
		"s1_2026-02-08_17": {ID: "s1_2026-02-08_17", StudentID: "s1", Date: "2026-02-08", Start: "17"},
	}}
	h := NewRecordHandler(store, bookings)

	c, rec := recordTestContext(t, http.MethodPut, "/v1/records/s1_2026-02-08_17",
		`{"goal":"finish chapter 3","reflection":"done","self_mark":"good"}`, "s1_2026-02-08_17")
	if err := h.Update(c); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}
	r := store.records["s1_2026-02-08_17"]
	if r.Goal != "finish chapter 3" || r.SelfMark == nil || *r.SelfMark != model.SelfMarkGood {
		t.Fatalf("stored record = %+v", r)
	}

	// Confirm as admin, then the student's update must bounce.
	cc, crec := recordTestContext(t, http.MethodPost, "/v1/admin/records/s1_2026-02-08_17/confirm",
		`{"teacher_comment":"well done"}`, "s1_2026-02-08_17")
	cc.Set("student_id", AdminSubject)
	cc.Set("role", middleware.RoleAdmin)
	if err := h.Confirm(cc); err != nil {
		t.Fatalf("Confirm returned error: %v", err)
	}
	if crec.Code != http.StatusOK {
		t.Fatalf("confirm status = %d, want 200 (body %s)", crec.Code, crec.Body.String())
	}
	if r.Status != model.RecordStatusConfirmed || r.TeacherComment != "well done" {
		t.Fatalf("record after confirm = %+v", r)
	}

	c2, rec2 := recordTestContext(t, http.MethodPut, "/v1/records/s1_2026-02-08_17",
		`{"goal":"rewrite"}`, "s1_2026-02-08_17")
	if err := h.Update(c2); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if rec2.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409 after confirmation", rec2.Code)
	}
	if r.Goal != "finish chapter 3" {
		t.Fatalf("confirmed record was modified: %+v", r)
	}
}

func TestRecordUpdateBadSelfMark(t *testing.T) {
	h := NewRecordHandler(newFakeRecordStore(), &fakeBookingGetter{})
	c, rec := recordTestContext(t, http.MethodPut, "/v1/records/s1_2026-02-08_17",
		`{"self_mark":"excellent"}`, "s1_2026-02-08_17")
	if err := h.Update(c); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}
