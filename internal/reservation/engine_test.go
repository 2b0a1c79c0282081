package reservation

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/iliyamo/study-room-reservation/internal/model"
)

// memStore is an in-memory Store used by the engine tests.  A single
// mutex held for the whole transaction makes every transaction
// serializable; writes go to a deep copy of the state that replaces the
// original only when fn succeeds, which mirrors the all-or-nothing
// contract of the SQL store.
type memStore struct {
	mu    sync.Mutex
	state memState
}

type memState struct {
	slots    map[string]int           // "{date}_{start}" -> occupied count
	days     map[string][]string      // "{student}_{date}" -> booked starts
	months   map[string]int           // "{student}_{ym}" -> used hours
	bookings map[string]model.Booking // id -> booking
}

func newMemStore() *memStore {
	return &memStore{state: memState{
		slots:    map[string]int{},
		days:     map[string][]string{},
		months:   map[string]int{},
		bookings: map[string]model.Booking{},
	}}
}

func (s *memStore) RunTransaction(ctx context.Context, fn func(tx Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	staged := s.state.clone()
	if err := fn(&memTx{state: &staged}); err != nil {
		return err
	}
	s.state = staged
	return nil
}

func (st memState) clone() memState {
	out := memState{
		slots:    make(map[string]int, len(st.slots)),
		days:     make(map[string][]string, len(st.days)),
		months:   make(map[string]int, len(st.months)),
		bookings: make(map[string]model.Booking, len(st.bookings)),
	}
	for k, v := range st.slots {
		out.slots[k] = v
	}
	for k, v := range st.days {
		out.days[k] = append([]string(nil), v...)
	}
	for k, v := range st.months {
		out.months[k] = v
	}
	for k, v := range st.bookings {
		out.bookings[k] = v
	}
	return out
}

type memTx struct {
	state *memState
}

func (t *memTx) SlotCount(_ context.Context, date, start string) (int, error) {
	return t.state.slots[date+"_"+start], nil
}

func (t *memTx) IncrementSlot(_ context.Context, date, start string, delta int) error {
	t.state.slots[date+"_"+start] += delta
	return nil
}

func (t *memTx) DailyStarts(_ context.Context, studentID, date string) ([]string, error) {
	return t.state.days[studentID+"_"+date], nil
}

func (t *memTx) MergeDailyStarts(_ context.Context, studentID, date string, starts []string) error {
	key := studentID + "_" + date
	t.state.days[key] = append(t.state.days[key], starts...)
	return nil
}

func (t *memTx) RemoveDailyStart(_ context.Context, studentID, date, start string) error {
	key := studentID + "_" + date
	kept := t.state.days[key][:0]
	for _, s := range t.state.days[key] {
		if s != start {
			kept = append(kept, s)
		}
	}
	if len(kept) == 0 {
		delete(t.state.days, key)
	} else {
		t.state.days[key] = kept
	}
	return nil
}

func (t *memTx) MonthlyHours(_ context.Context, studentID, month string) (int, error) {
	return t.state.months[studentID+"_"+month], nil
}

func (t *memTx) AddMonthlyHours(_ context.Context, studentID, month string, delta int) error {
	t.state.months[studentID+"_"+month] += delta
	return nil
}

func (t *memTx) BookingExists(_ context.Context, studentID, date, start string) (bool, error) {
	_, ok := t.state.bookings[BookingID(studentID, date, start)]
	return ok, nil
}

func (t *memTx) CreateBooking(_ context.Context, b *model.Booking) error {
	if _, ok := t.state.bookings[b.ID]; ok {
		return ErrDuplicateBooking
	}
	t.state.bookings[b.ID] = *b
	return nil
}

func (t *memTx) GetBooking(_ context.Context, id string) (*model.Booking, error) {
	b, ok := t.state.bookings[id]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (t *memTx) DeleteBooking(_ context.Context, id string) error {
	delete(t.state.bookings, id)
	return nil
}

// testEngine returns an engine over a fresh memStore with the clock
// pinned to noon on 2026-02-07.
func testEngine() (*Engine, *memStore) {
	store := newMemStore()
	e := NewEngine(store)
	e.now = func() time.Time {
		return time.Date(2026, 2, 7, 12, 0, 0, 0, time.UTC)
	}
	return e, store
}

func TestReserveRejectsMalformedRequests(t *testing.T) {
	e, _ := testEngine()
	ctx := context.Background()

	cases := []struct {
		name      string
		studentID string
		date      string
		starts    []string
	}{
		{"no starts", "s1", "2026-02-08", nil},
		{"too many starts", "s1", "2026-02-08", []string{"15", "16", "17"}},
		{"unknown start", "s1", "2026-02-08", []string{"14"}},
		{"repeated start", "s1", "2026-02-08", []string{"15", "15"}},
		{"bad date", "s1", "2026-2-8", []string{"15"}},
		{"missing student", "", "2026-02-08", []string{"15"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := e.Reserve(ctx, tc.studentID, tc.date, tc.starts, model.BookingDetails{})
			if !errors.Is(err, ErrInvalidRequest) {
				t.Fatalf("expected ErrInvalidRequest, got %v", err)
			}
		})
	}
}

func TestReserveLastSeatThenSlotFull(t *testing.T) {
	e, store := testEngine()
	ctx := context.Background()
	store.state.slots["2026-02-08_17"] = MaxSeatsPerSlot - 1

	ids, err := e.Reserve(ctx, "s1", "2026-02-08", []string{"17"}, model.BookingDetails{Subject: "math"})
	if err != nil {
		t.Fatalf("reserve last seat: %v", err)
	}
	if len(ids) != 1 || ids[0] != "s1_2026-02-08_17" {
		t.Fatalf("unexpected booking ids %v", ids)
	}
	if got := store.state.slots["2026-02-08_17"]; got != MaxSeatsPerSlot {
		t.Fatalf("slot count = %d, want %d", got, MaxSeatsPerSlot)
	}

	_, err = e.Reserve(ctx, "s2", "2026-02-08", []string{"17"}, model.BookingDetails{})
	if !errors.Is(err, ErrSlotFull) {
		t.Fatalf("expected ErrSlotFull, got %v", err)
	}
	if got := store.state.slots["2026-02-08_17"]; got != MaxSeatsPerSlot {
		t.Fatalf("slot count moved past capacity: %d", got)
	}
}

func TestReserveMonthlyQuota(t *testing.T) {
	e, store := testEngine()
	ctx := context.Background()
	store.state.months["s1_2026-02"] = MonthlyMaxHours - 1

	before := store.state.clone()
	_, err := e.Reserve(ctx, "s1", "2026-02-08", []string{"15", "16"}, model.BookingDetails{})
	if !errors.Is(err, ErrMonthlyQuotaExceeded) {
		t.Fatalf("expected ErrMonthlyQuotaExceeded, got %v", err)
	}
	if !reflect.DeepEqual(before, store.state) {
		t.Fatal("failed reserve mutated state")
	}

	// A single hour still fits under the cap.
	if _, err := e.Reserve(ctx, "s1", "2026-02-08", []string{"15"}, model.BookingDetails{}); err != nil {
		t.Fatalf("reserve final hour: %v", err)
	}
	if got := store.state.months["s1_2026-02"]; got != MonthlyMaxHours {
		t.Fatalf("used hours = %d, want %d", got, MonthlyMaxHours)
	}
}

func TestReserveDailyQuota(t *testing.T) {
	e, store := testEngine()
	ctx := context.Background()
	if _, err := e.Reserve(ctx, "s1", "2026-02-08", []string{"15", "16"}, model.BookingDetails{}); err != nil {
		t.Fatalf("seed bookings: %v", err)
	}

	before := store.state.clone()
	_, err := e.Reserve(ctx, "s1", "2026-02-08", []string{"17"}, model.BookingDetails{})
	if !errors.Is(err, ErrDailyQuotaExceeded) {
		t.Fatalf("expected ErrDailyQuotaExceeded, got %v", err)
	}
	if !reflect.DeepEqual(before, store.state) {
		t.Fatal("failed reserve mutated state")
	}

	// A different day is unaffected by the daily quota.
	if _, err := e.Reserve(ctx, "s1", "2026-02-09", []string{"17"}, model.BookingDetails{}); err != nil {
		t.Fatalf("reserve next day: %v", err)
	}
}

func TestReserveDuplicateBooking(t *testing.T) {
	e, store := testEngine()
	ctx := context.Background()
	if _, err := e.Reserve(ctx, "s1", "2026-02-08", []string{"18"}, model.BookingDetails{}); err != nil {
		t.Fatalf("seed booking: %v", err)
	}

	before := store.state.clone()
	_, err := e.Reserve(ctx, "s1", "2026-02-08", []string{"18"}, model.BookingDetails{})
	if !errors.Is(err, ErrDuplicateBooking) {
		t.Fatalf("expected ErrDuplicateBooking, got %v", err)
	}
	if !reflect.DeepEqual(before, store.state) {
		t.Fatal("failed reserve mutated state")
	}
}

func TestReserveBatchIsAllOrNothing(t *testing.T) {
	e, store := testEngine()
	ctx := context.Background()
	// Second slot of the batch is full; the first must not be committed.
	store.state.slots["2026-02-08_16"] = MaxSeatsPerSlot

	before := store.state.clone()
	_, err := e.Reserve(ctx, "s1", "2026-02-08", []string{"15", "16"}, model.BookingDetails{})
	if !errors.Is(err, ErrSlotFull) {
		t.Fatalf("expected ErrSlotFull, got %v", err)
	}
	if !reflect.DeepEqual(before, store.state) {
		t.Fatal("partial batch was committed")
	}
}

func TestCancel(t *testing.T) {
	e, store := testEngine()
	ctx := context.Background()

	if _, err := e.Reserve(ctx, "s1", "2026-02-08", []string{"17"}, model.BookingDetails{}); err != nil {
		t.Fatalf("seed booking: %v", err)
	}
	id := BookingID("s1", "2026-02-08", "17")

	// Clock pinned to 2026-02-07: the day before the booking, allowed.
	b, err := e.Cancel(ctx, id)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if b.ID != id || b.Start != "17" {
		t.Fatalf("unexpected cancelled booking %+v", b)
	}
	if got := store.state.slots["2026-02-08_17"]; got != 0 {
		t.Fatalf("slot count after cancel = %d, want 0", got)
	}
	if got := store.state.months["s1_2026-02"]; got != 0 {
		t.Fatalf("monthly hours after cancel = %d, want 0", got)
	}
	if _, ok := store.state.days["s1_2026-02-08"]; ok {
		t.Fatal("daily usage row not removed")
	}

	if _, err := e.Cancel(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCancelSameDayCutoff(t *testing.T) {
	e, store := testEngine()
	ctx := context.Background()
	if _, err := e.Reserve(ctx, "s1", "2026-02-08", []string{"17"}, model.BookingDetails{}); err != nil {
		t.Fatalf("seed booking: %v", err)
	}

	// Move the clock to the booking day itself.
	e.now = func() time.Time {
		return time.Date(2026, 2, 8, 9, 0, 0, 0, time.UTC)
	}
	before := store.state.clone()
	_, err := e.Cancel(ctx, BookingID("s1", "2026-02-08", "17"))
	if !errors.Is(err, ErrCutoffViolation) {
		t.Fatalf("expected ErrCutoffViolation, got %v", err)
	}
	if !reflect.DeepEqual(before, store.state) {
		t.Fatal("rejected cancel mutated state")
	}
}

func TestConcurrentReserveNeverOverbooks(t *testing.T) {
	e, store := testEngine()
	ctx := context.Background()

	const callers = 2 * MaxSeatsPerSlot
	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			student := "s" + string(rune('A'+i%26)) + string(rune('a'+i/26))
			_, errs[i] = e.Reserve(ctx, student, "2026-02-08", []string{"17"}, model.BookingDetails{})
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrSlotFull):
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok != MaxSeatsPerSlot {
		t.Fatalf("%d reserves succeeded, want %d", ok, MaxSeatsPerSlot)
	}
	if got := store.state.slots["2026-02-08_17"]; got != MaxSeatsPerSlot {
		t.Fatalf("slot count = %d, want %d", got, MaxSeatsPerSlot)
	}
	if got := len(store.state.bookings); got != MaxSeatsPerSlot {
		t.Fatalf("%d bookings committed, want %d", got, MaxSeatsPerSlot)
	}
}

func TestOccupancyReadIsIdempotent(t *testing.T) {
	e, _ := testEngine()
	ctx := context.Background()
	if _, err := e.Reserve(ctx, "s1", "2026-02-08", []string{"17"}, model.BookingDetails{}); err != nil {
		t.Fatalf("seed booking: %v", err)
	}

	c1, cap1, err := e.Occupancy(ctx, "2026-02-08", "17")
	if err != nil {
		t.Fatalf("occupancy: %v", err)
	}
	c2, cap2, err := e.Occupancy(ctx, "2026-02-08", "17")
	if err != nil {
		t.Fatalf("occupancy again: %v", err)
	}
	if c1 != c2 || cap1 != cap2 {
		t.Fatalf("occupancy not stable: (%d,%d) vs (%d,%d)", c1, cap1, c2, cap2)
	}
	if c1 != 1 || cap1 != MaxSeatsPerSlot {
		t.Fatalf("occupancy = (%d,%d), want (1,%d)", c1, cap1, MaxSeatsPerSlot)
	}
}

func TestUsage(t *testing.T) {
	e, _ := testEngine()
	ctx := context.Background()
	if _, err := e.Reserve(ctx, "s1", "2026-02-08", []string{"15", "16"}, model.BookingDetails{}); err != nil {
		t.Fatalf("seed bookings: %v", err)
	}

	used, limit, err := e.Usage(ctx, "s1", "2026-02")
	if err != nil {
		t.Fatalf("usage: %v", err)
	}
	if used != 2 || limit != MonthlyMaxHours {
		t.Fatalf("usage = (%d,%d), want (2,%d)", used, limit, MonthlyMaxHours)
	}

	if _, _, err := e.Usage(ctx, "s1", "2026-2"); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest for bad month, got %v", err)
	}
}

// contentionStore always fails as if the retry budget were exhausted.
type contentionStore struct{}

func (contentionStore) RunTransaction(context.Context, func(tx Tx) error) error {
	return ErrContention
}

func TestReserveSurfacesContention(t *testing.T) {
	e := NewEngine(contentionStore{})
	_, err := e.Reserve(context.Background(), "s1", "2026-02-08", []string{"17"}, model.BookingDetails{})
	if !errors.Is(err, ErrContention) {
		t.Fatalf("expected ErrContention, got %v", err)
	}
}
