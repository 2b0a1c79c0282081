package model

// SlotCounter tracks how many students have booked one offered slot.
// Rows are created lazily on first booking; a missing row means zero
// occupancy.  The (date, start) pair is the slot identity.
type SlotCounter struct {
	Date          string // slot_counters.slot_date
	Start         string // slot_counters.start_hour
	OccupiedCount int    // slot_counters.occupied_count
}

// DayUsage is a student's per-day usage record.  Starts holds the
// start-hour labels the student already booked on that date; its length
// is bounded by the daily slot quota.
type DayUsage struct {
	StudentID string   // user_days.student_id
	Date      string   // user_days.slot_date
	Starts    []string // user_days.starts (comma-joined in the DB)
}

// MonthUsage is a student's per-month usage counter.  One accepted slot
// contributes one hour.  Month is in YYYY-MM form.
type MonthUsage struct {
	StudentID string // user_months.student_id
	Month     string // user_months.ym
	UsedHours int    // user_months.used_hours
}
