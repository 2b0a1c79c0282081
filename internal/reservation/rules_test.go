package reservation

import (
	"testing"
	"time"
)

func TestValidStart(t *testing.T) {
	for _, s := range SlotStarts {
		if !ValidStart(s) {
			t.Errorf("catalog start %q rejected", s)
		}
	}
	for _, s := range []string{"14", "21", "", "15:00", "1500"} {
		if ValidStart(s) {
			t.Errorf("start %q accepted", s)
		}
	}
}

func TestValidDate(t *testing.T) {
	cases := map[string]bool{
		"2026-02-08": true,
		"2026-12-31": true,
		"2026-2-08":  false,
		"2026-02-30": false,
		"20260208":   false,
		"":           false,
	}
	for in, want := range cases {
		if got := ValidDate(in); got != want {
			t.Errorf("ValidDate(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestValidMonth(t *testing.T) {
	cases := map[string]bool{
		"2026-02": true,
		"2026-13": false,
		"2026-2":  false,
		"2026":    false,
	}
	for in, want := range cases {
		if got := ValidMonth(in); got != want {
			t.Errorf("ValidMonth(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestMonthOf(t *testing.T) {
	if got := MonthOf("2026-02-08"); got != "2026-02" {
		t.Fatalf("MonthOf = %q, want 2026-02", got)
	}
}

func TestBookingID(t *testing.T) {
	if got := BookingID("s1", "2026-02-08", "17"); got != "s1_2026-02-08_17" {
		t.Fatalf("BookingID = %q", got)
	}
}

func TestYMD(t *testing.T) {
	d := time.Date(2026, 2, 8, 23, 59, 0, 0, time.UTC)
	if got := YMD(d); got != "2026-02-08" {
		t.Fatalf("YMD = %q", got)
	}
}
