package queue

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestFormatLogLineConfirmed(t *testing.T) {
	body, err := json.Marshal(ReservationConfirmedEvent{
		StudentID:   "s1",
		Date:        "2026-02-08",
		Starts:      []string{"17", "18"},
		BookingIDs:  []string{"s1_2026-02-08_17", "s1_2026-02-08_18"},
		Subject:     "math",
		ConfirmedAt: "2026-02-07T12:00:00Z",
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	line, err := FormatLogLine(ConfirmedQueueName, body)
	if err != nil {
		t.Fatalf("FormatLogLine: %v", err)
	}
	for _, want := range []string{"student=s1", "date=2026-02-08", "starts=[17,18]", `subject="math"`} {
		if !strings.Contains(line, want) {
			t.Fatalf("line %q missing %q", line, want)
		}
	}
	if !strings.HasSuffix(line, "\n") {
		t.Fatalf("line is not newline terminated: %q", line)
	}
}

func TestFormatLogLineCancelled(t *testing.T) {
	body, err := json.Marshal(ReservationCancelledEvent{
		BookingID:   "s1_2026-02-08_17",
		StudentID:   "s1",
		Date:        "2026-02-08",
		Start:       "17",
		CancelledAt: "2026-02-07T12:00:00Z",
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	line, err := FormatLogLine(CancelledQueueName, body)
	if err != nil {
		t.Fatalf("FormatLogLine: %v", err)
	}
	for _, want := range []string{"cancelled", "booking=s1_2026-02-08_17", "start=17"} {
		if !strings.Contains(line, want) {
			t.Fatalf("line %q missing %q", line, want)
		}
	}
}

func TestFormatLogLineRejectsGarbage(t *testing.T) {
	if _, err := FormatLogLine(ConfirmedQueueName, []byte("not json")); err == nil {
		t.Fatalf("expected error for malformed body")
	}
	if _, err := FormatLogLine("unknown.queue", []byte("{}")); err == nil {
		t.Fatalf("expected error for unknown queue")
	}
}
