// Package queue defines message payloads exchanged over the message broker.
package queue

// ReservationConfirmedEvent is published after a booking batch commits.
// It carries enough for downstream consumers (attendance log, notifier)
// without querying the primary database.
type ReservationConfirmedEvent struct {
	StudentID   string   `json:"student_id"`
	Date        string   `json:"date"`
	Starts      []string `json:"starts"`
	BookingIDs  []string `json:"booking_ids"`
	Subject     string   `json:"subject,omitempty"`
	ConfirmedAt string   `json:"confirmed_at"`
}

// ReservationCancelledEvent is published after a booking is cancelled.
type ReservationCancelledEvent struct {
	BookingID   string `json:"booking_id"`
	StudentID   string `json:"student_id"`
	Date        string `json:"date"`
	Start       string `json:"start"`
	CancelledAt string `json:"cancelled_at"`
}
