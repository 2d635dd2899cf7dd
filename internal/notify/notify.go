// Package notify defines the booking notification messages and the email
// sender that consumes them. Delivery is best-effort end to end: a booking
// is never failed or rolled back because an email could not be sent.
package notify

import (
	"time"

	"github.com/google/uuid"
)

const (
	KeyBookingCreated   = "booking.created"
	KeyBookingCancelled = "booking.cancelled"
)

// Message is the payload carried through the outbox and RabbitMQ to the
// notifier worker.
type Message struct {
	BookingID    uuid.UUID `json:"booking_id"`
	Reference    string    `json:"reference"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	EventTitle   string    `json:"event_title"`
	EventDate    time.Time `json:"event_date"`
	TotalTickets int       `json:"total_tickets"`
	TotalAmount  float64   `json:"total_amount"`
	RefundAmount float64   `json:"refund_amount"`
	Currency     string    `json:"currency"`
}
