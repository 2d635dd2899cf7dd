package domain

import (
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "PENDING"
	BookingConfirmed BookingStatus = "CONFIRMED"
	BookingCancelled BookingStatus = "CANCELLED"
	BookingCompleted BookingStatus = "COMPLETED"
	BookingRefunded  BookingStatus = "REFUNDED"
)

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "PENDING"
	PaymentPaid     PaymentStatus = "PAID"
	PaymentRefunded PaymentStatus = "REFUNDED"
)

// Event is a bookable museum event. AvailableSeats is the capacity ledger:
// it is mutated only by the booking create and cancel paths and always stays
// within [0, Capacity].
type Event struct {
	ID             uuid.UUID
	Title          string
	Description    string
	Venue          string
	Date           time.Time
	Capacity       int
	AvailableSeats int
	Prices         map[string]float64 // tier name -> unit price
	Currency       string
	Published      bool
	Cancelled      bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TicketLine is one tier of tickets on a booking. Price is snapshotted
// from the event at booking time and never re-read.
type TicketLine struct {
	Tier     string
	Quantity int
	Price    float64
}

type AddOn struct {
	Name     string
	Price    float64
	Quantity int
}

type Contact struct {
	Name  string
	Email string
	Phone string
}

type Booking struct {
	ID                 uuid.UUID
	Reference          string
	UserID             uuid.UUID
	EventID            uuid.UUID
	Tickets            []TicketLine
	AddOns             []AddOn
	TotalTickets       int
	TotalAmount        float64
	Currency           string
	Contact            Contact
	SpecialRequests    string
	Status             BookingStatus
	PaymentStatus      PaymentStatus
	QRCode             string // base64 PNG, set once at creation
	RefundAmount       float64
	CancellationReason string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Terminal reports whether the booking has already been cancelled or
// refunded; terminal bookings reject further cancellation.
func (b *Booking) Terminal() bool {
	return b.Status == BookingCancelled || b.Status == BookingRefunded
}
