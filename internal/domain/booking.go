package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewBooking builds a pending booking with totals computed from the given
// ticket lines and add-ons. Totals are a pure function of the lines: calling
// ComputeTotals again on the same booking yields the same numbers.
func NewBooking(userID, eventID uuid.UUID, tickets []TicketLine, addons []AddOn, contact Contact, currency, specialRequests string) Booking {
	b := Booking{
		ID:              uuid.New(),
		Reference:       NewReference(),
		UserID:          userID,
		EventID:         eventID,
		Tickets:         tickets,
		AddOns:          addons,
		Currency:        currency,
		Contact:         contact,
		SpecialRequests: specialRequests,
		Status:          BookingPending,
		PaymentStatus:   PaymentPending,
	}
	b.ComputeTotals()
	return b
}

// ComputeTotals recalculates TotalTickets and TotalAmount from the ticket
// lines and add-ons.
func (b *Booking) ComputeTotals() {
	tickets := 0
	amount := 0.0
	for _, line := range b.Tickets {
		tickets += line.Quantity
		amount += float64(line.Quantity) * line.Price
	}
	for _, a := range b.AddOns {
		amount += a.Price * float64(a.Quantity)
	}
	b.TotalTickets = tickets
	b.TotalAmount = amount
}

// ValidateForCreate checks the request-shaped parts of a booking before any
// storage round-trip.
func (b *Booking) ValidateForCreate() error {
	if len(b.Tickets) == 0 {
		return ErrInvalidInput
	}
	for _, line := range b.Tickets {
		if line.Quantity <= 0 || line.Price < 0 || strings.TrimSpace(line.Tier) == "" {
			return ErrInvalidInput
		}
	}
	for _, a := range b.AddOns {
		if a.Quantity <= 0 || a.Price < 0 || strings.TrimSpace(a.Name) == "" {
			return ErrInvalidInput
		}
	}
	if strings.TrimSpace(b.Contact.Name) == "" ||
		strings.TrimSpace(b.Contact.Email) == "" ||
		strings.TrimSpace(b.Contact.Phone) == "" {
		return ErrInvalidInput
	}
	return nil
}

// RefundQuote is the outcome of cancelling a booking at a given moment.
type RefundQuote struct {
	Amount float64
	Status BookingStatus
}

// QuoteRefund applies the refund tiers to the time remaining before the
// event: more than 24h out a full refund, more than 12h a half refund,
// otherwise nothing. Both boundaries are strict: exactly 24h before the
// event falls into the 50% tier and exactly 12h into the zero tier.
func QuoteRefund(eventDate, now time.Time, totalAmount float64) RefundQuote {
	hours := eventDate.Sub(now).Hours()
	switch {
	case hours > 24:
		return RefundQuote{Amount: totalAmount, Status: BookingRefunded}
	case hours > 12:
		return RefundQuote{Amount: totalAmount * 0.5, Status: BookingCancelled}
	default:
		return RefundQuote{Amount: 0, Status: BookingCancelled}
	}
}
