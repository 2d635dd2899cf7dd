package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewEvent creates an unpublished event with the seat ledger initialized to
// full capacity.
func NewEvent(title, description, venue string, date time.Time, capacity int, prices map[string]float64, currency string) (Event, error) {
	if strings.TrimSpace(title) == "" || capacity <= 0 || len(prices) == 0 {
		return Event{}, ErrInvalidInput
	}
	for _, p := range prices {
		if p < 0 {
			return Event{}, ErrInvalidInput
		}
	}
	if currency == "" {
		currency = "USD"
	}
	return Event{
		ID:             uuid.New(),
		Title:          title,
		Description:    description,
		Venue:          venue,
		Date:           date,
		Capacity:       capacity,
		AvailableSeats: capacity,
		Prices:         prices,
		Currency:       currency,
	}, nil
}

// Bookable reports whether the event can accept new bookings at the given
// moment, and if not, why.
func (e *Event) Bookable(now time.Time) error {
	if !e.Published || e.Cancelled {
		return ErrInvalidState
	}
	if e.Date.Before(now) {
		return ErrInvalidState
	}
	return nil
}

// PriceFor resolves the unit price for a tier from the event price table.
func (e *Event) PriceFor(tier string) (float64, bool) {
	p, ok := e.Prices[tier]
	return p, ok
}
