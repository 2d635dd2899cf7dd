package booking

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/docentdesk/booking/internal/adapters/crdb"
	"github.com/docentdesk/booking/internal/domain"
	"github.com/docentdesk/booking/internal/notify"
)

const (
	notifyKeyCreated   = notify.KeyBookingCreated
	notifyKeyCancelled = notify.KeyBookingCancelled
)

// queueNotification commits the notification with the booking itself: an
// outbox record that the publisher later hands to RabbitMQ. The email can
// be slow or fail without touching the booking.
func (s *Service) queueNotification(ctx context.Context, tx pgx.Tx, key string, b domain.Booking, ev *domain.Event) error {
	msg := notify.Message{
		BookingID:    b.ID,
		Reference:    b.Reference,
		Email:        b.Contact.Email,
		Name:         b.Contact.Name,
		EventTitle:   ev.Title,
		EventDate:    ev.Date,
		TotalTickets: b.TotalTickets,
		TotalAmount:  b.TotalAmount,
		RefundAmount: b.RefundAmount,
		Currency:     b.Currency,
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return s.repo.InsertOutbox(ctx, tx, crdb.OutboxRecord{
		ID:            uuid.New(),
		AggregateType: "booking",
		AggregateID:   b.ID,
		EventType:     key,
		Payload:       payload,
		DedupeKey:     uuid.New().String(),
	})
}
