// Package booking orchestrates the booking lifecycle: validation, totals,
// persistence, seat accounting, ticket artifact generation, and
// notification dispatch.
package booking

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/docentdesk/booking/internal/adapters/crdb"
	mongoadapter "github.com/docentdesk/booking/internal/adapters/mongo"
	redisadapter "github.com/docentdesk/booking/internal/adapters/redis"
	"github.com/docentdesk/booking/internal/domain"
	"github.com/docentdesk/booking/internal/observability"
	"github.com/docentdesk/booking/internal/ticket"
)

// maxAttempts bounds retries on serialization failures and reference
// collisions. Each attempt regenerates the reference.
const maxAttempts = 3

type Service struct {
	repo   *crdb.Repository
	cache  *redisadapter.Cache
	audit  *mongoadapter.AuditLogger
	logger observability.Logger
	now    func() time.Time
}

func NewService(repo *crdb.Repository, cache *redisadapter.Cache, audit *mongoadapter.AuditLogger, logger observability.Logger) *Service {
	return &Service{repo: repo, cache: cache, audit: audit, logger: logger, now: time.Now}
}

// TicketRequest is one requested tier. Price is optional: when nil it is
// resolved from the event price table; unknown tiers are rejected.
type TicketRequest struct {
	Tier     string
	Quantity int
	Price    *float64
}

type CreateRequest struct {
	UserID          uuid.UUID
	EventID         uuid.UUID
	Tickets         []TicketRequest
	AddOns          []domain.AddOn
	Contact         domain.Contact
	SpecialRequests string
}

// Create validates the event state and capacity, persists a pending booking
// with computed totals and a QR ticket artifact, decrements the seat
// ledger, and queues the confirmation notification. All of it commits in
// one transaction; the notification is an outbox record so its delivery
// can neither block nor fail the booking.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*domain.Booking, error) {
	if len(req.Tickets) == 0 {
		return nil, domain.ErrInvalidInput
	}

	var booking domain.Booking
	var err error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		err = s.repo.WithTx(ctx, func(tx pgx.Tx) error {
			ev, err := s.repo.GetEventTx(ctx, tx, req.EventID)
			if err != nil {
				return err
			}
			if err := ev.Bookable(s.now()); err != nil {
				return err
			}

			lines := make([]domain.TicketLine, 0, len(req.Tickets))
			for _, t := range req.Tickets {
				price := 0.0
				if t.Price != nil {
					price = *t.Price
				} else {
					p, ok := ev.PriceFor(t.Tier)
					if !ok {
						return errors.WithDetailf(domain.ErrInvalidInput, "unknown ticket tier %q", t.Tier)
					}
					price = p
				}
				lines = append(lines, domain.TicketLine{Tier: t.Tier, Quantity: t.Quantity, Price: price})
			}

			b := domain.NewBooking(req.UserID, req.EventID, lines, req.AddOns, req.Contact, ev.Currency, req.SpecialRequests)
			if err := b.ValidateForCreate(); err != nil {
				return err
			}
			if b.TotalTickets > ev.AvailableSeats {
				return &domain.CapacityError{Remaining: ev.AvailableSeats}
			}

			qr, err := ticket.Encode(ticket.Payload{
				Reference:   b.Reference,
				EventID:     ev.ID,
				EventTitle:  ev.Title,
				EventDate:   ev.Date,
				TicketCount: b.TotalTickets,
				HolderName:  b.Contact.Name,
			})
			if err != nil {
				return err
			}
			b.QRCode = qr

			if err := s.repo.CreateBooking(ctx, tx, b); err != nil {
				return err
			}
			if err := s.repo.ReserveSeats(ctx, tx, ev.ID, b.TotalTickets); err != nil {
				return err
			}
			if err := s.queueNotification(ctx, tx, notifyKeyCreated, b, ev); err != nil {
				return err
			}

			booking = b
			return nil
		})
		if errors.Is(err, domain.ErrConflict) || errors.Is(err, domain.ErrSerializationFailure) {
			continue
		}
		break
	}
	if err != nil {
		var capErr *domain.CapacityError
		if errors.As(err, &capErr) {
			observability.CapacityRejections.Inc()
		}
		return nil, err
	}

	observability.BookingsCreated.Inc()
	s.afterWrite(ctx, booking.EventID)
	s.audit.BookingCreated(ctx, booking)
	return &booking, nil
}

// Cancel applies the refund tiers and restores seats. Only the owner or an
// admin may cancel; terminal bookings are rejected so seats are never
// double-credited.
func (s *Service) Cancel(ctx context.Context, bookingID, actorID uuid.UUID, admin bool, reason string) (*domain.Booking, error) {
	var booking domain.Booking
	var err error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		err = s.repo.WithTx(ctx, func(tx pgx.Tx) error {
			b, err := s.repo.GetBookingTx(ctx, tx, bookingID)
			if err != nil {
				return err
			}
			if !admin && b.UserID != actorID {
				return domain.ErrForbidden
			}
			if b.Terminal() {
				return domain.ErrInvalidState
			}

			ev, err := s.repo.GetEventTx(ctx, tx, b.EventID)
			if err != nil {
				return err
			}

			quote := domain.QuoteRefund(ev.Date, s.now(), b.TotalAmount)
			if err := s.repo.MarkCancelled(ctx, tx, b.ID, quote.Status, quote.Amount, reason); err != nil {
				return err
			}
			if err := s.repo.RestoreSeats(ctx, tx, b.EventID, b.TotalTickets); err != nil {
				return err
			}

			b.Status = quote.Status
			b.RefundAmount = quote.Amount
			b.CancellationReason = reason
			if quote.Status == domain.BookingRefunded {
				b.PaymentStatus = domain.PaymentRefunded
			}

			if err := s.queueNotification(ctx, tx, notifyKeyCancelled, *b, ev); err != nil {
				return err
			}

			booking = *b
			return nil
		})
		if errors.Is(err, domain.ErrSerializationFailure) {
			continue
		}
		break
	}
	if err != nil {
		return nil, err
	}

	observability.BookingsCancelled.WithLabelValues(string(booking.Status)).Inc()
	s.afterWrite(ctx, booking.EventID)
	s.audit.BookingCancelled(ctx, booking, actorID)
	return &booking, nil
}

// Get enforces owner-or-admin read access.
func (s *Service) Get(ctx context.Context, bookingID, actorID uuid.UUID, admin bool) (*domain.Booking, error) {
	b, err := s.repo.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !admin && b.UserID != actorID {
		return nil, domain.ErrForbidden
	}
	return b, nil
}

func (s *Service) List(ctx context.Context, f crdb.BookingFilter) ([]domain.Booking, error) {
	return s.repo.ListBookings(ctx, f)
}

func (s *Service) ListMine(ctx context.Context, userID uuid.UUID) ([]domain.Booking, error) {
	return s.repo.ListBookingsByUser(ctx, userID)
}

// Confirm moves a pending booking to confirmed/paid after payment
// reconciliation.
func (s *Service) Confirm(ctx context.Context, bookingID uuid.UUID) (*domain.Booking, error) {
	if err := s.repo.ConfirmBooking(ctx, bookingID); err != nil {
		return nil, err
	}
	return s.repo.GetBooking(ctx, bookingID)
}

// afterWrite drops the cached event so reads see the new seat count. Cache
// trouble is logged and swallowed.
func (s *Service) afterWrite(ctx context.Context, eventID uuid.UUID) {
	if err := s.cache.InvalidateEvent(ctx, eventID); err != nil {
		s.logger.WithError(err).WithField("event_id", eventID).Warn("failed to invalidate event cache")
	}
}
