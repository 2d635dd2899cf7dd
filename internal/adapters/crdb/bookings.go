package crdb

import (
	"context"
	"strconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/docentdesk/booking/internal/domain"
)

// CreateBooking inserts the booking row plus its ticket lines and add-ons
// in one batch round trip.
// The reference column carries a unique constraint; a collision aborts the
// transaction with domain.ErrConflict and the caller retries with a fresh
// reference.
func (r *Repository) CreateBooking(ctx context.Context, tx pgx.Tx, b domain.Booking) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO bookings (id, reference, user_id, event_id, total_tickets, total_amount, currency,
			contact_name, contact_email, contact_phone, special_requests,
			status, payment_status, qr_code, refund_amount, cancellation_reason, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, 0, '', now(), now())
	`, b.ID, b.Reference, b.UserID, b.EventID, b.TotalTickets, b.TotalAmount, b.Currency,
		b.Contact.Name, b.Contact.Email, b.Contact.Phone, b.SpecialRequests,
		b.Status, b.PaymentStatus, b.QRCode)
	if err != nil {
		return err
	}

	batch := &pgx.Batch{}
	for _, line := range b.Tickets {
		batch.Queue(`
			INSERT INTO booking_tickets (booking_id, tier, quantity, price)
			VALUES ($1, $2, $3, $4)
		`, b.ID, line.Tier, line.Quantity, line.Price)
	}
	for _, a := range b.AddOns {
		batch.Queue(`
			INSERT INTO booking_addons (booking_id, name, price, quantity)
			VALUES ($1, $2, $3, $4)
		`, b.ID, a.Name, a.Price, a.Quantity)
	}
	return tx.SendBatch(ctx, batch).Close()
}

const bookingColumns = `id, reference, user_id, event_id, total_tickets, total_amount, currency,
	contact_name, contact_email, contact_phone, special_requests,
	status, payment_status, qr_code, refund_amount, cancellation_reason, created_at, updated_at`

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var b domain.Booking
	err := row.Scan(&b.ID, &b.Reference, &b.UserID, &b.EventID, &b.TotalTickets, &b.TotalAmount, &b.Currency,
		&b.Contact.Name, &b.Contact.Email, &b.Contact.Phone, &b.SpecialRequests,
		&b.Status, &b.PaymentStatus, &b.QRCode, &b.RefundAmount, &b.CancellationReason, &b.CreatedAt, &b.UpdatedAt)
	if err == pgx.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *Repository) loadBookingLines(ctx context.Context, q interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}, b *domain.Booking) error {
	rows, err := q.Query(ctx, `SELECT tier, quantity, price FROM booking_tickets WHERE booking_id = $1 ORDER BY tier`, b.ID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var line domain.TicketLine
		if err := rows.Scan(&line.Tier, &line.Quantity, &line.Price); err != nil {
			return err
		}
		b.Tickets = append(b.Tickets, line)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = q.Query(ctx, `SELECT name, price, quantity FROM booking_addons WHERE booking_id = $1 ORDER BY name`, b.ID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var a domain.AddOn
		if err := rows.Scan(&a.Name, &a.Price, &a.Quantity); err != nil {
			return err
		}
		b.AddOns = append(b.AddOns, a)
	}
	return rows.Err()
}

func (r *Repository) GetBooking(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	b, err := scanBooking(r.pool.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}
	if err := r.loadBookingLines(ctx, r.pool, b); err != nil {
		return nil, err
	}
	return b, nil
}

// GetBookingTx reads a booking inside a cancellation transaction.
func (r *Repository) GetBookingTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Booking, error) {
	b, err := scanBooking(tx.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}
	if err := r.loadBookingLines(ctx, tx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// MarkCancelled applies the cancellation outcome: status, refund amount, and
// the caller-supplied reason.
func (r *Repository) MarkCancelled(ctx context.Context, tx pgx.Tx, id uuid.UUID, status domain.BookingStatus, refund float64, reason string) error {
	payment := domain.PaymentPending
	if status == domain.BookingRefunded {
		payment = domain.PaymentRefunded
	}
	result, err := tx.Exec(ctx, `
		UPDATE bookings SET status = $2, refund_amount = $3, cancellation_reason = $4, payment_status = $5, updated_at = now()
		WHERE id = $1
	`, id, status, refund, reason, payment)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ConfirmBooking moves a pending booking to confirmed/paid.
func (r *Repository) ConfirmBooking(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE bookings SET status = $2, payment_status = $3, updated_at = now()
		WHERE id = $1 AND status = $4
	`, id, domain.BookingConfirmed, domain.PaymentPaid, domain.BookingPending)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return domain.ErrInvalidState
	}
	return nil
}

// BookingFilter narrows the admin listing. Zero values mean "any".
type BookingFilter struct {
	Status        domain.BookingStatus
	EventID       uuid.UUID
	PaymentStatus domain.PaymentStatus
	Limit         int
	Offset        int
}

func (r *Repository) ListBookings(ctx context.Context, f BookingFilter) ([]domain.Booking, error) {
	q := `SELECT ` + bookingColumns + ` FROM bookings WHERE 1=1`
	args := []any{}
	if f.Status != "" {
		args = append(args, f.Status)
		q += ` AND status = $` + strconv.Itoa(len(args))
	}
	if f.EventID != uuid.Nil {
		args = append(args, f.EventID)
		q += ` AND event_id = $` + strconv.Itoa(len(args))
	}
	if f.PaymentStatus != "" {
		args = append(args, f.PaymentStatus)
		q += ` AND payment_status = $` + strconv.Itoa(len(args))
	}
	q += ` ORDER BY created_at DESC`
	if f.Limit > 0 {
		args = append(args, f.Limit)
		q += ` LIMIT $` + strconv.Itoa(len(args))
	}
	if f.Offset > 0 {
		args = append(args, f.Offset)
		q += ` OFFSET $` + strconv.Itoa(len(args))
	}
	return r.queryBookings(ctx, q, args...)
}

func (r *Repository) ListBookingsByUser(ctx context.Context, userID uuid.UUID) ([]domain.Booking, error) {
	return r.queryBookings(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE user_id = $1 ORDER BY created_at DESC`, userID)
}

func (r *Repository) queryBookings(ctx context.Context, q string, args ...any) ([]domain.Booking, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range bookings {
		if err := r.loadBookingLines(ctx, r.pool, &bookings[i]); err != nil {
			return nil, err
		}
	}
	return bookings, nil
}
