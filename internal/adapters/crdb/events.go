package crdb

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/docentdesk/booking/internal/domain"
)

func (r *Repository) CreateEvent(ctx context.Context, e domain.Event) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO events (id, title, description, venue, date, capacity, available_seats, prices, currency, published, cancelled, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, now(), now())
	`, e.ID, e.Title, e.Description, e.Venue, e.Date, e.Capacity, e.AvailableSeats, e.Prices, e.Currency, e.Published, e.Cancelled)
	return err
}

const eventColumns = `id, title, description, venue, date, capacity, available_seats, prices, currency, published, cancelled, created_at, updated_at`

func scanEvent(row pgx.Row) (*domain.Event, error) {
	var e domain.Event
	err := row.Scan(&e.ID, &e.Title, &e.Description, &e.Venue, &e.Date, &e.Capacity, &e.AvailableSeats, &e.Prices, &e.Currency, &e.Published, &e.Cancelled, &e.CreatedAt, &e.UpdatedAt)
	if err == pgx.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *Repository) GetEvent(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
	return scanEvent(r.pool.QueryRow(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1`, id))
}

// GetEventTx reads an event inside a booking transaction so the bookable
// checks and the seat decrement observe the same snapshot.
func (r *Repository) GetEventTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Event, error) {
	return scanEvent(tx.QueryRow(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1`, id))
}

// ListEvents returns events, optionally restricted to published ones with a
// date in the future.
func (r *Repository) ListEvents(ctx context.Context, publishedUpcoming bool) ([]domain.Event, error) {
	q := `SELECT ` + eventColumns + ` FROM events ORDER BY date ASC`
	if publishedUpcoming {
		q = `SELECT ` + eventColumns + ` FROM events WHERE published AND NOT cancelled AND date >= now() ORDER BY date ASC`
	}
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

// UpdateEvent rewrites the mutable event fields. Capacity and the seat
// ledger are deliberately absent: capacity is immutable and the ledger only
// moves through ReserveSeats and RestoreSeats.
func (r *Repository) UpdateEvent(ctx context.Context, e domain.Event) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE events SET title = $2, description = $3, venue = $4, date = $5, prices = $6, currency = $7, updated_at = now()
		WHERE id = $1
	`, e.ID, e.Title, e.Description, e.Venue, e.Date, e.Prices, e.Currency)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *Repository) SetEventPublished(ctx context.Context, id uuid.UUID, published bool) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE events SET published = $2, updated_at = now() WHERE id = $1
	`, id, published)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *Repository) SetEventCancelled(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE events SET cancelled = true, updated_at = now() WHERE id = $1
	`, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ReserveSeats decrements the event seat ledger by n in a single
// conditional update: the decrement happens only if enough seats remain, so
// two racing bookings can never oversell. A zero-row result means the
// condition failed and the remaining count is fetched for the error message.
func (r *Repository) ReserveSeats(ctx context.Context, tx pgx.Tx, eventID uuid.UUID, n int) error {
	result, err := tx.Exec(ctx, `
		UPDATE events SET available_seats = available_seats - $2, updated_at = now()
		WHERE id = $1 AND available_seats >= $2
	`, eventID, n)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		var remaining int
		err := tx.QueryRow(ctx, `SELECT available_seats FROM events WHERE id = $1`, eventID).Scan(&remaining)
		if err == pgx.ErrNoRows {
			return domain.ErrNotFound
		}
		if err != nil {
			return err
		}
		return &domain.CapacityError{Remaining: remaining}
	}
	return nil
}

// RestoreSeats returns n seats to the ledger, capped at capacity.
func (r *Repository) RestoreSeats(ctx context.Context, tx pgx.Tx, eventID uuid.UUID, n int) error {
	result, err := tx.Exec(ctx, `
		UPDATE events SET available_seats = LEAST(capacity, available_seats + $2), updated_at = now()
		WHERE id = $1
	`, eventID, n)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
