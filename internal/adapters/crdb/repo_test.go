package crdb_test

import (
	"context"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/docentdesk/booking/internal/adapters/crdb"
	"github.com/docentdesk/booking/internal/domain"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const testSchema = `
	CREATE TABLE IF NOT EXISTS events (
		id UUID PRIMARY KEY,
		title TEXT,
		description TEXT,
		venue TEXT,
		date TIMESTAMPTZ,
		capacity INT,
		available_seats INT,
		prices JSONB,
		currency TEXT,
		published BOOL,
		cancelled BOOL,
		created_at TIMESTAMPTZ DEFAULT now(),
		updated_at TIMESTAMPTZ DEFAULT now(),
		CHECK (available_seats >= 0 AND available_seats <= capacity)
	);
	CREATE TABLE IF NOT EXISTS bookings (
		id UUID PRIMARY KEY,
		reference TEXT UNIQUE,
		user_id UUID,
		event_id UUID,
		total_tickets INT,
		total_amount FLOAT8,
		currency TEXT,
		contact_name TEXT,
		contact_email TEXT,
		contact_phone TEXT,
		special_requests TEXT,
		status TEXT CHECK (status IN ('PENDING', 'CONFIRMED', 'CANCELLED', 'COMPLETED', 'REFUNDED')),
		payment_status TEXT CHECK (payment_status IN ('PENDING', 'PAID', 'REFUNDED')),
		qr_code TEXT,
		refund_amount FLOAT8,
		cancellation_reason TEXT,
		created_at TIMESTAMPTZ DEFAULT now(),
		updated_at TIMESTAMPTZ DEFAULT now()
	);
	CREATE TABLE IF NOT EXISTS booking_tickets (
		booking_id UUID,
		tier TEXT,
		quantity INT,
		price FLOAT8,
		PRIMARY KEY (booking_id, tier)
	);
	CREATE TABLE IF NOT EXISTS booking_addons (
		booking_id UUID,
		name TEXT,
		price FLOAT8,
		quantity INT,
		PRIMARY KEY (booking_id, name)
	);
	CREATE TABLE IF NOT EXISTS outbox (
		id UUID PRIMARY KEY,
		aggregate_type TEXT,
		aggregate_id UUID,
		event_type TEXT,
		payload_json JSONB,
		created_at TIMESTAMPTZ DEFAULT now(),
		published_at TIMESTAMPTZ,
		status TEXT CHECK (status IN ('NEW', 'PUBLISHED', 'FAILED')),
		dedupe_key TEXT
	);
`

func setupRepo(t *testing.T) (*crdb.Repository, *pgxpool.Pool) {
	t.Helper()
	ctx := context.Background()

	crdbContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "cockroachdb/cockroach:v24.1.1",
			Cmd:          []string{"start-single-node", "--insecure"},
			ExposedPorts: []string{"26257/tcp", "8080/tcp"},
			WaitingFor:   wait.ForHTTP("/health?ready=1").WithPort("8080"),
		},
		Started: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { crdbContainer.Terminate(ctx) })

	host, err := crdbContainer.Host(ctx)
	if err != nil {
		t.Fatal(err)
	}
	port, err := crdbContainer.MappedPort(ctx, "26257")
	if err != nil {
		t.Fatal(err)
	}

	pool, err := pgxpool.New(ctx, "postgresql://root@"+host+":"+port.Port()+"/defaultdb?sslmode=disable")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(pool.Close)

	if _, err := pool.Exec(ctx, testSchema); err != nil {
		t.Fatal(err)
	}

	return crdb.NewRepository(pool), pool
}

func makeEvent(t *testing.T, repo *crdb.Repository, capacity int) domain.Event {
	t.Helper()
	ev, err := domain.NewEvent("Members Preview", "evening tour", "East Wing", time.Now().Add(72*time.Hour), capacity, map[string]float64{"adult": 10, "child": 5}, "USD")
	if err != nil {
		t.Fatal(err)
	}
	ev.Published = true
	if err := repo.CreateEvent(context.Background(), ev); err != nil {
		t.Fatal(err)
	}
	return ev
}

func makeBooking(t *testing.T, repo *crdb.Repository, ev domain.Event, tickets int) domain.Booking {
	t.Helper()
	b := domain.NewBooking(uuid.New(), ev.ID,
		[]domain.TicketLine{{Tier: "adult", Quantity: tickets, Price: 10}},
		nil,
		domain.Contact{Name: "Ada", Email: "ada@example.com", Phone: "+1 555 0100"},
		"USD", "")
	err := repo.WithTx(context.Background(), func(tx pgx.Tx) error {
		return repo.CreateBooking(context.Background(), tx, b)
	})
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func TestRepository_EventRoundTrip(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()

	ev := makeEvent(t, repo, 50)

	got, err := repo.GetEvent(ctx, ev.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Title != ev.Title || got.Capacity != 50 || got.AvailableSeats != 50 {
		t.Errorf("unexpected event %+v", got)
	}
	if got.Prices["adult"] != 10 || got.Prices["child"] != 5 {
		t.Errorf("unexpected prices %+v", got.Prices)
	}

	_, err = repo.GetEvent(ctx, uuid.New())
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestRepository_ReserveSeats(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()

	ev := makeEvent(t, repo, 2)

	err := repo.WithTx(ctx, func(tx pgx.Tx) error {
		return repo.ReserveSeats(ctx, tx, ev.ID, 2)
	})
	if err != nil {
		t.Fatalf("expected reservation to succeed, got %v", err)
	}

	got, err := repo.GetEvent(ctx, ev.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.AvailableSeats != 0 {
		t.Errorf("expected 0 seats, got %d", got.AvailableSeats)
	}

	err = repo.WithTx(ctx, func(tx pgx.Tx) error {
		return repo.ReserveSeats(ctx, tx, ev.ID, 1)
	})
	var capErr *domain.CapacityError
	if !errors.As(err, &capErr) {
		t.Fatalf("expected capacity error, got %v", err)
	}
	if capErr.Remaining != 0 {
		t.Errorf("expected 0 remaining, got %d", capErr.Remaining)
	}

	got, err = repo.GetEvent(ctx, ev.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.AvailableSeats != 0 {
		t.Errorf("rejected reservation must not change seats, got %d", got.AvailableSeats)
	}
}

func TestRepository_RestoreSeatsCappedAtCapacity(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()

	ev := makeEvent(t, repo, 10)

	err := repo.WithTx(ctx, func(tx pgx.Tx) error {
		return repo.ReserveSeats(ctx, tx, ev.ID, 3)
	})
	if err != nil {
		t.Fatal(err)
	}

	err = repo.WithTx(ctx, func(tx pgx.Tx) error {
		return repo.RestoreSeats(ctx, tx, ev.ID, 5)
	})
	if err != nil {
		t.Fatal(err)
	}

	got, err := repo.GetEvent(ctx, ev.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.AvailableSeats != 10 {
		t.Errorf("expected restore capped at capacity 10, got %d", got.AvailableSeats)
	}
}

func TestRepository_BookingRoundTrip(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()

	ev := makeEvent(t, repo, 20)

	b := domain.NewBooking(uuid.New(), ev.ID,
		[]domain.TicketLine{
			{Tier: "adult", Quantity: 2, Price: 10},
			{Tier: "child", Quantity: 1, Price: 5},
		},
		[]domain.AddOn{{Name: "audio guide", Price: 4, Quantity: 2}},
		domain.Contact{Name: "Ada", Email: "ada@example.com", Phone: "+1 555 0100"},
		"USD", "wheelchair access")
	b.QRCode = "dGVzdA=="

	err := repo.WithTx(ctx, func(tx pgx.Tx) error {
		return repo.CreateBooking(ctx, tx, b)
	})
	if err != nil {
		t.Fatal(err)
	}

	got, err := repo.GetBooking(ctx, b.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Reference != b.Reference || got.TotalTickets != 3 || got.TotalAmount != 33 {
		t.Errorf("unexpected booking %+v", got)
	}
	if len(got.Tickets) != 2 || len(got.AddOns) != 1 {
		t.Errorf("expected 2 ticket lines and 1 addon, got %d and %d", len(got.Tickets), len(got.AddOns))
	}
	if got.Status != domain.BookingPending || got.QRCode != "dGVzdA==" {
		t.Errorf("unexpected booking state %+v", got)
	}
}

func TestRepository_ReferenceUniqueConflict(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()

	ev := makeEvent(t, repo, 20)
	first := makeBooking(t, repo, ev, 1)

	dup := domain.NewBooking(uuid.New(), ev.ID,
		[]domain.TicketLine{{Tier: "adult", Quantity: 1, Price: 10}},
		nil,
		domain.Contact{Name: "Bob", Email: "bob@example.com", Phone: "+1 555 0101"},
		"USD", "")
	dup.Reference = first.Reference

	err := repo.WithTx(ctx, func(tx pgx.Tx) error {
		return repo.CreateBooking(ctx, tx, dup)
	})
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected conflict error, got %v", err)
	}
}

func TestRepository_MarkCancelledAndConfirm(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()

	ev := makeEvent(t, repo, 20)
	b := makeBooking(t, repo, ev, 2)

	err := repo.WithTx(ctx, func(tx pgx.Tx) error {
		return repo.MarkCancelled(ctx, tx, b.ID, domain.BookingRefunded, 20, "plans changed")
	})
	if err != nil {
		t.Fatal(err)
	}

	got, err := repo.GetBooking(ctx, b.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != domain.BookingRefunded || got.RefundAmount != 20 || got.PaymentStatus != domain.PaymentRefunded {
		t.Errorf("unexpected cancelled booking %+v", got)
	}
	if got.CancellationReason != "plans changed" {
		t.Errorf("unexpected reason %q", got.CancellationReason)
	}

	pending := makeBooking(t, repo, ev, 1)
	if err := repo.ConfirmBooking(ctx, pending.ID); err != nil {
		t.Fatal(err)
	}
	if err := repo.ConfirmBooking(ctx, pending.ID); !errors.Is(err, domain.ErrInvalidState) {
		t.Errorf("expected invalid state on double confirm, got %v", err)
	}
}

func TestRepository_ListBookingsFilters(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()

	ev1 := makeEvent(t, repo, 20)
	ev2 := makeEvent(t, repo, 20)
	b1 := makeBooking(t, repo, ev1, 1)
	makeBooking(t, repo, ev2, 2)

	byEvent, err := repo.ListBookings(ctx, crdb.BookingFilter{EventID: ev1.ID})
	if err != nil {
		t.Fatal(err)
	}
	if len(byEvent) != 1 || byEvent[0].ID != b1.ID {
		t.Errorf("expected only ev1 booking, got %d", len(byEvent))
	}

	pending, err := repo.ListBookings(ctx, crdb.BookingFilter{Status: domain.BookingPending})
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 2 {
		t.Errorf("expected 2 pending bookings, got %d", len(pending))
	}

	mine, err := repo.ListBookingsByUser(ctx, b1.UserID)
	if err != nil {
		t.Fatal(err)
	}
	if len(mine) != 1 {
		t.Errorf("expected 1 booking for user, got %d", len(mine))
	}
}

func TestRepository_Outbox(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()

	rec := crdb.OutboxRecord{
		ID:            uuid.New(),
		AggregateType: "booking",
		AggregateID:   uuid.New(),
		EventType:     "booking.created",
		Payload:       []byte(`{"reference":"DD-TEST-AAAAAA"}`),
		DedupeKey:     uuid.New().String(),
	}
	err := repo.WithTx(ctx, func(tx pgx.Tx) error {
		return repo.InsertOutbox(ctx, tx, rec)
	})
	if err != nil {
		t.Fatal(err)
	}

	records, err := repo.GetUnpublishedOutbox(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 || records[0].ID != rec.ID {
		t.Fatalf("expected the inserted record, got %d records", len(records))
	}

	if err := repo.MarkPublished(ctx, rec.ID, time.Now()); err != nil {
		t.Fatal(err)
	}
	records, err = repo.GetUnpublishedOutbox(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 0 {
		t.Errorf("expected no unpublished records, got %d", len(records))
	}
}
