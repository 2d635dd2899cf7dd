package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/docentdesk/booking/internal/adapters/crdb"
	"github.com/docentdesk/booking/internal/booking"
	"github.com/docentdesk/booking/internal/config"
	"github.com/docentdesk/booking/internal/domain"
	"github.com/docentdesk/booking/internal/idempotency"
	"github.com/docentdesk/booking/internal/observability"
	"golang.org/x/sync/errgroup"
)

type Handlers struct {
	cfg      *config.Config
	bookings *booking.Service
	events   *EventStore
	idemp    *idempotency.Idempotency
	logger   observability.Logger
}

func NewHandlers(cfg *config.Config, bookings *booking.Service, events *EventStore, idemp *idempotency.Idempotency, logger observability.Logger) *Handlers {
	return &Handlers{
		cfg:      cfg,
		bookings: bookings,
		events:   events,
		idemp:    idemp,
		logger:   logger,
	}
}

type ticketLineDTO struct {
	Tier     string   `json:"tier"`
	Quantity int      `json:"quantity"`
	Price    *float64 `json:"price,omitempty"`
}

type addOnDTO struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

type contactDTO struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type bookingDTO struct {
	ID                 uuid.UUID       `json:"id"`
	Reference          string          `json:"reference"`
	UserID             uuid.UUID       `json:"user_id"`
	EventID            uuid.UUID       `json:"event_id"`
	Tickets            []ticketLineDTO `json:"tickets"`
	AddOns             []addOnDTO      `json:"addons,omitempty"`
	TotalTickets       int             `json:"total_tickets"`
	TotalAmount        float64         `json:"total_amount"`
	Currency           string          `json:"currency"`
	Contact            contactDTO      `json:"contact"`
	SpecialRequests    string          `json:"special_requests,omitempty"`
	Status             string          `json:"status"`
	PaymentStatus      string          `json:"payment_status"`
	QRCode             string          `json:"qr_code,omitempty"`
	RefundAmount       float64         `json:"refund_amount"`
	CancellationReason string          `json:"cancellation_reason,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
}

func toBookingDTO(b *domain.Booking) bookingDTO {
	dto := bookingDTO{
		ID:                 b.ID,
		Reference:          b.Reference,
		UserID:             b.UserID,
		EventID:            b.EventID,
		TotalTickets:       b.TotalTickets,
		TotalAmount:        b.TotalAmount,
		Currency:           b.Currency,
		Contact:            contactDTO{Name: b.Contact.Name, Email: b.Contact.Email, Phone: b.Contact.Phone},
		SpecialRequests:    b.SpecialRequests,
		Status:             string(b.Status),
		PaymentStatus:      string(b.PaymentStatus),
		QRCode:             b.QRCode,
		RefundAmount:       b.RefundAmount,
		CancellationReason: b.CancellationReason,
		CreatedAt:          b.CreatedAt,
	}
	for _, line := range b.Tickets {
		price := line.Price
		dto.Tickets = append(dto.Tickets, ticketLineDTO{Tier: line.Tier, Quantity: line.Quantity, Price: &price})
	}
	for _, a := range b.AddOns {
		dto.AddOns = append(dto.AddOns, addOnDTO{Name: a.Name, Price: a.Price, Quantity: a.Quantity})
	}
	return dto
}

// CreateBooking handles POST /v1/bookings. Responses are replayed for a
// repeated Idempotency-Key.
func (h *Handlers) CreateBooking(w http.ResponseWriter, r *http.Request) {
	id, ok := identityFrom(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	key := r.Header.Get("Idempotency-Key")
	existing, err := h.idemp.Get(r.Context(), key)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if existing != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(existing.Status)
		w.Write(existing.Result)
		return
	}

	var req struct {
		EventID         uuid.UUID       `json:"event_id"`
		Tickets         []ticketLineDTO `json:"tickets"`
		AddOns          []addOnDTO      `json:"addons"`
		Contact         contactDTO      `json:"contact"`
		SpecialRequests string          `json:"special_requests"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	createReq := booking.CreateRequest{
		UserID:          id.UserID,
		EventID:         req.EventID,
		Contact:         domain.Contact{Name: req.Contact.Name, Email: req.Contact.Email, Phone: req.Contact.Phone},
		SpecialRequests: req.SpecialRequests,
	}
	for _, t := range req.Tickets {
		createReq.Tickets = append(createReq.Tickets, booking.TicketRequest{Tier: t.Tier, Quantity: t.Quantity, Price: t.Price})
	}
	for _, a := range req.AddOns {
		createReq.AddOns = append(createReq.AddOns, domain.AddOn{Name: a.Name, Price: a.Price, Quantity: a.Quantity})
	}

	b, err := h.bookings.Create(r.Context(), createReq)
	if err != nil {
		loggerFrom(r.Context(), h.logger).WithError(err).Warn("booking creation rejected")
		respondDomainError(w, err)
		return
	}

	data, _ := json.Marshal(envelope{Success: true, Data: toBookingDTO(b)})
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	w.Write(data)

	h.idemp.Set(r.Context(), key, idempotency.Response{Status: http.StatusCreated, Result: data})
}

func (h *Handlers) GetBooking(w http.ResponseWriter, r *http.Request) {
	id, ok := identityFrom(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthenticated")
		return
	}
	bookingID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid id")
		return
	}

	b, err := h.bookings.Get(r.Context(), bookingID, id.UserID, id.Admin())
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respond(w, http.StatusOK, toBookingDTO(b))
}

// CancelBooking handles PUT /v1/bookings/{id}/cancel.
func (h *Handlers) CancelBooking(w http.ResponseWriter, r *http.Request) {
	id, ok := identityFrom(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthenticated")
		return
	}
	bookingID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req struct {
		Reason string `json:"reason"`
	}
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&req)
	}

	b, err := h.bookings.Cancel(r.Context(), bookingID, id.UserID, id.Admin(), req.Reason)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respond(w, http.StatusOK, toBookingDTO(b))
}

// ListBookings handles the admin listing with status/event/payment filters
// and limit/offset pagination.
func (h *Handlers) ListBookings(w http.ResponseWriter, r *http.Request) {
	f := crdb.BookingFilter{
		Status:        domain.BookingStatus(r.URL.Query().Get("status")),
		PaymentStatus: domain.PaymentStatus(r.URL.Query().Get("payment_status")),
		Limit:         50,
	}
	if v := r.URL.Query().Get("event_id"); v != "" {
		eventID, err := uuid.Parse(v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid event_id")
			return
		}
		f.EventID = eventID
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			f.Limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			f.Offset = n
		}
	}

	bookings, err := h.bookings.List(r.Context(), f)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	dtos := make([]bookingDTO, 0, len(bookings))
	for i := range bookings {
		dtos = append(dtos, toBookingDTO(&bookings[i]))
	}
	respond(w, http.StatusOK, dtos)
}

func (h *Handlers) MyBookings(w http.ResponseWriter, r *http.Request) {
	id, ok := identityFrom(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthenticated")
		return
	}
	bookings, err := h.bookings.ListMine(r.Context(), id.UserID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	dtos := make([]bookingDTO, 0, len(bookings))
	for i := range bookings {
		dtos = append(dtos, toBookingDTO(&bookings[i]))
	}
	respond(w, http.StatusOK, dtos)
}

// ConfirmBooking handles PUT /v1/bookings/{id}/confirm (admin).
func (h *Handlers) ConfirmBooking(w http.ResponseWriter, r *http.Request) {
	bookingID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid id")
		return
	}
	b, err := h.bookings.Confirm(r.Context(), bookingID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respond(w, http.StatusOK, toBookingDTO(b))
}

func (h *Handlers) Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// Readyz pings the database and the cache concurrently.
func (h *Handlers) Readyz(w http.ResponseWriter, r *http.Request) {
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error { return h.events.repo.Ping(ctx) })
	g.Go(func() error { return h.events.cache.Ping(ctx) })
	if err := g.Wait(); err != nil {
		loggerFrom(r.Context(), h.logger).WithError(err).Warn("readiness check failed")
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("Not Ready"))
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Ready"))
}
