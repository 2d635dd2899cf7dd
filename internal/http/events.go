package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/docentdesk/booking/internal/adapters/crdb"
	mongoadapter "github.com/docentdesk/booking/internal/adapters/mongo"
	redisadapter "github.com/docentdesk/booking/internal/adapters/redis"
	"github.com/docentdesk/booking/internal/domain"
	"github.com/docentdesk/booking/internal/observability"
)

// EventStore wraps the event repository with the Redis read-through cache
// and the audit trail. Seat-ledger mutations never go through here; those
// belong to the booking service.
type EventStore struct {
	repo   *crdb.Repository
	cache  *redisadapter.Cache
	audit  *mongoadapter.AuditLogger
	ttl    time.Duration
	logger observability.Logger
}

func NewEventStore(repo *crdb.Repository, cache *redisadapter.Cache, audit *mongoadapter.AuditLogger, ttl time.Duration, logger observability.Logger) *EventStore {
	return &EventStore{repo: repo, cache: cache, audit: audit, ttl: ttl, logger: logger}
}

func (s *EventStore) Get(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
	if e, err := s.cache.GetEvent(ctx, id); err != nil {
		s.logger.WithError(err).Warn("event cache read failed")
	} else if e != nil {
		return e, nil
	}
	e, err := s.repo.GetEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.cache.SetEvent(ctx, e, s.ttl); err != nil {
		s.logger.WithError(err).Warn("event cache write failed")
	}
	return e, nil
}

func (s *EventStore) invalidate(ctx context.Context, id uuid.UUID) {
	if err := s.cache.InvalidateEvent(ctx, id); err != nil {
		s.logger.WithError(err).Warn("event cache invalidation failed")
	}
}

type eventDTO struct {
	ID             uuid.UUID          `json:"id"`
	Title          string             `json:"title"`
	Description    string             `json:"description,omitempty"`
	Venue          string             `json:"venue,omitempty"`
	Date           time.Time          `json:"date"`
	Capacity       int                `json:"capacity"`
	AvailableSeats int                `json:"available_seats"`
	Prices         map[string]float64 `json:"prices"`
	Currency       string             `json:"currency"`
	Published      bool               `json:"published"`
	Cancelled      bool               `json:"cancelled"`
}

func toEventDTO(e *domain.Event) eventDTO {
	return eventDTO{
		ID:             e.ID,
		Title:          e.Title,
		Description:    e.Description,
		Venue:          e.Venue,
		Date:           e.Date,
		Capacity:       e.Capacity,
		AvailableSeats: e.AvailableSeats,
		Prices:         e.Prices,
		Currency:       e.Currency,
		Published:      e.Published,
		Cancelled:      e.Cancelled,
	}
}

// CreateEvent handles POST /v1/events (admin).
func (h *Handlers) CreateEvent(w http.ResponseWriter, r *http.Request) {
	id, _ := identityFrom(r.Context())

	var req struct {
		Title       string             `json:"title"`
		Description string             `json:"description"`
		Venue       string             `json:"venue"`
		Date        time.Time          `json:"date"`
		Capacity    int                `json:"capacity"`
		Prices      map[string]float64 `json:"prices"`
		Currency    string             `json:"currency"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	e, err := domain.NewEvent(req.Title, req.Description, req.Venue, req.Date, req.Capacity, req.Prices, req.Currency)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	if err := h.events.repo.CreateEvent(r.Context(), e); err != nil {
		respondDomainError(w, err)
		return
	}
	h.events.audit.EventChanged(r.Context(), "event.created", e.ID, id.UserID)
	respond(w, http.StatusCreated, toEventDTO(&e))
}

// ListEvents handles GET /v1/events. Non-admin callers only see published
// upcoming events.
func (h *Handlers) ListEvents(w http.ResponseWriter, r *http.Request) {
	id, _ := identityFrom(r.Context())
	events, err := h.events.repo.ListEvents(r.Context(), !id.Admin())
	if err != nil {
		respondDomainError(w, err)
		return
	}
	dtos := make([]eventDTO, 0, len(events))
	for i := range events {
		dtos = append(dtos, toEventDTO(&events[i]))
	}
	respond(w, http.StatusOK, dtos)
}

func (h *Handlers) GetEvent(w http.ResponseWriter, r *http.Request) {
	eventID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid id")
		return
	}
	e, err := h.events.Get(r.Context(), eventID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respond(w, http.StatusOK, toEventDTO(e))
}

// UpdateEvent handles PUT /v1/events/{id} (admin). Capacity cannot change
// after creation.
func (h *Handlers) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	id, _ := identityFrom(r.Context())
	eventID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid id")
		return
	}

	existing, err := h.events.repo.GetEvent(r.Context(), eventID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	var req struct {
		Title       string             `json:"title"`
		Description string             `json:"description"`
		Venue       string             `json:"venue"`
		Date        time.Time          `json:"date"`
		Prices      map[string]float64 `json:"prices"`
		Currency    string             `json:"currency"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	existing.Title = req.Title
	existing.Description = req.Description
	existing.Venue = req.Venue
	existing.Date = req.Date
	existing.Prices = req.Prices
	existing.Currency = req.Currency

	if err := h.events.repo.UpdateEvent(r.Context(), *existing); err != nil {
		respondDomainError(w, err)
		return
	}
	h.events.invalidate(r.Context(), eventID)
	h.events.audit.EventChanged(r.Context(), "event.updated", eventID, id.UserID)
	respond(w, http.StatusOK, toEventDTO(existing))
}

// PublishEvent handles PUT /v1/events/{id}/publish (admin).
func (h *Handlers) PublishEvent(w http.ResponseWriter, r *http.Request) {
	h.setEventFlag(w, r, "event.published", func(ctx context.Context, id uuid.UUID) error {
		return h.events.repo.SetEventPublished(ctx, id, true)
	})
}

// CancelEvent handles PUT /v1/events/{id}/cancel (admin). Existing bookings
// are untouched; new bookings are rejected by the bookable check.
func (h *Handlers) CancelEvent(w http.ResponseWriter, r *http.Request) {
	h.setEventFlag(w, r, "event.cancelled", func(ctx context.Context, id uuid.UUID) error {
		return h.events.repo.SetEventCancelled(ctx, id)
	})
}

func (h *Handlers) setEventFlag(w http.ResponseWriter, r *http.Request, action string, apply func(context.Context, uuid.UUID) error) {
	id, _ := identityFrom(r.Context())
	eventID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if err := apply(r.Context(), eventID); err != nil {
		respondDomainError(w, err)
		return
	}
	h.events.invalidate(r.Context(), eventID)
	h.events.audit.EventChanged(r.Context(), action, eventID, id.UserID)

	e, err := h.events.repo.GetEvent(r.Context(), eventID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respond(w, http.StatusOK, toEventDTO(e))
}
