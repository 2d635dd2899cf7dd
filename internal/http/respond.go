package http

import (
	"encoding/json"
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/docentdesk/booking/internal/domain"
)

// envelope is the response shape for every endpoint:
// {"success": bool, "data": ..., "error": "..."}.
type envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func respond(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(envelope{Success: true, Data: data})
}

func respondError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(envelope{Success: false, Error: msg})
}

// respondDomainError maps the domain error taxonomy onto HTTP statuses.
// Anything unclassified becomes a bare 500: internals never leak to
// clients.
func respondDomainError(w http.ResponseWriter, err error) {
	var capErr *domain.CapacityError
	switch {
	case errors.As(err, &capErr):
		respondError(w, http.StatusBadRequest, capErr.Error())
	case errors.Is(err, domain.ErrNotFound):
		respondError(w, http.StatusNotFound, "not found")
	case errors.Is(err, domain.ErrInvalidState):
		respondError(w, http.StatusBadRequest, "invalid state")
	case errors.Is(err, domain.ErrInvalidInput):
		respondError(w, http.StatusBadRequest, "invalid input")
	case errors.Is(err, domain.ErrForbidden):
		respondError(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, domain.ErrConflict):
		respondError(w, http.StatusConflict, "conflict, try again")
	case errors.Is(err, domain.ErrSerializationFailure):
		respondError(w, http.StatusConflict, "conflict, try again")
	default:
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}
