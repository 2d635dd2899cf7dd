package http

import (
	"context"

	"github.com/google/uuid"
	"github.com/docentdesk/booking/internal/observability"
)

type contextKey string

const (
	ctxKeyUserID contextKey = "user_id"
	ctxKeyRole   contextKey = "role"
	ctxKeyLogger contextKey = "logger"
)

const roleAdmin = "admin"

// Identity is the authenticated caller extracted from the JWT.
type Identity struct {
	UserID uuid.UUID
	Role   string
}

func (id Identity) Admin() bool {
	return id.Role == roleAdmin
}

func identityFrom(ctx context.Context) (Identity, bool) {
	userID, ok := ctx.Value(ctxKeyUserID).(uuid.UUID)
	if !ok {
		return Identity{}, false
	}
	role, _ := ctx.Value(ctxKeyRole).(string)
	return Identity{UserID: userID, Role: role}, true
}

func withIdentity(ctx context.Context, id Identity) context.Context {
	ctx = context.WithValue(ctx, ctxKeyUserID, id.UserID)
	return context.WithValue(ctx, ctxKeyRole, id.Role)
}

func contextWithLogger(ctx context.Context, l observability.Logger) context.Context {
	return context.WithValue(ctx, ctxKeyLogger, l)
}

func loggerFrom(ctx context.Context, fallback observability.Logger) observability.Logger {
	if l, ok := ctx.Value(ctxKeyLogger).(observability.Logger); ok {
		return l
	}
	return fallback
}
