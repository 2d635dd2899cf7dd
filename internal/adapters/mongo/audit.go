// Package mongo keeps the booking audit trail in a MongoDB collection.
// Audit writes are best-effort: a failure is logged and never propagated to
// the request that triggered it.
package mongo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/docentdesk/booking/internal/domain"
	"github.com/docentdesk/booking/internal/observability"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type AuditLogger struct {
	coll   *mongo.Collection
	logger observability.Logger
}

func NewAuditLogger(db *mongo.Database, logger observability.Logger) *AuditLogger {
	return &AuditLogger{
		coll:   db.Collection("audit_logs"),
		logger: logger,
	}
}

type AuditEntry struct {
	ID        uuid.UUID `bson:"_id"`
	Action    string    `bson:"action"`
	UserID    uuid.UUID `bson:"user_id"`
	Timestamp time.Time `bson:"timestamp"`
	Data      bson.M    `bson:"data"`
}

func (a *AuditLogger) log(ctx context.Context, action string, userID uuid.UUID, data map[string]interface{}) {
	entry := AuditEntry{
		ID:        uuid.New(),
		Action:    action,
		UserID:    userID,
		Timestamp: time.Now(),
		Data:      bson.M(data),
	}
	if _, err := a.coll.InsertOne(ctx, entry); err != nil {
		a.logger.WithError(err).WithField("action", action).Error("failed to insert audit entry")
	}
}

func (a *AuditLogger) BookingCreated(ctx context.Context, b domain.Booking) {
	a.log(ctx, "booking.created", b.UserID, map[string]interface{}{
		"booking_id":    b.ID,
		"reference":     b.Reference,
		"event_id":      b.EventID,
		"total_tickets": b.TotalTickets,
		"total_amount":  b.TotalAmount,
	})
}

func (a *AuditLogger) BookingCancelled(ctx context.Context, b domain.Booking, actor uuid.UUID) {
	a.log(ctx, "booking.cancelled", actor, map[string]interface{}{
		"booking_id":    b.ID,
		"reference":     b.Reference,
		"event_id":      b.EventID,
		"status":        string(b.Status),
		"refund_amount": b.RefundAmount,
	})
}

func (a *AuditLogger) EventChanged(ctx context.Context, action string, eventID, actor uuid.UUID) {
	a.log(ctx, action, actor, map[string]interface{}{
		"event_id": eventID,
	})
}
