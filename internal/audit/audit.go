// Package audit appends change events for administrative operations. The
// history aggregator reads equipment-typed events back out for its timeline;
// everything else is write-only bookkeeping.
package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/maintsys/mro-stock-service/internal/model"
	"github.com/maintsys/mro-stock-service/internal/pkg/logger"
	"go.uber.org/zap"
)

type Event struct {
	EntityType string
	EntityID   string
	Action     model.AuditAction
	Actor      string
	Before     any
	After      any
}

// Recorder never fails the calling operation: write errors are logged and
// swallowed.
type Recorder interface {
	Record(ctx context.Context, ev Event)
}

type pgRecorder struct {
	db     *sqlx.DB
	logger logger.ZapLogger
}

func NewRecorder(db *sqlx.DB, log logger.ZapLogger) Recorder {
	return &pgRecorder{db: db, logger: log}
}

func (r *pgRecorder) Record(ctx context.Context, ev Event) {
	row := model.AuditEvent{
		ID:         uuid.New().String(),
		EntityType: ev.EntityType,
		EntityID:   ev.EntityID,
		Action:     ev.Action,
		Actor:      ev.Actor,
		OldValues:  marshal(ev.Before),
		NewValues:  marshal(ev.After),
		CreatedAt:  time.Now(),
	}

	_, err := r.db.NamedExecContext(ctx, `
        INSERT INTO audit_events (
            id, entity_type, entity_id, action, actor, old_values, new_values, created_at
        )
        VALUES (
            :id, :entity_type, :entity_id, :action, :actor, :old_values, :new_values, :created_at
        )
    `, row)
	if err != nil {
		r.logger.Error("failed to write audit event",
			zap.String("entity_type", ev.EntityType),
			zap.String("entity_id", ev.EntityID),
			zap.Error(err),
		)
	}
}

func marshal(v any) *string {
	if v == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	s := string(b)
	return &s
}

// NopRecorder discards events. Used in tests.
type NopRecorder struct{}

func (NopRecorder) Record(context.Context, Event) {}
