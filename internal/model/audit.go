package model

import "time"

type AuditAction string

const (
	AuditActionCreate AuditAction = "create"
	AuditActionUpdate AuditAction = "update"
	AuditActionDelete AuditAction = "delete"
)

// AuditEvent is an append-only change record. The equipment module writes
// status-change events into the same table; the history aggregator reads them
// for the timeline.
type AuditEvent struct {
	ID         string      `db:"id" json:"id"`
	EntityType string      `db:"entity_type" json:"entity_type"`
	EntityID   string      `db:"entity_id" json:"entity_id"`
	Action     AuditAction `db:"action" json:"action"`
	Actor      string      `db:"actor" json:"actor"`
	OldValues  *string     `db:"old_values" json:"old_values"`
	NewValues  *string     `db:"new_values" json:"new_values"`
	CreatedAt  time.Time   `db:"created_at" json:"created_at"`
}
