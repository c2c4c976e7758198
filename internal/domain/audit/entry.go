package audit

import (
	"encoding/json"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Action identifies what happened to an entity
type Action string

const (
	ActionCreate         Action = "CREATE"
	ActionUpdate         Action = "UPDATE"
	ActionDelete         Action = "DELETE"
	ActionStatusChange   Action = "STATUS_CHANGE"
	ActionAssign         Action = "ASSIGN"
	ActionConvertToOrder Action = "CONVERT_TO_ORDER"
)

// Entry is an append-only audit record. Entries are written after the
// audited change commits and are never updated or deleted.
type Entry struct {
	shared.BaseEntity
	EntityType string          `gorm:"not null;index:idx_audit_entity"`
	EntityID   uuid.UUID       `gorm:"type:uuid;not null;index:idx_audit_entity"`
	Action     Action          `gorm:"not null"`
	ActorID    *uuid.UUID      `gorm:"type:uuid;index"`
	Before     json.RawMessage `gorm:"type:jsonb"`
	After      json.RawMessage `gorm:"type:jsonb"`
}

// NewEntry creates an audit entry. Before and after snapshots are marshaled
// here so callers pass plain structs; a snapshot that fails to marshal is
// recorded as null rather than failing the audit write.
func NewEntry(entityType string, entityID uuid.UUID, action Action, actorID *uuid.UUID, before, after interface{}) *Entry {
	return &Entry{
		BaseEntity: shared.NewBaseEntity(),
		EntityType: entityType,
		EntityID:   entityID,
		Action:     action,
		ActorID:    actorID,
		Before:     marshalSnapshot(before),
		After:      marshalSnapshot(after),
	}
}

func marshalSnapshot(v interface{}) json.RawMessage {
	if v == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return data
}

// TableName specifies the database table name
func (Entry) TableName() string {
	return "audit_entries"
}
