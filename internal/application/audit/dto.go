package audit

import (
	"encoding/json"
	"time"

	"github.com/crm/backend/internal/domain/audit"
	"github.com/google/uuid"
)

// EntryResponse represents an audit entry in API responses
type EntryResponse struct {
	ID         uuid.UUID       `json:"id"`
	EntityType string          `json:"entity_type"`
	EntityID   uuid.UUID       `json:"entity_id"`
	Action     string          `json:"action"`
	ActorID    *uuid.UUID      `json:"actor_id,omitempty"`
	Before     json.RawMessage `json:"before,omitempty"`
	After      json.RawMessage `json:"after,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// AuditListFilter represents filter options for audit queries
type AuditListFilter struct {
	EntityType string     `form:"entity_type"`
	EntityID   *uuid.UUID `form:"entity_id"`
	ActorID    *uuid.UUID `form:"actor_id"`
	Action     string     `form:"action"`
	Page       int        `form:"page" binding:"omitempty,min=1"`
	PageSize   int        `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// ToEntryResponse converts a domain entry to a response DTO
func ToEntryResponse(entry *audit.Entry) EntryResponse {
	return EntryResponse{
		ID:         entry.ID,
		EntityType: entry.EntityType,
		EntityID:   entry.EntityID,
		Action:     string(entry.Action),
		ActorID:    entry.ActorID,
		Before:     entry.Before,
		After:      entry.After,
		CreatedAt:  entry.CreatedAt,
	}
}

func toEntryResponses(entries []audit.Entry) []EntryResponse {
	responses := make([]EntryResponse, len(entries))
	for i := range entries {
		responses[i] = ToEntryResponse(&entries[i])
	}
	return responses
}
