package crm

import (
	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// AssignmentScopeDefault is the scope used when round-robin assignment runs
// without a country filter.
const AssignmentScopeDefault = "default"

// AssignmentState records the last agent handed a lead within a scope
// (usually a country). Round-robin rotation reads and advances this row under
// a row lock so concurrent assignments never pick the same next agent.
type AssignmentState struct {
	shared.BaseEntity
	Scope       string     `gorm:"not null;uniqueIndex"`
	LastAgentID *uuid.UUID `gorm:"type:uuid"`
}

// NewAssignmentState creates the rotation row for a scope
func NewAssignmentState(scope string) *AssignmentState {
	if scope == "" {
		scope = AssignmentScopeDefault
	}
	return &AssignmentState{
		BaseEntity: shared.NewBaseEntity(),
		Scope:      scope,
	}
}

// Advance records the agent chosen by the current rotation step
func (s *AssignmentState) Advance(agentID uuid.UUID) {
	s.LastAgentID = &agentID
	s.Touch()
}

// TableName specifies the database table name
func (AssignmentState) TableName() string {
	return "lead_assignment_states"
}
