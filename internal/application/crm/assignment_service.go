package crm

import (
	"context"

	"github.com/crm/backend/internal/domain/crm"
	"github.com/crm/backend/internal/domain/identity"
	"github.com/crm/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// AssignmentService picks the next agent for a lead round-robin per country.
// The rotation position is a persisted row read under a row lock, so two
// leads arriving at once advance the rotation twice instead of both landing
// on the same agent.
type AssignmentService struct {
	scope  TransactionScope
	logger *zap.Logger
}

// NewAssignmentService creates a new assignment service
func NewAssignmentService(scope TransactionScope, logger *zap.Logger) *AssignmentService {
	return &AssignmentService{
		scope:  scope,
		logger: logger,
	}
}

// NextAgent returns the agent the rotation selects for the country and
// advances the rotation. Falls back to agents of any country, then to
// admins, when the country has no active agents.
func (s *AssignmentService) NextAgent(ctx context.Context, country string) (*identity.Staff, error) {
	var selected *identity.Staff

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		scopeKey := country
		if scopeKey == "" {
			scopeKey = crm.AssignmentScopeDefault
		}

		state, err := repos.AssignmentRepo().FindOrCreateLocked(ctx, scopeKey)
		if err != nil {
			return err
		}

		candidates, err := s.candidates(ctx, repos, country)
		if err != nil {
			return err
		}
		if len(candidates) == 0 {
			return shared.NewDomainError("NO_AGENTS_AVAILABLE", "No active staff available for lead assignment")
		}

		next := rotateAfter(candidates, state)
		state.Advance(next.ID)
		if err := repos.AssignmentRepo().Save(ctx, state); err != nil {
			return err
		}

		selected = next
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("Agent selected by rotation",
		zap.String("country", country),
		zap.String("agent_id", selected.ID.String()),
	)
	return selected, nil
}

// candidates resolves the ordered pool the rotation walks: country agents,
// then any agents, then admins.
func (s *AssignmentService) candidates(ctx context.Context, repos TransactionalRepositories, country string) ([]identity.Staff, error) {
	agents, err := repos.StaffRepo().FindActiveByRole(ctx, identity.RoleAgent, country)
	if err != nil {
		return nil, err
	}
	if len(agents) > 0 {
		return agents, nil
	}

	if country != "" {
		agents, err = repos.StaffRepo().FindActiveByRole(ctx, identity.RoleAgent, "")
		if err != nil {
			return nil, err
		}
		if len(agents) > 0 {
			return agents, nil
		}
	}

	return repos.StaffRepo().FindActiveByRole(ctx, identity.RoleAdmin, "")
}

// rotateAfter picks the candidate following the last assigned agent. When
// the last agent is gone from the pool the rotation restarts at the front.
func rotateAfter(candidates []identity.Staff, state *crm.AssignmentState) *identity.Staff {
	if state.LastAgentID == nil {
		return &candidates[0]
	}

	for i := range candidates {
		if candidates[i].ID == *state.LastAgentID {
			return &candidates[(i+1)%len(candidates)]
		}
	}
	return &candidates[0]
}
