package persistence

import (
	"context"

	"github.com/crm/backend/internal/domain/crm"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormAssignmentStateRepository implements AssignmentStateRepository using GORM
type GormAssignmentStateRepository struct {
	db *gorm.DB
}

// NewGormAssignmentStateRepository creates a new GormAssignmentStateRepository
func NewGormAssignmentStateRepository(db *gorm.DB) *GormAssignmentStateRepository {
	return &GormAssignmentStateRepository{db: db}
}

// FindOrCreateLocked loads the rotation row for a scope under a row lock,
// creating it first if the scope has never been assigned. Two rotations for
// the same scope serialize on the lock: the insert is ON CONFLICT DO NOTHING
// so the loser of the creation race falls through to the locked read.
//
// Must run inside a transaction; the lock is released when that transaction
// ends.
func (r *GormAssignmentStateRepository) FindOrCreateLocked(ctx context.Context, scope string) (*crm.AssignmentState, error) {
	seed := crm.NewAssignmentState(scope)
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "scope"}},
			DoNothing: true,
		}).
		Create(seed).Error; err != nil {
		return nil, err
	}

	var state crm.AssignmentState
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("scope = ?", seed.Scope).
		First(&state).Error; err != nil {
		return nil, err
	}
	return &state, nil
}

// Save persists the advanced rotation state
func (r *GormAssignmentStateRepository) Save(ctx context.Context, state *crm.AssignmentState) error {
	return r.db.WithContext(ctx).Save(state).Error
}

// Ensure GormAssignmentStateRepository implements AssignmentStateRepository
var _ crm.AssignmentStateRepository = (*GormAssignmentStateRepository)(nil)
