package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/crm/backend/internal/domain/ordering"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormEmSeriesRepository implements EmSeriesRepository using GORM
type GormEmSeriesRepository struct {
	db *gorm.DB
}

// NewGormEmSeriesRepository creates a new GormEmSeriesRepository
func NewGormEmSeriesRepository(db *gorm.DB) *GormEmSeriesRepository {
	return &GormEmSeriesRepository{db: db}
}

// FindByID finds a series by its ID
func (r *GormEmSeriesRepository) FindByID(ctx context.Context, id uuid.UUID) (*ordering.EmSeries, error) {
	var series ordering.EmSeries
	if err := r.db.WithContext(ctx).First(&series, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &series, nil
}

// FindByCountry finds a series by country
func (r *GormEmSeriesRepository) FindByCountry(ctx context.Context, country string) (*ordering.EmSeries, error) {
	var series ordering.EmSeries
	if err := r.db.WithContext(ctx).
		Where("country = ?", strings.TrimSpace(country)).
		First(&series).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &series, nil
}

// FindAll lists all series
func (r *GormEmSeriesRepository) FindAll(ctx context.Context, filter shared.Filter) ([]ordering.EmSeries, error) {
	var series []ordering.EmSeries
	query := r.db.WithContext(ctx).Model(&ordering.EmSeries{})

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if err := query.Order("country ASC").Find(&series).Error; err != nil {
		return nil, err
	}
	return series, nil
}

// Save creates or updates a series
func (r *GormEmSeriesRepository) Save(ctx context.Context, series *ordering.EmSeries) error {
	return r.db.WithContext(ctx).Save(series).Error
}

// AllocateNumber issues the next number for a country under a row lock.
// The series row is created on first use with its counter at 1, so the
// first number a fresh country issues is 1. The insert races benignly:
// ON CONFLICT DO NOTHING lets concurrent bootstrappers fall through to
// the locked read, where exactly one of them sees counter 1 first.
//
// Must run inside a transaction; the row lock is held until that
// transaction commits or rolls back, which is what keeps two conversions
// from formatting the same number.
func (r *GormEmSeriesRepository) AllocateNumber(ctx context.Context, country string) (string, error) {
	country = strings.TrimSpace(country)
	if country == "" {
		return "", shared.NewDomainError("INVALID_COUNTRY", "Series country cannot be empty")
	}

	seed, err := ordering.NewEmSeries(country, "", 1)
	if err != nil {
		return "", err
	}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "country"}},
			DoNothing: true,
		}).
		Create(seed).Error; err != nil {
		return "", err
	}

	var series ordering.EmSeries
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("country = ?", country).
		First(&series).Error; err != nil {
		return "", err
	}

	if !series.Active {
		return "", shared.NewDomainError("SERIES_INACTIVE", "The numbering series for this country is disabled")
	}

	number := series.Allocate()

	if err := r.db.WithContext(ctx).
		Model(&ordering.EmSeries{}).
		Where("id = ?", series.ID).
		Updates(map[string]interface{}{
			"next_counter": series.NextCounter,
			"updated_at":   series.UpdatedAt,
		}).Error; err != nil {
		return "", err
	}

	return number, nil
}

// Ensure GormEmSeriesRepository implements EmSeriesRepository
var _ ordering.EmSeriesRepository = (*GormEmSeriesRepository)(nil)
