package ordering

import (
	"context"
	"errors"

	auditapp "github.com/crm/backend/internal/application/audit"
	"github.com/crm/backend/internal/domain/audit"
	"github.com/crm/backend/internal/domain/ordering"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AuditEntityEmSeries is the entity type audit entries use for series
const AuditEntityEmSeries = "EmSeries"

// EmSeriesService manages the per-country numbering series settings.
// Allocation itself happens inside the conversion transaction and is not
// exposed here.
type EmSeriesService struct {
	seriesRepo ordering.EmSeriesRepository
	auditor    *auditapp.AuditService
	logger     *zap.Logger
}

// NewEmSeriesService creates a new series settings service
func NewEmSeriesService(seriesRepo ordering.EmSeriesRepository, auditor *auditapp.AuditService, logger *zap.Logger) *EmSeriesService {
	return &EmSeriesService{
		seriesRepo: seriesRepo,
		auditor:    auditor,
		logger:     logger,
	}
}

// ListSeries lists all numbering series
func (s *EmSeriesService) ListSeries(ctx context.Context) ([]EmSeriesResponse, error) {
	series, err := s.seriesRepo.FindAll(ctx, shared.DefaultFilter())
	if err != nil {
		return nil, err
	}

	responses := make([]EmSeriesResponse, len(series))
	for i := range series {
		responses[i] = ToEmSeriesResponse(&series[i])
	}
	return responses, nil
}

// GetSeriesByCountry returns the series for a country
func (s *EmSeriesService) GetSeriesByCountry(ctx context.Context, country string) (*EmSeriesResponse, error) {
	series, err := s.seriesRepo.FindByCountry(ctx, country)
	if err != nil {
		return nil, err
	}

	resp := ToEmSeriesResponse(series)
	return &resp, nil
}

// CreateSeries creates a numbering series for a country that doesn't have
// one yet
func (s *EmSeriesService) CreateSeries(ctx context.Context, req CreateEmSeriesRequest, actorID *uuid.UUID) (*EmSeriesResponse, error) {
	existing, err := s.seriesRepo.FindByCountry(ctx, req.Country)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, shared.NewDomainError("SERIES_EXISTS", "A numbering series for this country already exists")
	}

	counter := req.NextCounter
	if counter == 0 {
		counter = 1
	}
	series, err := ordering.NewEmSeries(req.Country, req.Prefix, counter)
	if err != nil {
		return nil, err
	}

	if err := s.seriesRepo.Save(ctx, series); err != nil {
		return nil, err
	}

	s.auditor.Record(ctx, AuditEntityEmSeries, series.ID, audit.ActionCreate, actorID, nil, seriesSnapshot(series))

	s.logger.Info("Numbering series created",
		zap.String("country", series.Country),
		zap.String("prefix", series.Prefix),
	)

	resp := ToEmSeriesResponse(series)
	return &resp, nil
}

// UpdateSeries updates the prefix, counter or active flag of a series
func (s *EmSeriesService) UpdateSeries(ctx context.Context, id uuid.UUID, req UpdateEmSeriesRequest, actorID *uuid.UUID) (*EmSeriesResponse, error) {
	series, err := s.seriesRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	before := seriesSnapshot(series)

	if req.Prefix != nil || req.NextCounter != nil {
		prefix := series.Prefix
		counter := series.NextCounter
		if req.Prefix != nil {
			prefix = *req.Prefix
		}
		if req.NextCounter != nil {
			counter = *req.NextCounter
		}
		if err := series.UpdateSettings(prefix, counter); err != nil {
			return nil, err
		}
	}
	if req.Active != nil {
		if *req.Active {
			series.Activate()
		} else {
			series.Deactivate()
		}
	}

	if err := s.seriesRepo.Save(ctx, series); err != nil {
		return nil, err
	}

	s.auditor.Record(ctx, AuditEntityEmSeries, series.ID, audit.ActionUpdate, actorID, before, seriesSnapshot(series))

	resp := ToEmSeriesResponse(series)
	return &resp, nil
}

func seriesSnapshot(series *ordering.EmSeries) map[string]interface{} {
	return map[string]interface{}{
		"country":      series.Country,
		"prefix":       series.Prefix,
		"next_counter": series.NextCounter,
		"active":       series.Active,
	}
}
