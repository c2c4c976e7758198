package ordering

import (
	"fmt"
	"strings"

	"github.com/crm/backend/internal/domain/shared"
)

// EmSeries is the per-country numbering series for order EM numbers.
// NextCounter is the value the next allocation will format; allocations must
// read and advance it under a row lock inside the conversion transaction so
// two conversions can never format the same number.
type EmSeries struct {
	shared.BaseEntity
	Country     string `gorm:"not null;uniqueIndex"`
	Prefix      string `gorm:"not null"`
	NextCounter int64  `gorm:"not null;default:1"`
	Active      bool   `gorm:"not null;default:true"`
}

// NewEmSeries creates a numbering series for a country
func NewEmSeries(country, prefix string, nextCounter int64) (*EmSeries, error) {
	country = strings.TrimSpace(country)
	if country == "" {
		return nil, shared.NewDomainError("INVALID_COUNTRY", "Series country cannot be empty")
	}
	if strings.TrimSpace(prefix) == "" {
		prefix = DefaultSeriesPrefix(country)
	}
	if nextCounter < 1 {
		return nil, shared.NewDomainError("INVALID_COUNTER", "Series counter must start at 1 or above")
	}

	return &EmSeries{
		BaseEntity:  shared.NewBaseEntity(),
		Country:     country,
		Prefix:      prefix,
		NextCounter: nextCounter,
		Active:      true,
	}, nil
}

// DefaultSeriesPrefix is the prefix used for auto-created series
func DefaultSeriesPrefix(country string) string {
	return "EM-" + strings.ToUpper(country) + "-"
}

// FormatNumber renders a counter value in this series' format
func (s *EmSeries) FormatNumber(counter int64) string {
	return fmt.Sprintf("%s%06d", s.Prefix, counter)
}

// Allocate formats the current counter and advances it. The caller must hold
// the row lock and persist the advanced counter in the same transaction.
func (s *EmSeries) Allocate() string {
	number := s.FormatNumber(s.NextCounter)
	s.NextCounter++
	s.Touch()
	return number
}

// UpdateSettings changes the prefix and counter of the series. The counter
// can only move forward: lowering it would let the series re-issue numbers
// that already exist on orders.
func (s *EmSeries) UpdateSettings(prefix string, nextCounter int64) error {
	if strings.TrimSpace(prefix) == "" {
		return shared.NewDomainError("INVALID_PREFIX", "Series prefix cannot be empty")
	}
	if nextCounter < s.NextCounter {
		return shared.NewDomainError("COUNTER_ROLLBACK", "Series counter cannot be moved backwards")
	}

	s.Prefix = prefix
	s.NextCounter = nextCounter
	s.Touch()
	return nil
}

// Activate enables the series
func (s *EmSeries) Activate() {
	s.Active = true
	s.Touch()
}

// Deactivate disables the series for new allocations
func (s *EmSeries) Deactivate() {
	s.Active = false
	s.Touch()
}

// TableName specifies the database table name
func (EmSeries) TableName() string {
	return "em_series"
}
