package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/crm/backend/internal/domain/ordering"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupEmSeriesTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&ordering.EmSeries{})
	require.NoError(t, err)

	return db
}

func TestGormEmSeriesRepository_SaveAndFindByCountry(t *testing.T) {
	repo := NewGormEmSeriesRepository(setupEmSeriesTestDB(t))
	ctx := context.Background()

	series, err := ordering.NewEmSeries("UAE", "", 1)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, series))

	found, err := repo.FindByCountry(ctx, "UAE")
	require.NoError(t, err)
	assert.Equal(t, "EM-UAE-", found.Prefix)
	assert.Equal(t, int64(1), found.NextCounter)
	assert.True(t, found.Active)
}

func TestGormEmSeriesRepository_FindByCountry_TrimsInput(t *testing.T) {
	repo := NewGormEmSeriesRepository(setupEmSeriesTestDB(t))
	ctx := context.Background()

	series, err := ordering.NewEmSeries("KSA", "", 42)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, series))

	found, err := repo.FindByCountry(ctx, "  KSA  ")
	require.NoError(t, err)
	assert.Equal(t, series.ID, found.ID)
}

func TestGormEmSeriesRepository_FindByCountry_NotFound(t *testing.T) {
	repo := NewGormEmSeriesRepository(setupEmSeriesTestDB(t))

	_, err := repo.FindByCountry(context.Background(), "OMN")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormEmSeriesRepository_Save_PersistsCounterAdvance(t *testing.T) {
	repo := NewGormEmSeriesRepository(setupEmSeriesTestDB(t))
	ctx := context.Background()

	series, err := ordering.NewEmSeries("UAE", "", 1)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, series))

	number := series.Allocate()
	assert.Equal(t, "EM-UAE-000001", number)
	require.NoError(t, repo.Save(ctx, series))

	found, err := repo.FindByCountry(ctx, "UAE")
	require.NoError(t, err)
	assert.Equal(t, int64(2), found.NextCounter)
}

func TestGormEmSeriesRepository_FindAll_OrderedByCountry(t *testing.T) {
	repo := NewGormEmSeriesRepository(setupEmSeriesTestDB(t))
	ctx := context.Background()

	for _, country := range []string{"UAE", "BHR", "KSA"} {
		series, err := ordering.NewEmSeries(country, "", 1)
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, series))
	}

	all, err := repo.FindAll(ctx, shared.DefaultFilter())
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "BHR", all[0].Country)
	assert.Equal(t, "KSA", all[1].Country)
	assert.Equal(t, "UAE", all[2].Country)
}

func TestGormEmSeriesRepository_AllocateNumber_EmptyCountry(t *testing.T) {
	repo := NewGormEmSeriesRepository(setupEmSeriesTestDB(t))

	_, err := repo.AllocateNumber(context.Background(), "   ")
	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_COUNTRY", domainErr.Code)
}

// emSeriesRows builds a result set shaped like a locked em_series read.
func emSeriesRows(id uuid.UUID, country, prefix string, nextCounter int64, active bool) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{"id", "created_at", "updated_at", "country", "prefix", "next_counter", "active"}).
		AddRow(id.String(), now, now, country, prefix, nextCounter, active)
}

func TestGormEmSeriesRepository_AllocateNumber_AdvancesCounter(t *testing.T) {
	db, mock, mockDB := newMockDatabase(t)
	defer mockDB.Close()

	seriesID := uuid.New()

	// Seed insert is a no-op for an existing country.
	mock.ExpectExec(`INSERT INTO "em_series" .* ON CONFLICT \("country"\) DO NOTHING`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	// The series row is read under a row lock before the counter moves.
	mock.ExpectQuery(`SELECT \* FROM "em_series" WHERE country = \$1.*FOR UPDATE`).
		WillReturnRows(emSeriesRows(seriesID, "UAE", "EM-UAE-", 41, true))
	// Only the counter and timestamp are written back.
	mock.ExpectExec(`UPDATE "em_series" SET "next_counter"=\$1,"updated_at"=\$2 WHERE id = \$3`).
		WithArgs(int64(42), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewGormEmSeriesRepository(db.DB)
	number, err := repo.AllocateNumber(context.Background(), "UAE")

	require.NoError(t, err)
	assert.Equal(t, "EM-UAE-000041", number)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormEmSeriesRepository_AllocateNumber_BootstrapsSeries(t *testing.T) {
	db, mock, mockDB := newMockDatabase(t)
	defer mockDB.Close()

	seriesID := uuid.New()

	// First use of a country inserts the row, so the locked read sees
	// the counter at its starting value.
	mock.ExpectExec(`INSERT INTO "em_series" .* ON CONFLICT \("country"\) DO NOTHING`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT \* FROM "em_series" WHERE country = \$1.*FOR UPDATE`).
		WillReturnRows(emSeriesRows(seriesID, "KSA", "EM-KSA-", 1, true))
	mock.ExpectExec(`UPDATE "em_series" SET "next_counter"=\$1,"updated_at"=\$2 WHERE id = \$3`).
		WithArgs(int64(2), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewGormEmSeriesRepository(db.DB)
	number, err := repo.AllocateNumber(context.Background(), "KSA")

	require.NoError(t, err)
	assert.Equal(t, "EM-KSA-000001", number)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormEmSeriesRepository_AllocateNumber_InactiveSeries(t *testing.T) {
	db, mock, mockDB := newMockDatabase(t)
	defer mockDB.Close()

	mock.ExpectExec(`INSERT INTO "em_series" .* ON CONFLICT \("country"\) DO NOTHING`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT \* FROM "em_series" WHERE country = \$1.*FOR UPDATE`).
		WillReturnRows(emSeriesRows(uuid.New(), "BHR", "EM-BHR-", 7, false))

	repo := NewGormEmSeriesRepository(db.DB)
	_, err := repo.AllocateNumber(context.Background(), "BHR")

	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "SERIES_INACTIVE", domainErr.Code)
	// A disabled series must not have its counter advanced.
	assert.NoError(t, mock.ExpectationsWereMet())
}
