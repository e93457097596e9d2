package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/yourorg/market-scanner/internal/model"
)

func newMockRepo(t *testing.T) (*IndicatorRepository, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	db := sqlx.NewDb(mockDB, "sqlmock")
	return NewIndicatorRepository(db, zap.NewNop()), mock
}

func equityTables(t *testing.T) model.AssetTables {
	t.Helper()
	tables, err := model.TablesFor("india_equity_yahoo")
	require.NoError(t, err)
	return tables
}

func TestGetLatestIndicatorDate_NullMeansNoHistory(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`SELECT MAX\(date\) FROM india_equity_yahoo_indicators`).
		WithArgs(1, model.TimeframeDaily).
		WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(nil))

	latest, err := repo.GetLatestIndicatorDate(context.Background(), equityTables(t), 1, model.TimeframeDaily)
	require.NoError(t, err)
	assert.Nil(t, latest)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetLatestIndicatorDate_ReturnsDate(t *testing.T) {
	repo, mock := newMockRepo(t)
	want := time.Date(2024, time.March, 12, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT MAX\(date\) FROM india_equity_yahoo_indicators`).
		WithArgs(1, model.TimeframeDaily).
		WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(want))

	latest, err := repo.GetLatestIndicatorDate(context.Background(), equityTables(t), 1, model.TimeframeDaily)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.True(t, latest.Equal(want))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertIndicatorRows_CommitsBatch(t *testing.T) {
	repo, mock := newMockRepo(t)

	rows := []model.IndicatorRow{
		{SymbolID: 1, Timeframe: model.TimeframeDaily, Date: time.Date(2024, time.March, 12, 0, 0, 0, 0, time.UTC)},
		{SymbolID: 1, Timeframe: model.TimeframeDaily, Date: time.Date(2024, time.March, 13, 0, 0, 0, 0, time.UTC)},
	}

	mock.ExpectBegin()
	prep := mock.ExpectPrepare(`(?s)INSERT INTO india_equity_yahoo_indicators.*ON CONFLICT \(symbol_id, timeframe, date\)`)
	for range rows {
		prep.ExpectExec().WillReturnResult(sqlmock.NewResult(0, 1))
	}
	mock.ExpectCommit()

	err := repo.UpsertIndicatorRows(context.Background(), equityTables(t), rows)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertIndicatorRows_EmptyBatchIsNoop(t *testing.T) {
	repo, mock := newMockRepo(t)

	err := repo.UpsertIndicatorRows(context.Background(), equityTables(t), nil)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertIndicatorRows_RollsBackOnExecError(t *testing.T) {
	repo, mock := newMockRepo(t)

	rows := []model.IndicatorRow{
		{SymbolID: 1, Timeframe: model.TimeframeDaily, Date: time.Date(2024, time.March, 12, 0, 0, 0, 0, time.UTC)},
	}

	mock.ExpectBegin()
	prep := mock.ExpectPrepare(`INSERT INTO india_equity_yahoo_indicators`)
	prep.ExpectExec().WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err := repo.UpsertIndicatorRows(context.Background(), equityTables(t), rows)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
