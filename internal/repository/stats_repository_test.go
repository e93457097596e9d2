package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/yourorg/market-scanner/internal/model"
)

func TestRefreshWeek52_ReturnsUpdatedCount(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	repo := NewStatsRepository(sqlx.NewDb(mockDB, "sqlmock"), zap.NewNop())
	tables, err := model.TablesFor("crypto")
	require.NoError(t, err)

	mock.ExpectExec(`(?s)INSERT INTO crypto_52week_stats.*ON CONFLICT \(symbol_id\) DO UPDATE`).
		WithArgs(model.TimeframeDaily).
		WillReturnResult(sqlmock.NewResult(0, 42))

	updated, err := repo.RefreshWeek52(context.Background(), tables)
	require.NoError(t, err)
	assert.Equal(t, 42, updated)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRefreshWeek52_PropagatesError(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	repo := NewStatsRepository(sqlx.NewDb(mockDB, "sqlmock"), zap.NewNop())
	tables, err := model.TablesFor("crypto")
	require.NoError(t, err)

	mock.ExpectExec(`INSERT INTO crypto_52week_stats`).
		WillReturnError(assert.AnError)

	_, err = repo.RefreshWeek52(context.Background(), tables)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
