package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantgate/quantgate/internal/regime"
)

func TestRegimeRepo_Upsert(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRegimeRepo(db, time.Second)

	asOf := time.Date(2026, 8, 21, 20, 0, 0, 0, time.UTC)
	snap := regime.GlobalSnapshot{
		AsOf:       asOf,
		State:      regime.Elevated,
		RiskScore:  68.5,
		RiskScaler: 0.7,
		TrendScore: -1.1,
		VolScore:   1.4,
		Details:    map[string]any{"overlay": ""},
	}

	mock.ExpectExec("INSERT INTO regime_snapshots").
		WithArgs(asOf, "elevated", 68.5, 0.7, -1.1, 1.4, 0.0, 0.0, 0.0, []byte(`{"overlay":""}`)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Upsert(context.Background(), snap))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegimeRepo_Latest(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRegimeRepo(db, time.Second)

	asOf := time.Date(2026, 8, 21, 20, 0, 0, 0, time.UTC)
	cols := []string{
		"ts", "state", "risk_score", "risk_scaler", "trend_score",
		"vol_score", "corr_score", "breadth_score", "liquidity_score", "details",
	}
	mock.ExpectQuery("SELECT ts, state").
		WillReturnRows(sqlmock.NewRows(cols).AddRow(
			asOf, "rebound", 87.7, 0.8, -1.36, 2.9, 2.0, -3.0, 0.0,
			[]byte(`{"overlay":"rebound"}`),
		))

	snap, err := repo.Latest(context.Background())
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, regime.Rebound, snap.State)
	assert.Equal(t, 87.7, snap.RiskScore)
	assert.Equal(t, 0.8, snap.RiskScaler)
	assert.Equal(t, asOf, snap.AsOf)
	assert.Equal(t, "rebound", snap.Details["overlay"])
}

func TestRegimeRepo_LatestEmptyTable(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRegimeRepo(db, time.Second)

	mock.ExpectQuery("SELECT ts, state").WillReturnError(sql.ErrNoRows)

	snap, err := repo.Latest(context.Background())
	assert.NoError(t, err)
	assert.Nil(t, snap)
}

func TestRegimeRepo_LatestUnknownStateFallsBack(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRegimeRepo(db, time.Second)

	cols := []string{
		"ts", "state", "risk_score", "risk_scaler", "trend_score",
		"vol_score", "corr_score", "breadth_score", "liquidity_score", "details",
	}
	mock.ExpectQuery("SELECT ts, state").
		WillReturnRows(sqlmock.NewRows(cols).AddRow(
			time.Now(), "sideways", 50.0, 1.0, 0.0, 0.0, 0.0, 0.0, 0.0, []byte(`{}`),
		))

	snap, err := repo.Latest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, regime.Normal, snap.State)
}
