package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/quantgate/quantgate/internal/regime"
)

// RegimeRepo stores global regime snapshots, one row per epoch timestamp.
type RegimeRepo struct {
	db      *sqlx.DB
	timeout time.Duration
}

func NewRegimeRepo(db *sqlx.DB, timeout time.Duration) *RegimeRepo {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &RegimeRepo{db: db, timeout: timeout}
}

// Upsert writes the snapshot for its epoch timestamp.
func (r *RegimeRepo) Upsert(ctx context.Context, snap regime.GlobalSnapshot) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	details, err := json.Marshal(snap.Details)
	if err != nil {
		return fmt.Errorf("marshal snapshot details: %w", err)
	}

	query := `
		INSERT INTO regime_snapshots
		(ts, state, risk_score, risk_scaler, trend_score, vol_score,
		 corr_score, breadth_score, liquidity_score, details)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (ts) DO UPDATE SET
			state = EXCLUDED.state,
			risk_score = EXCLUDED.risk_score,
			risk_scaler = EXCLUDED.risk_scaler,
			trend_score = EXCLUDED.trend_score,
			vol_score = EXCLUDED.vol_score,
			corr_score = EXCLUDED.corr_score,
			breadth_score = EXCLUDED.breadth_score,
			liquidity_score = EXCLUDED.liquidity_score,
			details = EXCLUDED.details`

	if _, err := r.db.ExecContext(ctx, query,
		snap.AsOf, snap.State.String(), snap.RiskScore, snap.RiskScaler,
		snap.TrendScore, snap.VolScore, snap.CorrScore, snap.BreadthScore,
		snap.LiquidityScore, details); err != nil {
		return fmt.Errorf("upsert regime snapshot: %w", err)
	}
	return nil
}

// Latest returns the most recent snapshot, or nil when the table is
// empty.
func (r *RegimeRepo) Latest(ctx context.Context) (*regime.GlobalSnapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		SELECT ts, state, risk_score, risk_scaler, trend_score, vol_score,
		       corr_score, breadth_score, liquidity_score, details
		FROM regime_snapshots
		ORDER BY ts DESC
		LIMIT 1`

	var row struct {
		TS             time.Time `db:"ts"`
		State          string    `db:"state"`
		RiskScore      float64   `db:"risk_score"`
		RiskScaler     float64   `db:"risk_scaler"`
		TrendScore     float64   `db:"trend_score"`
		VolScore       float64   `db:"vol_score"`
		CorrScore      float64   `db:"corr_score"`
		BreadthScore   float64   `db:"breadth_score"`
		LiquidityScore float64   `db:"liquidity_score"`
		Details        []byte    `db:"details"`
	}
	if err := r.db.GetContext(ctx, &row, query); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("select latest regime snapshot: %w", err)
	}

	snap := regime.GlobalSnapshot{
		AsOf:           row.TS,
		State:          regime.ParseState(row.State),
		RiskScore:      row.RiskScore,
		RiskScaler:     row.RiskScaler,
		TrendScore:     row.TrendScore,
		VolScore:       row.VolScore,
		CorrScore:      row.CorrScore,
		BreadthScore:   row.BreadthScore,
		LiquidityScore: row.LiquidityScore,
	}
	if len(row.Details) > 0 {
		if err := json.Unmarshal(row.Details, &snap.Details); err != nil {
			return nil, fmt.Errorf("unmarshal snapshot details: %w", err)
		}
	}
	return &snap, nil
}
