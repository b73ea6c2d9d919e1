package agents

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSizingAgent_SmallAccountFloor(t *testing.T) {
	agent := NewSizingAgent(DefaultConfig())

	// Base score 0 still sizes at the bracket minimum.
	sig := agent.Evaluate(&Context{
		Capital:            500,
		MaxLossPerContract: 5,
		BaseScore:          f64(0),
	})
	require.False(t, sig.Veto)
	c := sig.Constraints()
	assert.InDelta(t, 10.0, c["sizing.target_risk_usd"].(float64), 1e-9)
	assert.Equal(t, 2, c["sizing.recommended_contracts"])
	assert.Equal(t, 10.0, c["sizing.min_risk_usd"])
	assert.Equal(t, 35.0, c["sizing.max_risk_usd"])
}

func TestSizingAgent_UpstreamVetoZeroesPosition(t *testing.T) {
	agent := NewSizingAgent(DefaultConfig())

	sig := agent.Evaluate(&Context{
		Capital:            5000,
		MaxLossPerContract: 50,
		AgentSignals: map[string]Signal{
			"liquidity": {AgentID: "liquidity", Score: 0, Veto: true},
		},
	})
	assert.True(t, sig.Veto)
	assert.Equal(t, 0.0, sig.Score)
	c := sig.Constraints()
	assert.Equal(t, 0.0, c["sizing.target_risk_usd"])
	assert.Equal(t, 0, c["sizing.recommended_contracts"])
}

func TestSizingAgent_ConfluenceBoost(t *testing.T) {
	agent := NewSizingAgent(DefaultConfig())

	sig := agent.Evaluate(&Context{
		Capital:            5000,
		MaxLossPerContract: 25,
		BaseScore:          f64(80),
		AgentSignals: map[string]Signal{
			"regime":      {AgentID: "regime", Score: 80},
			"vol_surface": {AgentID: "vol_surface", Score: 90},
		},
	})
	require.False(t, sig.Veto)
	c := sig.Constraints()
	// 0.8 base scale * 1.25 confluence saturates at 1.0: full bracket.
	assert.InDelta(t, 1.0, c["sizing.scale_factor"].(float64), 1e-9)
	assert.InDelta(t, 150.0, c["sizing.target_risk_usd"].(float64), 1e-9)
	assert.Equal(t, 6, c["sizing.recommended_contracts"])
	assert.Equal(t, 80.0, sig.Score)
}

func TestSizingAgent_FractionalEventScoreRescaled(t *testing.T) {
	agent := NewSizingAgent(DefaultConfig())

	sig := agent.Evaluate(&Context{
		Capital:            2000,
		MaxLossPerContract: 10,
		AgentSignals: map[string]Signal{
			// 0.4 on the legacy fractional scale reads as 40.
			"event_risk": {AgentID: "event_risk", Score: 0.4},
		},
	})
	require.False(t, sig.Veto)
	c := sig.Constraints()
	assert.InDelta(t, 0.8, c["sizing.confluence_multiplier"].(float64), 1e-9)
	// Base 50 -> 0.5 scale, * 0.8 = 0.4: 20 + 55*0.4 = 42.
	assert.InDelta(t, 42.0, c["sizing.target_risk_usd"].(float64), 1e-9)
	assert.Equal(t, 4, c["sizing.recommended_contracts"])
}

func TestSizingAgent_WeakLiquidityScalesDown(t *testing.T) {
	agent := NewSizingAgent(DefaultConfig())

	sig := agent.Evaluate(&Context{
		Capital:            2000,
		MaxLossPerContract: 10,
		AgentSignals: map[string]Signal{
			"liquidity": {AgentID: "liquidity", Score: 25},
		},
	})
	c := sig.Constraints()
	assert.InDelta(t, 0.5, c["sizing.confluence_multiplier"].(float64), 1e-9)
	assert.InDelta(t, 0.25, c["sizing.scale_factor"].(float64), 1e-9)
}

func TestSizingAgent_AliasResolution(t *testing.T) {
	agent := NewSizingAgent(DefaultConfig())

	// Historical key names still resolve.
	sig := agent.Evaluate(&Context{
		Capital: 2000,
		AgentSignals: map[string]Signal{
			"regime_agent": {AgentID: "regime_agent", Score: 90, Veto: true},
		},
	})
	assert.True(t, sig.Veto)
}

func TestSizingAgent_CollateralCap(t *testing.T) {
	agent := NewSizingAgent(DefaultConfig())

	sig := agent.Evaluate(&Context{
		Capital:               2000,
		MaxLossPerContract:    10,
		CollateralPerContract: 900,
	})
	c := sig.Constraints()
	// Risk budget alone allows 4 contracts; collateral allows only 2.
	assert.Equal(t, 2, c["sizing.recommended_contracts"])
}

func TestSizingAgent_HardCap(t *testing.T) {
	agent := NewSizingAgent(DefaultConfig())

	sig := agent.Evaluate(&Context{
		Capital:            100000,
		MaxLossPerContract: 0.10,
		BaseScore:          f64(100),
	})
	c := sig.Constraints()
	assert.Equal(t, maxContractsHardCap, c["sizing.recommended_contracts"])
}

func TestSizingAgent_NonPositiveMaxLoss(t *testing.T) {
	agent := NewSizingAgent(DefaultConfig())

	sig := agent.Evaluate(&Context{Capital: 2000})
	assert.Equal(t, 1, sig.Constraints()["sizing.recommended_contracts"])
}

func TestSizingAgent_TargetCappedAtDeployableCapital(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SizingMilestones = []Milestone{{CapitalBelow: 0, MinRiskUSD: 50, MaxRiskUSD: 5000}}
	agent := NewSizingAgent(cfg)

	sig := agent.Evaluate(&Context{
		Capital:            1000,
		MaxLossPerContract: 100,
		BaseScore:          f64(100),
	})
	c := sig.Constraints()
	assert.InDelta(t, 950.0, c["sizing.target_risk_usd"].(float64), 1e-9)
	assert.Equal(t, 9, c["sizing.recommended_contracts"])
}

func TestSizingAgent_EmptyMilestonesUseDefaults(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SizingMilestones = nil
	agent := NewSizingAgent(cfg)

	sig := agent.Evaluate(&Context{Capital: 500, MaxLossPerContract: 5, BaseScore: f64(0)})
	assert.InDelta(t, 10.0, sig.Constraints()["sizing.target_risk_usd"].(float64), 1e-9)
}

func TestSizingAgent_Bracket(t *testing.T) {
	agent := NewSizingAgent(DefaultConfig())

	tests := []struct {
		capital float64
		wantMin float64
		wantMax float64
	}{
		{0, 10, 35},
		{999, 10, 35},
		{1000, 20, 75},
		{4999, 20, 75},
		{5000, 35, 150},
		{10000, 50, 250},
		{1000000, 50, 250},
	}
	for _, tc := range tests {
		minRisk, maxRisk := agent.bracket(tc.capital)
		assert.Equal(t, tc.wantMin, minRisk, "capital %.0f", tc.capital)
		assert.Equal(t, tc.wantMax, maxRisk, "capital %.0f", tc.capital)
	}
}
