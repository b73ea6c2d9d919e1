package agents

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostTradeReviewAgent_NoPnL(t *testing.T) {
	agent := NewPostTradeReviewAgent(DefaultConfig())

	for _, ctx := range []*Context{nil, {}} {
		sig := agent.Evaluate(ctx)
		assert.Equal(t, 100.0, sig.Score)
		assert.False(t, sig.Veto)
		assert.Equal(t, "unknown", sig.Constraints()["review.outcome"])
	}
}

func TestPostTradeReviewAgent_Outcomes(t *testing.T) {
	agent := NewPostTradeReviewAgent(DefaultConfig())

	tests := []struct {
		name    string
		pnl     float64
		outcome string
	}{
		{"win", 125.50, "WIN"},
		{"loss", -80, "LOSS"},
		{"scratch", 0, "SCRATCH"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			sig := agent.Evaluate(&Context{RealizedPnL: f64(tc.pnl)})
			assert.Equal(t, tc.outcome, sig.Constraints()["review.outcome"])
			assert.Equal(t, 100.0, sig.Score)
			assert.False(t, sig.Veto)
		})
	}
}

func TestPostTradeReviewAgent_WinHasNoLossReason(t *testing.T) {
	sig := NewPostTradeReviewAgent(DefaultConfig()).Evaluate(&Context{RealizedPnL: f64(40)})
	_, present := sig.Constraints()["review.loss_reason"]
	assert.False(t, present)
}

func TestPostTradeReviewAgent_LossAttribution(t *testing.T) {
	agent := NewPostTradeReviewAgent(DefaultConfig())

	strongEntry := map[string]Signal{
		"regime":      {AgentID: "regime", Score: 90},
		"vol_surface": {AgentID: "vol_surface", Score: 100},
	}
	weakEntry := map[string]Signal{
		"regime":    {AgentID: "regime", Score: 45},
		"liquidity": {AgentID: "liquidity", Score: 55},
	}

	tests := []struct {
		name       string
		mfe        float64
		entry      map[string]Signal
		wantReason string
	}{
		{"gain_left_on_table", 60, strongEntry, "Missed Exit / Greed"},
		{"never_moved_favorably", 5, strongEntry, "Bad Entry / Timing"},
		{"weak_conviction", 25, weakEntry, "Low Conviction Entry"},
		{"sound_entry_reversed", 25, strongEntry, "Market Reversal"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			sig := agent.Evaluate(&Context{
				RealizedPnL:  f64(-100),
				MFE:          tc.mfe,
				EntrySignals: tc.entry,
			})
			assert.Equal(t, tc.wantReason, sig.Constraints()["review.loss_reason"])
		})
	}
}

func TestPostTradeReviewAgent_WeakAgentsListedSorted(t *testing.T) {
	sig := NewPostTradeReviewAgent(DefaultConfig()).Evaluate(&Context{
		RealizedPnL: f64(-100),
		MFE:         25,
		EntrySignals: map[string]Signal{
			"vol_surface": {Score: 30},
			"liquidity":   {Score: 40},
			"regime":      {Score: 95},
		},
	})
	require.NotEmpty(t, sig.Reasons)
	assert.Contains(t, sig.Reasons[len(sig.Reasons)-1], "liquidity, vol_surface")
}

func TestWeakEntryAgents(t *testing.T) {
	weak := weakEntryAgents(map[string]Signal{
		"b": {Score: 10},
		"a": {Score: 59.9},
		"c": {Score: 60},
	})
	assert.Equal(t, []string{"a", "b"}, weak)
}
