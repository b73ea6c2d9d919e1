package agents

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExitPlanAgent_Families(t *testing.T) {
	agent := NewExitPlanAgent(DefaultConfig())

	tests := []struct {
		name         string
		strategyType string
		wantProfit   float64
		wantStop     float64
		wantDays     int
	}{
		{"credit_spread", "CREDIT_PUT_SPREAD", 0.50, 2.00, 45},
		{"iron_condor", "iron condor", 0.50, 2.00, 45},
		{"short_strangle", "short_strangle", 0.50, 2.00, 45},
		{"debit_spread", "debit_call_spread", 0.50, 0.50, 45},
		{"vertical", "bull_vertical", 0.50, 0.50, 45},
		{"long_option", "LONG_CALL", 1.00, 0.50, 30},
		{"buy_write", "buy_write", 1.00, 0.50, 30},
		{"unknown", "calendar", 0.50, 1.00, 30},
		{"empty", "", 0.50, 1.00, 30},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			sig := agent.Evaluate(&Context{StrategyType: tc.strategyType})
			assert.Equal(t, 100.0, sig.Score)
			assert.False(t, sig.Veto)
			c := sig.Constraints()
			assert.Equal(t, tc.wantProfit, c["exit.profit_take_pct"])
			assert.Equal(t, tc.wantStop, c["exit.stop_loss_pct"])
			assert.Equal(t, tc.wantDays, c["exit.time_stop_days"])
		})
	}
}

func TestExitPlanAgent_NilContext(t *testing.T) {
	sig := NewExitPlanAgent(DefaultConfig()).Evaluate(nil)
	assert.Equal(t, 100.0, sig.Score)
	assert.Equal(t, 0.50, sig.Constraints()["exit.profit_take_pct"])
}

func TestPlanFor_CreditBeatsDebit(t *testing.T) {
	// "SHORT DEBIT" style mixtures resolve to the credit family because
	// credit keywords are checked first.
	plan, family := planFor("short_debit_combo")
	assert.Equal(t, "credit", family)
	assert.Equal(t, 2.00, plan.StopLossPct)
}
