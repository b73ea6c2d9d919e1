package agents

import (
	"fmt"
	"strings"
)

// ExitPlan is the take-profit / stop-loss / time-stop triple for one
// strategy family.
type ExitPlan struct {
	ProfitTakePct float64
	StopLossPct   float64
	TimeStopDays  int
}

// ExitPlanAgent reports the exit plan for the strategy family. It states
// a plan, not a risk judgment, so the score is always 100 and it never
// vetoes.
type ExitPlanAgent struct{}

func NewExitPlanAgent(Config) *ExitPlanAgent { return &ExitPlanAgent{} }

func (a *ExitPlanAgent) ID() string { return "exit_plan" }

func (a *ExitPlanAgent) Evaluate(ctx *Context) Signal {
	strategyType := ""
	if ctx != nil {
		strategyType = ctx.StrategyType
	}
	plan, family := planFor(strategyType)

	return newSignal(a.ID(), 100, false,
		[]string{fmt.Sprintf("Exit plan (%s): take profit at %.0f%%, stop at %.0f%%, time stop %dd",
			family, plan.ProfitTakePct*100, plan.StopLossPct*100, plan.TimeStopDays)},
		map[string]any{
			"exit.profit_take_pct": plan.ProfitTakePct,
			"exit.stop_loss_pct":   plan.StopLossPct,
			"exit.time_stop_days":  plan.TimeStopDays,
		})
}

// planFor keys the lookup on substring match against the normalized
// strategy type. Credit-family structures are checked first.
func planFor(strategyType string) (ExitPlan, string) {
	s := strings.ToUpper(strategyType)
	switch {
	case containsAny(s, "CREDIT", "CONDOR", "SHORT"):
		return ExitPlan{ProfitTakePct: 0.50, StopLossPct: 2.00, TimeStopDays: 45}, "credit"
	case containsAny(s, "DEBIT", "VERTICAL"):
		return ExitPlan{ProfitTakePct: 0.50, StopLossPct: 0.50, TimeStopDays: 45}, "debit"
	case containsAny(s, "LONG", "BUY"):
		return ExitPlan{ProfitTakePct: 1.00, StopLossPct: 0.50, TimeStopDays: 30}, "long"
	default:
		return ExitPlan{ProfitTakePct: 0.50, StopLossPct: 1.00, TimeStopDays: 30}, "default"
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
