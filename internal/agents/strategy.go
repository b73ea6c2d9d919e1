package agents

import (
	"fmt"
	"strings"

	"github.com/quantgate/quantgate/internal/policy"
)

// legacyStrategyKeys maps human-readable legacy strategy names to internal
// keys. Anything not listed falls back to lowercase snake_case.
var legacyStrategyKeys = map[string]string{
	"IRON CONDOR":        "iron_condor",
	"CREDIT PUT SPREAD":  "credit_put_spread",
	"CREDIT CALL SPREAD": "credit_call_spread",
	"DEBIT CALL SPREAD":  "debit_call_spread",
	"DEBIT PUT SPREAD":   "debit_put_spread",
	"LONG CALL":          "long_call",
	"LONG PUT":           "long_put",
	"COVERED CALL":       "covered_call",
	"CASH SECURED PUT":   "cash_secured_put",
	"CASH":               "cash",
	"HOLD":               "hold",
}

// strategyFallbacks pairs each defined-risk spread with its directional
// mirror, used when the policy bans the primary recommendation.
var strategyFallbacks = map[string]string{
	"credit_put_spread":  "debit_call_spread",
	"debit_call_spread":  "credit_put_spread",
	"credit_call_spread": "debit_put_spread",
	"debit_put_spread":   "credit_call_spread",
}

// StrategyDesignAgent reshapes the legacy strategy recommendation for the
// current regime, IV environment, and ban policy.
type StrategyDesignAgent struct{}

func NewStrategyDesignAgent(Config) *StrategyDesignAgent { return &StrategyDesignAgent{} }

func (a *StrategyDesignAgent) ID() string { return "strategy_design" }

func (a *StrategyDesignAgent) Evaluate(ctx *Context) Signal {
	var (
		legacy string
		banned []string
		regime string
		ivRank *float64
	)
	if ctx != nil {
		legacy = ctx.LegacyStrategy
		banned = ctx.BannedStrategies
		regime = strings.ToUpper(ctx.EffectiveRegime)
		ivRank = ctx.IVRank
	}

	pol := policy.New(banned)
	rec := normalizeStrategy(legacy)
	var reasons []string
	overrode := false
	cashForSafety := false

	switch {
	case strings.Contains(regime, "SHOCK"):
		rec = "cash"
		overrode = true
		cashForSafety = true
		reasons = append(reasons, "Shock regime: going to cash")
	case strings.Contains(regime, "CHOP") && isLongPremium(rec):
		if pol.IsAllowed("iron_condor") {
			rec = "iron_condor"
			reasons = append(reasons, "Chop regime: switching long premium to iron condor")
		} else {
			rec = "cash"
			cashForSafety = true
			reasons = append(reasons, "Chop regime: iron condor banned, going to cash")
		}
		overrode = true
	}

	if ivRank != nil && *ivRank >= 60 && isLongPremium(rec) {
		counterpart := ""
		if strings.Contains(rec, "call") {
			counterpart = "credit_put_spread"
		} else if strings.Contains(rec, "put") {
			counterpart = "credit_call_spread"
		}
		if counterpart != "" {
			if pol.IsAllowed(counterpart) {
				reasons = append(reasons, fmt.Sprintf("IV rank %.0f: long premium replaced with %s", *ivRank, counterpart))
				rec = counterpart
				overrode = true
			}
			// A banned counterpart leaves the recommendation untouched
			// here; final policy enforcement below decides its fate.
		}
	}

	if rec != "cash" && rec != "hold" && !pol.IsAllowed(rec) {
		if fb, ok := strategyFallbacks[rec]; ok && pol.IsAllowed(fb) {
			reasons = append(reasons, fmt.Sprintf("%s banned: falling back to %s", rec, fb))
			rec = fb
		} else {
			reasons = append(reasons, fmt.Sprintf("%s banned with no valid fallback: going to cash", rec))
			rec = "cash"
			cashForSafety = true
		}
		overrode = true
	}

	score := 80.0
	if cashForSafety {
		score = 100.0
	}
	if len(reasons) == 0 {
		reasons = append(reasons, fmt.Sprintf("Keeping %s", rec))
	}

	return newSignal(a.ID(), score, false, reasons, map[string]any{
		"strategy.recommended":          rec,
		"strategy.override_selector":    overrode,
		"strategy.banned":               pol.Banned(),
		"strategy.require_defined_risk": true,
	})
}

func normalizeStrategy(legacy string) string {
	key := strings.ToUpper(strings.TrimSpace(legacy))
	if mapped, ok := legacyStrategyKeys[key]; ok {
		return mapped
	}
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(legacy)), " ", "_")
}

// isLongPremium reports whether a strategy key pays premium up front.
func isLongPremium(key string) bool {
	return strings.Contains(key, "debit") || strings.Contains(key, "long") || strings.Contains(key, "buy")
}
