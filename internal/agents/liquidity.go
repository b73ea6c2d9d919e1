package agents

import (
	"fmt"
	"sort"
)

// LiquidityAgent vetoes structures whose quotes are too wide or too
// degraded to fill at a fair price.
type LiquidityAgent struct {
	mode         string // "median" or "worst"
	maxSpreadPct float64
}

func NewLiquidityAgent(cfg Config) *LiquidityAgent {
	return &LiquidityAgent{mode: cfg.LiquidityMode, maxSpreadPct: cfg.MaxSpreadPct}
}

func (a *LiquidityAgent) ID() string { return "liquidity" }

func (a *LiquidityAgent) Evaluate(ctx *Context) Signal {
	var legs []Leg
	if ctx != nil {
		legs = ctx.Legs
	}
	if len(legs) == 0 {
		return newSignal(a.ID(), 10, true,
			[]string{"No legs supplied: cannot assess liquidity"},
			a.constraints(0, 0))
	}

	var (
		spreads       []float64
		missingQuotes int
		invalidQuotes int
	)
	for _, leg := range legs {
		if leg.Bid == nil || leg.Ask == nil {
			missingQuotes++
			continue
		}
		bid, ask := *leg.Bid, *leg.Ask
		mid := (bid + ask) / 2
		if leg.Mid != nil {
			mid = *leg.Mid
		}
		if mid <= 0 || ask < bid {
			invalidQuotes++
			continue
		}
		spreads = append(spreads, (ask-bid)/mid)
	}

	total := len(legs)
	valid := len(spreads)
	quality := float64(valid) / float64(total)
	degraded := missingQuotes + invalidQuotes
	// More than half the legs unusable is a veto regardless of how the
	// surviving spreads look.
	degradedVeto := degraded > total/2

	if valid == 0 {
		return newSignal(a.ID(), 20, true,
			[]string{"No valid quotes across legs"},
			a.constraints(0, quality))
	}

	spread := a.effectiveSpread(spreads)
	reasons := []string{fmt.Sprintf("Effective spread %.2f%% (%s of %d legs)", spread*100, a.mode, valid)}

	if spread > a.maxSpreadPct {
		reasons = append(reasons, fmt.Sprintf("Spread exceeds cap %.2f%%", a.maxSpreadPct*100))
		return newSignal(a.ID(), 0, true, reasons, a.constraints(spread, quality))
	}

	score := 100 * (1 - 0.5*spread/a.maxSpreadPct)
	if degraded > 0 {
		score -= 10 * float64(degraded)
		reasons = append(reasons, fmt.Sprintf("%d leg(s) with missing or invalid quotes", degraded))
	}
	if score < 0 {
		score = 0
	}
	if degradedVeto {
		reasons = append(reasons, "Majority of legs unquotable")
	}

	return newSignal(a.ID(), score, degradedVeto, reasons, a.constraints(spread, quality))
}

func (a *LiquidityAgent) effectiveSpread(spreads []float64) float64 {
	if a.mode == "worst" {
		worst := spreads[0]
		for _, s := range spreads[1:] {
			if s > worst {
				worst = s
			}
		}
		return worst
	}
	return median(spreads)
}

func (a *LiquidityAgent) constraints(observedSpread, quality float64) map[string]any {
	return map[string]any{
		"liquidity.max_spread_pct":       a.maxSpreadPct,
		"liquidity.observed_spread_pct":  observedSpread,
		"liquidity.require_limit_orders": true,
		"liquidity.quote_quality":        quality,
	}
}

func median(values []float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
