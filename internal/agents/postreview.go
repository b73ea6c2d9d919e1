package agents

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// PostTradeReviewAgent labels a closed trade's outcome and, for losses,
// attributes the most likely cause. It is a post-hoc labeling utility,
// not a gate: score 100, never a veto.
type PostTradeReviewAgent struct{}

func NewPostTradeReviewAgent(Config) *PostTradeReviewAgent { return &PostTradeReviewAgent{} }

func (a *PostTradeReviewAgent) ID() string { return "post_trade_review" }

func (a *PostTradeReviewAgent) Evaluate(ctx *Context) Signal {
	if ctx == nil || ctx.RealizedPnL == nil {
		return newSignal(a.ID(), 100, false,
			[]string{"No realized PnL provided: nothing to review"},
			map[string]any{"review.outcome": "unknown"})
	}

	pnl := *ctx.RealizedPnL
	outcome := "SCRATCH"
	switch {
	case pnl > 0:
		outcome = "WIN"
	case pnl < 0:
		outcome = "LOSS"
	}

	constraints := map[string]any{"review.outcome": outcome}
	reasons := []string{fmt.Sprintf("Outcome: %s (%.2f)", outcome, pnl)}

	if outcome == "LOSS" {
		lossReason := a.classifyLoss(math.Abs(pnl), ctx.MFE, ctx.EntrySignals, &reasons)
		constraints["review.loss_reason"] = lossReason
	}

	return newSignal(a.ID(), 100, false, reasons, constraints)
}

// classifyLoss applies the ordered loss heuristics: unrealized gain left
// on the table, then no favorable excursion at all, then weak entry
// conviction, else a reversal.
func (a *PostTradeReviewAgent) classifyLoss(absLoss, mfe float64, entrySignals map[string]Signal, reasons *[]string) string {
	if mfe > 0.5*absLoss {
		*reasons = append(*reasons, fmt.Sprintf("MFE %.2f exceeded half the loss: exit was available", mfe))
		return "Missed Exit / Greed"
	}
	if mfe < 0.1*absLoss {
		*reasons = append(*reasons, "Trade never moved favorably")
		return "Bad Entry / Timing"
	}
	if weak := weakEntryAgents(entrySignals); len(weak) > 0 {
		*reasons = append(*reasons, fmt.Sprintf("Low conviction at entry: %s", strings.Join(weak, ", ")))
		return "Low Conviction Entry"
	}
	*reasons = append(*reasons, "Entry was sound; market reversed")
	return "Market Reversal"
}

func weakEntryAgents(signals map[string]Signal) []string {
	var weak []string
	for id, sig := range signals {
		if sig.Score < 60 {
			weak = append(weak, id)
		}
	}
	sort.Strings(weak)
	return weak
}
