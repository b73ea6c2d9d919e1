package agents

import (
	"fmt"
	"math"
)

// maxContractsHardCap bounds the recommendation no matter how much
// capital is deployable.
const maxContractsHardCap = 100

// Upstream signal aliases, oldest naming first so historical callers keep
// resolving.
var (
	regimeAliases    = []string{"regime", "regime_agent", "regime_signal"}
	volAliases       = []string{"vol_surface", "vol", "volatility", "vol_agent"}
	liquidityAliases = []string{"liquidity", "liquidity_agent"}
	eventAliases     = []string{"event_risk", "event", "event_risk_agent"}
)

// SizingAgent turns deployable capital and upstream agent confidence into
// a USD risk budget and contract count. The headline score passes the
// base score through unchanged; all sizing output lives in constraints.
type SizingAgent struct {
	milestones []Milestone
}

func NewSizingAgent(cfg Config) *SizingAgent {
	ms := cfg.SizingMilestones
	if len(ms) == 0 {
		ms = DefaultConfig().SizingMilestones
	}
	return &SizingAgent{milestones: ms}
}

func (a *SizingAgent) ID() string { return "sizing" }

func (a *SizingAgent) Evaluate(ctx *Context) Signal {
	var (
		capital    float64
		maxLoss    float64
		collateral float64
		baseScore  = 50.0
		signals    map[string]Signal
	)
	if ctx != nil {
		capital = ctx.Capital
		maxLoss = ctx.MaxLossPerContract
		collateral = ctx.CollateralPerContract
		signals = ctx.AgentSignals
		if ctx.BaseScore != nil {
			baseScore = *ctx.BaseScore
		}
	}

	minRisk, maxRisk := a.bracket(capital)

	regimeScore, regimeOK, regimeVeto := upstreamScore(signals, regimeAliases)
	volScore, volOK, volVeto := upstreamScore(signals, volAliases)
	liqScore, liqOK, liqVeto := upstreamScore(signals, liquidityAliases)
	eventScore, eventOK, eventVeto := upstreamScore(signals, eventAliases)

	if regimeVeto || volVeto || liqVeto || eventVeto {
		return newSignal(a.ID(), 0, true,
			[]string{"Upstream agent veto: no position"},
			map[string]any{
				"sizing.target_risk_usd":       0.0,
				"sizing.recommended_contracts": 0,
				"sizing.min_risk_usd":          minRisk,
				"sizing.max_risk_usd":          maxRisk,
			})
	}

	baseScale := clamp01(baseScore / 100)

	confluence := 1.0
	var reasons []string
	if regimeOK && volOK && regimeScore > 70 && volScore > 70 {
		confluence *= 1.25
		reasons = append(reasons, "Regime and vol confluence: boosting size")
	}
	if liqOK && liqScore < 50 {
		confluence *= liqScore / 50
		reasons = append(reasons, fmt.Sprintf("Weak liquidity score %.0f: scaling down", liqScore))
	}
	if eventOK && eventScore < 50 {
		confluence *= eventScore / 50
		reasons = append(reasons, fmt.Sprintf("Event risk score %.0f: scaling down", eventScore))
	}

	finalScale := clamp01(baseScale * confluence)

	targetRisk := minRisk + (maxRisk-minRisk)*finalScale
	if cap95 := capital * 0.95; targetRisk > cap95 {
		targetRisk = cap95
	}

	contracts := 1
	if maxLoss > 0 {
		contracts = int(math.Floor(targetRisk / maxLoss))
	}
	if collateral > 0 {
		if byCollateral := int(math.Floor(capital / collateral)); contracts > byCollateral {
			contracts = byCollateral
		}
	}
	if contracts > maxContractsHardCap {
		contracts = maxContractsHardCap
	}
	if contracts < 0 {
		contracts = 0
	}

	reasons = append(reasons, fmt.Sprintf("Target risk $%.2f, %d contract(s)", targetRisk, contracts))

	return newSignal(a.ID(), baseScore, false, reasons, map[string]any{
		"sizing.target_risk_usd":       targetRisk,
		"sizing.recommended_contracts": contracts,
		"sizing.min_risk_usd":          minRisk,
		"sizing.max_risk_usd":          maxRisk,
		"sizing.scale_factor":          finalScale,
		"sizing.confluence_multiplier": confluence,
	})
}

// bracket selects the capital milestone pair. The zero-bound milestone is
// the open-ended top bracket.
func (a *SizingAgent) bracket(capital float64) (minRisk, maxRisk float64) {
	for _, m := range a.milestones {
		if m.CapitalBelow > 0 && capital < m.CapitalBelow {
			return m.MinRiskUSD, m.MaxRiskUSD
		}
	}
	for _, m := range a.milestones {
		if m.CapitalBelow == 0 {
			return m.MinRiskUSD, m.MaxRiskUSD
		}
	}
	// No open-ended bracket configured; reuse the widest bound.
	last := a.milestones[len(a.milestones)-1]
	return last.MinRiskUSD, last.MaxRiskUSD
}

// upstreamScore resolves one watched domain from the upstream signal map.
// Scores in (-1, 1] are fractional-scale legacies and are rescaled to
// 0-100.
func upstreamScore(signals map[string]Signal, aliases []string) (score float64, found, veto bool) {
	sig, ok := lookupSignal(signals, aliases...)
	if !ok {
		return 0, false, false
	}
	score = sig.Score
	if score > -1 && score <= 1 {
		score *= 100
	}
	return score, true, sig.Veto
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
