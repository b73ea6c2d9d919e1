package agents

import (
	"fmt"
	"strings"
)

// regimeBase maps each regime to its base score and whether new risk is
// allowed at all in that regime.
var regimeBase = map[string]struct {
	score        float64
	allowNewRisk bool
}{
	"shock":      {0, false},
	"elevated":   {70, true},
	"normal":     {90, true},
	"suppressed": {95, true},
	"rebound":    {60, true},
	"chop":       {50, true},
}

// RegimeAgent gates the trade on the effective market regime and flags
// directional bias from trend strength.
type RegimeAgent struct{}

func NewRegimeAgent(Config) *RegimeAgent { return &RegimeAgent{} }

func (a *RegimeAgent) ID() string { return "regime_agent" }

func (a *RegimeAgent) Evaluate(ctx *Context) Signal {
	state := "normal"
	if ctx != nil {
		if s := strings.ToLower(strings.TrimSpace(ctx.EffectiveRegime)); s != "" {
			if _, ok := regimeBase[s]; ok {
				state = s
			}
		}
	}
	base := regimeBase[state]

	var reasons []string
	reasons = append(reasons, fmt.Sprintf("Effective regime: %s", state))

	bias := "neutral"
	trend := ctx.trendStrength()
	switch {
	case trend > 0.1:
		bias = "bullish"
	case trend < -0.1:
		bias = "bearish"
	}
	// Shock and chop force neutral regardless of trend.
	if state == "shock" || state == "chop" {
		bias = "neutral"
	}

	score := base.score
	var flags []string
	if ctx != nil {
		flags = ctx.VolatilityFlags
	}
	for _, flag := range flags {
		score -= 10
		reasons = append(reasons, fmt.Sprintf("Volatility flag: %s", flag))
	}
	if score < 0 {
		score = 0
	}

	veto := state == "shock"
	if veto {
		reasons = append(reasons, "Shock regime: no new risk")
	}
	if !veto && score < 20 {
		veto = true
		reasons = append(reasons, fmt.Sprintf("Regime score %.0f below floor 20", score))
	}

	return newSignal(a.ID(), score, veto, reasons, map[string]any{
		"regime.state":          state,
		"regime.allow_new_risk": base.allowNewRisk,
		"regime.bias":           bias,
	})
}
