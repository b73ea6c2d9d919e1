package agents

import "fmt"

// VolSurfaceAgent classifies the IV environment into a premium bias. Its
// score expresses confidence in the classification, not trade safety, so
// it is 100 whenever IV rank is present and never triggers a veto.
type VolSurfaceAgent struct{}

func NewVolSurfaceAgent(Config) *VolSurfaceAgent { return &VolSurfaceAgent{} }

func (a *VolSurfaceAgent) ID() string { return "vol_surface" }

func (a *VolSurfaceAgent) Evaluate(ctx *Context) Signal {
	if ctx == nil || ctx.IVRank == nil {
		return newSignal(a.ID(), 50, false,
			[]string{"IV rank unavailable: neutral vol stance"},
			map[string]any{
				"vol.bias":                 "neutral",
				"vol.require_defined_risk": false,
			})
	}

	ivRank := *ctx.IVRank
	bias := "neutral"
	requireDefined := false
	switch {
	case ivRank >= 60:
		bias = "sell_premium"
		requireDefined = true
	case ivRank <= 30:
		bias = "buy_premium"
	}

	return newSignal(a.ID(), 100, false,
		[]string{fmt.Sprintf("IV rank %.1f: bias %s", ivRank, bias)},
		map[string]any{
			"vol.iv_rank":              ivRank,
			"vol.bias":                 bias,
			"vol.require_defined_risk": requireDefined,
		})
}
