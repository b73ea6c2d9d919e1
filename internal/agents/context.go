package agents

import "time"

// Leg is one quoted leg of a candidate structure. Pointers model quotes
// the upstream snapshot did not carry.
type Leg struct {
	Bid *float64 `json:"bid,omitempty" yaml:"bid"`
	Ask *float64 `json:"ask,omitempty" yaml:"ask"`
	Mid *float64 `json:"mid,omitempty" yaml:"mid"`
}

// Context is the shared evaluation context. It declares every field any
// agent might read; each agent reads only its documented subset. Optional
// fields use pointers (or zero-value slices/maps) so that "missing input
// falls back to a stated default" survives the move away from an untyped
// map.
type Context struct {
	// Regime inputs.
	EffectiveRegime string   `yaml:"effective_regime"`
	TrendStrength   *float64 `yaml:"trend_strength"`
	VolatilityFlags []string `yaml:"volatility_flags"`

	// Volatility surface.
	IVRank *float64 `yaml:"iv_rank"`

	// Liquidity.
	Legs []Leg `yaml:"legs"`

	// Event risk. Dates stay strings so unparsable input exercises the
	// same recovery path the agents document.
	Symbol       string            `yaml:"symbol"`
	EarningsDate string            `yaml:"earnings_date"`
	EarningsMap  map[string]string `yaml:"earnings_map"`

	// Strategy design.
	LegacyStrategy   string   `yaml:"legacy_strategy"`
	BannedStrategies []string `yaml:"banned_strategies"`

	// Sizing.
	BaseScore             *float64 `yaml:"base_score"`
	Capital               float64  `yaml:"capital"`
	MaxLossPerContract    float64  `yaml:"max_loss_per_contract"`
	CollateralPerContract float64  `yaml:"collateral_per_contract"`

	// Upstream signals, keyed by agent id (with historical aliases).
	AgentSignals map[string]Signal `yaml:"-"`

	// Exit planning.
	StrategyType string `yaml:"strategy_type"`

	// Post-trade review.
	RealizedPnL  *float64          `yaml:"realized_pnl"`
	MFE          float64           `yaml:"mfe"`
	EntrySignals map[string]Signal `yaml:"-"`

	// AsOf anchors date arithmetic for deterministic evaluation. Zero
	// means "now".
	AsOf time.Time `yaml:"-"`
}

// Now returns the evaluation anchor time.
func (c *Context) Now() time.Time {
	if c == nil || c.AsOf.IsZero() {
		return time.Now()
	}
	return c.AsOf
}

// trendStrength returns the trend reading with the documented zero default.
func (c *Context) trendStrength() float64 {
	if c == nil || c.TrendStrength == nil {
		return 0
	}
	return *c.TrendStrength
}

// lookupSignal tries an ordered list of alias keys against the upstream
// signal map and reports the first hit.
func lookupSignal(signals map[string]Signal, aliases ...string) (Signal, bool) {
	for _, key := range aliases {
		if sig, ok := signals[key]; ok {
			return sig, true
		}
	}
	return Signal{}, false
}
