package pipeline

import (
	"github.com/quantgate/quantgate/internal/agents"
	"github.com/quantgate/quantgate/internal/regime"
)

// TradeInputs are the per-candidate fields the regime engine does not
// produce.
type TradeInputs struct {
	Symbol                string
	LegacyStrategy        string
	StrategyType          string
	Legs                  []agents.Leg
	EarningsDate          string
	EarningsMap           map[string]string
	BannedStrategies      []string
	BaseScore             *float64
	Capital               float64
	MaxLossPerContract    float64
	CollateralPerContract float64
}

// Compose packs a reconciled regime pair and the trade inputs into the
// evaluation context the agent battery consumes.
func Compose(global regime.GlobalSnapshot, symbol regime.SymbolSnapshot, trade TradeInputs) *agents.Context {
	effective := regime.EffectiveRegime(symbol.State, global.State)

	// Trend z back onto the bias scale the regime agent reads: one z
	// unit (5% above the 50d SMA) maps to the 0.1 bias threshold.
	trend := global.TrendScore / 10

	var flags []string
	if global.VolScore > 1 {
		flags = append(flags, "elevated_realized_vol")
	}
	if global.CorrScore > 1 {
		flags = append(flags, "correlation_stress")
	}

	return &agents.Context{
		EffectiveRegime:       effective.String(),
		TrendStrength:         &trend,
		VolatilityFlags:       flags,
		IVRank:                symbol.IVRank,
		Legs:                  trade.Legs,
		Symbol:                trade.Symbol,
		EarningsDate:          trade.EarningsDate,
		EarningsMap:           trade.EarningsMap,
		LegacyStrategy:        trade.LegacyStrategy,
		BannedStrategies:      trade.BannedStrategies,
		BaseScore:             trade.BaseScore,
		Capital:               trade.Capital,
		MaxLossPerContract:    trade.MaxLossPerContract,
		CollateralPerContract: trade.CollateralPerContract,
		StrategyType:          trade.StrategyType,
		AsOf:                  global.AsOf,
	}
}
