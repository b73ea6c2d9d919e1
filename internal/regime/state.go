package regime

import "strings"

// State is the closed set of market risk regimes.
type State string

const (
	Suppressed State = "suppressed"
	Normal     State = "normal"
	Elevated   State = "elevated"
	Shock      State = "shock"
	Rebound    State = "rebound"
	Chop       State = "chop"
)

// riskRank orders states by riskiness. This ordering is intentionally
// decoupled from declaration order: chop and rebound sit between normal
// and elevated even though they are overlay states.
var riskRank = map[State]int{
	Suppressed: 1,
	Normal:     2,
	Chop:       3,
	Rebound:    4,
	Elevated:   5,
	Shock:      6,
}

// riskScaler is the position-size multiplier for each state. It is a pure
// function of the state, never independently settable.
var riskScaler = map[State]float64{
	Suppressed: 1.2,
	Normal:     1.0,
	Chop:       0.9,
	Rebound:    0.8,
	Elevated:   0.7,
	Shock:      0.5,
}

func (s State) String() string { return string(s) }

// RiskRank returns the riskiness rank (1 = safest, 6 = worst). Unknown
// states rank as Normal.
func (s State) RiskRank() int {
	if r, ok := riskRank[s]; ok {
		return r
	}
	return riskRank[Normal]
}

// Scaler returns the position-size multiplier for the state.
func (s State) Scaler() float64 {
	if v, ok := riskScaler[s]; ok {
		return v
	}
	return riskScaler[Normal]
}

// ParseState maps a free-form string to a State, falling back to Normal
// for anything unrecognized.
func ParseState(raw string) State {
	switch State(strings.ToLower(strings.TrimSpace(raw))) {
	case Suppressed:
		return Suppressed
	case Normal:
		return Normal
	case Elevated:
		return Elevated
	case Shock:
		return Shock
	case Rebound:
		return Rebound
	case Chop:
		return Chop
	default:
		return Normal
	}
}

// ScoringRegime bridges the six-state classification into the legacy
// three-bucket scale used by older scoring consumers.
func ScoringRegime(s State) string {
	switch s {
	case Shock:
		return "panic"
	case Elevated, Rebound:
		return "high_vol"
	default:
		return "normal"
	}
}

// EffectiveRegime reconciles the symbol-level and global classifications
// into the regime used for decisioning.
//
// Baseline rule: whichever state ranks riskier wins. Two exceptions:
// global shock always wins outright, and global rebound forces rebound
// unless the symbol itself is in shock.
func EffectiveRegime(symbolState, globalState State) State {
	if globalState == Shock {
		return Shock
	}
	if globalState == Rebound {
		if symbolState == Shock {
			return Shock
		}
		return Rebound
	}
	if symbolState.RiskRank() > globalState.RiskRank() {
		return symbolState
	}
	return globalState
}
