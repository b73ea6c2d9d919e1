package agents

import (
	"os"
	"strconv"
	"strings"
)

// Milestone is one capital bracket for the sizing agent. CapitalBelow of
// zero marks the open-ended top bracket.
type Milestone struct {
	CapitalBelow float64
	MinRiskUSD   float64
	MaxRiskUSD   float64
}

// Config carries every agent threshold. It is read from the environment
// once at construction and treated as read-only afterwards; concurrent
// Evaluate calls on the same agent are safe.
type Config struct {
	Enabled bool

	RegimeEnabled         bool
	VolSurfaceEnabled     bool
	LiquidityEnabled      bool
	EventRiskEnabled      bool
	StrategyDesignEnabled bool
	SizingEnabled         bool
	ExitPlanEnabled       bool
	PostTradeEnabled      bool

	// Liquidity.
	LiquidityMode string // "median" or "worst"
	MaxSpreadPct  float64

	// Event risk.
	EventVetoDays      int
	EventLookaheadDays int

	// Sizing.
	SizingMilestones []Milestone
}

// DefaultConfig returns the documented defaults with the master toggle off.
func DefaultConfig() Config {
	return Config{
		Enabled:               false,
		RegimeEnabled:         true,
		VolSurfaceEnabled:     true,
		LiquidityEnabled:      true,
		EventRiskEnabled:      true,
		StrategyDesignEnabled: true,
		SizingEnabled:         true,
		ExitPlanEnabled:       true,
		PostTradeEnabled:      true,
		LiquidityMode:         "median",
		MaxSpreadPct:          0.12,
		EventVetoDays:         1,
		EventLookaheadDays:    7,
		SizingMilestones: []Milestone{
			{CapitalBelow: 1000, MinRiskUSD: 10, MaxRiskUSD: 35},
			{CapitalBelow: 5000, MinRiskUSD: 20, MaxRiskUSD: 75},
			{CapitalBelow: 10000, MinRiskUSD: 35, MaxRiskUSD: 150},
			{CapitalBelow: 0, MinRiskUSD: 50, MaxRiskUSD: 250},
		},
	}
}

// ConfigFromEnv loads defaults and applies QUANT_AGENT_* overrides.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()

	if v := os.Getenv("QUANT_AGENTS_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Enabled = b
		}
	}

	applyBoolEnv("QUANT_AGENT_REGIME_ENABLED", &cfg.RegimeEnabled)
	applyBoolEnv("QUANT_AGENT_VOL_SURFACE_ENABLED", &cfg.VolSurfaceEnabled)
	applyBoolEnv("QUANT_AGENT_LIQUIDITY_ENABLED", &cfg.LiquidityEnabled)
	applyBoolEnv("QUANT_AGENT_EVENT_RISK_ENABLED", &cfg.EventRiskEnabled)
	applyBoolEnv("QUANT_AGENT_STRATEGY_DESIGN_ENABLED", &cfg.StrategyDesignEnabled)
	applyBoolEnv("QUANT_AGENT_SIZING_ENABLED", &cfg.SizingEnabled)
	applyBoolEnv("QUANT_AGENT_EXIT_PLAN_ENABLED", &cfg.ExitPlanEnabled)
	applyBoolEnv("QUANT_AGENT_POST_TRADE_REVIEW_ENABLED", &cfg.PostTradeEnabled)

	if v := os.Getenv("QUANT_AGENT_LIQUIDITY_MODE"); v != "" {
		mode := strings.ToLower(strings.TrimSpace(v))
		if mode == "worst" || mode == "median" {
			cfg.LiquidityMode = mode
		}
	}
	if v := os.Getenv("QUANT_AGENT_LIQUIDITY_MAX_SPREAD_PCT"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			cfg.MaxSpreadPct = f
		}
	}
	if v := os.Getenv("QUANT_AGENT_EVENT_VETO_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.EventVetoDays = n
		}
	}
	if v := os.Getenv("QUANT_AGENT_EVENT_LOOKAHEAD_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.EventLookaheadDays = n
		}
	}
	if v := os.Getenv("QUANT_AGENT_SIZING_MILESTONES"); v != "" {
		if ms := parseMilestones(v); len(ms) > 0 {
			cfg.SizingMilestones = ms
		}
	}

	return cfg
}

func applyBoolEnv(key string, target *bool) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*target = b
		}
	}
}

// parseMilestones parses "below:min:max,below:min:max,...". A below of 0
// marks the open-ended top bracket. Malformed entries invalidate the
// whole override; the defaults stay in force.
func parseMilestones(raw string) []Milestone {
	parts := strings.Split(raw, ",")
	out := make([]Milestone, 0, len(parts))
	for _, part := range parts {
		fields := strings.Split(strings.TrimSpace(part), ":")
		if len(fields) != 3 {
			return nil
		}
		below, err1 := strconv.ParseFloat(fields[0], 64)
		minRisk, err2 := strconv.ParseFloat(fields[1], 64)
		maxRisk, err3 := strconv.ParseFloat(fields[2], 64)
		if err1 != nil || err2 != nil || err3 != nil || minRisk < 0 || maxRisk < minRisk {
			return nil
		}
		out = append(out, Milestone{CapitalBelow: below, MinRiskUSD: minRisk, MaxRiskUSD: maxRisk})
	}
	return out
}
