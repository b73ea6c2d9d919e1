package agents

import (
	"fmt"
	"time"
)

// EventRiskAgent blocks or cautions trades that straddle an earnings
// window.
//
// Historical quirk, preserved deliberately: this agent scores on a 0-1
// scale while every other agent scores 0-100. SizingAgent bridges the
// gap by rescaling fractional scores when it reads upstream signals.
type EventRiskAgent struct {
	vetoDays      int
	lookaheadDays int
}

func NewEventRiskAgent(cfg Config) *EventRiskAgent {
	return &EventRiskAgent{vetoDays: cfg.EventVetoDays, lookaheadDays: cfg.EventLookaheadDays}
}

func (a *EventRiskAgent) ID() string { return "event_risk" }

func (a *EventRiskAgent) Evaluate(ctx *Context) Signal {
	raw := ""
	if ctx != nil {
		raw = ctx.EarningsDate
		if raw == "" && ctx.Symbol != "" {
			raw = ctx.EarningsMap[ctx.Symbol]
		}
	}
	if raw == "" {
		return a.neutral(0.5, "No earnings data found")
	}

	eventDate, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return a.neutral(0.5, fmt.Sprintf("Unparsable earnings date %q", raw))
	}

	today := ctx.Now().UTC().Truncate(24 * time.Hour)
	days := int(eventDate.Sub(today).Hours() / 24)

	switch {
	case days < 0:
		return a.neutral(0.5, "Earnings event already passed")
	case days <= a.vetoDays:
		return newSignal(a.ID(), 0, true,
			[]string{fmt.Sprintf("Earnings in %d day(s): inside veto window", days)},
			a.constraints(days, true, true))
	case days <= a.lookaheadDays:
		return newSignal(a.ID(), 0.4, false,
			[]string{fmt.Sprintf("Earnings in %d day(s): defined risk only", days)},
			a.constraints(days, true, true))
	default:
		return newSignal(a.ID(), 0.7, false,
			[]string{fmt.Sprintf("Earnings %d days out", days)},
			a.constraints(days, false, false))
	}
}

func (a *EventRiskAgent) neutral(score float64, reason string) Signal {
	return newSignal(a.ID(), score, false, []string{reason}, map[string]any{
		"event.is_event_window":      false,
		"event.days_to_event":        nil,
		"event.require_defined_risk": false,
		"event.avoid_new_positions":  false,
		"event.max_dte":              nil,
	})
}

func (a *EventRiskAgent) constraints(days int, inWindow, definedRisk bool) map[string]any {
	return map[string]any{
		"event.is_event_window":      inWindow,
		"event.days_to_event":        days,
		"event.require_defined_risk": definedRisk,
		// Both fields kept for downstream compatibility; current logic
		// never sets them.
		"event.avoid_new_positions":  false,
		"event.max_dte":              nil,
	}
}
