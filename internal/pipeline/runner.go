// Package pipeline executes the agent battery against one shared context
// and aggregates the signals into a single decision summary.
package pipeline

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/quantgate/quantgate/internal/agents"
)

// Decision values reported in the summary.
const (
	DecisionPass    = "pass"
	DecisionWarning = "warning"
	DecisionReject  = "reject"
)

// Summary is the aggregated verdict across all agents. The shape is a
// plain nested structure intended for JSON serialization downstream.
type Summary struct {
	OverallScore      float64        `json:"overall_score"`
	Decision          string         `json:"decision"`
	Vetoed            bool           `json:"vetoed"`
	TopReasons        []string       `json:"top_reasons"`
	ActiveConstraints map[string]any `json:"active_constraints"`
	AgentCount        int            `json:"agent_count"`
}

// Runner executes agents strictly sequentially in caller-supplied order.
// Ordering is load-bearing: the constraint merge is last-write-wins and
// top reasons are a positional slice, so do not parallelize without
// re-deriving a deterministic merge order.
type Runner struct{}

func NewRunner() *Runner { return &Runner{} }

// Run evaluates every agent and aggregates. One agent's failure never
// aborts the run: a panicking agent is replaced by a neutral score-50
// signal carrying the error text.
func (r *Runner) Run(evalCtx *agents.Context, battery []agents.Agent) (map[string]agents.Signal, Summary) {
	signals := make(map[string]agents.Signal, len(battery))
	summary := Summary{
		ActiveConstraints: map[string]any{},
		AgentCount:        len(battery),
	}

	if len(battery) == 0 {
		summary.OverallScore = 50.0
		summary.Decision = DecisionPass
		summary.TopReasons = []string{}
		return signals, summary
	}

	// Later agents (sizing in particular) read earlier agents' signals
	// through the context. The map is shared, not copied, so each agent
	// sees exactly the signals produced before it in battery order.
	if evalCtx != nil && evalCtx.AgentSignals == nil {
		evalCtx.AgentSignals = signals
	}

	var (
		scoreSum   float64
		scoreCount int
		allReasons []string
	)

	for _, agent := range battery {
		sig := safeEvaluate(agent, evalCtx)
		signals[sig.AgentID] = sig

		if sig.Veto {
			summary.Vetoed = true
		} else {
			scoreSum += sig.Score
			scoreCount++
		}
		allReasons = append(allReasons, sig.Reasons...)

		// Later agents silently overwrite earlier agents' same-named
		// constraint keys. Deliberate precedence rule.
		for key, value := range sig.Constraints() {
			summary.ActiveConstraints[key] = value
		}
	}

	switch {
	case scoreCount > 0:
		summary.OverallScore = scoreSum / float64(scoreCount)
	case summary.Vetoed:
		summary.OverallScore = 0.0
	default:
		summary.OverallScore = 50.0
	}

	switch {
	case summary.Vetoed:
		summary.Decision = DecisionReject
	case summary.OverallScore < 50:
		summary.Decision = DecisionWarning
	default:
		summary.Decision = DecisionPass
	}

	if len(allReasons) > 3 {
		allReasons = allReasons[:3]
	}
	if allReasons == nil {
		allReasons = []string{}
	}
	summary.TopReasons = allReasons

	return signals, summary
}

// safeEvaluate shields the run from a misbehaving agent.
func safeEvaluate(agent agents.Agent, evalCtx *agents.Context) (sig agents.Signal) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Error().Str("agent", agent.ID()).Interface("panic", rec).
				Msg("agent evaluation panicked, substituting neutral signal")
			sig = agents.Signal{
				AgentID:  agent.ID(),
				Score:    50,
				Veto:     false,
				Reasons:  []string{fmt.Sprintf("Agent Error: %v", rec)},
				Metadata: map[string]any{},
			}
		}
	}()
	return agent.Evaluate(evalCtx)
}
