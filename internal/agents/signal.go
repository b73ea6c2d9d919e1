// Package agents contains the stateless evaluators that score a candidate
// options trade along independent risk dimensions. Each agent reads its
// slice of the shared evaluation context and emits one Signal.
package agents

// Signal is the common result type every agent returns. It is created
// fresh by each Evaluate call and never mutated afterwards.
type Signal struct {
	AgentID  string         `json:"agent_id"`
	Score    float64        `json:"score"`
	Veto     bool           `json:"veto"`
	Reasons  []string       `json:"reasons"`
	Metadata map[string]any `json:"metadata"`
}

// Constraints returns the nested constraints map, or nil when the agent
// emitted none. Keys are namespaced "<domain>.<key>".
func (s Signal) Constraints() map[string]any {
	if s.Metadata == nil {
		return nil
	}
	c, _ := s.Metadata["constraints"].(map[string]any)
	return c
}

func newSignal(agentID string, score float64, veto bool, reasons []string, constraints map[string]any) Signal {
	md := map[string]any{}
	if constraints != nil {
		md["constraints"] = constraints
	}
	return Signal{
		AgentID:  agentID,
		Score:    score,
		Veto:     veto,
		Reasons:  reasons,
		Metadata: md,
	}
}

// Agent is the contract every evaluator implements. Evaluate must always
// return a fully populated Signal: malformed or missing input is folded
// into a neutral, non-vetoing signal with an explanatory reason rather
// than an error.
type Agent interface {
	ID() string
	Evaluate(ctx *Context) Signal
}
