package agents

// BuildPipeline assembles the agent battery in its canonical order. The
// order is load-bearing downstream: the runner merges constraints
// last-write-wins and slices top reasons in iteration order.
//
// The master toggle gates the whole battery; with it off the pipeline is
// empty and callers fall back to their legacy scoring path.
func BuildPipeline(cfg Config) []Agent {
	if !cfg.Enabled {
		return nil
	}

	var pipeline []Agent
	if cfg.RegimeEnabled {
		pipeline = append(pipeline, NewRegimeAgent(cfg))
	}
	if cfg.VolSurfaceEnabled {
		pipeline = append(pipeline, NewVolSurfaceAgent(cfg))
	}
	if cfg.LiquidityEnabled {
		pipeline = append(pipeline, NewLiquidityAgent(cfg))
	}
	if cfg.EventRiskEnabled {
		pipeline = append(pipeline, NewEventRiskAgent(cfg))
	}
	if cfg.StrategyDesignEnabled {
		pipeline = append(pipeline, NewStrategyDesignAgent(cfg))
	}
	if cfg.SizingEnabled {
		pipeline = append(pipeline, NewSizingAgent(cfg))
	}
	if cfg.ExitPlanEnabled {
		pipeline = append(pipeline, NewExitPlanAgent(cfg))
	}
	if cfg.PostTradeEnabled {
		pipeline = append(pipeline, NewPostTradeReviewAgent(cfg))
	}
	return pipeline
}
