package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/quantgate/quantgate/internal/agents"
	"github.com/quantgate/quantgate/internal/artifacts"
	"github.com/quantgate/quantgate/internal/pipeline"
)

var (
	scenarioPath string
	artifactsDir string
	writeJSON    bool
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Run the agent battery against a scenario file",
	Long: `Evaluate loads an evaluation context from a YAML scenario file, runs
the enabled agents against it, and prints the per-agent signals plus the
aggregated decision. Agent thresholds and toggles come from QUANT_AGENT_*
environment variables.

Example:
  QUANT_AGENTS_ENABLED=true quantgate evaluate --scenario trade.yaml`,
	RunE: runEvaluate,
}

func init() {
	addEvaluateFlags(evaluateCmd.Flags())
}

func addEvaluateFlags(fs *pflag.FlagSet) {
	fs.StringVar(&scenarioPath, "scenario", "", "path to the scenario YAML file (required)")
	fs.StringVar(&artifactsDir, "artifacts-dir", "", "write the run artifact under this directory")
	fs.BoolVar(&writeJSON, "json", false, "print the raw signals and summary as JSON")
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	if scenarioPath == "" {
		return fmt.Errorf("--scenario is required")
	}

	raw, err := os.ReadFile(scenarioPath)
	if err != nil {
		return fmt.Errorf("read scenario: %w", err)
	}
	var evalCtx agents.Context
	if err := yaml.Unmarshal(raw, &evalCtx); err != nil {
		return fmt.Errorf("parse scenario: %w", err)
	}

	cfg := agents.ConfigFromEnv()
	battery := agents.BuildPipeline(cfg)
	if len(battery) == 0 {
		return fmt.Errorf("agent pipeline disabled (set QUANT_AGENTS_ENABLED=true)")
	}

	signals, summary := pipeline.NewRunner().Run(&evalCtx, battery)

	if writeJSON {
		return printJSON(signals, summary)
	}
	printSummary(battery, signals, summary)

	if artifactsDir != "" {
		runID, path, err := artifacts.NewWriter(artifactsDir).WriteEvaluation(evalCtx.Symbol, signals, summary)
		if err != nil {
			return err
		}
		fmt.Printf("\nartifact %s written to %s\n", runID, path)
	}
	return nil
}

func printJSON(signals map[string]agents.Signal, summary pipeline.Summary) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(map[string]any{"signals": signals, "summary": summary})
}

func printSummary(battery []agents.Agent, signals map[string]agents.Signal, summary pipeline.Summary) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "AGENT\tSCORE\tVETO\tREASON")
	for _, agent := range battery {
		sig := signals[agent.ID()]
		reason := ""
		if len(sig.Reasons) > 0 {
			reason = sig.Reasons[0]
		}
		fmt.Fprintf(w, "%s\t%.1f\t%v\t%s\n", sig.AgentID, sig.Score, sig.Veto, reason)
	}
	w.Flush()

	fmt.Printf("\ndecision: %s (overall %.1f, vetoed=%v, agents=%d)\n",
		summary.Decision, summary.OverallScore, summary.Vetoed, summary.AgentCount)

	if len(summary.ActiveConstraints) > 0 {
		keys := make([]string, 0, len(summary.ActiveConstraints))
		for key := range summary.ActiveConstraints {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		fmt.Println("\nactive constraints:")
		for _, key := range keys {
			fmt.Printf("  %s = %v\n", key, summary.ActiveConstraints[key])
		}
	}
}
