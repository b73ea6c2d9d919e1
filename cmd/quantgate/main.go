package main

import (
	"os"

	"github.com/spf13/cobra"

	qlog "github.com/quantgate/quantgate/internal/log"
)

var rootCmd = &cobra.Command{
	Use:   "quantgate",
	Short: "QuantGate options trade decision pipeline",
	Long: `QuantGate scores candidate options trades along independent risk
dimensions (regime, volatility surface, liquidity, event risk, strategy
selection, sizing, exit planning) and aggregates the verdicts into one
pass/warn/reject decision with merged constraints.`,
}

func main() {
	qlog.Setup(true)

	rootCmd.AddCommand(evaluateCmd)
	rootCmd.AddCommand(regimeCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
