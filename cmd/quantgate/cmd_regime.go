package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/quantgate/quantgate/internal/data"
	"github.com/quantgate/quantgate/internal/data/cache"
	"github.com/quantgate/quantgate/internal/persistence/postgres"
	"github.com/quantgate/quantgate/internal/regime"
)

var (
	regimeSymbol string
	regimeStore  bool
	redisAddr    string
)

var regimeCmd = &cobra.Command{
	Use:   "regime",
	Short: "Compute the current market regime from stored bars",
	Long: `Regime fetches daily bars for the liquidity basket from PostgreSQL
(PG_DSN), computes the global risk classification, and optionally a
per-symbol snapshot and the reconciled effective regime.`,
	RunE: runRegime,
}

func init() {
	addRegimeFlags(regimeCmd.Flags())
}

func addRegimeFlags(fs *pflag.FlagSet) {
	fs.StringVar(&regimeSymbol, "symbol", "", "also compute a per-symbol snapshot")
	fs.BoolVar(&regimeStore, "store", false, "upsert the global snapshot into regime_snapshots")
	fs.StringVar(&redisAddr, "redis", "", "redis address for the IV context cache")
}

func runRegime(cmd *cobra.Command, args []string) error {
	db, err := postgres.Connect(postgres.ConfigFromEnv())
	if err != nil {
		return err
	}
	defer db.Close()

	bars := data.NewGuardedBars(
		postgres.NewBarsRepo(db, 0),
		data.DefaultGuardConfig("postgres-bars"),
	)

	var ivRepo data.IVRepository
	if redisAddr != "" {
		// No live IV source wired in the CLI yet; the cache still serves
		// previously warmed entries.
		ivRepo = cache.New(emptyIVSource{}, cache.NewClient(redisAddr, "", 0), 0)
	}

	engine := regime.NewEngine(bars, nil, ivRepo)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	global := engine.GlobalSnapshot(ctx, time.Now().UTC())
	fmt.Printf("global regime: %s (risk %.1f, scaler %.2f)\n",
		global.State, global.RiskScore, global.RiskScaler)
	fmt.Printf("  trend %.2f  vol %.2f  corr %.2f  breadth %.2f\n",
		global.TrendScore, global.VolScore, global.CorrScore, global.BreadthScore)

	if regimeSymbol != "" {
		symbol := engine.SymbolSnapshot(ctx, regimeSymbol, global.AsOf)
		effective := regime.EffectiveRegime(symbol.State, global.State)
		fmt.Printf("%s regime: %s (score %.1f)\n", symbol.Symbol, symbol.State, symbol.Score)
		fmt.Printf("effective regime: %s (scoring bucket %s)\n",
			effective, regime.ScoringRegime(effective))
	}

	if regimeStore {
		if err := postgres.NewRegimeRepo(db, 0).Upsert(ctx, global); err != nil {
			return err
		}
		fmt.Println("snapshot stored")
	}
	return nil
}

// emptyIVSource backs the cache when no live IV provider is configured.
type emptyIVSource struct{}

func (emptyIVSource) IVContext(ctx context.Context, symbol string) (data.IVContext, error) {
	return data.IVContext{}, nil
}
