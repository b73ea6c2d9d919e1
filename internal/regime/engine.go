// Package regime classifies market risk at two levels: a market-wide
// snapshot computed over a fixed liquid-ETF basket, and a per-symbol
// snapshot built from the vol surface. The two reconcile into the
// effective regime agents consume.
package regime

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/quantgate/quantgate/internal/data"
)

// DefaultBasket is the liquidity basket for the global pass. SPY anchors
// the trend and overlay computations; losing it fails the whole pass
// soft.
var DefaultBasket = []string{"SPY", "QQQ", "IWM", "TLT", "HYG", "XLF", "XLK", "XLE"}

const (
	barsLookbackDays = 150 // calendar days fetched to cover ~100 trading bars

	// Component z-score scales. The baselines come from the classifier
	// design (15% annualized vol, 0.5 pairwise correlation, 60% breadth);
	// the divisors normalize a typical excursion to one z unit.
	trendScale   = 0.05
	volBaseline  = 0.15
	volScale     = 0.15
	corrBaseline = 0.5
	corrScale    = 0.25
	breadthBase  = 0.60
	breadthScale = 0.20
)

// GlobalSnapshot is the market-wide classification for one epoch.
type GlobalSnapshot struct {
	AsOf       time.Time      `json:"as_of_ts"`
	State      State          `json:"state"`
	RiskScore  float64        `json:"risk_score"`
	RiskScaler float64        `json:"risk_scaler"`

	TrendScore     float64 `json:"trend_score"`
	VolScore       float64 `json:"vol_score"`
	CorrScore      float64 `json:"corr_score"`
	BreadthScore   float64 `json:"breadth_score"`
	LiquidityScore float64 `json:"liquidity_score"`

	Details map[string]any `json:"details"`
}

// SymbolSnapshot is the per-symbol classification. Missing upstream
// inputs set quality flags instead of failing the computation.
type SymbolSnapshot struct {
	Symbol string    `json:"symbol"`
	AsOf   time.Time `json:"as_of_ts"`
	State  State     `json:"state"`
	Score  float64   `json:"score"`

	IVRank     *float64 `json:"iv_rank,omitempty"`
	ATMIV30D   *float64 `json:"atm_iv_30d,omitempty"`
	RV20D      *float64 `json:"rv_20d,omitempty"`
	IVRVSpread *float64 `json:"iv_rv_spread,omitempty"`
	Skew25D    *float64 `json:"skew_25d,omitempty"`
	TermSlope  *float64 `json:"term_slope,omitempty"`

	QualityFlags map[string]bool `json:"quality_flags"`
}

// Engine computes regime snapshots from injected collaborators. Chain and
// IV collaborators are optional; their absence only degrades the symbol
// pass via quality flags.
type Engine struct {
	bars   data.BarsProvider
	chains data.ChainProvider
	iv     data.IVRepository
	basket []string
}

func NewEngine(bars data.BarsProvider, chains data.ChainProvider, iv data.IVRepository) *Engine {
	return &Engine{bars: bars, chains: chains, iv: iv, basket: DefaultBasket}
}

// WithBasket overrides the global basket, for tests and alternate
// universes.
func (e *Engine) WithBasket(symbols []string) *Engine {
	if len(symbols) > 0 {
		e.basket = symbols
	}
	return e
}

// defaultGlobalSnapshot is the fail-soft result when SPY data is
// unavailable.
func defaultGlobalSnapshot(asOf time.Time, reason string) GlobalSnapshot {
	return GlobalSnapshot{
		AsOf:       asOf,
		State:      Normal,
		RiskScore:  50.0,
		RiskScaler: Normal.Scaler(),
		Details:    map[string]any{"degraded": true, "reason": reason},
	}
}

// GlobalSnapshot classifies the whole market as of the given timestamp.
// It never returns an error for missing data: an unusable basket
// degrades to the default normal snapshot.
func (e *Engine) GlobalSnapshot(ctx context.Context, asOf time.Time) GlobalSnapshot {
	closes := e.fetchBasket(ctx, asOf)

	spy := closes["SPY"]
	if len(e.basket) > 0 && e.basket[0] != "SPY" {
		// Alternate universes anchor on their first symbol.
		spy = closes[e.basket[0]]
	}
	if len(spy) < 50 {
		log.Warn().Int("bars", len(spy)).Msg("anchor symbol bars missing, returning default global snapshot")
		return defaultGlobalSnapshot(asOf, "anchor bars unavailable")
	}

	price := spy[len(spy)-1]
	sma50 := sma(spy, 50)
	sma20 := sma(spy, 20)

	trendZ := ((price - sma50) / sma50) / trendScale
	volZ := (annualizedVol(spy, 20) - volBaseline) / volScale
	corrZ := (avgPairwiseCorrelation(closes, 20) - corrBaseline) / corrScale
	breadthZ := (basketBreadth(closes) - breadthBase) / breadthScale
	liquidityZ := 0.0 // proxy not implemented; see details flag

	raw := 0.4*volZ + 0.2*corrZ - 0.3*trendZ - 0.1*breadthZ
	risk := clamp(50+16.6*raw, 0, 100)

	state := bucketState(risk)
	overlay := ""
	if (state == Shock || state == Elevated) && sma20 < price && price < sma50 {
		// Post-drop, before full recovery.
		state = Rebound
		overlay = "rebound"
	} else if state == Normal && math.Abs(trendZ) < 0.5 && volZ < 0 {
		state = Chop
		overlay = "chop"
	}

	snap := GlobalSnapshot{
		AsOf:           asOf,
		State:          state,
		RiskScore:      risk,
		RiskScaler:     state.Scaler(),
		TrendScore:     trendZ,
		VolScore:       volZ,
		CorrScore:      corrZ,
		BreadthScore:   breadthZ,
		LiquidityScore: liquidityZ,
		Details: map[string]any{
			"price":            price,
			"sma20":            sma20,
			"sma50":            sma50,
			"overlay":          overlay,
			"basket_symbols":   len(closes),
			"liquidity_factor": "unimplemented",
		},
	}

	log.Debug().Str("state", state.String()).Float64("risk_score", risk).
		Float64("trend_z", trendZ).Float64("vol_z", volZ).
		Float64("corr_z", corrZ).Float64("breadth_z", breadthZ).
		Msg("global regime computed")

	return snap
}

// fetchBasket pulls daily closes for every basket symbol. Fetches run
// concurrently; a single symbol's failure only shrinks the basket.
func (e *Engine) fetchBasket(ctx context.Context, asOf time.Time) map[string][]float64 {
	start := asOf.AddDate(0, 0, -barsLookbackDays)

	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		closes = make(map[string][]float64, len(e.basket))
	)
	for _, symbol := range e.basket {
		wg.Add(1)
		go func(symbol string) {
			defer wg.Done()
			bars, err := e.bars.DailyBars(ctx, symbol, start, asOf)
			if err != nil {
				log.Warn().Err(err).Str("symbol", symbol).Msg("basket fetch failed, excluding symbol")
				return
			}
			if len(bars) == 0 {
				return
			}
			series := make([]float64, 0, len(bars))
			for _, b := range bars {
				if b.Close > 0 {
					series = append(series, b.Close)
				}
			}
			mu.Lock()
			closes[symbol] = series
			mu.Unlock()
		}(symbol)
	}
	wg.Wait()
	return closes
}

// SymbolSnapshot classifies one symbol from its vol surface, best effort.
// Every missing input sets a quality flag and contributes its neutral
// default to the composite instead of failing.
func (e *Engine) SymbolSnapshot(ctx context.Context, symbol string, asOf time.Time) SymbolSnapshot {
	snap := SymbolSnapshot{
		Symbol:       symbol,
		AsOf:         asOf,
		QualityFlags: map[string]bool{},
	}

	if e.iv != nil {
		ivCtx, err := e.iv.IVContext(ctx, symbol)
		if err != nil {
			log.Warn().Err(err).Str("symbol", symbol).Msg("iv context unavailable")
		} else {
			snap.IVRank = ivCtx.IVRank
			snap.ATMIV30D = ivCtx.ATMIV30D
		}
	}
	snap.QualityFlags["iv_rank_missing"] = snap.IVRank == nil
	snap.QualityFlags["atm_iv_missing"] = snap.ATMIV30D == nil

	if rv := e.realizedVol(ctx, symbol, asOf); rv != nil {
		snap.RV20D = rv
	}
	snap.QualityFlags["rv_missing"] = snap.RV20D == nil

	if snap.ATMIV30D != nil && snap.RV20D != nil {
		spread := *snap.ATMIV30D - *snap.RV20D
		snap.IVRVSpread = &spread
	}

	e.applyChainMetrics(ctx, symbol, &snap)

	// Composite: IV rank carries half weight, IV-RV spread full weight,
	// skew and inverted term slope half weight each.
	rank := 50.0
	if snap.IVRank != nil {
		rank = *snap.IVRank
	}
	spread100, skew100, slope100 := 0.0, 0.0, 0.0
	if snap.IVRVSpread != nil {
		spread100 = *snap.IVRVSpread * 100
	}
	if snap.Skew25D != nil {
		skew100 = *snap.Skew25D * 100
	}
	if snap.TermSlope != nil {
		slope100 = *snap.TermSlope * 100
	}
	snap.Score = clamp(0.5*rank+1.0*spread100+0.5*skew100+0.5*(-slope100), 0, 100)

	// The symbol pass uses the same buckets as the global pass but no
	// rebound/chop overlays.
	snap.State = bucketState(snap.Score)

	log.Debug().Str("symbol", symbol).Str("state", snap.State.String()).
		Float64("score", snap.Score).Msg("symbol regime computed")

	return snap
}

func (e *Engine) realizedVol(ctx context.Context, symbol string, asOf time.Time) *float64 {
	bars, err := e.bars.DailyBars(ctx, symbol, asOf.AddDate(0, 0, -60), asOf)
	if err != nil {
		log.Warn().Err(err).Str("symbol", symbol).Msg("bars unavailable for realized vol")
		return nil
	}
	closes := make([]float64, 0, len(bars))
	for _, b := range bars {
		if b.Close > 0 {
			closes = append(closes, b.Close)
		}
	}
	if len(closes) < 21 {
		return nil
	}
	rv := annualizedVol(closes, 20)
	return &rv
}

// applyChainMetrics computes the 25-delta skew and term slope from a live
// chain snapshot. An unavailable chain sets quality flags and moves on.
func (e *Engine) applyChainMetrics(ctx context.Context, symbol string, snap *SymbolSnapshot) {
	snap.QualityFlags["skew_missing"] = true
	snap.QualityFlags["term_slope_missing"] = true
	if e.chains == nil {
		return
	}

	contracts, err := e.chains.OptionChain(ctx, symbol)
	if err != nil || len(contracts) == 0 {
		if err != nil {
			log.Warn().Err(err).Str("symbol", symbol).Msg("option chain unavailable")
		}
		return
	}

	byExpiry := map[time.Time][]data.Contract{}
	for _, c := range contracts {
		byExpiry[c.ExpirationDate] = append(byExpiry[c.ExpirationDate], c)
	}

	near := closestExpiry(byExpiry, snap.AsOf.AddDate(0, 0, 30))
	far := closestExpiry(byExpiry, snap.AsOf.AddDate(0, 0, 90))

	if !near.IsZero() {
		putIV := ivAtDelta(byExpiry[near], "put", -0.25)
		callIV := ivAtDelta(byExpiry[near], "call", 0.25)
		if putIV != nil && callIV != nil {
			skew := *putIV - *callIV
			snap.Skew25D = &skew
			snap.QualityFlags["skew_missing"] = false
		}
	}
	if !near.IsZero() && !far.IsZero() && far.After(near) {
		nearATM := ivAtDelta(byExpiry[near], "call", 0.50)
		farATM := ivAtDelta(byExpiry[far], "call", 0.50)
		if nearATM != nil && farATM != nil {
			slope := *farATM - *nearATM
			snap.TermSlope = &slope
			snap.QualityFlags["term_slope_missing"] = false
		}
	}
}

func closestExpiry(byExpiry map[time.Time][]data.Contract, target time.Time) time.Time {
	var best time.Time
	bestDist := math.MaxFloat64
	for expiry := range byExpiry {
		dist := math.Abs(expiry.Sub(target).Hours())
		if dist < bestDist {
			bestDist = dist
			best = expiry
		}
	}
	return best
}

// ivAtDelta finds the contract of the given type whose delta is closest
// to the target and returns its IV, or nil when no candidate carries both
// greeks.
func ivAtDelta(contracts []data.Contract, contractType string, targetDelta float64) *float64 {
	var best *float64
	bestDist := math.MaxFloat64
	for i := range contracts {
		c := contracts[i]
		if c.ContractType != contractType || c.Delta == nil || c.ImpliedVol == nil {
			continue
		}
		dist := math.Abs(*c.Delta - targetDelta)
		if dist < bestDist {
			bestDist = dist
			best = c.ImpliedVol
		}
	}
	return best
}

// bucketState applies the shared score thresholds.
func bucketState(score float64) State {
	switch {
	case score < 20:
		return Suppressed
	case score < 60:
		return Normal
	case score < 80:
		return Elevated
	default:
		return Shock
	}
}

func sma(closes []float64, n int) float64 {
	if len(closes) < n || n <= 0 {
		n = len(closes)
	}
	if n == 0 {
		return 0
	}
	sum := 0.0
	for _, c := range closes[len(closes)-n:] {
		sum += c
	}
	return sum / float64(n)
}

// annualizedVol is the annualized stdev of the last n daily returns.
func annualizedVol(closes []float64, n int) float64 {
	rets := dailyReturns(closes)
	if len(rets) > n {
		rets = rets[len(rets)-n:]
	}
	if len(rets) < 2 {
		return 0
	}
	return stdev(rets) * math.Sqrt(252)
}

func dailyReturns(closes []float64) []float64 {
	if len(closes) < 2 {
		return nil
	}
	rets := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		if closes[i-1] > 0 {
			rets = append(rets, closes[i]/closes[i-1]-1)
		}
	}
	return rets
}

func stdev(values []float64) float64 {
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))
	variance := 0.0
	for _, v := range values {
		variance += (v - mean) * (v - mean)
	}
	variance /= float64(len(values) - 1)
	return math.Sqrt(variance)
}

// avgPairwiseCorrelation is the mean correlation of the last n daily
// returns across every basket pair with enough data. High correlation
// signals stress.
func avgPairwiseCorrelation(closes map[string][]float64, n int) float64 {
	symbols := make([]string, 0, len(closes))
	for s := range closes {
		symbols = append(symbols, s)
	}

	var sum float64
	var count int
	for i := 0; i < len(symbols); i++ {
		for j := i + 1; j < len(symbols); j++ {
			a := lastN(dailyReturns(closes[symbols[i]]), n)
			b := lastN(dailyReturns(closes[symbols[j]]), n)
			if len(a) < 2 || len(a) != len(b) {
				continue
			}
			if c, ok := correlation(a, b); ok {
				sum += c
				count++
			}
		}
	}
	if count == 0 {
		return corrBaseline // neutral when the basket is too thin
	}
	return sum / float64(count)
}

func lastN(values []float64, n int) []float64 {
	if len(values) > n {
		return values[len(values)-n:]
	}
	return values
}

func correlation(a, b []float64) (float64, bool) {
	n := float64(len(a))
	var sumA, sumB float64
	for i := range a {
		sumA += a[i]
		sumB += b[i]
	}
	meanA, meanB := sumA/n, sumB/n
	var cov, varA, varB float64
	for i := range a {
		da, db := a[i]-meanA, b[i]-meanB
		cov += da * db
		varA += da * da
		varB += db * db
	}
	if varA == 0 || varB == 0 {
		return 0, false
	}
	return cov / math.Sqrt(varA*varB), true
}

// basketBreadth is the share of basket symbols trading above their own
// 50-day SMA.
func basketBreadth(closes map[string][]float64) float64 {
	var above, valid int
	for _, series := range closes {
		if len(series) < 50 {
			continue
		}
		valid++
		if series[len(series)-1] > sma(series, 50) {
			above++
		}
	}
	if valid == 0 {
		return breadthBase // neutral when nothing qualifies
	}
	return float64(above) / float64(valid)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
