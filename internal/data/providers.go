// Package data declares the collaborator interfaces the regime engine
// consumes: daily price bars, live option chains, and IV context.
package data

import (
	"context"
	"time"
)

// Bar is one daily close for a symbol.
type Bar struct {
	Date  time.Time `db:"ds" json:"date"`
	Close float64   `db:"close" json:"close"`
}

// Contract is one option chain entry. Delta and IV are optional because
// not every provider quotes greeks on every strike.
type Contract struct {
	Strike         float64    `json:"strike"`
	ExpirationDate time.Time  `json:"expiration_date"`
	ContractType   string     `json:"contract_type"` // "call" or "put"
	Delta          *float64   `json:"delta,omitempty"`
	ImpliedVol     *float64   `json:"implied_volatility,omitempty"`
}

// IVContext holds the per-symbol implied volatility summary. Either field
// may be absent when the upstream source has no history for the symbol.
type IVContext struct {
	IVRank   *float64 `json:"iv_rank,omitempty"`
	ATMIV30D *float64 `json:"iv_30d,omitempty"`
}

// BarsProvider fetches daily bars. A symbol the provider does not know
// yields an empty slice, not an error.
type BarsProvider interface {
	DailyBars(ctx context.Context, symbol string, start, end time.Time) ([]Bar, error)
}

// ChainProvider fetches a live option chain snapshot. Unavailability is
// signalled by an empty or nil slice.
type ChainProvider interface {
	OptionChain(ctx context.Context, symbol string) ([]Contract, error)
}

// IVRepository serves per-symbol IV context.
type IVRepository interface {
	IVContext(ctx context.Context, symbol string) (IVContext, error)
}
