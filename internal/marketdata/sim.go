package marketdata

import (
	"context"
	"math/rand"
	"strings"
	"sync"
	"time"

	"pivot-trading-engine/internal/market"
	"pivot-trading-engine/internal/pivots"
)

// SimFeed generates random-walk market data for development and dry runs.
// Option premiums drift more than the index to mimic option leverage.
type SimFeed struct {
	mu     sync.Mutex
	rng    *rand.Rand
	prices map[string]float64

	// IndexLevels seeds spot prices for known indices.
	indexLevels map[string]float64
}

// NewSimFeed creates a simulated feed. A zero seed uses the clock.
func NewSimFeed(seed int64) *SimFeed {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &SimFeed{
		rng:    rand.New(rand.NewSource(seed)),
		prices: make(map[string]float64),
		indexLevels: map[string]float64{
			"SENSEX": 81000,
			"NIFTY":  24500,
		},
	}
}

var _ Feed = (*SimFeed)(nil)

// price returns the current simulated price for a symbol, seeding option
// premiums around 150 and indices at their configured level.
func (f *SimFeed) price(symbol string) float64 {
	if p, ok := f.prices[symbol]; ok {
		return p
	}
	p := 150.0
	for index, level := range f.indexLevels {
		if symbol == index {
			p = level
			break
		}
	}
	f.prices[symbol] = p
	return p
}

// step advances a symbol's random walk and returns the new price. Options
// move up to +/-3% per step, indices +/-0.2%.
func (f *SimFeed) step(symbol string) float64 {
	p := f.price(symbol)
	drift := 0.002
	if strings.HasSuffix(symbol, "CE") || strings.HasSuffix(symbol, "PE") {
		drift = 0.03
	}
	p *= 1 + (f.rng.Float64()*2-1)*drift
	if p < 1 {
		p = 1
	}
	f.prices[symbol] = p
	return p
}

// PreviousSessionOHLC synthesizes a plausible prior-day bar around the
// symbol's current price.
func (f *SimFeed) PreviousSessionOHLC(_ context.Context, symbol string, day time.Time) (pivots.SessionOHLC, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	base := f.price(symbol)
	high := base * (1 + 0.02 + f.rng.Float64()*0.02)
	low := base * (1 - 0.02 - f.rng.Float64()*0.02)
	open := low + f.rng.Float64()*(high-low)
	close := low + f.rng.Float64()*(high-low)

	return pivots.SessionOHLC{Open: open, High: high, Low: low, Close: close, Date: day}, nil
}

// LatestCandle synthesizes one completed bar ending now, aligned to the
// interval boundary.
func (f *SimFeed) LatestCandle(_ context.Context, symbol string, interval time.Duration) (market.Candle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	open := f.price(symbol)
	close := f.step(symbol)
	high, low := open, close
	if close > open {
		high = close
		low = open
	}
	high *= 1 + f.rng.Float64()*0.002
	low *= 1 - f.rng.Float64()*0.002

	ts := time.Now().Truncate(interval)
	return market.Candle{Open: open, High: high, Low: low, Close: close, Timestamp: ts}, nil
}

// SpotPrice returns the simulated index level.
func (f *SimFeed) SpotPrice(_ context.Context, index string) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.step(index), nil
}

// LastTradedPrice returns the symbol's current simulated price.
func (f *SimFeed) LastTradedPrice(_ context.Context, symbol string) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.price(symbol), nil
}
