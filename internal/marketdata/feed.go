// Package marketdata fetches index spot prices and option premium candles.
// The engine only sees the Feed interface; live trading uses the broker
// REST client and development runs use the simulated feed.
package marketdata

import (
	"context"
	"errors"
	"time"

	"pivot-trading-engine/internal/market"
	"pivot-trading-engine/internal/pivots"
)

// ErrNoData is returned when the upstream has no candle for the request,
// e.g. an illiquid strike with no trades in the interval.
var ErrNoData = errors.New("no market data available")

// Feed provides the market data the decision loop needs.
type Feed interface {
	// PreviousSessionOHLC returns the prior trading day's daily bar for an
	// option symbol, the input to the pivot calculation.
	PreviousSessionOHLC(ctx context.Context, symbol string, day time.Time) (pivots.SessionOHLC, error)

	// LatestCandle returns the most recent completed intraday candle for
	// an option symbol.
	LatestCandle(ctx context.Context, symbol string, interval time.Duration) (market.Candle, error)

	// SpotPrice returns the current index level, used for strike selection.
	SpotPrice(ctx context.Context, index string) (float64, error)

	// LastTradedPrice returns the option's current LTP, used for the
	// end-of-day square-off.
	LastTradedPrice(ctx context.Context, symbol string) (float64, error)
}
