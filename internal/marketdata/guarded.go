package marketdata

import (
	"context"
	"time"

	"pivot-trading-engine/internal/circuit"
	"pivot-trading-engine/internal/logging"
	"pivot-trading-engine/internal/market"
	"pivot-trading-engine/internal/pivots"
)

// GuardedFeed wraps a feed with a circuit breaker so a broker outage
// fails cycles fast instead of stacking up request timeouts.
type GuardedFeed struct {
	feed    Feed
	breaker *circuit.Breaker
	log     *logging.Logger
}

func NewGuardedFeed(feed Feed, breaker *circuit.Breaker) *GuardedFeed {
	g := &GuardedFeed{
		feed:    feed,
		breaker: breaker,
		log:     logging.WithComponent("marketdata"),
	}
	breaker.OnTrip(func(reason string) {
		g.log.Error("Market data breaker tripped", "reason", reason)
	})
	breaker.OnReset(func() {
		g.log.Info("Market data breaker closed, feed recovered")
	})
	return g
}

func (g *GuardedFeed) PreviousSessionOHLC(ctx context.Context, symbol string, day time.Time) (pivots.SessionOHLC, error) {
	if err := g.breaker.Allow(); err != nil {
		return pivots.SessionOHLC{}, err
	}
	ohlc, err := g.feed.PreviousSessionOHLC(ctx, symbol, day)
	g.record(err)
	return ohlc, err
}

func (g *GuardedFeed) LatestCandle(ctx context.Context, symbol string, interval time.Duration) (market.Candle, error) {
	if err := g.breaker.Allow(); err != nil {
		return market.Candle{}, err
	}
	c, err := g.feed.LatestCandle(ctx, symbol, interval)
	g.record(err)
	return c, err
}

func (g *GuardedFeed) SpotPrice(ctx context.Context, index string) (float64, error) {
	if err := g.breaker.Allow(); err != nil {
		return 0, err
	}
	price, err := g.feed.SpotPrice(ctx, index)
	g.record(err)
	return price, err
}

func (g *GuardedFeed) LastTradedPrice(ctx context.Context, symbol string) (float64, error) {
	if err := g.breaker.Allow(); err != nil {
		return 0, err
	}
	price, err := g.feed.LastTradedPrice(ctx, symbol)
	g.record(err)
	return price, err
}

func (g *GuardedFeed) record(err error) {
	if err != nil {
		g.breaker.RecordFailure(err)
		return
	}
	g.breaker.RecordSuccess()
}

var _ Feed = (*GuardedFeed)(nil)
