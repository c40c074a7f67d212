package execution

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// PaperSink fills every order instantly at the commanded price. It keeps a
// seen-set of trade ids so retried orders stay idempotent.
type PaperSink struct {
	mu     sync.Mutex
	logger zerolog.Logger

	opened map[string]Fill
	closed map[string]Fill
}

// NewPaperSink creates a paper-trading sink.
func NewPaperSink(logger zerolog.Logger) *PaperSink {
	return &PaperSink{
		logger: logger.With().Str("component", "PaperSink").Logger(),
		opened: make(map[string]Fill),
		closed: make(map[string]Fill),
	}
}

var _ Sink = (*PaperSink)(nil)

// Open fills the entry at the commanded price.
func (s *PaperSink) Open(_ context.Context, o OpenOrder) (Fill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if fill, ok := s.opened[o.TradeID]; ok {
		return fill, nil
	}
	if o.Quantity <= 0 || o.Price <= 0 {
		return Fill{}, fmt.Errorf("%w: quantity %d price %.2f", ErrRejected, o.Quantity, o.Price)
	}

	fill := Fill{
		TradeID:  o.TradeID,
		Symbol:   o.Symbol,
		Price:    o.Price,
		Quantity: o.Quantity,
		Time:     fillTime(o.Time),
	}
	s.opened[o.TradeID] = fill

	s.logger.Info().
		Str("trade_id", o.TradeID).
		Str("symbol", o.Symbol).
		Float64("price", o.Price).
		Int("quantity", o.Quantity).
		Int("scenario", o.Scenario).
		Msg("Paper entry filled")
	return fill, nil
}

// Close fills the exit at the commanded price.
func (s *PaperSink) Close(_ context.Context, o CloseOrder) (Fill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if fill, ok := s.closed[o.TradeID]; ok {
		return fill, nil
	}
	if _, ok := s.opened[o.TradeID]; !ok {
		return Fill{}, fmt.Errorf("%w: close for unknown trade %s", ErrRejected, o.TradeID)
	}

	fill := Fill{
		TradeID:  o.TradeID,
		Symbol:   o.Symbol,
		Price:    o.Price,
		Quantity: o.Quantity,
		Time:     fillTime(o.Time),
	}
	s.closed[o.TradeID] = fill

	s.logger.Info().
		Str("trade_id", o.TradeID).
		Str("symbol", o.Symbol).
		Float64("price", o.Price).
		Str("reason", o.Reason).
		Msg("Paper exit filled")
	return fill, nil
}

func fillTime(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now()
	}
	return t
}
