// Package market holds intraday candle data and the rolling window used
// for significant-candle detection.
package market

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidCandle is returned for malformed candle data or ordering.
var ErrInvalidCandle = errors.New("invalid candle")

// Candle is one intraday bar. Immutable once recorded.
type Candle struct {
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Timestamp time.Time `json:"timestamp"`
}

// IsGreen reports whether the candle closed above its open.
func (c Candle) IsGreen() bool {
	return c.Close > c.Open
}

// SizePct is the candle body magnitude as a percent of its open, the
// significance metric for percentile ranking.
func (c Candle) SizePct() float64 {
	if c.Open == 0 {
		return 0
	}
	pct := (c.Close - c.Open) / c.Open * 100
	if pct < 0 {
		pct = -pct
	}
	return pct
}

// Validate checks basic OHLC consistency.
func (c Candle) Validate() error {
	if c.High < c.Low {
		return fmt.Errorf("%w: high %.2f below low %.2f", ErrInvalidCandle, c.High, c.Low)
	}
	if c.Open <= 0 || c.Close <= 0 || c.High <= 0 || c.Low <= 0 {
		return fmt.Errorf("%w: non-positive price", ErrInvalidCandle)
	}
	if c.Timestamp.IsZero() {
		return fmt.Errorf("%w: missing timestamp", ErrInvalidCandle)
	}
	return nil
}
