package signal

import (
	"time"

	"pivot-trading-engine/internal/logging"
	"pivot-trading-engine/internal/market"
	"pivot-trading-engine/internal/pivots"
)

// Session exposes the position-ledger state the matcher gates on.
type Session interface {
	// HasPosition reports whether a position is currently open.
	HasPosition() bool
	// CanEnter reports whether a new entry is still allowed today
	// (no open position and the re-entry quota is not exhausted).
	CanEnter() bool
}

// Entry is a fired entry signal. Entry price is the signal candle's close,
// stop loss its low.
type Entry struct {
	Scenario    Scenario
	EntryPrice  float64
	StopLoss    float64
	Target      float64
	FirstCandle bool
	SizePct     float64
	Candle      market.Candle
	Reason      string
	Time        time.Time
}

// Config holds the matcher tunables.
type Config struct {
	SignificancePercentile float64 // Candle body percentile gate, default 75
}

// Matcher decides whether the active candle fires an entry scenario.
type Matcher struct {
	cfg Config
	log *logging.Logger
}

// NewMatcher creates a matcher. A zero percentile falls back to 75.
func NewMatcher(cfg Config, log *logging.Logger) *Matcher {
	if cfg.SignificancePercentile <= 0 {
		cfg.SignificancePercentile = 75
	}
	if log == nil {
		log = logging.Default()
	}
	return &Matcher{cfg: cfg, log: log.WithComponent("matcher")}
}

// EvaluateEntry checks the entry preconditions and then the scenarios in
// order S1, S2, S3. Returns nil when no scenario fires; that is the normal
// steady state, not an error.
//
// Preconditions, all required: bullish structure, green candle, candle body
// at or above the significance percentile, and a session that can enter.
// An unavailable percentile (short window) means not significant.
func (m *Matcher) EvaluateEntry(p pivots.Set, w *market.Window, session Session, firstCandle bool, now time.Time) *Entry {
	if p.Structure != pivots.Bullish {
		return nil
	}

	candle, ok := w.Latest()
	if !ok {
		return nil
	}
	if !candle.IsGreen() {
		return nil
	}

	threshold, ok := w.Percentile(m.cfg.SignificancePercentile)
	if !ok {
		// Too few candles to judge significance yet.
		return nil
	}
	sizePct := candle.SizePct()
	if sizePct < threshold {
		return nil
	}

	if session.HasPosition() {
		return nil
	}
	if !session.CanEnter() {
		m.log.Warn("entry signal suppressed: re-entry limit reached")
		return nil
	}

	for _, r := range allRules() {
		res, ok := r.evaluate(p, candle, firstCandle)
		if !ok {
			continue
		}
		return &Entry{
			Scenario:    r.scenario(),
			EntryPrice:  candle.Close,
			StopLoss:    candle.Low,
			Target:      res.target,
			FirstCandle: firstCandle,
			SizePct:     sizePct,
			Candle:      candle,
			Reason:      res.reason,
			Time:        now,
		}
	}
	return nil
}
