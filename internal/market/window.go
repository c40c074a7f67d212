package market

import (
	"fmt"
	"math"
	"sort"
)

const (
	// DefaultWindowSize is the rolling window capacity.
	DefaultWindowSize = 20

	// DefaultMinSamples is the smallest window that can judge significance;
	// a percentile over fewer candles is unavailable.
	DefaultMinSamples = 5
)

// Window is a bounded, time-ordered buffer of the most recent candles for
// one instrument/strike/option-type. Oldest candles are evicted FIFO.
// Not safe for concurrent use; each engine instance owns its windows.
type Window struct {
	candles    []Candle
	capacity   int
	minSamples int
}

// NewWindow creates an empty window. Non-positive arguments fall back to
// the defaults.
func NewWindow(capacity, minSamples int) *Window {
	if capacity <= 0 {
		capacity = DefaultWindowSize
	}
	if minSamples <= 0 {
		minSamples = DefaultMinSamples
	}
	return &Window{
		candles:    make([]Candle, 0, capacity),
		capacity:   capacity,
		minSamples: minSamples,
	}
}

// Push appends a candle, evicting the oldest beyond capacity. A candle with
// the same timestamp as the latest is a duplicate fetch and is dropped; a
// candle older than the latest violates ordering and is rejected.
func (w *Window) Push(c Candle) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if n := len(w.candles); n > 0 {
		last := w.candles[n-1].Timestamp
		if c.Timestamp.Equal(last) {
			return nil
		}
		if c.Timestamp.Before(last) {
			return fmt.Errorf("%w: timestamp %s before window tail %s",
				ErrInvalidCandle, c.Timestamp.Format("15:04:05"), last.Format("15:04:05"))
		}
	}

	w.candles = append(w.candles, c)
	if len(w.candles) > w.capacity {
		copy(w.candles, w.candles[1:])
		w.candles = w.candles[:w.capacity]
	}
	return nil
}

// Latest returns the most recent candle, or false on an empty window.
func (w *Window) Latest() (Candle, bool) {
	if len(w.candles) == 0 {
		return Candle{}, false
	}
	return w.candles[len(w.candles)-1], true
}

// Len returns the number of candles currently held.
func (w *Window) Len() int {
	return len(w.candles)
}

// Candles returns a copy of the window contents, oldest first.
func (w *Window) Candles() []Candle {
	out := make([]Candle, len(w.candles))
	copy(out, w.candles)
	return out
}

// Percentile computes the p-th percentile (0-100) of the size-pct values in
// the window using linear interpolation at the fractional rank. Returns
// false while the window holds fewer than the minimum sample count.
func (w *Window) Percentile(p float64) (float64, bool) {
	n := len(w.candles)
	if n < w.minSamples {
		return 0, false
	}
	if p < 0 {
		p = 0
	}
	if p > 100 {
		p = 100
	}

	sizes := make([]float64, n)
	for i, c := range w.candles {
		sizes[i] = c.SizePct()
	}
	sort.Float64s(sizes)

	rank := p / 100 * float64(n-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sizes[lo], true
	}
	frac := rank - float64(lo)
	return sizes[lo] + frac*(sizes[hi]-sizes[lo]), true
}

// Clear empties the window for a new trading day; percentiles must reflect
// the current session's volatility regime only.
func (w *Window) Clear() {
	w.candles = w.candles[:0]
}
