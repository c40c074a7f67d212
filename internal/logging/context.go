package logging

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"
)

type contextKey string

const loggerKey contextKey = "logger"

// NewCycleID generates a short random id used to correlate all log lines
// of one decision cycle.
func NewCycleID() string {
	b := make([]byte, 4)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// FromContext retrieves the logger from a context, falling back to the
// default logger.
func FromContext(ctx context.Context) *Logger {
	if l, ok := ctx.Value(loggerKey).(*Logger); ok {
		return l
	}
	return Default()
}

// NewContext returns a context carrying the logger.
func NewContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// CycleContext derives a cycle-scoped context and logger for one pass of
// the decision loop.
func CycleContext(ctx context.Context, candleTime time.Time) (context.Context, *Logger) {
	l := Default().WithCycleID(NewCycleID()).
		WithField("candle_time", candleTime.Format("15:04:05")).
		WithComponent("cycle")
	return NewContext(ctx, l), l
}

// TradeContext creates a logger scoped to one trade lifecycle.
func TradeContext(tradeID, symbol string, scenario int) *Logger {
	return Default().WithFields(map[string]interface{}{
		"trade_id": tradeID,
		"symbol":   symbol,
		"scenario": scenario,
	}).WithComponent("trade")
}

// PivotContext creates a logger carrying the day's key pivot levels.
func PivotContext(pp, r1, r2, r3 float64, structure string) *Logger {
	return Default().WithFields(map[string]interface{}{
		"pp":        pp,
		"r1":        r1,
		"r2":        r2,
		"r3":        r3,
		"structure": structure,
	}).WithComponent("pivots")
}
