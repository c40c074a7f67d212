package position

import (
	"time"

	"pivot-trading-engine/internal/market"
)

// Exit is a decision to close the open position.
type Exit struct {
	Reason ExitReason
	Price  float64
	Time   time.Time
}

// ExitEvaluator applies the exit rules in fixed priority order:
// stop-loss, target, first-candle timeout, end-of-day. The first rule
// that fires wins, so a candle that pierces both stop and target books
// the stop.
type ExitEvaluator struct {
	// TimeoutCandles is the holding limit for first-candle entries.
	TimeoutCandles int
	// AfterEODExit reports whether the square-off time has passed.
	AfterEODExit func(time.Time) bool
}

// Evaluate checks the open position against the latest completed candle.
// lastTraded is the current option LTP, used only for the EOD square-off.
// Returns nil when the position stays open.
func (ev *ExitEvaluator) Evaluate(pos Position, c market.Candle, lastTraded float64, now time.Time) *Exit {
	if c.Close <= pos.StopLoss {
		return &Exit{Reason: ExitStopLoss, Price: c.Close, Time: now}
	}
	if c.Close >= pos.Target {
		return &Exit{Reason: ExitTarget, Price: c.Close, Time: now}
	}
	if pos.FirstCandleEntry && ev.TimeoutCandles > 0 && pos.CandlesHeld >= ev.TimeoutCandles {
		return &Exit{Reason: ExitTimeout, Price: c.Close, Time: now}
	}
	if ev.AfterEODExit != nil && ev.AfterEODExit(now) {
		return &Exit{Reason: ExitEOD, Price: lastTraded, Time: now}
	}
	return nil
}
