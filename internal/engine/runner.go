package engine

import (
	"context"
	"time"
)

// Run drives the engine until the context is cancelled: wait for the next
// session, prepare the day, evaluate one cycle per interval while the
// market is open, then close the books and wait for the following session.
func (e *Engine) Run(ctx context.Context) error {
	for {
		now := time.Now().In(e.schedule.Location())

		if !e.schedule.IsMarketOpen(now) {
			if e.day != nil && !e.dayEnded && e.schedule.IsTradingDay(now) && e.schedule.IsAfterEODExit(now) {
				if err := e.EndDay(ctx, now); err != nil {
					e.log.Error("End of day failed", "error", err)
				}
			}
			if err := e.sleepUntil(ctx, e.schedule.NextOpen(now)); err != nil {
				return err
			}
			continue
		}

		if e.day == nil || !sameDate(e.day.date, now) {
			if err := e.StartDay(ctx, now); err != nil {
				e.log.Error("Day preparation failed, retrying next cycle", "error", err)
				e.eventBus.PublishError("start_day", err)
			}
		}

		result := e.Cycle(ctx, now)
		e.log.Debug("Cycle complete", "action", string(result.Action), "reason", result.Reason)

		if err := e.sleepUntil(ctx, nextCycleTime(now, e.cfg.CycleInterval)); err != nil {
			return err
		}
	}
}

// nextCycleTime aligns wakeups to interval boundaries so candles are
// evaluated right after they complete.
func nextCycleTime(now time.Time, interval time.Duration) time.Time {
	return now.Truncate(interval).Add(interval)
}

func (e *Engine) sleepUntil(ctx context.Context, t time.Time) error {
	d := time.Until(t)
	if d <= 0 {
		d = time.Second
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
