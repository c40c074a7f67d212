// Package engine runs the daily decision loop: prepare the session in the
// morning, evaluate one entry-or-exit decision per candle cycle, and close
// the books after the square-off.
package engine

import (
	"context"
	"fmt"
	"time"

	"pivot-trading-engine/internal/database"
	"pivot-trading-engine/internal/events"
	"pivot-trading-engine/internal/execution"
	"pivot-trading-engine/internal/hours"
	"pivot-trading-engine/internal/instruments"
	"pivot-trading-engine/internal/logging"
	"pivot-trading-engine/internal/market"
	"pivot-trading-engine/internal/marketdata"
	"pivot-trading-engine/internal/pivots"
	"pivot-trading-engine/internal/position"
	"pivot-trading-engine/internal/signal"
)

// Config holds the engine tunables. LotSize, StrikeInterval and
// StrikeRange override the instrument's exchange defaults when positive.
type Config struct {
	Instrument             string
	LotSize                int
	StrikeInterval         int
	StrikeRange            int
	MaxReEntries           int
	CycleInterval          time.Duration
	WindowSize             int
	MinWindowSamples       int
	SignificancePercentile float64
	StructureThreshold     float64
	TimeoutCandles         int
}

// Recorder persists trades and signals. Satisfied by *database.Repository.
type Recorder interface {
	CreateTrade(ctx context.Context, t *database.TradeRecord) error
	CloseTrade(ctx context.Context, tradeID string, exitTime time.Time, exitPrice float64, exitReason string, candlesHeld int, pnlPoints, pnlRupees float64) error
	CreateSignal(ctx context.Context, s *database.SignalRecord) error
}

// Summarizer aggregates closed trades into a daily summary. Recorders that
// also implement it get a summary computed and stored at end of day.
type Summarizer interface {
	ComputeDailySummary(ctx context.Context, date time.Time, instrument string) (*database.DailySummary, error)
	UpsertDailySummary(ctx context.Context, s *database.DailySummary) error
}

// SessionStore persists restart-critical session state. Satisfied by
// *database.RedisSessionStateRepository.
type SessionStore interface {
	Save(ctx context.Context, state *database.PersistedSessionState) error
	Load(ctx context.Context, instrument, day string) (*database.PersistedSessionState, error)
	Clear(ctx context.Context, instrument, day string) error
}

// Alerter sends trade notifications. Satisfied by *notification.Manager.
type Alerter interface {
	SendEntrySignal(pos position.Position, sizePct float64) error
	SendExitSignal(trade position.ClosedTrade) error
	SendDailySummary(s *database.DailySummary) error
	SendError(title, message string) error
}

// Action says what a decision cycle did.
type Action string

const (
	ActionSkipped Action = "SKIPPED"
	ActionNone    Action = "NONE"
	ActionHeld    Action = "HELD"
	ActionOpened  Action = "OPENED"
	ActionClosed  Action = "CLOSED"
)

// CycleResult reports one pass of the decision loop.
type CycleResult struct {
	Action Action
	Reason string
}

// pendingClose is a confirmed exit whose database record failed and must
// be retried.
type pendingClose struct {
	trade position.ClosedTrade
}

// Engine is the trading decision engine for one instrument. All state
// transitions happen on the caller's goroutine; the engine does no
// internal locking and must be driven from a single loop.
type Engine struct {
	cfg      Config
	spec     instruments.Spec
	schedule *hours.Schedule
	feed     marketdata.Feed
	sink     execution.Sink
	matcher  *signal.Matcher
	exitEval *position.ExitEvaluator
	ledger   *position.Ledger
	recorder Recorder
	sessions SessionStore
	alerter  Alerter
	eventBus *events.EventBus
	log      *logging.Logger

	day      *tradingDay
	pending  []pendingClose
	dayEnded bool
}

// New assembles an engine. recorder, sessions and alerter may be nil; the
// engine then runs without persistence or alerts.
func New(cfg Config, schedule *hours.Schedule, feed marketdata.Feed, sink execution.Sink,
	recorder Recorder, sessions SessionStore, alerter Alerter, eventBus *events.EventBus) (*Engine, error) {

	spec, err := instruments.Lookup(cfg.Instrument)
	if err != nil {
		return nil, err
	}
	if cfg.LotSize > 0 {
		spec.LotSize = cfg.LotSize
	}
	if cfg.StrikeInterval > 0 {
		spec.StrikeInterval = cfg.StrikeInterval
	}
	if cfg.StrikeRange > 0 {
		spec.StrikeRange = cfg.StrikeRange
	}
	if cfg.CycleInterval <= 0 {
		cfg.CycleInterval = 3 * time.Minute
	}
	if cfg.TimeoutCandles <= 0 {
		cfg.TimeoutCandles = 10
	}
	if cfg.StructureThreshold <= 0 {
		cfg.StructureThreshold = pivots.DefaultStructureThreshold
	}
	if eventBus == nil {
		eventBus = events.NewEventBus()
	}

	log := logging.WithComponent("engine")
	return &Engine{
		cfg:      cfg,
		spec:     spec,
		schedule: schedule,
		feed:     feed,
		sink:     sink,
		matcher:  signal.NewMatcher(signal.Config{SignificancePercentile: cfg.SignificancePercentile}, log),
		exitEval: &position.ExitEvaluator{
			TimeoutCandles: cfg.TimeoutCandles,
			AfterEODExit:   schedule.IsAfterEODExit,
		},
		recorder: recorder,
		sessions: sessions,
		alerter:  alerter,
		eventBus: eventBus,
		log:      log,
	}, nil
}

// EventBus exposes the bus for wiring subscribers.
func (e *Engine) EventBus() *events.EventBus {
	return e.eventBus
}

// StartDay prepares the session: pick the contract, compute pivots from
// the previous session, reset the window and ledger, and restore any
// persisted state from an earlier run of the same day. Idempotent for a
// given date.
func (e *Engine) StartDay(ctx context.Context, now time.Time) error {
	if !e.schedule.IsTradingDay(now) {
		return fmt.Errorf("%s is not a trading day", now.Format("2006-01-02"))
	}
	if e.day != nil && sameDate(e.day.date, now) {
		return nil
	}

	spot, err := e.feed.SpotPrice(ctx, e.spec.Name)
	if err != nil {
		return fmt.Errorf("fetch spot price: %w", err)
	}

	isHoliday := func(d time.Time) bool { return !e.schedule.IsTradingDay(d) }
	atm := e.spec.ATMStrike(spot)
	expiry := e.spec.NextExpiry(now, isHoliday)
	strike := e.spec.ITMStrike(atm, instruments.Call, e.spec.DaysToExpiry(now, isHoliday))
	symbol := e.spec.OptionSymbol(strike, instruments.Call, expiry)

	prevDay := e.schedule.PreviousTradingDay(now)
	ohlc, err := e.feed.PreviousSessionOHLC(ctx, symbol, prevDay)
	if err != nil {
		return fmt.Errorf("fetch previous session for %s: %w", symbol, err)
	}
	p, err := pivots.FromPreviousSession(ohlc, now, e.cfg.StructureThreshold)
	if err != nil {
		return fmt.Errorf("compute pivots: %w", err)
	}

	e.day = &tradingDay{
		date:       now,
		spot:       spot,
		atmStrike:  atm,
		strikes:    e.spec.StrikesToAnalyze(spot),
		strike:     strike,
		optionType: instruments.Call,
		expiry:     expiry,
		symbol:     symbol,
		pivots:     p,
		window:     market.NewWindow(e.cfg.WindowSize, e.cfg.MinWindowSamples),
	}
	e.ledger = position.NewLedger(now, e.cfg.MaxReEntries)
	e.pending = nil
	e.dayEnded = false

	e.restoreSession(ctx, now)

	logging.PivotContext(p.PP, p.R1, p.R2, p.R3, string(p.Structure)).Info("Trading day prepared",
		"date", now.Format("2006-01-02"),
		"symbol", symbol,
		"spot", spot,
		"atm", atm,
		"strike", strike)

	e.eventBus.Publish(events.Event{
		Type: events.EventDayStarted,
		Data: map[string]interface{}{
			"date":      now.Format("2006-01-02"),
			"symbol":    symbol,
			"structure": string(p.Structure),
		},
	})
	return nil
}

// restoreSession rehydrates the ledger after a mid-session restart.
func (e *Engine) restoreSession(ctx context.Context, now time.Time) {
	if e.sessions == nil {
		return
	}
	state, err := e.sessions.Load(ctx, e.spec.Name, now.Format("20060102"))
	if err != nil {
		return
	}
	e.ledger.Restore(state.OpenPosition, state.ReEntryCount, state.TradeSeq)
	e.log.Info("Session state restored",
		"re_entry_count", state.ReEntryCount,
		"trade_seq", state.TradeSeq,
		"open_position", state.OpenPosition != nil)
}

func (e *Engine) saveSession(ctx context.Context, now time.Time) {
	if e.sessions == nil {
		return
	}
	state := &database.PersistedSessionState{
		Instrument:   e.spec.Name,
		Day:          now.Format("20060102"),
		ReEntryCount: e.ledger.ReEntryCount(),
		TradeSeq:     e.ledger.TradeCount(),
	}
	if pos, ok := e.ledger.Position(); ok {
		state.OpenPosition = &pos
	}
	if err := e.sessions.Save(ctx, state); err != nil {
		e.log.Warn("Failed to save session state", "error", err)
	}
}

// Cycle runs one pass of the decision loop: fetch the latest candle, then
// either evaluate exits on the open position or look for an entry. A cycle
// never both opens and closes; a position opened this cycle is first
// examined next cycle.
func (e *Engine) Cycle(ctx context.Context, now time.Time) CycleResult {
	if e.day == nil || !sameDate(e.day.date, now) {
		return e.skip("trading day not prepared")
	}
	if e.dayEnded {
		return e.skip("trading day already ended")
	}
	if !e.schedule.IsMarketOpen(now) {
		return e.skip("market closed")
	}

	// All log lines of this pass share one cycle id.
	ctx, log := logging.CycleContext(ctx, now)

	e.retryPendingRecords(ctx)

	candle, err := e.feed.LatestCandle(ctx, e.day.symbol, e.cfg.CycleInterval)
	if err != nil {
		log.Warn("Candle fetch failed, skipping cycle", "error", err)
		e.eventBus.PublishCycleSkipped(err.Error())
		return e.skip("candle fetch failed")
	}
	if err := e.day.window.Push(candle); err != nil {
		log.Warn("Candle rejected, skipping cycle", "error", err)
		e.eventBus.PublishCycleSkipped(err.Error())
		return e.skip("candle rejected")
	}

	if e.ledger.HasPosition() {
		return e.evaluateExit(ctx, candle, now)
	}
	return e.evaluateEntry(ctx, candle, now)
}

func (e *Engine) skip(reason string) CycleResult {
	return CycleResult{Action: ActionSkipped, Reason: reason}
}

// evaluateEntry looks for a scenario match and opens a position on one.
func (e *Engine) evaluateEntry(ctx context.Context, candle market.Candle, now time.Time) CycleResult {
	firstCandle := e.schedule.IsFirstCandle(candle.Timestamp)
	entry := e.matcher.EvaluateEntry(e.day.pivots, e.day.window, e.ledger, firstCandle, now)
	if entry == nil {
		return CycleResult{Action: ActionNone, Reason: "no entry conditions met"}
	}

	// The sink fill is authoritative; ledger state only changes on ack.
	pos, err := e.openPosition(ctx, entry, now)
	if err != nil {
		logging.FromContext(ctx).Error("Entry execution failed", "error", err)
		e.eventBus.PublishError("entry", err)
		return CycleResult{Action: ActionNone, Reason: "entry execution failed"}
	}

	e.saveSession(ctx, now)
	e.recordEntry(ctx, pos, entry)
	if e.alerter != nil {
		if err := e.alerter.SendEntrySignal(pos, entry.SizePct); err != nil {
			logging.FromContext(ctx).Warn("Entry alert failed", "error", err)
		}
	}
	e.eventBus.PublishSignal(pos.Symbol, pos.Scenario.Number(), pos.EntryPrice, pos.StopLoss, pos.Target, pos.FirstCandleEntry)
	e.eventBus.PublishTradeOpened(pos.TradeID, pos.Symbol, pos.Scenario.Number(), pos.EntryPrice, pos.StopLoss, pos.Target)

	return CycleResult{Action: ActionOpened, Reason: entry.Reason}
}

func (e *Engine) openPosition(ctx context.Context, entry *signal.Entry, now time.Time) (position.Position, error) {
	inst := e.day.instrument(e.spec)

	// TradeID is assigned by the ledger, so reserve it by opening first;
	// a rejected fill rolls the open back via Abort with no quota charge.
	pos, err := e.ledger.Open(entry, inst, e.day.pivots)
	if err != nil {
		return position.Position{}, err
	}

	fill, err := e.sink.Open(ctx, execution.OpenOrder{
		TradeID:  pos.TradeID,
		Symbol:   pos.Symbol,
		Quantity: pos.LotSize,
		Price:    pos.EntryPrice,
		Scenario: pos.Scenario.Number(),
		Time:     now,
	})
	if err != nil {
		e.ledger.Abort()
		return position.Position{}, fmt.Errorf("open order: %w", err)
	}

	logging.TradeContext(pos.TradeID, pos.Symbol, pos.Scenario.Number()).Info("Position opened",
		"entry", fill.Price,
		"stop_loss", pos.StopLoss,
		"target", pos.Target,
		"first_candle", pos.FirstCandleEntry)
	return pos, nil
}

// evaluateExit ticks the open position and closes it when an exit rule
// fires. The ledger transitions only after the sink confirms the close.
func (e *Engine) evaluateExit(ctx context.Context, candle market.Candle, now time.Time) CycleResult {
	e.ledger.Tick()
	pos, _ := e.ledger.Position()

	log := logging.FromContext(ctx)

	lastTraded := candle.Close
	if e.schedule.IsAfterEODExit(now) {
		if ltp, err := e.feed.LastTradedPrice(ctx, pos.Symbol); err == nil {
			lastTraded = ltp
		} else {
			log.Warn("LTP fetch failed, using candle close for square-off", "error", err)
		}
	}

	exit := e.exitEval.Evaluate(pos, candle, lastTraded, now)
	if exit == nil {
		e.saveSession(ctx, now)
		return CycleResult{Action: ActionHeld, Reason: "no exit conditions met"}
	}

	fill, err := e.sink.Close(ctx, execution.CloseOrder{
		TradeID:  pos.TradeID,
		Symbol:   pos.Symbol,
		Quantity: pos.LotSize,
		Price:    exit.Price,
		Reason:   string(exit.Reason),
		Time:     now,
	})
	if err != nil {
		// Position stays open; the exit re-fires next cycle.
		log.Error("Close execution failed, holding position", "trade_id", pos.TradeID, "error", err)
		e.eventBus.PublishError("exit", err)
		return CycleResult{Action: ActionHeld, Reason: "close execution failed"}
	}

	trade, err := e.ledger.Close(exit.Reason, fill.Price, now)
	if err != nil {
		return CycleResult{Action: ActionHeld, Reason: err.Error()}
	}

	e.saveSession(ctx, now)
	e.recordExit(ctx, trade)
	if e.alerter != nil {
		if err := e.alerter.SendExitSignal(trade); err != nil {
			log.Warn("Exit alert failed", "error", err)
		}
	}
	e.eventBus.PublishTradeClosed(trade.TradeID, trade.Symbol, string(trade.ExitReason),
		trade.EntryPrice, trade.ExitPrice, trade.PnLPoints, trade.PnLRupees)

	logging.TradeContext(trade.TradeID, trade.Symbol, trade.Scenario.Number()).Info("Position closed",
		"reason", string(trade.ExitReason),
		"exit", trade.ExitPrice,
		"pnl_points", trade.PnLPoints,
		"pnl_rupees", trade.PnLRupees,
		"candles_held", trade.CandlesHeld)

	return CycleResult{Action: ActionClosed, Reason: string(trade.ExitReason)}
}

// recordEntry writes the trade row and its signal audit entry.
func (e *Engine) recordEntry(ctx context.Context, pos position.Position, entry *signal.Entry) {
	if e.recorder == nil {
		return
	}

	p := e.day.pivots
	record := &database.TradeRecord{
		TradeID:        pos.TradeID,
		Instrument:     pos.Instrument,
		Symbol:         pos.Symbol,
		Strike:         pos.Strike,
		OptionType:     pos.OptionType,
		EntryTime:      pos.EntryTime,
		EntryPrice:     pos.EntryPrice,
		EntryCandleLow: pos.EntryCandleLow,
		Scenario:       pos.Scenario.Number(),
		Structure:      string(p.Structure),
		TargetPrice:    pos.Target,
		SLPrice:        pos.StopLoss,
		FirstCandle:    pos.FirstCandleEntry,
		ReEntry:        pos.ReEntry,
		LotSize:        pos.LotSize,
		PivotPP:        p.PP, PivotR1: p.R1, PivotR2: p.R2, PivotR3: p.R3,
		PivotR4: p.R4, PivotR5: p.R5, PivotS1: p.S1,
	}
	if err := e.recorder.CreateTrade(ctx, record); err != nil {
		e.log.Error("Failed to record trade entry", "trade_id", pos.TradeID, "error", err)
	}

	sig := &database.SignalRecord{
		Time:          entry.Time,
		Instrument:    pos.Instrument,
		Symbol:        pos.Symbol,
		Strike:        pos.Strike,
		OptionType:    pos.OptionType,
		SignalType:    database.SignalTypeEntry,
		Scenario:      pos.Scenario.Number(),
		Structure:     string(p.Structure),
		CandleOpen:    entry.Candle.Open,
		CandleHigh:    entry.Candle.High,
		CandleLow:     entry.Candle.Low,
		CandleClose:   entry.Candle.Close,
		CandleSizePct: entry.SizePct,
		PivotPP:       p.PP, PivotR1: p.R1, PivotR2: p.R2, PivotR3: p.R3,
		Reason:        entry.Reason,
	}
	if err := e.recorder.CreateSignal(ctx, sig); err != nil {
		e.log.Error("Failed to record entry signal", "trade_id", pos.TradeID, "error", err)
	}
}

// recordExit writes the exit side; failures queue for retry so the ledger
// and the database converge.
func (e *Engine) recordExit(ctx context.Context, trade position.ClosedTrade) {
	if e.recorder == nil {
		return
	}
	if err := e.closeTradeRecord(ctx, trade); err != nil {
		e.log.Error("Failed to record trade exit, queuing retry", "trade_id", trade.TradeID, "error", err)
		e.pending = append(e.pending, pendingClose{trade: trade})
	}
}

func (e *Engine) closeTradeRecord(ctx context.Context, trade position.ClosedTrade) error {
	return e.recorder.CloseTrade(ctx, trade.TradeID, trade.ExitTime, trade.ExitPrice,
		string(trade.ExitReason), trade.CandlesHeld, trade.PnLPoints, trade.PnLRupees)
}

func (e *Engine) retryPendingRecords(ctx context.Context) {
	if e.recorder == nil || len(e.pending) == 0 {
		return
	}
	var remaining []pendingClose
	for _, pc := range e.pending {
		if err := e.closeTradeRecord(ctx, pc.trade); err != nil {
			remaining = append(remaining, pc)
		} else {
			e.log.Info("Pending trade record flushed", "trade_id", pc.trade.TradeID)
		}
	}
	e.pending = remaining
}

// EndDay computes and stores the daily summary and clears session state.
// Safe to call once per day after the square-off.
func (e *Engine) EndDay(ctx context.Context, now time.Time) error {
	if e.day == nil || e.dayEnded {
		return nil
	}
	e.dayEnded = true

	e.forceCloseOpenPosition(ctx, now)
	e.retryPendingRecords(ctx)
	e.publishDailySummary(ctx, now)

	if e.sessions != nil {
		if err := e.sessions.Clear(ctx, e.spec.Name, now.Format("20060102")); err != nil {
			e.log.Warn("Failed to clear session state", "error", err)
		}
	}

	e.eventBus.Publish(events.Event{
		Type: events.EventDayEnded,
		Data: map[string]interface{}{"date": now.Format("2006-01-02")},
	})
	e.log.Info("Trading day ended",
		"trades", e.ledger.TradeCount(),
		"re_entries", e.ledger.ReEntryCount())
	return nil
}

// forceCloseOpenPosition squares off anything the square-off window could
// not close, normally only after repeated sink failures.
func (e *Engine) forceCloseOpenPosition(ctx context.Context, now time.Time) {
	if e.ledger == nil || !e.ledger.HasPosition() {
		return
	}
	pos, _ := e.ledger.Position()

	price := pos.EntryPrice
	if ltp, err := e.feed.LastTradedPrice(ctx, pos.Symbol); err == nil {
		price = ltp
	} else {
		e.log.Warn("LTP fetch failed, forcing close at entry price", "error", err)
	}

	fill, err := e.sink.Close(ctx, execution.CloseOrder{
		TradeID:  pos.TradeID,
		Symbol:   pos.Symbol,
		Quantity: pos.LotSize,
		Price:    price,
		Reason:   string(position.ExitEOD),
		Time:     now,
	})
	if err != nil {
		e.log.Error("Forced square-off failed, position left open", "trade_id", pos.TradeID, "error", err)
		e.eventBus.PublishError("end_day", err)
		return
	}

	trade, err := e.ledger.Close(position.ExitEOD, fill.Price, now)
	if err != nil {
		return
	}
	e.recordExit(ctx, trade)
	if e.alerter != nil {
		if err := e.alerter.SendExitSignal(trade); err != nil {
			e.log.Warn("Exit alert failed", "error", err)
		}
	}
	e.eventBus.PublishTradeClosed(trade.TradeID, trade.Symbol, string(trade.ExitReason),
		trade.EntryPrice, trade.ExitPrice, trade.PnLPoints, trade.PnLRupees)
	e.log.Info("Position force-closed at end of day",
		"trade_id", trade.TradeID, "exit", trade.ExitPrice, "pnl_rupees", trade.PnLRupees)
}

// publishDailySummary aggregates the day's closed trades, stores the
// summary and pushes it to the alerter and the event bus.
func (e *Engine) publishDailySummary(ctx context.Context, now time.Time) {
	summarizer, ok := e.recorder.(Summarizer)
	if !ok {
		return
	}

	summary, err := summarizer.ComputeDailySummary(ctx, now, e.spec.Name)
	if err != nil {
		e.log.Error("Failed to compute daily summary", "error", err)
		return
	}
	if err := summarizer.UpsertDailySummary(ctx, summary); err != nil {
		e.log.Error("Failed to store daily summary", "error", err)
	}

	if e.alerter != nil {
		if err := e.alerter.SendDailySummary(summary); err != nil {
			e.log.Warn("Daily summary alert failed", "error", err)
		}
	}
	e.eventBus.Publish(events.Event{
		Type: events.EventDailySummary,
		Data: map[string]interface{}{
			"date":         summary.Date.Format("2006-01-02"),
			"total_trades": summary.TotalTrades,
			"total_pnl":    summary.GrossPnL,
			"win_rate":     summary.WinRate,
		},
	})
}

// Status reports the engine state for the API.
func (e *Engine) Status() map[string]interface{} {
	status := map[string]interface{}{
		"instrument":     e.spec.Name,
		"cycle_interval": e.cfg.CycleInterval.String(),
		"day_prepared":   e.day != nil,
	}
	if e.day != nil {
		status["date"] = e.day.date.Format("2006-01-02")
		status["symbol"] = e.day.symbol
		status["spot"] = e.day.spot
		status["atm_strike"] = e.day.atmStrike
		status["strikes_in_range"] = e.day.strikes
		status["strike"] = e.day.strike
		status["lot_size"] = e.spec.LotSize
		status["structure"] = string(e.day.pivots.Structure)
		status["window_len"] = e.day.window.Len()
	}
	if e.ledger != nil {
		status["has_position"] = e.ledger.HasPosition()
		status["trades_today"] = e.ledger.TradeCount()
		status["re_entry_count"] = e.ledger.ReEntryCount()
		status["can_enter"] = e.ledger.CanEnter()
	}
	return status
}

// OpenPosition reports the open position for the API.
func (e *Engine) OpenPosition() (map[string]interface{}, bool) {
	if e.ledger == nil {
		return nil, false
	}
	pos, ok := e.ledger.Position()
	if !ok {
		return nil, false
	}
	return map[string]interface{}{
		"trade_id":     pos.TradeID,
		"symbol":       pos.Symbol,
		"scenario":     pos.Scenario.Number(),
		"entry_time":   pos.EntryTime,
		"entry_price":  pos.EntryPrice,
		"stop_loss":    pos.StopLoss,
		"target":       pos.Target,
		"candles_held": pos.CandlesHeld,
		"first_candle": pos.FirstCandleEntry,
		"re_entry":     pos.ReEntry,
	}, true
}

// Pivots reports the day's pivot levels for the API.
func (e *Engine) Pivots() (map[string]interface{}, bool) {
	if e.day == nil {
		return nil, false
	}
	p := e.day.pivots
	return map[string]interface{}{
		"symbol":    e.day.symbol,
		"pp":        p.PP,
		"r1":        p.R1,
		"r2":        p.R2,
		"r3":        p.R3,
		"r4":        p.R4,
		"r5":        p.R5,
		"s1":        p.S1,
		"s2":        p.S2,
		"s3":        p.S3,
		"structure": string(p.Structure),
	}, true
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
