// Package position owns the single-position state machine, P&L arithmetic
// and the daily re-entry quota.
package position

import (
	"errors"
	"fmt"
	"time"

	"pivot-trading-engine/internal/pivots"
	"pivot-trading-engine/internal/signal"
)

// ExitReason records why a position was closed.
type ExitReason string

const (
	ExitStopLoss ExitReason = "STOP_LOSS"
	ExitTarget   ExitReason = "TARGET"
	ExitTimeout  ExitReason = "TIMEOUT"
	ExitEOD      ExitReason = "EOD"
)

// State errors indicate a caller sequencing bug and abort the cycle.
var (
	ErrAlreadyOpen    = errors.New("position already open")
	ErrNoOpenPosition = errors.New("no open position")
)

// Position is one open trade. Created on entry, mutated only by the
// candles-held tick, converted to a ClosedTrade on exit.
type Position struct {
	TradeID    string `json:"trade_id"`
	Instrument string `json:"instrument"`
	Symbol     string `json:"symbol"`
	Strike     int    `json:"strike"`
	OptionType string `json:"option_type"` // CE or PE

	Scenario       signal.Scenario `json:"scenario"`
	EntryTime      time.Time       `json:"entry_time"`
	EntryPrice     float64         `json:"entry_price"`
	EntryCandleLow float64         `json:"entry_candle_low"`
	StopLoss       float64         `json:"stop_loss"`
	Target         float64         `json:"target"`

	FirstCandleEntry bool `json:"first_candle_entry"`
	ReEntry          bool `json:"re_entry"`
	CandlesHeld      int  `json:"candles_held"`
	LotSize          int  `json:"lot_size"`

	Pivots pivots.Set `json:"pivots"`
}

// ClosedTrade is the append-only record of a finished trade.
type ClosedTrade struct {
	Position

	ExitTime   time.Time  `json:"exit_time"`
	ExitPrice  float64    `json:"exit_price"`
	ExitReason ExitReason `json:"exit_reason"`
	PnLPoints  float64    `json:"pnl_points"`
	PnLRupees  float64    `json:"pnl_rupees"`
}

// Instrument identifies what the ledger is trading on a given day.
type Instrument struct {
	Name       string
	Symbol     string
	Strike     int
	OptionType string
	LotSize    int
}

// ledgerState makes the open/empty distinction explicit rather than
// inferring it from a nil position.
type ledgerState int

const (
	stateEmpty ledgerState = iota
	stateOpen
)

// Ledger runs the EMPTY -> OPEN -> EMPTY state machine for one instrument
// per trading day. Close only transitions back to EMPTY once the caller has
// a confirmed fill, so a downstream failure never silently drops a
// position. The engine is single-threaded per instrument; the ledger does
// no locking.
type Ledger struct {
	state        ledgerState
	position     Position
	reEntryCount int
	maxReEntries int
	tradeSeq     int
	day          string // YYYYMMDD, part of every trade id
}

// NewLedger creates an empty ledger for the given day.
func NewLedger(day time.Time, maxReEntries int) *Ledger {
	return &Ledger{
		maxReEntries: maxReEntries,
		day:          day.Format("20060102"),
	}
}

// HasPosition reports whether a position is open.
func (l *Ledger) HasPosition() bool {
	return l.state == stateOpen
}

// Open creates a position from an entry signal. Fails with ErrAlreadyOpen
// when a position exists.
func (l *Ledger) Open(e *signal.Entry, inst Instrument, p pivots.Set) (Position, error) {
	if l.state == stateOpen {
		return Position{}, fmt.Errorf("%w: %s", ErrAlreadyOpen, l.position.TradeID)
	}

	l.tradeSeq++
	l.position = Position{
		TradeID:          fmt.Sprintf("%s_%03d", l.day, l.tradeSeq),
		Instrument:       inst.Name,
		Symbol:           inst.Symbol,
		Strike:           inst.Strike,
		OptionType:       inst.OptionType,
		Scenario:         e.Scenario,
		EntryTime:        e.Time,
		EntryPrice:       e.EntryPrice,
		EntryCandleLow:   e.StopLoss,
		StopLoss:         e.StopLoss,
		Target:           e.Target,
		FirstCandleEntry: e.FirstCandle,
		ReEntry:          l.reEntryCount > 0,
		LotSize:          inst.LotSize,
		Pivots:           p,
	}
	l.state = stateOpen
	return l.position, nil
}

// Tick increments candles-held. Called once per cycle while open; a tick on
// an empty ledger is a no-op.
func (l *Ledger) Tick() {
	if l.state == stateOpen {
		l.position.CandlesHeld++
	}
}

// Position returns a copy of the open position.
func (l *Ledger) Position() (Position, bool) {
	if l.state != stateOpen {
		return Position{}, false
	}
	return l.position, true
}

// Close converts the open position into a ClosedTrade. Call only after the
// execution sink has confirmed the close. A STOP_LOSS exit consumes one
// unit of the daily re-entry quota; other reasons leave it untouched.
func (l *Ledger) Close(reason ExitReason, exitPrice float64, now time.Time) (ClosedTrade, error) {
	if l.state != stateOpen {
		return ClosedTrade{}, ErrNoOpenPosition
	}

	pnlPoints := exitPrice - l.position.EntryPrice
	trade := ClosedTrade{
		Position:   l.position,
		ExitTime:   now,
		ExitPrice:  exitPrice,
		ExitReason: reason,
		PnLPoints:  pnlPoints,
		PnLRupees:  pnlPoints * float64(l.position.LotSize),
	}

	if reason == ExitStopLoss {
		l.reEntryCount++
	}

	l.state = stateEmpty
	l.position = Position{}
	return trade, nil
}

// Abort reverts an Open whose order was rejected. The trade id sequence
// rolls back too; the id was never executed anywhere.
func (l *Ledger) Abort() {
	if l.state != stateOpen {
		return
	}
	l.state = stateEmpty
	l.position = Position{}
	l.tradeSeq--
}

// CanEnter reports whether a new entry is allowed: no open position and the
// daily re-entry quota not yet exhausted.
func (l *Ledger) CanEnter() bool {
	return l.state == stateEmpty && l.reEntryCount <= l.maxReEntries
}

// ReEntryCount returns stop-loss closes booked today.
func (l *Ledger) ReEntryCount() int {
	return l.reEntryCount
}

// TradeCount returns positions opened today.
func (l *Ledger) TradeCount() int {
	return l.tradeSeq
}

// Reset clears all session state for a new trading day.
func (l *Ledger) Reset(day time.Time) {
	l.state = stateEmpty
	l.position = Position{}
	l.reEntryCount = 0
	l.tradeSeq = 0
	l.day = day.Format("20060102")
}

// Restore rehydrates a ledger from persisted session state after a restart.
func (l *Ledger) Restore(pos *Position, reEntryCount, tradeSeq int) {
	l.reEntryCount = reEntryCount
	l.tradeSeq = tradeSeq
	if pos != nil {
		l.position = *pos
		l.state = stateOpen
	} else {
		l.position = Position{}
		l.state = stateEmpty
	}
}
