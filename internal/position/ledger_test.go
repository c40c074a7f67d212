package position

import (
	"errors"
	"testing"
	"time"

	"pivot-trading-engine/internal/market"
	"pivot-trading-engine/internal/pivots"
	"pivot-trading-engine/internal/signal"
)

var testDay = time.Date(2026, 3, 12, 9, 15, 0, 0, time.UTC)

func testInstrument() Instrument {
	return Instrument{
		Name:       "SENSEX",
		Symbol:     "SENSEX26031281000CE",
		Strike:     81000,
		OptionType: "CE",
		LotSize:    20,
	}
}

func testEntry(firstCandle bool) *signal.Entry {
	return &signal.Entry{
		Scenario:    signal.ScenarioS1,
		EntryPrice:  147.50,
		StopLoss:    141.80,
		Target:      161.0,
		FirstCandle: firstCandle,
		Time:        testDay,
	}
}

func TestLedgerOpenAssignsSequentialTradeIDs(t *testing.T) {
	l := NewLedger(testDay, 2)

	for i, want := range []string{"20260312_001", "20260312_002", "20260312_003"} {
		pos, err := l.Open(testEntry(false), testInstrument(), pivots.Set{})
		if err != nil {
			t.Fatalf("open %d: %v", i+1, err)
		}
		if pos.TradeID != want {
			t.Errorf("trade %d: id = %q, want %q", i+1, pos.TradeID, want)
		}
		if _, err := l.Close(ExitTarget, 161.0, testDay); err != nil {
			t.Fatalf("close %d: %v", i+1, err)
		}
	}
}

func TestLedgerDoubleOpenRejected(t *testing.T) {
	l := NewLedger(testDay, 2)
	if _, err := l.Open(testEntry(false), testInstrument(), pivots.Set{}); err != nil {
		t.Fatalf("first open: %v", err)
	}
	if _, err := l.Open(testEntry(false), testInstrument(), pivots.Set{}); !errors.Is(err, ErrAlreadyOpen) {
		t.Errorf("second open: err = %v, want ErrAlreadyOpen", err)
	}
}

func TestLedgerCloseWithoutPosition(t *testing.T) {
	l := NewLedger(testDay, 2)
	if _, err := l.Close(ExitTarget, 161.0, testDay); !errors.Is(err, ErrNoOpenPosition) {
		t.Errorf("close on empty: err = %v, want ErrNoOpenPosition", err)
	}
}

func TestLedgerClosePnL(t *testing.T) {
	l := NewLedger(testDay, 2)
	if _, err := l.Open(testEntry(false), testInstrument(), pivots.Set{}); err != nil {
		t.Fatal(err)
	}

	exitTime := testDay.Add(30 * time.Minute)
	trade, err := l.Close(ExitTarget, 161.0, exitTime)
	if err != nil {
		t.Fatal(err)
	}

	wantPoints := 161.0 - 147.50
	if trade.PnLPoints != wantPoints {
		t.Errorf("pnl points = %v, want %v", trade.PnLPoints, wantPoints)
	}
	if trade.PnLRupees != wantPoints*20 {
		t.Errorf("pnl rupees = %v, want %v", trade.PnLRupees, wantPoints*20)
	}
	if !trade.ExitTime.Equal(exitTime) {
		t.Errorf("exit time = %v, want %v", trade.ExitTime, exitTime)
	}
	if l.HasPosition() {
		t.Error("position still open after close")
	}
}

func TestLedgerReEntryCountOnlyOnStopLoss(t *testing.T) {
	reasons := []struct {
		reason ExitReason
		want   int
	}{
		{ExitTarget, 0},
		{ExitTimeout, 0},
		{ExitEOD, 0},
		{ExitStopLoss, 1},
	}

	for _, tt := range reasons {
		l := NewLedger(testDay, 2)
		if _, err := l.Open(testEntry(false), testInstrument(), pivots.Set{}); err != nil {
			t.Fatal(err)
		}
		if _, err := l.Close(tt.reason, 150.0, testDay); err != nil {
			t.Fatal(err)
		}
		if got := l.ReEntryCount(); got != tt.want {
			t.Errorf("%s: reEntryCount = %d, want %d", tt.reason, got, tt.want)
		}
	}
}

func TestLedgerCanEnterRespectsQuota(t *testing.T) {
	l := NewLedger(testDay, 1)

	// Two stop-loss closes allowed with maxReEntries=1: the initial entry
	// plus one re-entry.
	for i := 0; i < 2; i++ {
		if !l.CanEnter() {
			t.Fatalf("entry %d: CanEnter = false", i+1)
		}
		if _, err := l.Open(testEntry(false), testInstrument(), pivots.Set{}); err != nil {
			t.Fatal(err)
		}
		if !l.HasPosition() {
			t.Fatal("HasPosition = false while open")
		}
		if l.CanEnter() {
			t.Error("CanEnter = true while position open")
		}
		if _, err := l.Close(ExitStopLoss, 140.0, testDay); err != nil {
			t.Fatal(err)
		}
	}

	if l.CanEnter() {
		t.Error("CanEnter = true after re-entry quota exhausted")
	}
}

func TestLedgerReEntryFlag(t *testing.T) {
	l := NewLedger(testDay, 2)
	pos, _ := l.Open(testEntry(false), testInstrument(), pivots.Set{})
	if pos.ReEntry {
		t.Error("first entry flagged as re-entry")
	}
	l.Close(ExitStopLoss, 140.0, testDay)

	pos, _ = l.Open(testEntry(false), testInstrument(), pivots.Set{})
	if !pos.ReEntry {
		t.Error("entry after stop-loss not flagged as re-entry")
	}
}

func TestLedgerResetClearsSession(t *testing.T) {
	l := NewLedger(testDay, 0)
	l.Open(testEntry(false), testInstrument(), pivots.Set{})
	l.Close(ExitStopLoss, 140.0, testDay)
	if l.CanEnter() {
		t.Fatal("quota should be exhausted before reset")
	}

	nextDay := testDay.AddDate(0, 0, 1)
	l.Reset(nextDay)
	if !l.CanEnter() {
		t.Error("CanEnter = false after reset")
	}
	if l.ReEntryCount() != 0 {
		t.Error("reEntryCount not cleared by reset")
	}
	pos, err := l.Open(testEntry(false), testInstrument(), pivots.Set{})
	if err != nil {
		t.Fatal(err)
	}
	if pos.TradeID != "20260313_001" {
		t.Errorf("trade id after reset = %q, want 20260313_001", pos.TradeID)
	}
}

func TestLedgerRestore(t *testing.T) {
	l := NewLedger(testDay, 2)
	saved := Position{TradeID: "20260312_002", EntryPrice: 147.50, LotSize: 20}

	l.Restore(&saved, 1, 2)
	if !l.HasPosition() {
		t.Fatal("HasPosition = false after restoring open position")
	}
	got, _ := l.Position()
	if got.TradeID != "20260312_002" {
		t.Errorf("restored trade id = %q", got.TradeID)
	}
	if l.ReEntryCount() != 1 {
		t.Errorf("restored reEntryCount = %d, want 1", l.ReEntryCount())
	}

	trade, err := l.Close(ExitTarget, 161.0, testDay)
	if err != nil {
		t.Fatal(err)
	}
	if trade.PnLRupees != (161.0-147.50)*20 {
		t.Errorf("pnl rupees after restore = %v", trade.PnLRupees)
	}

	l.Restore(nil, 0, 3)
	if l.HasPosition() {
		t.Error("HasPosition = true after restoring empty state")
	}
	pos, _ := l.Open(testEntry(false), testInstrument(), pivots.Set{})
	if pos.TradeID != "20260312_004" {
		t.Errorf("trade id after seq restore = %q, want 20260312_004", pos.TradeID)
	}
}

func TestLedgerAbortRevertsOpen(t *testing.T) {
	l := NewLedger(testDay, 2)
	l.Abort() // no-op on empty ledger

	l.Open(testEntry(false), testInstrument(), pivots.Set{})
	l.Abort()
	if l.HasPosition() {
		t.Error("position still open after abort")
	}
	pos, err := l.Open(testEntry(false), testInstrument(), pivots.Set{})
	if err != nil {
		t.Fatal(err)
	}
	if pos.TradeID != "20260312_001" {
		t.Errorf("trade id after abort = %q, want sequence reused", pos.TradeID)
	}
}

func TestLedgerTick(t *testing.T) {
	l := NewLedger(testDay, 2)
	l.Tick() // no-op on empty ledger

	l.Open(testEntry(true), testInstrument(), pivots.Set{})
	for i := 0; i < 3; i++ {
		l.Tick()
	}
	pos, _ := l.Position()
	if pos.CandlesHeld != 3 {
		t.Errorf("candlesHeld = %d, want 3", pos.CandlesHeld)
	}
}

func candle(open, high, low, close float64) market.Candle {
	return market.Candle{Open: open, High: high, Low: low, Close: close, Timestamp: testDay}
}

func TestExitStopLossTakesPriority(t *testing.T) {
	ev := &ExitEvaluator{TimeoutCandles: 10}
	pos := Position{EntryPrice: 147.50, StopLoss: 141.80, Target: 161.0}

	exit := ev.Evaluate(pos, candle(145, 146, 139, 140), 140, testDay)
	if exit == nil {
		t.Fatal("no exit for close below stop")
	}
	if exit.Reason != ExitStopLoss || exit.Price != 140 {
		t.Errorf("exit = {%s %v}, want {STOP_LOSS 140}", exit.Reason, exit.Price)
	}
}

func TestExitStopBeatsTargetOnWideCandle(t *testing.T) {
	ev := &ExitEvaluator{TimeoutCandles: 10}
	// StopLoss above target is impossible in practice, but a close at or
	// below stop must book the stop even when it also clears the target.
	pos := Position{StopLoss: 150, Target: 140}

	exit := ev.Evaluate(pos, candle(148, 152, 138, 145), 145, testDay)
	if exit == nil || exit.Reason != ExitStopLoss {
		t.Errorf("exit = %+v, want STOP_LOSS", exit)
	}
}

func TestExitTarget(t *testing.T) {
	ev := &ExitEvaluator{TimeoutCandles: 10}
	pos := Position{StopLoss: 141.80, Target: 161.0}

	exit := ev.Evaluate(pos, candle(158, 163, 157, 162), 162, testDay)
	if exit == nil || exit.Reason != ExitTarget || exit.Price != 162 {
		t.Errorf("exit = %+v, want {TARGET 162}", exit)
	}
}

func TestExitTimeoutOnlyForFirstCandleEntries(t *testing.T) {
	ev := &ExitEvaluator{TimeoutCandles: 10}
	c := candle(150, 151, 149, 150.5)

	first := Position{StopLoss: 141.80, Target: 161.0, FirstCandleEntry: true, CandlesHeld: 10}
	exit := ev.Evaluate(first, c, 150.5, testDay)
	if exit == nil || exit.Reason != ExitTimeout || exit.Price != 150.5 {
		t.Errorf("first-candle exit = %+v, want {TIMEOUT 150.5}", exit)
	}

	first.CandlesHeld = 9
	if exit := ev.Evaluate(first, c, 150.5, testDay); exit != nil {
		t.Errorf("exit at 9 candles = %+v, want nil", exit)
	}

	intraday := Position{StopLoss: 141.80, Target: 161.0, FirstCandleEntry: false, CandlesHeld: 50}
	if exit := ev.Evaluate(intraday, c, 150.5, testDay); exit != nil {
		t.Errorf("intraday entry timed out: %+v", exit)
	}
}

func TestExitEODUsesLastTraded(t *testing.T) {
	cutoff := time.Date(2026, 3, 12, 15, 15, 0, 0, time.UTC)
	ev := &ExitEvaluator{
		TimeoutCandles: 10,
		AfterEODExit:   func(now time.Time) bool { return !now.Before(cutoff) },
	}
	pos := Position{StopLoss: 141.80, Target: 161.0}
	c := candle(150, 151, 149, 150.5)

	before := cutoff.Add(-time.Minute)
	if exit := ev.Evaluate(pos, c, 149.9, before); exit != nil {
		t.Errorf("exit before cutoff = %+v, want nil", exit)
	}

	exit := ev.Evaluate(pos, c, 149.9, cutoff)
	if exit == nil || exit.Reason != ExitEOD {
		t.Fatalf("exit at cutoff = %+v, want EOD", exit)
	}
	if exit.Price != 149.9 {
		t.Errorf("EOD exit price = %v, want last traded 149.9", exit.Price)
	}
}
