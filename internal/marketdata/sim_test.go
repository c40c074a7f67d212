package marketdata

import (
	"context"
	"testing"
	"time"
)

func TestSimFeedDeterministicWithSeed(t *testing.T) {
	a := NewSimFeed(42)
	b := NewSimFeed(42)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		pa, _ := a.SpotPrice(ctx, "SENSEX")
		pb, _ := b.SpotPrice(ctx, "SENSEX")
		if pa != pb {
			t.Fatalf("step %d diverged: %v vs %v", i, pa, pb)
		}
	}
}

func TestSimFeedCandleIsWellFormed(t *testing.T) {
	f := NewSimFeed(7)
	ctx := context.Background()

	for i := 0; i < 50; i++ {
		c, err := f.LatestCandle(ctx, "SENSEX26031980900CE", 3*time.Minute)
		if err != nil {
			t.Fatal(err)
		}
		if c.High < c.Low {
			t.Fatalf("candle %d: high %v below low %v", i, c.High, c.Low)
		}
		if c.Open < c.Low || c.Open > c.High || c.Close < c.Low || c.Close > c.High {
			t.Fatalf("candle %d: body outside range: %+v", i, c)
		}
		if c.Close <= 0 {
			t.Fatalf("candle %d: non-positive close %v", i, c.Close)
		}
	}
}

func TestSimFeedPreviousSessionBracketsPrice(t *testing.T) {
	f := NewSimFeed(7)
	day := time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC)

	ohlc, err := f.PreviousSessionOHLC(context.Background(), "SENSEX26031980900CE", day)
	if err != nil {
		t.Fatal(err)
	}
	if ohlc.High <= ohlc.Low {
		t.Fatalf("degenerate session: %+v", ohlc)
	}
	if ohlc.Open < ohlc.Low || ohlc.Open > ohlc.High || ohlc.Close < ohlc.Low || ohlc.Close > ohlc.High {
		t.Fatalf("open/close outside range: %+v", ohlc)
	}
	if !ohlc.Date.Equal(day) {
		t.Errorf("date = %v, want %v", ohlc.Date, day)
	}
}

func TestSimFeedIndexLevels(t *testing.T) {
	f := NewSimFeed(1)
	ctx := context.Background()

	spot, _ := f.SpotPrice(ctx, "SENSEX")
	if spot < 80000 || spot > 82000 {
		t.Errorf("SENSEX spot = %v, want near 81000", spot)
	}
	ltp, _ := f.LastTradedPrice(ctx, "NIFTY26031024500CE")
	if ltp != 150 {
		t.Errorf("initial option premium = %v, want 150", ltp)
	}
}
