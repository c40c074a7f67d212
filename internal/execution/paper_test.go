package execution

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func testSink() *PaperSink {
	return NewPaperSink(zerolog.Nop())
}

func TestPaperSinkOpenClose(t *testing.T) {
	s := testSink()
	ctx := context.Background()
	now := time.Date(2026, 3, 12, 9, 21, 0, 0, time.UTC)

	fill, err := s.Open(ctx, OpenOrder{
		TradeID: "20260312_001", Symbol: "SENSEX26031281000CE",
		Quantity: 20, Price: 150, Scenario: 1, Time: now,
	})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if fill.Price != 150 || fill.Quantity != 20 || !fill.Time.Equal(now) {
		t.Errorf("open fill = %+v", fill)
	}

	fill, err = s.Close(ctx, CloseOrder{
		TradeID: "20260312_001", Symbol: "SENSEX26031281000CE",
		Quantity: 20, Price: 161, Reason: "TARGET", Time: now.Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("close: %v", err)
	}
	if fill.Price != 161 {
		t.Errorf("close fill price = %v, want 161", fill.Price)
	}
}

func TestPaperSinkIdempotentRetries(t *testing.T) {
	s := testSink()
	ctx := context.Background()

	open := OpenOrder{TradeID: "20260312_001", Symbol: "X", Quantity: 20, Price: 150}
	first, _ := s.Open(ctx, open)
	open.Price = 175 // retried command with a different price must not re-fill
	second, err := s.Open(ctx, open)
	if err != nil {
		t.Fatal(err)
	}
	if second.Price != first.Price {
		t.Errorf("retried open re-filled at %v, want original %v", second.Price, first.Price)
	}

	closeCmd := CloseOrder{TradeID: "20260312_001", Symbol: "X", Quantity: 20, Price: 161}
	firstClose, _ := s.Close(ctx, closeCmd)
	closeCmd.Price = 100
	secondClose, err := s.Close(ctx, closeCmd)
	if err != nil {
		t.Fatal(err)
	}
	if secondClose.Price != firstClose.Price {
		t.Errorf("retried close re-filled at %v, want %v", secondClose.Price, firstClose.Price)
	}
}

func TestPaperSinkRejections(t *testing.T) {
	s := testSink()
	ctx := context.Background()

	if _, err := s.Open(ctx, OpenOrder{TradeID: "t", Quantity: 0, Price: 150}); !errors.Is(err, ErrRejected) {
		t.Errorf("zero quantity: err = %v, want ErrRejected", err)
	}
	if _, err := s.Close(ctx, CloseOrder{TradeID: "never-opened", Quantity: 20, Price: 100}); !errors.Is(err, ErrRejected) {
		t.Errorf("close unknown trade: err = %v, want ErrRejected", err)
	}
}
