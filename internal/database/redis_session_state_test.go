package database

import (
	"context"
	"errors"
	"testing"

	"pivot-trading-engine/internal/position"
)

func TestSessionStateMemoryOnly(t *testing.T) {
	repo := NewRedisSessionStateRepository(nil)
	ctx := context.Background()

	if _, err := repo.Load(ctx, "SENSEX", "20260312"); !errors.Is(err, ErrNoSessionState) {
		t.Fatalf("load before save: err = %v, want ErrNoSessionState", err)
	}

	state := &PersistedSessionState{
		Instrument: "SENSEX",
		Day:        "20260312",
		OpenPosition: &position.Position{
			TradeID:    "20260312_002",
			EntryPrice: 147.50,
		},
		ReEntryCount: 1,
		TradeSeq:     2,
	}
	if err := repo.Save(ctx, state); err != nil {
		t.Fatalf("save: %v", err)
	}
	if state.SavedAt.IsZero() {
		t.Error("SavedAt not stamped")
	}

	got, err := repo.Load(ctx, "SENSEX", "20260312")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.OpenPosition == nil || got.OpenPosition.TradeID != "20260312_002" {
		t.Errorf("loaded position = %+v", got.OpenPosition)
	}
	if got.ReEntryCount != 1 || got.TradeSeq != 2 {
		t.Errorf("loaded counters = %d/%d, want 1/2", got.ReEntryCount, got.TradeSeq)
	}

	// Mutating the loaded copy must not leak back into the store.
	got.ReEntryCount = 99
	again, _ := repo.Load(ctx, "SENSEX", "20260312")
	if again.ReEntryCount != 1 {
		t.Error("stored state shared with caller copy")
	}

	// Other instrument/day keys are distinct.
	if _, err := repo.Load(ctx, "NIFTY", "20260312"); !errors.Is(err, ErrNoSessionState) {
		t.Errorf("cross-instrument load: err = %v, want ErrNoSessionState", err)
	}

	if err := repo.Clear(ctx, "SENSEX", "20260312"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, err := repo.Load(ctx, "SENSEX", "20260312"); !errors.Is(err, ErrNoSessionState) {
		t.Errorf("load after clear: err = %v, want ErrNoSessionState", err)
	}
}
