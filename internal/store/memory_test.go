package store

import (
	"context"
	"errors"
	"sync"
	"testing"

	"spinwheel/internal/models"
)

func seedSlots() []models.PrizeSlot {
	return []models.PrizeSlot{
		{ID: "slot-1", Name: "Coding Challenge", MaxWinners: 5, Color: "#8B5CF6"},
		{ID: "slot-2", Name: "Hackathon", MaxWinners: 1, Color: "#06B6D4"},
	}
}

func TestMemoryStore_InitializeIdempotent(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()

	if err := m.Initialize(ctx, seedSlots()); err != nil {
		t.Fatalf("first initialize: %v", err)
	}
	if err := m.IncrementWinners(ctx, "slot-1"); err != nil {
		t.Fatalf("increment: %v", err)
	}

	// Second initialize must not duplicate slots or reset counters.
	if err := m.Initialize(ctx, seedSlots()); err != nil {
		t.Fatalf("second initialize: %v", err)
	}

	slots, err := m.PrizeSlots(ctx)
	if err != nil {
		t.Fatalf("prize slots: %v", err)
	}
	if len(slots) != 2 {
		t.Fatalf("expected 2 slots after re-initialize, got %d", len(slots))
	}
	if slots[0].CurrentWinners != 1 {
		t.Errorf("expected counter to survive re-initialize, got %d", slots[0].CurrentWinners)
	}
}

func TestMemoryStore_IncrementStopsAtCap(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	if err := m.Initialize(ctx, seedSlots()); err != nil {
		t.Fatalf("initialize: %v", err)
	}

	for i := 0; i < 5; i++ {
		if err := m.IncrementWinners(ctx, "slot-1"); err != nil {
			t.Fatalf("increment %d: %v", i, err)
		}
	}
	if err := m.IncrementWinners(ctx, "slot-1"); !errors.Is(err, ErrCapacityExceeded) {
		t.Fatalf("expected ErrCapacityExceeded at cap, got %v", err)
	}

	slots, _ := m.PrizeSlots(ctx)
	if slots[0].CurrentWinners != 5 {
		t.Errorf("expected 5 winners, got %d", slots[0].CurrentWinners)
	}
}

func TestMemoryStore_IncrementUnknownSlot(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	if err := m.Initialize(ctx, seedSlots()); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if err := m.IncrementWinners(ctx, "slot-999"); !errors.Is(err, ErrCapacityExceeded) {
		t.Fatalf("expected ErrCapacityExceeded for unknown slot, got %v", err)
	}
}

// The central correctness property: N goroutines racing for the last
// place on a capacity-1 slot, exactly one wins.
func TestMemoryStore_ConcurrentIncrementExactlyOnce(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	if err := m.Initialize(ctx, seedSlots()); err != nil {
		t.Fatalf("initialize: %v", err)
	}

	const n = 64
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = m.IncrementWinners(ctx, "slot-2")
		}(i)
	}
	wg.Wait()

	var successes, exceeded int
	for _, err := range errs {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, ErrCapacityExceeded):
			exceeded++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if successes != 1 {
		t.Errorf("expected exactly 1 success, got %d", successes)
	}
	if exceeded != n-1 {
		t.Errorf("expected %d ErrCapacityExceeded, got %d", n-1, exceeded)
	}

	slots, _ := m.PrizeSlots(ctx)
	for _, slot := range slots {
		if slot.CurrentWinners < 0 || slot.CurrentWinners > slot.MaxWinners {
			t.Errorf("slot %s violates capacity invariant: %d/%d", slot.ID, slot.CurrentWinners, slot.MaxWinners)
		}
	}
}

func TestMemoryStore_ConcurrentClaimExactlyOnce(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()

	p, err := m.CreateParticipant(ctx, "Alice", "+15550100001")
	if err != nil {
		t.Fatalf("create participant: %v", err)
	}

	const n = 16
	var wg sync.WaitGroup
	claims := make([]bool, n)
	results := make([]string, n)
	labels := []string{"Hackathon", models.NoWinLabel}
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			stored, claimed, err := m.ClaimSpinResult(ctx, p.ID, labels[i%len(labels)])
			if err != nil {
				t.Errorf("claim: %v", err)
				return
			}
			claims[i] = claimed
			results[i] = stored
		}(i)
	}
	wg.Wait()

	var winners int
	for _, c := range claims {
		if c {
			winners++
		}
	}
	if winners != 1 {
		t.Fatalf("expected exactly 1 successful claim, got %d", winners)
	}

	// Every caller must observe the same stored result.
	final, _ := m.Participant(ctx, p.ID)
	for i, r := range results {
		if r != final.SpinResult {
			t.Errorf("caller %d observed %q, stored is %q", i, r, final.SpinResult)
		}
	}
}

func TestMemoryStore_ClaimUnknownParticipant(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	if _, _, err := m.ClaimSpinResult(ctx, "nope", models.NoWinLabel); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := m.Participant(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStore_ResetWinners(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	if err := m.Initialize(ctx, seedSlots()); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if err := m.IncrementWinners(ctx, "slot-2"); err != nil {
		t.Fatalf("increment: %v", err)
	}
	if err := m.ResetWinners(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}
	slots, _ := m.PrizeSlots(ctx)
	for _, slot := range slots {
		if slot.CurrentWinners != 0 {
			t.Errorf("slot %s not reset: %d", slot.ID, slot.CurrentWinners)
		}
	}
}
