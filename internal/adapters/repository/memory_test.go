package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/okian/polo/internal/domain/model"
)

var start = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

func goal(number string) Draft {
	return Draft{Clock: "7:00", Number: number, Team: model.White, Kind: model.Goal}
}

func TestMemoryStore_AddAssignsClockIDs(t *testing.T) {
	ctx := context.Background()
	clk := clockwork.NewFakeClockAt(start)
	store := NewMemoryStore(WithClock(clk))

	first, err := store.Add(ctx, goal("4"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.ID != start.UnixMilli() {
		t.Errorf("expected id %d, got %d", start.UnixMilli(), first.ID)
	}

	// Same millisecond.
	second, _ := store.Add(ctx, goal("5"))
	if second.ID != first.ID+1 {
		t.Errorf("expected id %d, got %d", first.ID+1, second.ID)
	}

	clk.Advance(time.Second)
	third, _ := store.Add(ctx, goal("6"))
	if third.ID != start.Add(time.Second).UnixMilli() {
		t.Errorf("expected clock id, got %d", third.ID)
	}

	if n := store.Len(ctx); n != 3 {
		t.Errorf("expected 3 records, got %d", n)
	}
}

func TestMemoryStore_IDsSurviveClockGoingBack(t *testing.T) {
	ctx := context.Background()
	clk := clockwork.NewFakeClockAt(start)
	store := NewMemoryStore(WithClock(clk))

	a, _ := store.Add(ctx, goal("1"))
	// Fake clocks only move forward, so rebuild the store at an earlier time
	// while keeping lastID through Replace.
	earlier := NewMemoryStore(WithClock(clockwork.NewFakeClockAt(start.Add(-time.Hour))))
	if err := earlier.Replace(ctx, store.List(ctx)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, _ := earlier.Add(ctx, goal("2"))
	if b.ID != a.ID+1 {
		t.Errorf("expected id %d, got %d", a.ID+1, b.ID)
	}
}

func TestMemoryStore_DeleteAndSetNumber(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(WithClock(clockwork.NewFakeClockAt(start)))
	a, _ := store.Add(ctx, goal("?"))
	b, _ := store.Add(ctx, goal("3"))

	if !store.SetNumber(ctx, a.ID, "7") {
		t.Fatal("expected SetNumber to apply")
	}
	got, ok := store.Get(ctx, a.ID)
	if !ok || got.Number != "7" {
		t.Errorf("expected number 7, got %+v", got)
	}
	if store.SetNumber(ctx, 42, "7") {
		t.Error("expected SetNumber on a missing id to be a no-op")
	}

	if !store.Delete(ctx, b.ID) {
		t.Fatal("expected Delete to apply")
	}
	if store.Delete(ctx, b.ID) {
		t.Error("expected second Delete to be a no-op")
	}
	if list := store.List(ctx); len(list) != 1 || list[0].ID != a.ID {
		t.Errorf("unexpected records after delete: %+v", list)
	}
}

func TestMemoryStore_ListIsACopy(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	_, _ = store.Add(ctx, goal("1"))

	list := store.List(ctx)
	list[0].Number = "9"
	if got := store.List(ctx)[0].Number; got != "1" {
		t.Errorf("store mutated through List: %s", got)
	}
}

func TestMemoryStore_Replace(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(WithClock(clockwork.NewFakeClockAt(time.UnixMilli(5))))

	err := store.Replace(ctx, []model.Record{
		{ID: 30, Clock: "6:00", Number: "2", Team: model.Blue, Kind: model.Goal},
		{ID: 10, Clock: "8:00", Number: "1", Team: model.White, Kind: model.CenterBall},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	list := store.List(ctx)
	if list[0].ID != 10 || list[1].ID != 30 {
		t.Errorf("expected id order, got %+v", list)
	}
	next, _ := store.Add(ctx, goal("3"))
	if next.ID != 31 {
		t.Errorf("expected id 31 after restore, got %d", next.ID)
	}

	if err := store.Replace(ctx, []model.Record{{ID: 1}, {ID: 1}}); !errors.Is(err, ErrDuplicateID) {
		t.Errorf("expected ErrDuplicateID, got %v", err)
	}
	if err := store.Replace(ctx, []model.Record{{ID: 0}}); !errors.Is(err, ErrInvalidID) {
		t.Errorf("expected ErrInvalidID, got %v", err)
	}
	if n := store.Len(ctx); n != 3 {
		t.Errorf("failed Replace must keep records, got %d", n)
	}

	store.Reset(ctx)
	if n := store.Len(ctx); n != 0 {
		t.Errorf("expected empty store after reset, got %d", n)
	}
}

func TestMemoryStore_CancelledAdd(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewMemoryStore().Add(ctx, goal("1")); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestMemoryStore_ConcurrentAdds(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(WithClock(clockwork.NewFakeClockAt(start)))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = store.Add(ctx, goal("1"))
		}()
	}
	wg.Wait()

	list := store.List(ctx)
	if len(list) != 50 {
		t.Fatalf("expected 50 records, got %d", len(list))
	}
	for i := 1; i < len(list); i++ {
		if list[i].ID <= list[i-1].ID {
			t.Fatalf("ids not strictly increasing at %d", i)
		}
	}
}
