package dsa

import (
	"testing"
	"time"
)

func TestDeadlineQueueOrdering(t *testing.T) {
	q := NewDeadlineQueue()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	// Push out of order; pop must come back earliest first.
	q.Push(Item{Key: "c", Deadline: base.Add(3 * time.Hour)})
	q.Push(Item{Key: "a", Deadline: base.Add(1 * time.Hour)})
	q.Push(Item{Key: "b", Deadline: base.Add(2 * time.Hour)})

	if q.Len() != 3 {
		t.Fatalf("Len = %d, want 3", q.Len())
	}
	if top, ok := q.Peek(); !ok || top.Key != "a" {
		t.Fatalf("Peek = %+v, %v", top, ok)
	}

	var got []string
	for {
		item, ok := q.PopDue(base.Add(24 * time.Hour))
		if !ok {
			break
		}
		got = append(got, item.Key)
	}
	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("popped %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("popped %v, want %v", got, want)
		}
	}
}

func TestPopDueRespectsNow(t *testing.T) {
	q := NewDeadlineQueue()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	q.Push(Item{Key: "later", Deadline: base.Add(time.Hour)})

	if _, ok := q.PopDue(base); ok {
		t.Error("popped an item that is not yet due")
	}
	// Due exactly at the deadline.
	if item, ok := q.PopDue(base.Add(time.Hour)); !ok || item.Key != "later" {
		t.Errorf("PopDue at deadline = %+v, %v", item, ok)
	}
	if _, ok := q.PopDue(base.Add(2 * time.Hour)); ok {
		t.Error("popped from an empty queue")
	}
}

func TestPushDedupesKeys(t *testing.T) {
	q := NewDeadlineQueue()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	q.Push(Item{Key: "tx-1", Deadline: base})
	q.Push(Item{Key: "tx-1", Deadline: base.Add(time.Hour)})
	if q.Len() != 1 {
		t.Fatalf("Len = %d after duplicate push, want 1", q.Len())
	}

	// After popping, the key may be pushed again.
	if _, ok := q.PopDue(base); !ok {
		t.Fatal("pop failed")
	}
	q.Push(Item{Key: "tx-1", Deadline: base.Add(time.Hour)})
	if q.Len() != 1 {
		t.Fatalf("Len = %d after re-push, want 1", q.Len())
	}
}
