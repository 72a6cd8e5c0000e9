// Package dsa holds small data structures shared by infrastructure code.
package dsa

import (
	"sync"
	"time"
)

// ─── Deadline Queue (Min-Heap) ──────────────────────────────────────────────
// Binary min-heap ordered by deadline, used by the background sweeper to
// pop transactions in the order they fall due.
//
// Operations:
//   Push:    O(log n) sift up
//   Pop:     O(log n) sift down (extract-min)
//   Peek:    O(1)
//   Len:     O(1)

// Item is an element in the deadline queue.
type Item struct {
	Key      string    // Unique identifier (e.g. transaction ID)
	Deadline time.Time // When the item falls due
}

// DeadlineQueue is a thread-safe min-heap keyed by deadline.
type DeadlineQueue struct {
	mu   sync.Mutex
	heap []Item
	keys map[string]bool // dedupe: one entry per key
}

// NewDeadlineQueue creates an empty deadline queue.
func NewDeadlineQueue() *DeadlineQueue {
	return &DeadlineQueue{keys: make(map[string]bool)}
}

// Push adds an item to the queue. Pushing a key already present is a no-op.
func (q *DeadlineQueue) Push(item Item) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.keys[item.Key] {
		return
	}
	q.keys[item.Key] = true
	q.heap = append(q.heap, item)
	q.siftUp(len(q.heap) - 1)
}

// PopDue removes and returns the earliest item if its deadline is at or
// before now. Returns false when the queue is empty or nothing is due.
func (q *DeadlineQueue) PopDue(now time.Time) (Item, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.heap) == 0 || q.heap[0].Deadline.After(now) {
		return Item{}, false
	}

	top := q.heap[0]
	last := len(q.heap) - 1
	q.heap[0] = q.heap[last]
	q.heap = q.heap[:last]
	if len(q.heap) > 0 {
		q.siftDown(0)
	}
	delete(q.keys, top.Key)
	return top, true
}

// Peek returns the earliest item without removing it.
func (q *DeadlineQueue) Peek() (Item, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.heap) == 0 {
		return Item{}, false
	}
	return q.heap[0], true
}

// Len returns the number of items in the queue.
func (q *DeadlineQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.heap)
}

func (q *DeadlineQueue) less(i, j int) bool {
	return q.heap[i].Deadline.Before(q.heap[j].Deadline)
}

// siftUp restores heap property after insertion.
func (q *DeadlineQueue) siftUp(idx int) {
	for idx > 0 {
		parent := (idx - 1) / 2
		if q.less(idx, parent) {
			q.heap[idx], q.heap[parent] = q.heap[parent], q.heap[idx]
			idx = parent
		} else {
			break
		}
	}
}

// siftDown restores heap property after extraction.
func (q *DeadlineQueue) siftDown(idx int) {
	n := len(q.heap)
	for {
		smallest := idx
		left := 2*idx + 1
		right := 2*idx + 2

		if left < n && q.less(left, smallest) {
			smallest = left
		}
		if right < n && q.less(right, smallest) {
			smallest = right
		}
		if smallest == idx {
			break
		}
		q.heap[idx], q.heap[smallest] = q.heap[smallest], q.heap[idx]
		idx = smallest
	}
}
