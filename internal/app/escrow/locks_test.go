package escrow

import (
	"testing"

	"github.com/handleswap/handleswap/internal/domain"
)

func lockCount(e *Engine) int {
	n := 0
	e.locks.Range(func(_, _ any) bool { n++; return true })
	return n
}

func TestTerminalTransactionLockIsEvicted(t *testing.T) {
	e := New(DefaultConfig(), nil, nil, nil, nil)

	mu := e.txLock("tx-1")
	mu.Lock()
	mu.Unlock()
	if got := lockCount(e); got != 1 {
		t.Fatalf("lock count after txLock = %d, want 1", got)
	}

	// Non-terminal transactions keep their mutex.
	e.forgetLock(&domain.Transaction{ID: "tx-1", Status: domain.StatusFundsHeld})
	if got := lockCount(e); got != 1 {
		t.Fatalf("active transaction lock evicted: count = %d", got)
	}

	e.forgetLock(&domain.Transaction{ID: "tx-1", Status: domain.StatusCompleted})
	if got := lockCount(e); got != 0 {
		t.Fatalf("terminal transaction lock kept: count = %d", got)
	}

	// A fresh lookup simply mints a new mutex.
	e.txLock("tx-1")
	if got := lockCount(e); got != 1 {
		t.Fatalf("lock count after re-lookup = %d, want 1", got)
	}
}
