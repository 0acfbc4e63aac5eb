package services

import (
	"sync"

	"satang/internal/core"
)

const (
	TxAdded   ChangeOp = "added"
	TxUpdated ChangeOp = "updated"
	TxDeleted ChangeOp = "deleted"
)

type ChangeOp string

// ChangeEvent is pushed to subscribers after each successful ledger
// mutation, so consumers re-read derived state instead of polling.
type ChangeEvent struct {
	Op          ChangeOp
	Transaction core.Transaction
}

// notifier is a synchronous observer list. Callbacks run on the mutating
// goroutine, after the write is durable and outside the ledger lock, so a
// subscriber may immediately read summaries.
type notifier struct {
	mu   sync.Mutex
	subs []func(ChangeEvent)
}

func (n *notifier) subscribe(fn func(ChangeEvent)) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.subs = append(n.subs, fn)
}

func (n *notifier) notify(ev ChangeEvent) {
	n.mu.Lock()
	subs := make([]func(ChangeEvent), len(n.subs))
	copy(subs, n.subs)
	n.mu.Unlock()

	for _, fn := range subs {
		fn(ev)
	}
}
