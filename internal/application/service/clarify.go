package service

import (
	"sync"
	"time"
)

// pendingClarification is the immutable per-owner record held between parsing
// a date-only reminder and receiving its time of day. The reminder row itself
// is persisted as AwaitingTime, so a crash loses nothing the user typed; this
// record only keeps the fast path and the resolved date.
type pendingClarification struct {
	ReminderID uint
	Message    string
	Date       time.Time // midnight in the owner's zone
	CreatedAt  time.Time
}

// clarifyStore keys in-flight clarifications by owner. One owner has at most
// one pending record: beginning a new one supersedes the previous.
type clarifyStore struct {
	mu      sync.Mutex
	pending map[int64]pendingClarification
}

func newClarifyStore() *clarifyStore {
	return &clarifyStore{pending: make(map[int64]pendingClarification)}
}

// begin installs a pending record for the owner, returning the superseded
// record if one existed.
func (c *clarifyStore) begin(ownerID int64, rec pendingClarification) (pendingClarification, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	prev, had := c.pending[ownerID]
	c.pending[ownerID] = rec
	return prev, had
}

// get returns the owner's pending record without removing it.
func (c *clarifyStore) get(ownerID int64) (pendingClarification, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	rec, ok := c.pending[ownerID]
	return rec, ok
}

// clear removes and returns the owner's pending record.
func (c *clarifyStore) clear(ownerID int64) (pendingClarification, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	rec, ok := c.pending[ownerID]
	if ok {
		delete(c.pending, ownerID)
	}
	return rec, ok
}
