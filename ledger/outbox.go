// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package ledger implements the per-gateway message ledgers: the outbox
// tracking outgoing messages (Created -> Sent) and the inbox tracking
// incoming messages (Delivered -> Executed) with idempotent replay
// protection. Both are keyed by the content-addressed message ID and are
// mutated only by their owning gateway instance.
package ledger

import (
	"errors"
	"fmt"
	"sync"

	"github.com/luxfi/ids"

	"github.com/luxfi/gateway/types"
)

var (
	ErrMessageExists   = errors.New("message already exists")
	ErrMessageNotFound = errors.New("message not found")
	ErrAlreadySent     = errors.New("message already sent")
	ErrNotSent         = errors.New("message not sent")
)

// OutboxStatus is the source-side lifecycle state of a message. It only
// moves forward: Unknown -> Created -> Sent.
type OutboxStatus uint8

const (
	OutboxUnknown OutboxStatus = iota
	OutboxCreated
	OutboxSent
)

func (s OutboxStatus) String() string {
	switch s {
	case OutboxUnknown:
		return "unknown"
	case OutboxCreated:
		return "created"
	case OutboxSent:
		return "sent"
	default:
		return "invalid"
	}
}

// OutboxEntry records an outgoing message. Sequence is the outbox-local
// sequence assigned at creation; zero means no finalize step remains for
// the message. RelaySequence is the transport-assigned sequence, known
// once the message is handed to the relay network.
type OutboxEntry struct {
	ID            ids.ID
	Message       *types.Message
	Sequence      uint64
	RelaySequence uint64
	Status        OutboxStatus
}

// Outbox is the source-side message ledger. Entries persist indefinitely
// as an audit record; only the Status and RelaySequence fields mutate.
type Outbox struct {
	mu      sync.RWMutex
	entries map[ids.ID]*OutboxEntry
	nextSeq uint64
}

// NewOutbox creates an empty outbox.
func NewOutbox() *Outbox {
	return &Outbox{
		entries: make(map[ids.ID]*OutboxEntry),
		nextSeq: 1,
	}
}

// Create records a new Created entry for the message. If pending is
// false the message needs no finalize step and the entry gets the zero
// sequence sentinel.
func (o *Outbox) Create(id ids.ID, msg *types.Message, pending bool) (*OutboxEntry, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if _, ok := o.entries[id]; ok {
		return nil, fmt.Errorf("%w: %s", ErrMessageExists, id)
	}

	entry := &OutboxEntry{
		ID:      id,
		Message: msg,
		Status:  OutboxCreated,
	}
	if pending {
		entry.Sequence = o.nextSeq
		o.nextSeq++
	}
	o.entries[id] = entry
	return entry, nil
}

// Get returns a copy of the entry for the given message ID.
func (o *Outbox) Get(id ids.ID) (OutboxEntry, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()

	entry, ok := o.entries[id]
	if !ok {
		return OutboxEntry{}, fmt.Errorf("%w: %s", ErrMessageNotFound, id)
	}
	return *entry, nil
}

// Status returns the lifecycle state of the message, OutboxUnknown if the
// outbox has never seen it.
func (o *Outbox) Status(id ids.ID) OutboxStatus {
	o.mu.RLock()
	defer o.mu.RUnlock()

	entry, ok := o.entries[id]
	if !ok {
		return OutboxUnknown
	}
	return entry.Status
}

// MarkSent transitions a Created entry to Sent, recording the relay
// sequence assigned by the transport. A Sent entry never regresses.
func (o *Outbox) MarkSent(id ids.ID, relaySeq uint64) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	entry, ok := o.entries[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrMessageNotFound, id)
	}
	if entry.Status == OutboxSent {
		return fmt.Errorf("%w: %s", ErrAlreadySent, id)
	}
	entry.Status = OutboxSent
	entry.RelaySequence = relaySeq
	return nil
}

// Remove deletes an entry. It exists only so the source can undo a
// creation when a synchronous transport send fails in the same call;
// finalized entries are never removed.
func (o *Outbox) Remove(id ids.ID) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	entry, ok := o.entries[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrMessageNotFound, id)
	}
	if entry.Status == OutboxSent {
		return fmt.Errorf("%w: %s", ErrAlreadySent, id)
	}
	delete(o.entries, id)
	return nil
}

// Pending returns the IDs of all Created entries that still require a
// finalize step, for the relayer to pick up.
func (o *Outbox) Pending() []ids.ID {
	o.mu.RLock()
	defer o.mu.RUnlock()

	var pending []ids.ID
	for id, entry := range o.entries {
		if entry.Status == OutboxCreated && entry.Sequence != 0 {
			pending = append(pending, id)
		}
	}
	return pending
}

// Len returns the number of entries in the outbox.
func (o *Outbox) Len() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.entries)
}
