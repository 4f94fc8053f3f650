// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ledger

import (
	"errors"
	"fmt"
	"sync"

	"github.com/luxfi/ids"

	"github.com/luxfi/gateway/types"
)

var (
	ErrAlreadyDelivered = errors.New("message already delivered")
	ErrAlreadyExecuted  = errors.New("message already executed")
)

// InboxStatus is the destination-side lifecycle state of a message. It
// only moves forward: Unknown -> Delivered -> Executed, or directly
// Unknown -> Executed when delivery and execution collapse into one
// atomic step.
type InboxStatus uint8

const (
	InboxUnknown InboxStatus = iota
	InboxDelivered
	InboxExecuted
)

func (s InboxStatus) String() string {
	switch s {
	case InboxUnknown:
		return "unknown"
	case InboxDelivered:
		return "delivered"
	case InboxExecuted:
		return "executed"
	default:
		return "invalid"
	}
}

// InboxEntry records an incoming message.
type InboxEntry struct {
	ID      ids.ID
	Message *types.Message
	Status  InboxStatus
}

// Inbox is the destination-side message ledger. Entries persist
// indefinitely as the replay-protection record; an entry that reached
// Executed stays Executed forever.
type Inbox struct {
	mu      sync.RWMutex
	entries map[ids.ID]*InboxEntry
}

// NewInbox creates an empty inbox.
func NewInbox() *Inbox {
	return &Inbox{entries: make(map[ids.ID]*InboxEntry)}
}

// Deliver records a message as Delivered. Redelivery of a known message
// is a replay: ErrAlreadyDelivered for a Delivered entry,
// ErrAlreadyExecuted for an Executed one.
func (i *Inbox) Deliver(id ids.ID, msg *types.Message) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if entry, ok := i.entries[id]; ok {
		if entry.Status == InboxExecuted {
			return fmt.Errorf("%w: %s", ErrAlreadyExecuted, id)
		}
		return fmt.Errorf("%w: %s", ErrAlreadyDelivered, id)
	}
	i.entries[id] = &InboxEntry{ID: id, Message: msg, Status: InboxDelivered}
	return nil
}

// Execute commits the Executed state and returns the status the entry
// held before the call. The caller invokes the receiver only after this
// commit, so a reentrant delivery or execution for the same ID observes
// Executed and fails as a replay. Legal prior states are Unknown (atomic
// delivery and execution) and Delivered.
func (i *Inbox) Execute(id ids.ID, msg *types.Message) (InboxStatus, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	entry, ok := i.entries[id]
	if !ok {
		i.entries[id] = &InboxEntry{ID: id, Message: msg, Status: InboxExecuted}
		return InboxUnknown, nil
	}
	if entry.Status == InboxExecuted {
		return InboxExecuted, fmt.Errorf("%w: %s", ErrAlreadyExecuted, id)
	}
	prev := entry.Status
	entry.Status = InboxExecuted
	return prev, nil
}

// Rollback restores the pre-execution status after a failed receiver
// callback, so the message stays executable by a later delivery. Rolling
// back to Unknown removes the entry entirely.
func (i *Inbox) Rollback(id ids.ID, prev InboxStatus) {
	i.mu.Lock()
	defer i.mu.Unlock()

	entry, ok := i.entries[id]
	if !ok || entry.Status != InboxExecuted {
		return
	}
	if prev == InboxUnknown {
		delete(i.entries, id)
		return
	}
	entry.Status = prev
}

// Get returns a copy of the entry for the given message ID.
func (i *Inbox) Get(id ids.ID) (InboxEntry, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	entry, ok := i.entries[id]
	if !ok {
		return InboxEntry{}, fmt.Errorf("%w: %s", ErrMessageNotFound, id)
	}
	return *entry, nil
}

// Status returns the lifecycle state of the message, InboxUnknown if the
// inbox has never seen it.
func (i *Inbox) Status(id ids.ID) InboxStatus {
	i.mu.RLock()
	defer i.mu.RUnlock()

	entry, ok := i.entries[id]
	if !ok {
		return InboxUnknown
	}
	return entry.Status
}
