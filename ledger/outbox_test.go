// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ledger

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/gateway/chains"
	"github.com/luxfi/gateway/types"
)

func newTestMessage(t *testing.T, payload byte) *types.Message {
	t.Helper()
	msg, err := types.NewMessage(
		chains.EVM(1),
		chains.EVM(42161),
		[]byte{0x01},
		[]byte{0x02},
		[]byte{payload},
		nil,
	)
	require.NoError(t, err)
	return msg
}

func TestOutboxLifecycle(t *testing.T) {
	o := NewOutbox()
	msg := newTestMessage(t, 0xAA)
	id := msg.ID()

	require.Equal(t, OutboxUnknown, o.Status(id))

	entry, err := o.Create(id, msg, true)
	require.NoError(t, err)
	require.Equal(t, OutboxCreated, entry.Status)
	require.NotZero(t, entry.Sequence)
	require.Equal(t, OutboxCreated, o.Status(id))

	// Duplicate creation is rejected.
	_, err = o.Create(id, msg, true)
	require.ErrorIs(t, err, ErrMessageExists)

	require.NoError(t, o.MarkSent(id, 7))
	require.Equal(t, OutboxSent, o.Status(id))

	got, err := o.Get(id)
	require.NoError(t, err)
	require.Equal(t, uint64(7), got.RelaySequence)

	// Sent is terminal.
	require.ErrorIs(t, o.MarkSent(id, 8), ErrAlreadySent)
	require.ErrorIs(t, o.Remove(id), ErrAlreadySent)
	require.Equal(t, OutboxSent, o.Status(id))
}

func TestOutboxSynchronousSentinel(t *testing.T) {
	o := NewOutbox()
	msg := newTestMessage(t, 0xBB)
	id := msg.ID()

	// No finalize step remains: zero sequence, never listed as pending.
	entry, err := o.Create(id, msg, false)
	require.NoError(t, err)
	require.Zero(t, entry.Sequence)
	require.Empty(t, o.Pending())

	require.NoError(t, o.MarkSent(id, 0))
	require.Equal(t, OutboxSent, o.Status(id))
}

func TestOutboxPending(t *testing.T) {
	o := NewOutbox()

	first := newTestMessage(t, 0x01)
	second := newTestMessage(t, 0x02)

	_, err := o.Create(first.ID(), first, true)
	require.NoError(t, err)
	_, err = o.Create(second.ID(), second, true)
	require.NoError(t, err)

	require.Len(t, o.Pending(), 2)

	require.NoError(t, o.MarkSent(first.ID(), 1))
	pending := o.Pending()
	require.Len(t, pending, 1)
	require.Equal(t, second.ID(), pending[0])
}

func TestOutboxUnknownMessage(t *testing.T) {
	o := NewOutbox()
	id := newTestMessage(t, 0xCC).ID()

	_, err := o.Get(id)
	require.ErrorIs(t, err, ErrMessageNotFound)
	require.ErrorIs(t, o.MarkSent(id, 1), ErrMessageNotFound)
	require.ErrorIs(t, o.Remove(id), ErrMessageNotFound)
}

func TestOutboxRemove(t *testing.T) {
	o := NewOutbox()
	msg := newTestMessage(t, 0xDD)
	id := msg.ID()

	_, err := o.Create(id, msg, false)
	require.NoError(t, err)
	require.NoError(t, o.Remove(id))
	require.Equal(t, OutboxUnknown, o.Status(id))
	require.Zero(t, o.Len())
}
