// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ledger

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInboxPassiveLifecycle(t *testing.T) {
	i := NewInbox()
	msg := newTestMessage(t, 0x10)
	id := msg.ID()

	require.Equal(t, InboxUnknown, i.Status(id))

	require.NoError(t, i.Deliver(id, msg))
	require.Equal(t, InboxDelivered, i.Status(id))

	// Redelivery is a replay.
	require.ErrorIs(t, i.Deliver(id, msg), ErrAlreadyDelivered)

	prev, err := i.Execute(id, msg)
	require.NoError(t, err)
	require.Equal(t, InboxDelivered, prev)
	require.Equal(t, InboxExecuted, i.Status(id))

	// Executed is terminal: both paths report the replay.
	_, err = i.Execute(id, msg)
	require.ErrorIs(t, err, ErrAlreadyExecuted)
	require.ErrorIs(t, i.Deliver(id, msg), ErrAlreadyExecuted)
}

func TestInboxAtomicExecution(t *testing.T) {
	i := NewInbox()
	msg := newTestMessage(t, 0x20)
	id := msg.ID()

	// Active mode: Unknown -> Executed in one step.
	prev, err := i.Execute(id, msg)
	require.NoError(t, err)
	require.Equal(t, InboxUnknown, prev)
	require.Equal(t, InboxExecuted, i.Status(id))
}

func TestInboxRollback(t *testing.T) {
	i := NewInbox()
	msg := newTestMessage(t, 0x30)
	id := msg.ID()

	// Active mode failure: entry vanishes, a later delivery is not
	// blocked as a duplicate.
	prev, err := i.Execute(id, msg)
	require.NoError(t, err)
	i.Rollback(id, prev)
	require.Equal(t, InboxUnknown, i.Status(id))

	// Passive mode failure: entry returns to Delivered.
	require.NoError(t, i.Deliver(id, msg))
	prev, err = i.Execute(id, msg)
	require.NoError(t, err)
	i.Rollback(id, prev)
	require.Equal(t, InboxDelivered, i.Status(id))

	// The retried execution succeeds.
	_, err = i.Execute(id, msg)
	require.NoError(t, err)
	require.Equal(t, InboxExecuted, i.Status(id))

	// Rollback of an unknown ID is a no-op.
	i.Rollback(newTestMessage(t, 0x31).ID(), InboxDelivered)
}
