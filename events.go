// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package gateway

import (
	"github.com/luxfi/ids"

	"github.com/luxfi/gateway/types"
)

// Events receives gateway lifecycle notifications. The ledgers are keyed
// by digest only; MessageCreated carries the full message content so an
// off-chain indexer can reconstruct messages without an on-chain index.
type Events interface {
	// MessageCreated fires when the source records a new outbox entry.
	MessageCreated(id ids.ID, msg *types.Message)

	// MessageSent fires when a message is handed to the relay network.
	MessageSent(id ids.ID)

	// MessageExecuted fires when the destination completes execution.
	MessageExecuted(id ids.ID)
}

// NoopEvents discards all notifications.
type NoopEvents struct{}

func (NoopEvents) MessageCreated(ids.ID, *types.Message) {}
func (NoopEvents) MessageSent(ids.ID)                    {}
func (NoopEvents) MessageExecuted(ids.ID)                {}
