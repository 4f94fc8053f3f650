// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package gateway

import (
	"context"

	"github.com/luxfi/ids"

	"github.com/luxfi/gateway/chains"
	"github.com/luxfi/gateway/types"
)

// ReceiveConfirmation is the sentinel a receiver must return from
// ReceiveMessage for the execution to count. Any other value is an
// execution failure.
var ReceiveConfirmation = types.SelectorFromSignature(
	"receiveMessage(bytes32,string,string,bytes)",
)

// Receiver is the destination-side application contract that consumes
// delivered messages.
type Receiver interface {
	// ReceiveMessage handles one delivered message and returns
	// ReceiveConfirmation on success.
	ReceiveMessage(
		ctx context.Context,
		id ids.ID,
		source chains.ChainID,
		sender []byte,
		payload []byte,
	) (types.Selector, error)
}
