// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package gateway

import (
	"context"

	"github.com/holiman/uint256"
	"github.com/luxfi/ids"

	"github.com/luxfi/gateway/types"
)

// Adapter translates the generic gateway contract into one relay
// network's API. The source and destination compose an adapter by
// injection; nothing in the gateway state machines depends on which
// network sits behind it.
type Adapter interface {
	// Name identifies the adapter, used as its trust handle on the
	// destination side.
	Name() string

	// SupportsAttribute reports whether the network can honor the
	// attribute selector.
	SupportsAttribute(sel types.Selector) bool

	// RequiresFinalize reports whether messages need a separate finalize
	// step after creation. Adapters that relay synchronously inside
	// SendMessage return false.
	RequiresFinalize() bool

	// SupportsValue reports whether the network accepts a native value
	// payment attached to the message.
	SupportsValue() bool

	// Send hands a message to the relay network and returns the
	// network-assigned relay sequence. A failed network call returns the
	// error with no other effect, so the caller commits no transition.
	Send(ctx context.Context, req *SendRequest, params FinalizeParams) (uint64, error)
}

// SendRequest is the unit of work handed to an adapter.
type SendRequest struct {
	ID            ids.ID
	Message       *types.Message
	RemoteGateway []byte
}

// FinalizeParams carries the transport-specific parameters of a finalize
// or retry step: relay fee payment and execution limits on the
// destination chain.
type FinalizeParams struct {
	// Value is the native fee forwarded to the relay network, nil for
	// none.
	Value *uint256.Int

	// GasLimit bounds execution on the destination chain, zero for the
	// transport default.
	GasLimit uint64

	// RefundAddress receives unspent fees on networks that support
	// refunds.
	RefundAddress []byte
}
