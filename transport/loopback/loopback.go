// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package loopback implements an in-process transport adapter that
// relays messages directly between a gateway source and destinations in
// the same process. It stands in for a real relay network in tests and
// demos.
package loopback

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/luxfi/log"

	"github.com/luxfi/gateway"
	"github.com/luxfi/gateway/chains"
	"github.com/luxfi/gateway/types"
)

var ErrUnboundChain = errors.New("no destination bound for chain")

// Transport relays synchronously: every message is delivered inside
// SendMessage and no finalize step exists.
type Transport struct {
	log log.Logger

	// localGateway is the address this transport presents to
	// destinations as the sending gateway.
	localGateway []byte

	mu    sync.Mutex
	dests map[chains.Key]*gateway.Destination
	seq   uint64
}

// New creates a loopback transport presenting the given local gateway
// address.
func New(logger log.Logger, localGateway []byte) *Transport {
	return &Transport{
		log:          logger,
		localGateway: localGateway,
		dests:        make(map[chains.Key]*gateway.Destination),
	}
}

// Bind attaches the destination serving a chain.
func (t *Transport) Bind(chain chains.ChainID, dst *gateway.Destination) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.dests[chain.Key()] = dst
}

func (t *Transport) Name() string { return "loopback" }

func (t *Transport) SupportsAttribute(types.Selector) bool { return false }

func (t *Transport) RequiresFinalize() bool { return false }

func (t *Transport) SupportsValue() bool { return false }

// Send delivers the message to the bound destination for its chain,
// choosing the passive path when the receiver demands it.
func (t *Transport) Send(ctx context.Context, req *gateway.SendRequest, _ gateway.FinalizeParams) (uint64, error) {
	t.mu.Lock()
	dst, ok := t.dests[req.Message.DestinationChain.Key()]
	t.seq++
	seq := t.seq
	t.mu.Unlock()

	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnboundChain, req.Message.DestinationChain)
	}

	msg := req.Message
	if dst.PassiveOnly(msg.Receiver) {
		err := dst.RecordMessage(
			ctx, t, t.localGateway, req.ID,
			msg.SourceChain, msg.Sender, msg.Receiver, msg.Payload, msg.Attributes,
		)
		if err != nil {
			return 0, err
		}
		return seq, nil
	}

	if _, err := dst.ExecuteMessage(
		ctx, t, t.localGateway, req.ID,
		msg.SourceChain, msg.Sender, msg.Receiver, msg.Payload, msg.Attributes,
	); err != nil {
		return 0, err
	}
	t.log.Debug("relayed message", log.Stringer("id", req.ID))
	return seq, nil
}
