// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package layerzero implements the transport adapter for the LayerZero
// endpoint. LayerZero identifies chains by uint32 endpoint IDs and peers
// by 32-byte values, charges a quoted native fee per send, and delivers
// asynchronously: sends stay Created until the finalize step pays the
// fee.
package layerzero

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/holiman/uint256"
	"github.com/luxfi/log"

	"github.com/luxfi/gateway"
	"github.com/luxfi/gateway/chains"
	"github.com/luxfi/gateway/types"
)

var (
	ErrNoEquivalence   = errors.New("no layerzero endpoint equivalence registered")
	ErrInsufficientFee = errors.New("attached value below quoted native fee")
	ErrNotConfigured   = errors.New("layerzero adapter not configured")
)

// Endpoint is the outbound surface of the LayerZero endpoint contract.
type Endpoint interface {
	Quote(ctx context.Context, dstEid uint32, receiver [32]byte, message []byte, options []byte) (*uint256.Int, error)
	Send(
		ctx context.Context,
		dstEid uint32,
		receiver [32]byte,
		message []byte,
		options []byte,
		fee *uint256.Int,
	) (uint64, error)
}

// Adapter bridges the gateway to LayerZero.
type Adapter struct {
	log      log.Logger
	admin    []byte
	endpoint Endpoint
	dst      *gateway.Destination

	lock    sync.RWMutex
	toEid   map[chains.Key]uint32
	fromEid map[uint32]chains.ChainID
}

// Config configures a LayerZero adapter. Destination is only needed when
// the adapter also terminates inbound traffic.
type Config struct {
	Log         log.Logger
	Admin       []byte
	Endpoint    Endpoint
	Destination *gateway.Destination
}

func NewAdapter(cfg Config) (*Adapter, error) {
	if cfg.Endpoint == nil {
		return nil, fmt.Errorf("%w: no endpoint client", ErrNotConfigured)
	}
	return &Adapter{
		log:      cfg.Log,
		admin:    cfg.Admin,
		endpoint: cfg.Endpoint,
		dst:      cfg.Destination,
		toEid:    make(map[chains.Key]uint32),
		fromEid:  make(map[uint32]chains.ChainID),
	}, nil
}

// RegisterChainEquivalence binds a CAIP-2 chain to its LayerZero
// endpoint ID. Administrator only; rebinding either side fails.
func (a *Adapter) RegisterChainEquivalence(caller []byte, chain chains.ChainID, eid uint32) error {
	if !bytes.Equal(caller, a.admin) {
		return fmt.Errorf("%w: caller %x", gateway.ErrUnauthorized, caller)
	}
	if err := chain.Validate(); err != nil {
		return err
	}

	a.lock.Lock()
	defer a.lock.Unlock()
	if prev, ok := a.toEid[chain.Key()]; ok {
		return fmt.Errorf("chain %s already bound to eid %d", chain, prev)
	}
	if prev, ok := a.fromEid[eid]; ok {
		return fmt.Errorf("eid %d already bound to %s", eid, prev)
	}
	a.toEid[chain.Key()] = eid
	a.fromEid[eid] = chain
	a.log.Info("registered layerzero equivalence",
		log.Stringer("chain", chain),
		log.Uint64("eid", uint64(eid)),
	)
	return nil
}

func (a *Adapter) Name() string { return "layerzero" }

func (a *Adapter) SupportsAttribute(types.Selector) bool { return false }

func (a *Adapter) RequiresFinalize() bool { return true }

func (a *Adapter) SupportsValue() bool { return true }

// Send is the finalize step: it quotes the native fee and hands the
// envelope to the endpoint. The fee must be covered by the attached
// value when one is set.
func (a *Adapter) Send(ctx context.Context, req *gateway.SendRequest, params gateway.FinalizeParams) (uint64, error) {
	a.lock.RLock()
	eid, ok := a.toEid[req.Message.DestinationChain.Key()]
	a.lock.RUnlock()
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrNoEquivalence, req.Message.DestinationChain)
	}

	peer := peerAddress(req.RemoteGateway)
	wire := types.NewEnvelope(req.ID, req.Message).Bytes()
	options := executionOptions(params.GasLimit)

	fee, err := a.endpoint.Quote(ctx, eid, peer, wire, options)
	if err != nil {
		return 0, fmt.Errorf("fee quote failed: %w", err)
	}
	if params.Value != nil && params.Value.Lt(fee) {
		return 0, fmt.Errorf("%w: have %s, need %s", ErrInsufficientFee, params.Value, fee)
	}

	nonce, err := a.endpoint.Send(ctx, eid, peer, wire, options, fee)
	if err != nil {
		return 0, err
	}
	a.log.Debug("relayed via layerzero",
		log.Stringer("id", req.ID),
		log.Uint64("nonce", nonce),
	)
	return nonce, nil
}

// LzReceive is the inbound entry point invoked by the endpoint on
// delivery.
func (a *Adapter) LzReceive(
	ctx context.Context,
	srcEid uint32,
	sender [32]byte,
	_ uint64,
	wire []byte,
) error {
	if a.dst == nil {
		return fmt.Errorf("%w: no destination", ErrNotConfigured)
	}

	a.lock.RLock()
	source, ok := a.fromEid[srcEid]
	a.lock.RUnlock()
	if !ok {
		return fmt.Errorf("%w: eid %d", ErrNoEquivalence, srcEid)
	}

	env, err := types.ParseEnvelope(wire)
	if err != nil {
		return err
	}
	remote := make([]byte, gateway.AddressLen)
	copy(remote, sender[32-gateway.AddressLen:])

	if a.dst.PassiveOnly(env.Receiver) {
		return a.dst.RecordMessage(ctx, a, remote, env.ID,
			source, env.Sender, env.Receiver, env.Payload, env.Attributes)
	}
	_, err = a.dst.ExecuteMessage(ctx, a, remote, env.ID,
		source, env.Sender, env.Receiver, env.Payload, env.Attributes)
	return err
}

// peerAddress left-pads an address to LayerZero's 32-byte peer form.
func peerAddress(addr []byte) [32]byte {
	var out [32]byte
	if len(addr) > 32 {
		addr = addr[len(addr)-32:]
	}
	copy(out[32-len(addr):], addr)
	return out
}

// executionOptions packs a gas limit into the endpoint's option bytes:
// option type 1, then the limit big-endian.
func executionOptions(gasLimit uint64) []byte {
	out := make([]byte, 9)
	out[0] = 1
	for i := 0; i < 8; i++ {
		out[8-i] = byte(gasLimit >> (8 * i))
	}
	return out
}
