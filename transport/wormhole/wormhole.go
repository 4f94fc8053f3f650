// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package wormhole implements the transport adapter for the Wormhole
// relayer network. Wormhole identifies chains by uint16 numbers and
// contracts by 32-byte universal addresses, quotes a delivery price per
// message, and delivers asynchronously: sends stay Created until the
// finalize step pays the quoted price.
package wormhole

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
	ErrNoEquivalence   = errors.New("no wormhole chain equivalence registered")
	ErrInsufficientFee = errors.New("attached value below quoted delivery price")
	ErrNotConfigured   = errors.New("wormhole adapter not configured")
)

// DefaultGasLimit bounds destination execution when the finalize caller
// does not set one.
const DefaultGasLimit = 300_000

// Relayer is the outbound surface of the Wormhole relayer contract.
type Relayer interface {
	QuoteDeliveryPrice(ctx context.Context, targetChain uint16, gasLimit uint64) (*uint256.Int, error)
	SendPayload(
		ctx context.Context,
		targetChain uint16,
		targetAddress [32]byte,
		payload []byte,
		gasLimit uint64,
		fee *uint256.Int,
	) (uint64, error)
}

// Adapter bridges the gateway to Wormhole. Inbound deliveries are
// deduplicated by the relayer's delivery hash in addition to the
// gateway's own replay protection.
type Adapter struct {
	log    log.Logger
	admin  []byte
	client Relayer
	dst    *gateway.Destination

	mu           sync.RWMutex
	toWormhole   map[chains.Key]uint16
	fromWormhole map[uint16]chains.ChainID
	delivered    map[[32]byte]struct{}
}

// Config configures a Wormhole adapter. Destination is only needed when
// the adapter also terminates inbound traffic.
type Config struct {
	Log         log.Logger
	Admin       []byte
	Client      Relayer
	Destination *gateway.Destination
}

func NewAdapter(cfg Config) (*Adapter, error) {
	if cfg.Client == nil {
		return nil, fmt.Errorf("%w: no relayer client", ErrNotConfigured)
	}
	return &Adapter{
		log:          cfg.Log,
		admin:        cfg.Admin,
		client:       cfg.Client,
		dst:          cfg.Destination,
		toWormhole:   make(map[chains.Key]uint16),
		fromWormhole: make(map[uint16]chains.ChainID),
		delivered:    make(map[[32]byte]struct{}),
	}, nil
}

// RegisterChainEquivalence binds a CAIP-2 chain to its Wormhole chain
// number. Administrator only; rebinding either side fails.
func (a *Adapter) RegisterChainEquivalence(caller []byte, chain chains.ChainID, wormholeChain uint16) error {
	if !bytes.Equal(caller, a.admin) {
		return fmt.Errorf("%w: caller %x", gateway.ErrUnauthorized, caller)
	}
	if err := chain.Validate(); err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if prev, ok := a.toWormhole[chain.Key()]; ok {
		return fmt.Errorf("chain %s already bound to %d", chain, prev)
	}
	if prev, ok := a.fromWormhole[wormholeChain]; ok {
		return fmt.Errorf("wormhole chain %d already bound to %s", wormholeChain, prev)
	}
	a.toWormhole[chain.Key()] = wormholeChain
	a.fromWormhole[wormholeChain] = chain
	a.log.Info("registered wormhole equivalence",
		log.Stringer("chain", chain),
		log.Uint64("wormholeChain", uint64(wormholeChain)),
	)
	return nil
}

func (a *Adapter) Name() string { return "wormhole" }

func (a *Adapter) SupportsAttribute(types.Selector) bool { return false }

func (a *Adapter) RequiresFinalize() bool { return true }

func (a *Adapter) SupportsValue() bool { return true }

// Send is the finalize step: it quotes the delivery price for the
// requested gas limit and hands the envelope to the relayer. The quoted
// price must be covered by the attached value when one is set.
func (a *Adapter) Send(ctx context.Context, req *gateway.SendRequest, params gateway.FinalizeParams) (uint64, error) {
	a.mu.RLock()
	targetChain, ok := a.toWormhole[req.Message.DestinationChain.Key()]
	a.mu.RUnlock()
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrNoEquivalence, req.Message.DestinationChain)
	}

	gasLimit := params.GasLimit
	if gasLimit == 0 {
		gasLimit = DefaultGasLimit
	}

	fee, err := a.client.QuoteDeliveryPrice(ctx, targetChain, gasLimit)
	if err != nil {
		return 0, fmt.Errorf("delivery price quote failed: %w", err)
	}
	if params.Value != nil && params.Value.Lt(fee) {
		return 0, fmt.Errorf("%w: have %s, need %s", ErrInsufficientFee, params.Value, fee)
	}

	wire := types.NewEnvelope(req.ID, req.Message).Bytes()
	seq, err := a.client.SendPayload(ctx, targetChain, UniversalAddress(req.RemoteGateway), wire, gasLimit, fee)
	if err != nil {
		return 0, err
	}
	a.log.Debug("relayed via wormhole",
		log.Stringer("id", req.ID),
		log.Uint64("sequence", seq),
	)
	return seq, nil
}

// ReceiveMessage is the inbound entry point invoked by the relayer on
// delivery. Each delivery hash is consumed at most once.
func (a *Adapter) ReceiveMessage(
	ctx context.Context,
	sourceChain uint16,
	sourceAddress [32]byte,
	deliveryHash [32]byte,
	wire []byte,
) error {
	if a.dst == nil {
		return fmt.Errorf("%w: no destination", ErrNotConfigured)
	}

	a.mu.RLock()
	source, ok := a.fromWormhole[sourceChain]
	a.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: wormhole chain %d", ErrNoEquivalence, sourceChain)
	}

	a.mu.Lock()
	if _, seen := a.delivered[deliveryHash]; seen {
		a.mu.Unlock()
		return fmt.Errorf("delivery %x already processed", deliveryHash)
	}
	a.delivered[deliveryHash] = struct{}{}
	a.mu.Unlock()

	env, err := types.ParseEnvelope(wire)
	if err != nil {
		return err
	}
	remote := FromUniversalAddress(sourceAddress)

	if a.dst.PassiveOnly(env.Receiver) {
		return a.dst.RecordMessage(ctx, a, remote, env.ID,
			source, env.Sender, env.Receiver, env.Payload, env.Attributes)
	}
	_, err = a.dst.ExecuteMessage(ctx, a, remote, env.ID,
		source, env.Sender, env.Receiver, env.Payload, env.Attributes)
	return err
}

// UniversalAddress left-pads an EVM address to Wormhole's 32-byte form.
func UniversalAddress(addr []byte) [32]byte {
	var out [32]byte
	if len(addr) > 32 {
		addr = addr[len(addr)-32:]
	}
	copy(out[32-len(addr):], addr)
	return out
}

// FromUniversalAddress recovers the 20-byte EVM address from its
// universal form.
func FromUniversalAddress(addr [32]byte) []byte {
	out := make([]byte, gateway.AddressLen)
	copy(out, addr[32-gateway.AddressLen:])
	return out
}
