// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package axelar implements the transport adapter for the Axelar
// network. Axelar identifies chains by bare string names and relays
// synchronously, so messages come out of SendMessage already Sent; relay
// gas is prepaid through the gas service when the sender attaches value.
package axelar

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"
	"github.com/luxfi/log"

	"github.com/luxfi/gateway"
	"github.com/luxfi/gateway/chains"
	"github.com/luxfi/gateway/types"
)

var (
	ErrNoEquivalence = errors.New("no axelar chain equivalence registered")
	ErrNotConfigured = errors.New("axelar adapter not configured")
)

// GatewayClient is the outbound surface of the Axelar gateway contract.
type GatewayClient interface {
	CallContract(ctx context.Context, destinationChain, destinationAddress string, payload []byte) error
}

// GasService prepays relay gas for a contract call.
type GasService interface {
	PayGas(
		ctx context.Context,
		destinationChain, destinationAddress string,
		payload []byte,
		value *uint256.Int,
		refundAddress []byte,
	) error
}

// Adapter bridges the gateway to Axelar. The chain equivalence table
// maps CAIP-2 identifiers to Axelar chain names in both directions and
// only the administrator may extend it; an equivalence is immutable once
// set.
type Adapter struct {
	log    log.Logger
	admin  []byte
	client GatewayClient
	gas    GasService
	dst    *gateway.Destination

	mu         sync.RWMutex
	toAxelar   map[chains.Key]string
	fromAxelar map[string]chains.ChainID
	seq        uint64
}

// Config configures an Axelar adapter. Destination is only needed when
// the adapter also terminates inbound traffic.
type Config struct {
	Log         log.Logger
	Admin       []byte
	Client      GatewayClient
	Gas         GasService
	Destination *gateway.Destination
}

func NewAdapter(cfg Config) (*Adapter, error) {
	if cfg.Client == nil {
		return nil, fmt.Errorf("%w: no gateway client", ErrNotConfigured)
	}
	return &Adapter{
		log:        cfg.Log,
		admin:      cfg.Admin,
		client:     cfg.Client,
		gas:        cfg.Gas,
		dst:        cfg.Destination,
		toAxelar:   make(map[chains.Key]string),
		fromAxelar: make(map[string]chains.ChainID),
	}, nil
}

// RegisterChainEquivalence binds a CAIP-2 chain to its Axelar name.
// Administrator only; rebinding either side fails.
func (a *Adapter) RegisterChainEquivalence(caller []byte, chain chains.ChainID, axelarName string) error {
	if !bytes.Equal(caller, a.admin) {
		return fmt.Errorf("%w: caller %x", gateway.ErrUnauthorized, caller)
	}
	if err := chain.Validate(); err != nil {
		return err
	}
	if axelarName == "" {
		return errors.New("empty axelar chain name")
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if prev, ok := a.toAxelar[chain.Key()]; ok {
		return fmt.Errorf("chain %s already bound to %q", chain, prev)
	}
	if prev, ok := a.fromAxelar[axelarName]; ok {
		return fmt.Errorf("axelar chain %q already bound to %s", axelarName, prev)
	}
	a.toAxelar[chain.Key()] = axelarName
	a.fromAxelar[axelarName] = chain
	a.log.Info("registered axelar equivalence",
		log.Stringer("chain", chain),
		log.String("axelarChain", axelarName),
	)
	return nil
}

func (a *Adapter) Name() string { return "axelar" }

func (a *Adapter) SupportsAttribute(types.Selector) bool { return false }

func (a *Adapter) RequiresFinalize() bool { return false }

func (a *Adapter) SupportsValue() bool { return true }

// Send relays the message through the Axelar gateway contract. Any
// attached value prepays relay gas first; the envelope carries the
// message ID so the destination can check it against the content digest.
func (a *Adapter) Send(ctx context.Context, req *gateway.SendRequest, params gateway.FinalizeParams) (uint64, error) {
	a.mu.RLock()
	axelarChain, ok := a.toAxelar[req.Message.DestinationChain.Key()]
	a.mu.RUnlock()
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrNoEquivalence, req.Message.DestinationChain)
	}

	destAddress := addressString(req.RemoteGateway)
	wire := types.NewEnvelope(req.ID, req.Message).Bytes()

	if params.Value != nil && !params.Value.IsZero() {
		if a.gas == nil {
			return 0, fmt.Errorf("%w: no gas service", ErrNotConfigured)
		}
		if err := a.gas.PayGas(ctx, axelarChain, destAddress, wire, params.Value, params.RefundAddress); err != nil {
			return 0, fmt.Errorf("gas prepayment failed: %w", err)
		}
	}

	if err := a.client.CallContract(ctx, axelarChain, destAddress, wire); err != nil {
		return 0, err
	}

	a.mu.Lock()
	a.seq++
	seq := a.seq
	a.mu.Unlock()
	a.log.Debug("relayed via axelar",
		log.Stringer("id", req.ID),
		log.String("axelarChain", axelarChain),
	)
	return seq, nil
}

// Execute is the inbound entry point invoked when Axelar delivers a
// contract call to this adapter: it resolves the source chain, unpacks
// the envelope, and hands the message to the destination gateway.
func (a *Adapter) Execute(ctx context.Context, sourceChain, sourceAddress string, wire []byte) error {
	if a.dst == nil {
		return fmt.Errorf("%w: no destination", ErrNotConfigured)
	}

	a.mu.RLock()
	source, ok := a.fromAxelar[sourceChain]
	a.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: axelar chain %q", ErrNoEquivalence, sourceChain)
	}

	env, err := types.ParseEnvelope(wire)
	if err != nil {
		return err
	}
	remote := common.FromHex(sourceAddress)

	if a.dst.PassiveOnly(env.Receiver) {
		return a.dst.RecordMessage(ctx, a, remote, env.ID,
			source, env.Sender, env.Receiver, env.Payload, env.Attributes)
	}
	_, err = a.dst.ExecuteMessage(ctx, a, remote, env.ID,
		source, env.Sender, env.Receiver, env.Payload, env.Attributes)
	return err
}

func addressString(addr []byte) string {
	return fmt.Sprintf("0x%x", addr)
}
