// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package arbitrum implements the transport adapters for the Arbitrum
// rollup bridge. The two directions behave differently: parent-to-child
// messages ride retryable tickets and need a funded finalize step, while
// child-to-parent messages go through the ArbSys precompile
// synchronously and surface on the parent chain after the challenge
// period. Parent-chain callers appear on the child chain under an
// aliased address.
package arbitrum

import (
	"context"
	"errors"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/luxfi/log"

	"github.com/luxfi/gateway"
	"github.com/luxfi/gateway/chains"
	"github.com/luxfi/gateway/types"
)

var ErrNotConfigured = errors.New("arbitrum adapter not configured")

// DefaultGasLimit bounds child-chain execution when the finalize caller
// does not set one.
const DefaultGasLimit = 300_000

// InboxClient is the outbound surface of the rollup's parent-chain
// inbox contract.
type InboxClient interface {
	CreateRetryableTicket(
		ctx context.Context,
		to []byte,
		gasLimit uint64,
		value *uint256.Int,
		refundAddress []byte,
		data []byte,
	) (uint64, error)
}

// SysClient is the outbound surface of the ArbSys precompile on the
// child chain.
type SysClient interface {
	SendTxToL1(ctx context.Context, destination []byte, data []byte) (uint64, error)
}

// ParentAdapter sends from the parent chain down to the child chain.
type ParentAdapter struct {
	log   log.Logger
	inbox InboxClient
	child chains.ChainID
	dst   *gateway.Destination
}

// ParentConfig configures a parent-chain adapter. Destination is only
// needed when the adapter also terminates child-to-parent traffic.
type ParentConfig struct {
	Log         log.Logger
	Inbox       InboxClient
	ChildChain  chains.ChainID
	Destination *gateway.Destination
}

func NewParentAdapter(cfg ParentConfig) (*ParentAdapter, error) {
	if cfg.Inbox == nil {
		return nil, fmt.Errorf("%w: no inbox client", ErrNotConfigured)
	}
	if err := cfg.ChildChain.Validate(); err != nil {
		return nil, err
	}
	return &ParentAdapter{
		log:   cfg.Log,
		inbox: cfg.Inbox,
		child: cfg.ChildChain,
		dst:   cfg.Destination,
	}, nil
}

func (a *ParentAdapter) Name() string { return "arbitrum-parent" }

func (a *ParentAdapter) SupportsAttribute(types.Selector) bool { return false }

func (a *ParentAdapter) RequiresFinalize() bool { return true }

func (a *ParentAdapter) SupportsValue() bool { return true }

// Send is the finalize step: it funds and submits the retryable ticket
// carrying the envelope to the child-chain gateway.
func (a *ParentAdapter) Send(ctx context.Context, req *gateway.SendRequest, params gateway.FinalizeParams) (uint64, error) {
	if req.Message.DestinationChain != a.child {
		return 0, fmt.Errorf("adapter serves %s, not %s", a.child, req.Message.DestinationChain)
	}

	gasLimit := params.GasLimit
	if gasLimit == 0 {
		gasLimit = DefaultGasLimit
	}
	wire := types.NewEnvelope(req.ID, req.Message).Bytes()

	ticket, err := a.inbox.CreateRetryableTicket(ctx, req.RemoteGateway, gasLimit, params.Value, params.RefundAddress, wire)
	if err != nil {
		return 0, err
	}
	a.log.Debug("created retryable ticket",
		log.Stringer("id", req.ID),
		log.Uint64("ticket", ticket),
	)
	return ticket, nil
}

// ExecuteFromChild is the inbound entry point on the parent chain: a
// child-to-parent message is executed here once its challenge period has
// passed. The child gateway surfaces unaliased.
func (a *ParentAdapter) ExecuteFromChild(ctx context.Context, childGateway []byte, wire []byte) error {
	if a.dst == nil {
		return fmt.Errorf("%w: no destination", ErrNotConfigured)
	}
	return deliver(ctx, a.dst, a, childGateway, a.child, wire)
}

// ChildAdapter sends from the child chain up to the parent chain.
// ArbSys accepts the message synchronously, so no finalize step exists;
// actual parent-chain execution happens after the challenge period.
type ChildAdapter struct {
	log    log.Logger
	sys    SysClient
	parent chains.ChainID
	dst    *gateway.Destination
}

// ChildConfig configures a child-chain adapter. Destination is only
// needed when the adapter also terminates parent-to-child traffic.
type ChildConfig struct {
	Log         log.Logger
	Sys         SysClient
	ParentChain chains.ChainID
	Destination *gateway.Destination
}

func NewChildAdapter(cfg ChildConfig) (*ChildAdapter, error) {
	if cfg.Sys == nil {
		return nil, fmt.Errorf("%w: no arbsys client", ErrNotConfigured)
	}
	if err := cfg.ParentChain.Validate(); err != nil {
		return nil, err
	}
	return &ChildAdapter{
		log:    cfg.Log,
		sys:    cfg.Sys,
		parent: cfg.ParentChain,
		dst:    cfg.Destination,
	}, nil
}

func (a *ChildAdapter) Name() string { return "arbitrum-child" }

func (a *ChildAdapter) SupportsAttribute(types.Selector) bool { return false }

func (a *ChildAdapter) RequiresFinalize() bool { return false }

func (a *ChildAdapter) SupportsValue() bool { return false }

// Send hands the envelope to ArbSys for eventual parent-chain execution.
func (a *ChildAdapter) Send(ctx context.Context, req *gateway.SendRequest, _ gateway.FinalizeParams) (uint64, error) {
	if req.Message.DestinationChain != a.parent {
		return 0, fmt.Errorf("adapter serves %s, not %s", a.parent, req.Message.DestinationChain)
	}

	wire := types.NewEnvelope(req.ID, req.Message).Bytes()
	seq, err := a.sys.SendTxToL1(ctx, req.RemoteGateway, wire)
	if err != nil {
		return 0, err
	}
	a.log.Debug("sent to parent chain",
		log.Stringer("id", req.ID),
		log.Uint64("sequence", seq),
	)
	return seq, nil
}

// ExecuteFromParent is the inbound entry point on the child chain: the
// ticket's caller is the aliased parent gateway, so the alias is
// reversed before the authentication check.
func (a *ChildAdapter) ExecuteFromParent(ctx context.Context, aliasedCaller []byte, wire []byte) error {
	if a.dst == nil {
		return fmt.Errorf("%w: no destination", ErrNotConfigured)
	}
	parentGateway, err := UnaliasAddress(aliasedCaller)
	if err != nil {
		return err
	}
	return deliver(ctx, a.dst, a, parentGateway, a.parent, wire)
}

func deliver(
	ctx context.Context,
	dst *gateway.Destination,
	adapter gateway.Adapter,
	remoteGateway []byte,
	source chains.ChainID,
	wire []byte,
) error {
	env, err := types.ParseEnvelope(wire)
	if err != nil {
		return err
	}
	if dst.PassiveOnly(env.Receiver) {
		return dst.RecordMessage(ctx, adapter, remoteGateway, env.ID,
			source, env.Sender, env.Receiver, env.Payload, env.Attributes)
	}
	_, err = dst.ExecuteMessage(ctx, adapter, remoteGateway, env.ID,
		source, env.Sender, env.Receiver, env.Payload, env.Attributes)
	return err
}

// aliasOffset is the constant the rollup adds to a parent-chain caller's
// address, modulo 2^160, before it surfaces on the child chain.
var aliasOffset = uint256.MustFromHex("0x1111000000000000000000000000000000001111")

// AliasAddress computes the child-chain alias of a parent-chain address.
func AliasAddress(addr []byte) ([]byte, error) {
	return aliasShift(addr, false)
}

// UnaliasAddress recovers the parent-chain address from its child-chain
// alias.
func UnaliasAddress(addr []byte) ([]byte, error) {
	return aliasShift(addr, true)
}

func aliasShift(addr []byte, reverse bool) ([]byte, error) {
	if len(addr) != gateway.AddressLen {
		return nil, fmt.Errorf("invalid address length %d", len(addr))
	}
	x := new(uint256.Int).SetBytes(addr)
	if reverse {
		// Stay positive under the 2^160 modulus before subtracting.
		x.Add(x, new(uint256.Int).Lsh(uint256.NewInt(1), 160))
		x.Sub(x, aliasOffset)
	} else {
		x.Add(x, aliasOffset)
	}
	b := x.Bytes32()
	out := make([]byte, gateway.AddressLen)
	copy(out, b[32-gateway.AddressLen:])
	return out, nil
}
