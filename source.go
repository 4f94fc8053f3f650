// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package gateway implements the generic cross-chain messaging gateway:
// the source and destination state machines, the remote gateway
// registry, and the transport adapter contract. A source tracks outgoing
// messages through an outbox (Created -> Sent) and hands them to a
// transport adapter; a destination validates incoming messages exactly
// once and delivers them to the receiving contract.
package gateway

import (
	"context"
	"errors"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/luxfi/ids"
	"github.com/luxfi/log"

	"github.com/luxfi/gateway/chains"
	"github.com/luxfi/gateway/ledger"
	"github.com/luxfi/gateway/types"
)

// Source is the public entry point for applications submitting
// cross-chain messages. All state lives in the outbox it exclusively
// owns.
type Source struct {
	log      log.Logger
	chain    chains.ChainID
	registry *Registry
	adapter  Adapter
	events   Events
	outbox   *ledger.Outbox
}

// SourceConfig configures a gateway source.
type SourceConfig struct {
	Log      log.Logger
	Chain    chains.ChainID
	Registry *Registry
	Adapter  Adapter
	Events   Events
}

// NewSource creates a gateway source for the local chain.
func NewSource(cfg SourceConfig) (*Source, error) {
	if err := cfg.Chain.Validate(); err != nil {
		return nil, err
	}
	if cfg.Registry == nil {
		return nil, errors.New("no registry configured")
	}
	if cfg.Adapter == nil {
		return nil, errors.New("no transport adapter configured")
	}
	events := cfg.Events
	if events == nil {
		events = NoopEvents{}
	}
	return &Source{
		log:      cfg.Log,
		chain:    cfg.Chain,
		registry: cfg.Registry,
		adapter:  cfg.Adapter,
		events:   events,
		outbox:   ledger.NewOutbox(),
	}, nil
}

// Chain returns the local chain identifier.
func (s *Source) Chain() chains.ChainID {
	return s.chain
}

// SupportsAttribute reports whether the configured transport can honor
// the attribute selector.
func (s *Source) SupportsAttribute(sel types.Selector) bool {
	return s.adapter.SupportsAttribute(sel)
}

// MessageStatus returns the outbox lifecycle state of a message.
func (s *Source) MessageStatus(id ids.ID) ledger.OutboxStatus {
	return s.outbox.Status(id)
}

// Message returns the outbox entry for a message ID.
func (s *Source) Message(id ids.ID) (ledger.OutboxEntry, error) {
	return s.outbox.Get(id)
}

// PendingMessages returns the IDs of messages still awaiting a finalize
// step.
func (s *Source) PendingMessages() []ids.ID {
	return s.outbox.Pending()
}

// SendMessage validates and records a new outgoing message bound to the
// sender, and returns its content-addressed identifier. Attribute and
// value support are checked before any state is written. With a
// synchronous transport the message is relayed inline and comes out
// already Sent; otherwise it stays Created until Finalize.
func (s *Source) SendMessage(
	ctx context.Context,
	sender []byte,
	destination chains.ChainID,
	receiver []byte,
	payload []byte,
	value *uint256.Int,
	attributes []types.Attribute,
) (ids.ID, error) {
	for _, attr := range attributes {
		if !s.adapter.SupportsAttribute(attr.Selector) {
			return ids.Empty, fmt.Errorf("%w: %s", ErrUnsupportedAttribute, attr.Selector)
		}
	}
	if value != nil && !value.IsZero() && !s.adapter.SupportsValue() {
		return ids.Empty, fmt.Errorf("%w: transport %s", ErrValueNotSupported, s.adapter.Name())
	}

	remote, ok := s.registry.RemoteGateway(destination)
	if !ok {
		return ids.Empty, fmt.Errorf("%w: %s", ErrUnregisteredRoute, destination)
	}

	msg, err := types.NewMessage(s.chain, destination, sender, receiver, payload, attributes)
	if err != nil {
		return ids.Empty, err
	}
	id := msg.ID()

	pending := s.adapter.RequiresFinalize()
	if _, err := s.outbox.Create(id, msg, pending); err != nil {
		return ids.Empty, err
	}
	s.log.Debug("created message",
		log.Stringer("id", id),
		log.Stringer("destination", destination),
	)

	if pending {
		s.events.MessageCreated(id, msg)
		return id, nil
	}

	// Synchronous transport: relay inside the send, undoing the creation
	// if the network call fails so the whole operation commits or none
	// of it does. Events fire only once the entry is durable, so a sink
	// never observes a message the ledger rolled back.
	relaySeq, err := s.adapter.Send(ctx, &SendRequest{
		ID:            id,
		Message:       msg,
		RemoteGateway: remote,
	}, FinalizeParams{Value: value})
	if err != nil {
		_ = s.outbox.Remove(id)
		return ids.Empty, fmt.Errorf("transport send failed: %w", err)
	}
	if err := s.outbox.MarkSent(id, relaySeq); err != nil {
		return ids.Empty, err
	}
	s.events.MessageCreated(id, msg)
	s.events.MessageSent(id)
	return id, nil
}

// Finalize hands a Created message to the transport adapter, paying
// relay fees and fixing execution parameters. Callable once per message;
// a failed network call leaves the message Created.
func (s *Source) Finalize(ctx context.Context, id ids.ID, params FinalizeParams) error {
	entry, err := s.outbox.Get(id)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrCannotFinalize, id)
	}
	if entry.Status != ledger.OutboxCreated || entry.Sequence == 0 {
		return fmt.Errorf("%w: %s is %s", ErrCannotFinalize, id, entry.Status)
	}

	remote, ok := s.registry.RemoteGateway(entry.Message.DestinationChain)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnregisteredRoute, entry.Message.DestinationChain)
	}

	relaySeq, err := s.adapter.Send(ctx, &SendRequest{
		ID:            id,
		Message:       entry.Message,
		RemoteGateway: remote,
	}, params)
	if err != nil {
		return fmt.Errorf("transport send failed: %w", err)
	}

	if err := s.outbox.MarkSent(id, relaySeq); err != nil {
		return err
	}
	s.events.MessageSent(id)
	s.log.Info("finalized message",
		log.Stringer("id", id),
		log.Uint64("relaySequence", relaySeq),
	)
	return nil
}

// Retry re-issues the finalize step for a message that was already
// handed to the relay network but not delivered. The message keeps its
// identifier and relay sequence; no new outbox entry is created.
func (s *Source) Retry(ctx context.Context, id ids.ID, params FinalizeParams) error {
	entry, err := s.outbox.Get(id)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrCannotRetry, id)
	}
	if entry.Status != ledger.OutboxSent || entry.Sequence == 0 {
		return fmt.Errorf("%w: %s is %s", ErrCannotRetry, id, entry.Status)
	}

	remote, ok := s.registry.RemoteGateway(entry.Message.DestinationChain)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnregisteredRoute, entry.Message.DestinationChain)
	}

	if _, err := s.adapter.Send(ctx, &SendRequest{
		ID:            id,
		Message:       entry.Message,
		RemoteGateway: remote,
	}, params); err != nil {
		return fmt.Errorf("transport send failed: %w", err)
	}
	s.log.Info("retried message", log.Stringer("id", id))
	return nil
}
