// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package gateway

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/luxfi/ids"
	"github.com/luxfi/log"
	"github.com/luxfi/math/set"

	"github.com/luxfi/gateway/chains"
	"github.com/luxfi/gateway/ledger"
	"github.com/luxfi/gateway/types"
)

// Destination is the public entry point invoked when a message arrives
// on this chain. It owns the inbox, authenticates the calling transport
// and the remote gateway, and delivers to the receiving contract exactly
// once per message ID.
type Destination struct {
	log      log.Logger
	chain    chains.ChainID
	registry *Registry
	admin    []byte
	events   Events
	inbox    *ledger.Inbox

	mu        sync.RWMutex
	trusted   set.Set[string]
	receivers map[[PackedEntityLen]byte]Receiver
	bindings  map[[PackedEntityLen]byte]Binding
}

// DestinationConfig configures a gateway destination.
type DestinationConfig struct {
	Log      log.Logger
	Chain    chains.ChainID
	Registry *Registry
	Admin    []byte
	Events   Events
}

// NewDestination creates a gateway destination for the local chain.
func NewDestination(cfg DestinationConfig) (*Destination, error) {
	if err := cfg.Chain.Validate(); err != nil {
		return nil, err
	}
	if cfg.Registry == nil {
		return nil, errors.New("no registry configured")
	}
	events := cfg.Events
	if events == nil {
		events = NoopEvents{}
	}
	return &Destination{
		log:       cfg.Log,
		chain:     cfg.Chain,
		registry:  cfg.Registry,
		admin:     cfg.Admin,
		events:    events,
		inbox:     ledger.NewInbox(),
		trusted:   set.NewSet[string](4),
		receivers: make(map[[PackedEntityLen]byte]Receiver),
		bindings:  make(map[[PackedEntityLen]byte]Binding),
	}, nil
}

// Chain returns the local chain identifier.
func (d *Destination) Chain() chains.ChainID {
	return d.chain
}

// MessageStatus returns the inbox lifecycle state of a message.
func (d *Destination) MessageStatus(id ids.ID) ledger.InboxStatus {
	return d.inbox.Status(id)
}

// AddTrustedAdapter marks a transport adapter as allowed to deliver
// messages into this destination. Administrator only.
func (d *Destination) AddTrustedAdapter(caller []byte, adapter Adapter) error {
	if !bytes.Equal(caller, d.admin) {
		return fmt.Errorf("%w: caller %x", ErrUnauthorized, caller)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.trusted.Add(adapter.Name())
	d.log.Info("trusted transport adapter", log.String("adapter", adapter.Name()))
	return nil
}

// BindReceiver registers the application contract living at addr.
// Passive-only receivers refuse active execution and must validate
// deliveries through ValidateReceivedMessage themselves.
func (d *Destination) BindReceiver(addr []byte, passiveOnly bool, r Receiver) error {
	entity, err := entityForAddress(addr)
	if err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	key := entity.Pack()
	if _, ok := d.bindings[key]; ok {
		return fmt.Errorf("receiver already bound at %x", addr)
	}
	d.bindings[key] = Binding{Entity: entity, PassiveOnly: passiveOnly}
	if r != nil {
		d.receivers[key] = r
	}
	return nil
}

// PassiveOnly reports whether the receiver at addr accepts deliveries
// only through the passive validation path. Unbound addresses report
// false; the active path fails on them later with a plain call failure.
func (d *Destination) PassiveOnly(addr []byte) bool {
	entity, err := entityForAddress(addr)
	if err != nil {
		return false
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	binding, ok := d.bindings[entity.Pack()]
	return ok && binding.PassiveOnly
}

// ExecuteMessage is the active-mode delivery path: a trusted transport
// adapter proves a message from a registered remote gateway, and
// delivery and execution collapse into one atomic step. The Executed
// state commits before the receiver callback runs, so a reentrant
// delivery of the same message fails as a replay. Returns the
// confirmation selector on success.
func (d *Destination) ExecuteMessage(
	ctx context.Context,
	caller Adapter,
	remoteGateway []byte,
	key ids.ID,
	source chains.ChainID,
	sender []byte,
	receiver []byte,
	payload []byte,
	attributes []types.Attribute,
) (types.Selector, error) {
	msg, id, err := d.authenticate(caller, remoteGateway, key, source, sender, receiver, payload, attributes)
	if err != nil {
		return types.Selector{}, err
	}

	d.mu.RLock()
	entity, entityErr := entityForAddress(receiver)
	var (
		rcv     Receiver
		binding Binding
		bound   bool
	)
	if entityErr == nil {
		binding, bound = d.bindings[entity.Pack()]
		rcv = d.receivers[entity.Pack()]
	}
	d.mu.RUnlock()

	// An unbound address has no code to call; this is a plain low-level
	// failure, not a gateway condition, and the ledger is untouched.
	if !bound || rcv == nil {
		return types.Selector{}, fmt.Errorf("call to receiver %x failed: no code", receiver)
	}
	if binding.PassiveOnly {
		return types.Selector{}, fmt.Errorf("%w: %x accepts passive delivery only", ErrInvalidReceiver, receiver)
	}

	prev, err := d.inbox.Execute(id, msg)
	if err != nil {
		return types.Selector{}, err
	}

	confirmation, err := rcv.ReceiveMessage(ctx, id, source, sender, payload)
	if err != nil {
		d.inbox.Rollback(id, prev)
		return types.Selector{}, fmt.Errorf("%w: %v", ErrReceiverExecution, err)
	}
	if confirmation != ReceiveConfirmation {
		d.inbox.Rollback(id, prev)
		return types.Selector{}, fmt.Errorf("%w: bad confirmation %s", ErrReceiverExecution, confirmation)
	}

	d.events.MessageExecuted(id)
	d.log.Info("executed message",
		log.Stringer("id", id),
		log.Stringer("source", source),
	)
	return ReceiveConfirmation, nil
}

// RecordMessage is the passive-mode delivery path: a trusted transport
// adapter records a proven message as Delivered without executing it.
// Redelivery reverts with the replay error so the caller gets clear
// feedback.
func (d *Destination) RecordMessage(
	ctx context.Context,
	caller Adapter,
	remoteGateway []byte,
	key ids.ID,
	source chains.ChainID,
	sender []byte,
	receiver []byte,
	payload []byte,
	attributes []types.Attribute,
) error {
	msg, id, err := d.authenticate(caller, remoteGateway, key, source, sender, receiver, payload, attributes)
	if err != nil {
		return err
	}

	if err := d.inbox.Deliver(id, msg); err != nil {
		return err
	}
	d.log.Debug("recorded message", log.Stringer("id", id))
	return nil
}

// ValidateReceivedMessage lets the intended receiver consume a Delivered
// message: the caller presents the message content it was handed
// off-gateway, and the gateway checks it against the recorded entry
// before committing Executed. Callable only by the receiver the message
// names.
func (d *Destination) ValidateReceivedMessage(
	ctx context.Context,
	caller []byte,
	key ids.ID,
	source chains.ChainID,
	sender []byte,
	payload []byte,
	attributes []types.Attribute,
) error {
	entry, err := d.inbox.Get(key)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidMessageKey, key)
	}
	if !bytes.Equal(caller, entry.Message.Receiver) {
		return fmt.Errorf("%w: caller %x", ErrInvalidReceiver, caller)
	}

	// The presented content must reproduce the recorded digest.
	msg, err := types.NewMessage(source, d.chain, sender, caller, payload, attributes)
	if err != nil {
		return err
	}
	if msg.ID() != key {
		return fmt.Errorf("%w: content mismatch for %s", ErrInvalidMessageKey, key)
	}

	if _, err := d.inbox.Execute(key, entry.Message); err != nil {
		return err
	}
	d.events.MessageExecuted(key)
	d.log.Info("validated message", log.Stringer("id", key))
	return nil
}

// authenticate runs the shared delivery checks: trusted adapter,
// registered and matching remote gateway, and a key consistent with the
// recomputed content digest. The zero key means the transport carries no
// key and the digest stands alone.
func (d *Destination) authenticate(
	caller Adapter,
	remoteGateway []byte,
	key ids.ID,
	source chains.ChainID,
	sender []byte,
	receiver []byte,
	payload []byte,
	attributes []types.Attribute,
) (*types.Message, ids.ID, error) {
	if caller == nil {
		return nil, ids.Empty, fmt.Errorf("%w: nil adapter", ErrInvalidGateway)
	}
	d.mu.RLock()
	ok := d.trusted.Contains(caller.Name())
	d.mu.RUnlock()
	if !ok {
		return nil, ids.Empty, fmt.Errorf("%w: adapter %s", ErrInvalidGateway, caller.Name())
	}

	expected, ok := d.registry.RemoteGateway(source)
	if !ok {
		return nil, ids.Empty, fmt.Errorf("%w: %s", ErrUnregisteredRoute, source)
	}
	if !bytes.Equal(remoteGateway, expected) {
		return nil, ids.Empty, fmt.Errorf("%w: remote %x", ErrInvalidGateway, remoteGateway)
	}

	msg, err := types.NewMessage(source, d.chain, sender, receiver, payload, attributes)
	if err != nil {
		return nil, ids.Empty, err
	}
	id := msg.ID()
	if key != ids.Empty && key != id {
		return nil, ids.Empty, fmt.Errorf("%w: key %s does not match content %s", ErrInvalidMessageKey, key, id)
	}
	return msg, id, nil
}

func entityForAddress(addr []byte) (ModuleEntity, error) {
	if len(addr) != AddressLen {
		return ModuleEntity{}, fmt.Errorf("%w: address length %d", ErrInvalidEntity, len(addr))
	}
	var entity ModuleEntity
	copy(entity.Address[:], addr)
	return entity, nil
}
