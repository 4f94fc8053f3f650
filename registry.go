// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package gateway

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/luxfi/log"

	"github.com/luxfi/gateway/chains"
)

// Registry maps remote chains to the trusted gateway contract on each of
// them. Mutations are gated on the administrator account; reads are open
// to anyone. The source consults it before creating a message, the
// destination consults it to authenticate incoming senders.
type Registry struct {
	log   log.Logger
	admin []byte

	mu      sync.RWMutex
	remotes map[chains.Key][]byte
}

// NewRegistry creates a registry administered by the given account.
func NewRegistry(logger log.Logger, admin []byte) *Registry {
	return &Registry{
		log:     logger,
		admin:   admin,
		remotes: make(map[chains.Key][]byte),
	}
}

// RegisterRemoteGateway binds a chain to its trusted remote gateway
// address. Administrator only; rebinding an already registered chain is
// rejected.
func (r *Registry) RegisterRemoteGateway(caller []byte, chain chains.ChainID, remote []byte) error {
	if !bytes.Equal(caller, r.admin) {
		return fmt.Errorf("%w: caller %x", ErrUnauthorized, caller)
	}
	if err := chain.Validate(); err != nil {
		return err
	}
	if len(remote) == 0 {
		return fmt.Errorf("empty remote gateway for %s", chain)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := chain.Key()
	if _, ok := r.remotes[key]; ok {
		return fmt.Errorf("remote gateway already registered for %s", chain)
	}
	r.remotes[key] = remote

	r.log.Info("registered remote gateway",
		log.Stringer("chain", chain),
		log.String("remote", fmt.Sprintf("%x", remote)),
	)
	return nil
}

// RemoteGateway returns the trusted gateway address for a chain.
func (r *Registry) RemoteGateway(chain chains.ChainID) ([]byte, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	remote, ok := r.remotes[chain.Key()]
	return remote, ok
}
