// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package gateway

import (
	"testing"

	"github.com/luxfi/log"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/gateway/chains"
)

func TestRegistryRegisterAndLookup(t *testing.T) {
	r := NewRegistry(log.NoLog{}, testAdmin)

	_, ok := r.RemoteGateway(chains.EVM(10))
	require.False(t, ok)

	require.NoError(t, r.RegisterRemoteGateway(testAdmin, chains.EVM(10), testRemote))

	remote, ok := r.RemoteGateway(chains.EVM(10))
	require.True(t, ok)
	require.Equal(t, testRemote, remote)
}

func TestRegistryUnauthorized(t *testing.T) {
	r := NewRegistry(log.NoLog{}, testAdmin)

	err := r.RegisterRemoteGateway([]byte{0xBA, 0xD0}, chains.EVM(10), testRemote)
	require.ErrorIs(t, err, ErrUnauthorized)

	_, ok := r.RemoteGateway(chains.EVM(10))
	require.False(t, ok)
}

func TestRegistryRejectsRebinding(t *testing.T) {
	r := NewRegistry(log.NoLog{}, testAdmin)

	require.NoError(t, r.RegisterRemoteGateway(testAdmin, chains.EVM(10), testRemote))
	require.Error(t, r.RegisterRemoteGateway(testAdmin, chains.EVM(10), []byte{0x01}))
}

func TestRegistryRejectsInvalidInput(t *testing.T) {
	r := NewRegistry(log.NoLog{}, testAdmin)

	require.ErrorIs(t,
		r.RegisterRemoteGateway(testAdmin, chains.ChainID{Namespace: "x"}, testRemote),
		chains.ErrInvalidChainID,
	)
	require.Error(t, r.RegisterRemoteGateway(testAdmin, chains.EVM(10), nil))
}
