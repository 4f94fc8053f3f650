// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package gateway

import (
	"context"
	"sync"
	"testing"

	"github.com/luxfi/ids"
	"github.com/luxfi/log"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/gateway/chains"
	"github.com/luxfi/gateway/types"
)

var (
	testAdmin    = []byte{0xAD, 0x01}
	testSender   = []byte{0x5E, 0x4D, 0xE4}
	testReceiver = make([]byte, AddressLen)
	testRemote   = []byte{0x6A, 0x7E}
)

func init() {
	testReceiver[AddressLen-1] = 0x42
}

// testAdapter is an in-memory Adapter that records sends.
type testAdapter struct {
	name     string
	finalize bool
	value    bool
	attrs    map[types.Selector]struct{}
	sendErr  error

	mu   sync.Mutex
	sent []*SendRequest
	seq  uint64
}

func newTestAdapter(name string, finalize bool) *testAdapter {
	return &testAdapter{
		name:     name,
		finalize: finalize,
		attrs:    make(map[types.Selector]struct{}),
	}
}

func (a *testAdapter) Name() string           { return a.name }
func (a *testAdapter) RequiresFinalize() bool { return a.finalize }
func (a *testAdapter) SupportsValue() bool    { return a.value }

func (a *testAdapter) SupportsAttribute(sel types.Selector) bool {
	_, ok := a.attrs[sel]
	return ok
}

func (a *testAdapter) Send(_ context.Context, req *SendRequest, _ FinalizeParams) (uint64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.sendErr != nil {
		return 0, a.sendErr
	}
	a.sent = append(a.sent, req)
	a.seq++
	return a.seq, nil
}

func (a *testAdapter) sendCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.sent)
}

// echoReceiver records payloads and confirms every message.
type echoReceiver struct {
	mu       sync.Mutex
	payloads [][]byte
}

func (r *echoReceiver) ReceiveMessage(
	_ context.Context, _ ids.ID, _ chains.ChainID, _ []byte, payload []byte,
) (types.Selector, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.payloads = append(r.payloads, payload)
	return ReceiveConfirmation, nil
}

func newTestRegistry(t *testing.T, remoteChains ...chains.ChainID) *Registry {
	t.Helper()
	r := NewRegistry(log.NoLog{}, testAdmin)
	for _, c := range remoteChains {
		require.NoError(t, r.RegisterRemoteGateway(testAdmin, c, testRemote))
	}
	return r
}

func newTestSource(t *testing.T, adapter Adapter, remoteChains ...chains.ChainID) *Source {
	t.Helper()
	src, err := NewSource(SourceConfig{
		Log:      log.NoLog{},
		Chain:    chains.EVM(1),
		Registry: newTestRegistry(t, remoteChains...),
		Adapter:  adapter,
	})
	require.NoError(t, err)
	return src
}

func newTestDestination(t *testing.T, adapter Adapter, sourceChains ...chains.ChainID) *Destination {
	t.Helper()
	dst, err := NewDestination(DestinationConfig{
		Log:      log.NoLog{},
		Chain:    chains.EVM(42161),
		Registry: newTestRegistry(t, sourceChains...),
		Admin:    testAdmin,
	})
	require.NoError(t, err)
	if adapter != nil {
		require.NoError(t, dst.AddTrustedAdapter(testAdmin, adapter))
	}
	return dst
}
