// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package types

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/gateway/chains"
)

func testMessage(t *testing.T) *Message {
	t.Helper()
	msg, err := NewMessage(
		chains.EVM(1),
		chains.EVM(42161),
		[]byte{0x11, 0x11},
		[]byte{0x22, 0x22},
		[]byte{0xde, 0xad, 0xbe, 0xef},
		nil,
	)
	require.NoError(t, err)
	return msg
}

func TestMessageID(t *testing.T) {
	msg := testMessage(t)
	id := msg.ID()
	require.Len(t, id[:], 32)

	// Same content, same ID, regardless of which instance computes it.
	other := *msg
	require.Equal(t, id, other.ID())

	// Any content change produces a different ID.
	mutated := *msg
	mutated.Payload = []byte{0xde, 0xad, 0xbe, 0xee}
	require.NotEqual(t, id, mutated.ID())

	mutated = *msg
	mutated.DestinationChain = chains.EVM(10)
	require.NotEqual(t, id, mutated.ID())

	mutated = *msg
	mutated.Attributes = []Attribute{{Selector: Selector{1}, Args: []byte{0x01}}}
	require.NotEqual(t, id, mutated.ID())
}

func TestMessageVerify(t *testing.T) {
	msg := testMessage(t)
	require.NoError(t, msg.Verify())

	_, err := NewMessage(chains.ChainID{}, chains.EVM(1), []byte{1}, []byte{2}, nil, nil)
	require.ErrorIs(t, err, ErrInvalidMessage)

	_, err = NewMessage(chains.EVM(1), chains.EVM(2), nil, []byte{2}, nil, nil)
	require.ErrorIs(t, err, ErrInvalidMessage)

	_, err = NewMessage(chains.EVM(1), chains.EVM(2), []byte{1}, nil, nil, nil)
	require.ErrorIs(t, err, ErrInvalidMessage)

	_, err = NewMessage(chains.EVM(1), chains.EVM(2), []byte{1}, []byte{2}, make([]byte, MaxPayloadSize+1), nil)
	require.ErrorIs(t, err, ErrInvalidMessage)
}

func TestEnvelopeRoundTrip(t *testing.T) {
	msg := testMessage(t)
	msg.Attributes = []Attribute{
		{Selector: SelectorFromSignature("minGasLimit(uint64)"), Args: []byte{0x01, 0x02}},
	}
	env := NewEnvelope(msg.ID(), msg)

	parsed, err := ParseEnvelope(env.Bytes())
	require.NoError(t, err)
	require.Equal(t, env, parsed)

	_, err = ParseEnvelope([]byte{0xc0, 0xff, 0xee})
	require.Error(t, err)
}

func TestSelectorFromSignature(t *testing.T) {
	a := SelectorFromSignature("minGasLimit(uint64)")
	b := SelectorFromSignature("refundAddress(address)")
	require.NotEqual(t, a, b)
	require.Equal(t, a, SelectorFromSignature("minGasLimit(uint64)"))
	require.Len(t, a.String(), 2+2*SelectorLen)
}
