// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package types defines the cross-chain message model shared by the
// gateway source and destination: the message content, its attributes,
// and the content-addressed message identifier that keys both ledgers.
package types

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/luxfi/crypto"
	"github.com/luxfi/geth/rlp"
	"github.com/luxfi/ids"

	"github.com/luxfi/gateway/chains"
)

// MaxPayloadSize bounds the message payload.
const MaxPayloadSize = 256 * 1024

var ErrInvalidMessage = errors.New("invalid message")

// SelectorLen is the length of an attribute selector.
const SelectorLen = 4

// Selector identifies an attribute kind (or a receiver confirmation
// value) by its leading four bytes.
type Selector [SelectorLen]byte

// SelectorFromSignature derives a selector from a human-readable
// signature, e.g. "minGasLimit(uint64)".
func SelectorFromSignature(sig string) Selector {
	h := crypto.Keccak256([]byte(sig))
	var s Selector
	copy(s[:], h[:SelectorLen])
	return s
}

func (s Selector) String() string {
	return "0x" + hex.EncodeToString(s[:])
}

// Attribute is an optional, transport-interpreted message property:
// a selector plus its encoded arguments.
type Attribute struct {
	Selector Selector
	Args     []byte
}

// Message is the content of a cross-chain message. Sender and Receiver
// are chain-native address bytes on the source and destination chain
// respectively.
type Message struct {
	SourceChain      chains.ChainID
	DestinationChain chains.ChainID
	Sender           []byte
	Receiver         []byte
	Payload          []byte
	Attributes       []Attribute
}

// NewMessage creates and verifies a message.
func NewMessage(
	source, destination chains.ChainID,
	sender, receiver, payload []byte,
	attributes []Attribute,
) (*Message, error) {
	msg := &Message{
		SourceChain:      source,
		DestinationChain: destination,
		Sender:           sender,
		Receiver:         receiver,
		Payload:          payload,
		Attributes:       attributes,
	}
	if err := msg.Verify(); err != nil {
		return nil, err
	}
	return msg, nil
}

// Verify verifies the message content.
func (m *Message) Verify() error {
	if err := m.SourceChain.Validate(); err != nil {
		return fmt.Errorf("%w: source chain: %v", ErrInvalidMessage, err)
	}
	if err := m.DestinationChain.Validate(); err != nil {
		return fmt.Errorf("%w: destination chain: %v", ErrInvalidMessage, err)
	}
	if len(m.Sender) == 0 {
		return fmt.Errorf("%w: empty sender", ErrInvalidMessage)
	}
	if len(m.Receiver) == 0 {
		return fmt.Errorf("%w: empty receiver", ErrInvalidMessage)
	}
	if len(m.Payload) > MaxPayloadSize {
		return fmt.Errorf("%w: payload size %d exceeds maximum %d",
			ErrInvalidMessage, len(m.Payload), MaxPayloadSize)
	}
	return nil
}

// digest is the canonical serialization the message ID commits to. Chain
// identifiers go in packed key form so the digest is independent of any
// textual formatting.
type digest struct {
	SourceChain      []byte
	DestinationChain []byte
	Sender           []byte
	Receiver         []byte
	Payload          []byte
	Attributes       []Attribute
}

// ID returns the content-addressed message identifier: the Keccak-256
// hash of the canonical encoding of (source chain, destination chain,
// sender, receiver, payload, attributes). Every gateway instance computes
// the same ID for the same logical message.
func (m *Message) ID() ids.ID {
	src := m.SourceChain.Key()
	dst := m.DestinationChain.Key()
	b, err := rlp.EncodeToBytes(&digest{
		SourceChain:      src[:],
		DestinationChain: dst[:],
		Sender:           m.Sender,
		Receiver:         m.Receiver,
		Payload:          m.Payload,
		Attributes:       m.Attributes,
	})
	if err != nil {
		// All digest fields are RLP-encodable byte strings.
		panic(err)
	}
	var id ids.ID
	copy(id[:], crypto.Keccak256(b))
	return id
}

// SenderAccount returns the sender as a chain-qualified account.
func (m *Message) SenderAccount() chains.Account {
	return chains.Account{Chain: m.SourceChain, Address: m.Sender}
}

// ReceiverAccount returns the receiver as a chain-qualified account.
func (m *Message) ReceiverAccount() chains.Account {
	return chains.Account{Chain: m.DestinationChain, Address: m.Receiver}
}
