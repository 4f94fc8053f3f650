// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package types

import (
	"fmt"

	"github.com/luxfi/geth/rlp"
	"github.com/luxfi/ids"
)

// Envelope is the wire form a transport adapter carries across a relay
// network. The source chain travels out of band in the network's native
// chain encoding; everything else rides in the envelope.
type Envelope struct {
	ID         ids.ID
	Sender     []byte
	Receiver   []byte
	Payload    []byte
	Attributes []Attribute
}

// NewEnvelope wraps a message and its precomputed identifier.
func NewEnvelope(id ids.ID, msg *Message) *Envelope {
	return &Envelope{
		ID:         id,
		Sender:     msg.Sender,
		Receiver:   msg.Receiver,
		Payload:    msg.Payload,
		Attributes: msg.Attributes,
	}
}

// Bytes returns the RLP encoding of the envelope.
func (e *Envelope) Bytes() []byte {
	b, err := rlp.EncodeToBytes(e)
	if err != nil {
		panic(err)
	}
	return b
}

// ParseEnvelope decodes an envelope from its RLP encoding.
func ParseEnvelope(b []byte) (*Envelope, error) {
	e := &Envelope{}
	if err := rlp.DecodeBytes(b, e); err != nil {
		return nil, fmt.Errorf("failed to decode envelope: %w", err)
	}
	return e, nil
}
