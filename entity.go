// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package gateway

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// AddressLen is the length of an EVM-style account address.
const AddressLen = 20

var ErrInvalidEntity = errors.New("invalid packed entity")

// ModuleEntity is a compact key naming one entity of a local module:
// a 20-byte address plus a 32-bit entity ID. It packs into 24 bytes with
// the address in the leading bytes and the entity ID big endian in the
// trailing four.
type ModuleEntity struct {
	Address  [AddressLen]byte
	EntityID uint32
}

// PackedEntityLen is the size of a packed ModuleEntity.
const PackedEntityLen = AddressLen + 4

// Pack serializes the entity into its fixed-width form.
func (m ModuleEntity) Pack() [PackedEntityLen]byte {
	var out [PackedEntityLen]byte
	copy(out[:AddressLen], m.Address[:])
	binary.BigEndian.PutUint32(out[AddressLen:], m.EntityID)
	return out
}

// UnpackModuleEntity deserializes a packed entity. Packing and unpacking
// are bit-exact inverses.
func UnpackModuleEntity(b [PackedEntityLen]byte) ModuleEntity {
	var m ModuleEntity
	copy(m.Address[:], b[:AddressLen])
	m.EntityID = binary.BigEndian.Uint32(b[AddressLen:])
	return m
}

// Binding configures how one receiver entity accepts messages. The flag
// byte currently carries a single bit: PassiveOnly, set when the
// receiver insists on validating deliveries itself instead of accepting
// active execution from the gateway.
type Binding struct {
	Entity      ModuleEntity
	PassiveOnly bool
}

// PackedBindingLen is the size of a packed Binding: the packed entity
// followed by one flag byte.
const PackedBindingLen = PackedEntityLen + 1

const bindingFlagPassive = 1 << 0

// Pack serializes the binding into its fixed-width form.
func (b Binding) Pack() [PackedBindingLen]byte {
	var out [PackedBindingLen]byte
	packed := b.Entity.Pack()
	copy(out[:PackedEntityLen], packed[:])
	if b.PassiveOnly {
		out[PackedEntityLen] = bindingFlagPassive
	}
	return out
}

// UnpackBinding deserializes a packed binding, rejecting unknown flag
// bits so that every unused bit stays zero.
func UnpackBinding(raw [PackedBindingLen]byte) (Binding, error) {
	flags := raw[PackedEntityLen]
	if flags&^bindingFlagPassive != 0 {
		return Binding{}, fmt.Errorf("%w: flag byte %#02x", ErrInvalidEntity, flags)
	}
	var packed [PackedEntityLen]byte
	copy(packed[:], raw[:PackedEntityLen])
	return Binding{
		Entity:      UnpackModuleEntity(packed),
		PassiveOnly: flags&bindingFlagPassive != 0,
	}, nil
}
