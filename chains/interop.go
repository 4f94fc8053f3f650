// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chains

import (
	"encoding/binary"
	"fmt"
	"math/bits"
	"strconv"
	"sync"
)

// BinaryVersion is the version word of the binary interoperable address
// format.
const BinaryVersion uint16 = 1

// Binary interoperable address layout:
//
//	2 bytes  version (big endian)
//	2 bytes  chain type (big endian, registered per namespace)
//	1 byte   chain reference length
//	n bytes  chain reference (binary form)
//	1 byte   address length
//	m bytes  address
//
// The eip155 chain type encodes the reference as the minimal big-endian
// bytes of the decimal chain ID; other namespaces carry the reference
// string bytes verbatim.
const ChainTypeEVM uint16 = 0

// ChainTypeRegistry maps CAIP-2 namespaces to binary chain type codes
// and performs the binary codec under that mapping. Each instance owns
// its bindings; eip155 is preregistered.
type ChainTypeRegistry struct {
	mu          sync.RWMutex
	byNamespace map[string]uint16
	byType      map[uint16]string
}

func NewChainTypeRegistry() *ChainTypeRegistry {
	return &ChainTypeRegistry{
		byNamespace: map[string]uint16{"eip155": ChainTypeEVM},
		byType:      map[uint16]string{ChainTypeEVM: "eip155"},
	}
}

// RegisterChainType binds a CAIP-2 namespace to a binary chain type code.
// Rebinding an existing namespace or code is an error.
func (r *ChainTypeRegistry) RegisterChainType(namespace string, chainType uint16) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if ns, ok := r.byType[chainType]; ok && ns != namespace {
		return fmt.Errorf("chain type %d already bound to %q", chainType, ns)
	}
	if ct, ok := r.byNamespace[namespace]; ok && ct != chainType {
		return fmt.Errorf("namespace %q already bound to chain type %d", namespace, ct)
	}
	r.byNamespace[namespace] = chainType
	r.byType[chainType] = namespace
	return nil
}

// EncodeBinary serializes an account into the binary interoperable address
// format. The account's namespace must have a registered chain type.
func (r *ChainTypeRegistry) EncodeBinary(a Account) ([]byte, error) {
	r.mu.RLock()
	chainType, ok := r.byNamespace[a.Chain.Namespace]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: namespace %q", ErrUnknownChainType, a.Chain.Namespace)
	}

	ref, err := binaryReference(chainType, a.Chain.Reference)
	if err != nil {
		return nil, err
	}
	if len(a.Address) > 255 {
		return nil, fmt.Errorf("%w: address length %d", ErrInvalidAccount, len(a.Address))
	}

	out := make([]byte, 0, 6+len(ref)+len(a.Address))
	out = binary.BigEndian.AppendUint16(out, BinaryVersion)
	out = binary.BigEndian.AppendUint16(out, chainType)
	out = append(out, byte(len(ref)))
	out = append(out, ref...)
	out = append(out, byte(len(a.Address)))
	out = append(out, a.Address...)
	return out, nil
}

// DecodeBinary parses a binary interoperable address.
// DecodeBinary(EncodeBinary(a)) == a for every encodable account.
func (r *ChainTypeRegistry) DecodeBinary(b []byte) (Account, error) {
	if len(b) < 6 {
		return Account{}, fmt.Errorf("%w: %d bytes", ErrInvalidAccount, len(b))
	}
	if v := binary.BigEndian.Uint16(b[0:2]); v != BinaryVersion {
		return Account{}, fmt.Errorf("%w: version %d", ErrInvalidAccount, v)
	}
	chainType := binary.BigEndian.Uint16(b[2:4])

	r.mu.RLock()
	namespace, ok := r.byType[chainType]
	r.mu.RUnlock()
	if !ok {
		return Account{}, fmt.Errorf("%w: type %d", ErrUnknownChainType, chainType)
	}

	refLen := int(b[4])
	if len(b) < 5+refLen+1 {
		return Account{}, fmt.Errorf("%w: truncated reference", ErrInvalidAccount)
	}
	ref := b[5 : 5+refLen]
	addrLen := int(b[5+refLen])
	rest := b[6+refLen:]
	if len(rest) != addrLen {
		return Account{}, fmt.Errorf("%w: address length %d, have %d bytes", ErrInvalidAccount, addrLen, len(rest))
	}

	reference, err := referenceString(chainType, ref)
	if err != nil {
		return Account{}, err
	}
	addr := make([]byte, addrLen)
	copy(addr, rest)
	return Account{
		Chain:   ChainID{Namespace: namespace, Reference: reference},
		Address: addr,
	}, nil
}

func binaryReference(chainType uint16, reference string) ([]byte, error) {
	if chainType != ChainTypeEVM {
		if len(reference) > 255 {
			return nil, fmt.Errorf("%w: reference length %d", ErrInvalidChainID, len(reference))
		}
		return []byte(reference), nil
	}
	n, err := strconv.ParseUint(reference, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: eip155 reference %q", ErrInvalidChainID, reference)
	}
	size := (bits.Len64(n) + 7) / 8
	if size == 0 {
		size = 1
	}
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, n)
	return buf[8-size:], nil
}

func referenceString(chainType uint16, ref []byte) (string, error) {
	if chainType != ChainTypeEVM {
		return string(ref), nil
	}
	if len(ref) == 0 || len(ref) > 8 {
		return "", fmt.Errorf("%w: eip155 reference %d bytes", ErrInvalidChainID, len(ref))
	}
	var buf [8]byte
	copy(buf[8-len(ref):], ref)
	n := binary.BigEndian.Uint64(buf[:])
	return strconv.FormatUint(n, 10), nil
}
