// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package chains implements the interoperable chain and account identifier
// formats used to address cross-chain messages: CAIP-2 chain identifiers,
// CAIP-10 accounts, and the fixed-width packed binary forms used as
// storage keys.
package chains

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	// MinNamespaceLen and MaxNamespaceLen bound the CAIP-2 namespace.
	MinNamespaceLen = 3
	MaxNamespaceLen = 8

	// MinReferenceLen and MaxReferenceLen bound the CAIP-2 reference.
	MinReferenceLen = 1
	MaxReferenceLen = 32

	// KeyLen is the size of the packed binary form of a ChainID:
	// 1 byte namespace length, 8 bytes namespace (zero padded),
	// 1 byte reference length, 32 bytes reference (zero padded).
	KeyLen = 1 + MaxNamespaceLen + 1 + MaxReferenceLen
)

var (
	ErrInvalidChainID   = errors.New("invalid chain identifier")
	ErrInvalidAccount   = errors.New("invalid account identifier")
	ErrInvalidChainKey  = errors.New("invalid chain key")
	ErrUnknownChainType = errors.New("unknown chain type")
)

// ChainID identifies a blockchain in CAIP-2 form: a short namespace
// (e.g. "eip155") and a reference (e.g. the numeric chain ID).
type ChainID struct {
	Namespace string
	Reference string
}

// Key is the fixed-width packed binary form of a ChainID. It is comparable
// and round-trips losslessly with the structured form; all padding bytes
// are zero.
type Key [KeyLen]byte

// EVM returns the ChainID for an EVM chain with the given numeric chain ID.
func EVM(chainID uint64) ChainID {
	return ChainID{Namespace: "eip155", Reference: strconv.FormatUint(chainID, 10)}
}

// String formats the chain ID as "namespace:reference".
// ParseChainID(c.String()) == c for every valid ChainID.
func (c ChainID) String() string {
	return c.Namespace + ":" + c.Reference
}

// Key packs the chain ID into its fixed-width binary form.
func (c ChainID) Key() Key {
	var k Key
	k[0] = byte(len(c.Namespace))
	copy(k[1:1+MaxNamespaceLen], c.Namespace)
	k[1+MaxNamespaceLen] = byte(len(c.Reference))
	copy(k[2+MaxNamespaceLen:], c.Reference)
	return k
}

// Validate checks the namespace and reference against the CAIP-2 grammar.
func (c ChainID) Validate() error {
	if len(c.Namespace) < MinNamespaceLen || len(c.Namespace) > MaxNamespaceLen {
		return fmt.Errorf("%w: namespace length %d outside [%d,%d]",
			ErrInvalidChainID, len(c.Namespace), MinNamespaceLen, MaxNamespaceLen)
	}
	for i := 0; i < len(c.Namespace); i++ {
		if !isNamespaceChar(c.Namespace[i]) {
			return fmt.Errorf("%w: namespace byte %q", ErrInvalidChainID, c.Namespace[i])
		}
	}
	if len(c.Reference) < MinReferenceLen || len(c.Reference) > MaxReferenceLen {
		return fmt.Errorf("%w: reference length %d outside [%d,%d]",
			ErrInvalidChainID, len(c.Reference), MinReferenceLen, MaxReferenceLen)
	}
	for i := 0; i < len(c.Reference); i++ {
		if !isReferenceChar(c.Reference[i]) {
			return fmt.Errorf("%w: reference byte %q", ErrInvalidChainID, c.Reference[i])
		}
	}
	return nil
}

// ParseChainID parses and validates a "namespace:reference" string. The
// first separator wins; the namespace is always shorter than the reference
// in practice.
func ParseChainID(s string) (ChainID, error) {
	c := ParseChainIDUnchecked(s)
	if err := c.Validate(); err != nil {
		return ChainID{}, err
	}
	return c, nil
}

// ParseChainIDUnchecked splits a "namespace:reference" string at the first
// separator without any validation. This is the unsafe fast path: the
// result for malformed input (no separator, oversized components) is
// unspecified, and callers that cannot trust their input must use
// ParseChainID instead.
func ParseChainIDUnchecked(s string) ChainID {
	i := strings.IndexByte(s, ':')
	if i < 0 {
		return ChainID{Namespace: s}
	}
	return ChainID{Namespace: s[:i], Reference: s[i+1:]}
}

// ParseKey unpacks a packed chain key, rejecting out-of-range lengths and
// nonzero padding.
func ParseKey(k Key) (ChainID, error) {
	nsLen := int(k[0])
	refLen := int(k[1+MaxNamespaceLen])
	if nsLen < MinNamespaceLen || nsLen > MaxNamespaceLen {
		return ChainID{}, fmt.Errorf("%w: namespace length %d", ErrInvalidChainKey, nsLen)
	}
	if refLen < MinReferenceLen || refLen > MaxReferenceLen {
		return ChainID{}, fmt.Errorf("%w: reference length %d", ErrInvalidChainKey, refLen)
	}
	for _, b := range k[1+nsLen : 1+MaxNamespaceLen] {
		if b != 0 {
			return ChainID{}, fmt.Errorf("%w: nonzero namespace padding", ErrInvalidChainKey)
		}
	}
	for _, b := range k[2+MaxNamespaceLen+refLen:] {
		if b != 0 {
			return ChainID{}, fmt.Errorf("%w: nonzero reference padding", ErrInvalidChainKey)
		}
	}
	return ChainID{
		Namespace: string(k[1 : 1+nsLen]),
		Reference: string(k[2+MaxNamespaceLen : 2+MaxNamespaceLen+refLen]),
	}, nil
}

func isNamespaceChar(b byte) bool {
	return b == '-' || (b >= 'a' && b <= 'z') || (b >= '0' && b <= '9')
}

func isReferenceChar(b byte) bool {
	return b == '-' || b == '_' ||
		(b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}
