// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chains

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// Account globally names a sender or receiver across chains (CAIP-10):
// a ChainID plus the chain-native address bytes.
type Account struct {
	Chain   ChainID
	Address []byte
}

// String formats the account as "namespace:reference:0xaddress".
func (a Account) String() string {
	return a.Chain.String() + ":0x" + hex.EncodeToString(a.Address)
}

// ParseAccount parses and validates a "namespace:reference:0xaddress"
// string.
func ParseAccount(s string) (Account, error) {
	i := strings.LastIndexByte(s, ':')
	if i < 0 {
		return Account{}, fmt.Errorf("%w: no separator in %q", ErrInvalidAccount, s)
	}
	chain, err := ParseChainID(s[:i])
	if err != nil {
		return Account{}, err
	}
	addr := strings.TrimPrefix(s[i+1:], "0x")
	if len(addr) == 0 {
		return Account{}, fmt.Errorf("%w: empty address", ErrInvalidAccount)
	}
	b, err := hex.DecodeString(addr)
	if err != nil {
		return Account{}, fmt.Errorf("%w: %v", ErrInvalidAccount, err)
	}
	return Account{Chain: chain, Address: b}, nil
}
