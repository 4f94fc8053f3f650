// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package config loads and validates the gateway service configuration
// from a config file, environment variables, and command line flags.
package config

import (
	"fmt"
	"time"

	"github.com/luxfi/geth/common"

	"github.com/luxfi/gateway/chains"
)

const (
	defaultLogLevel            = "info"
	defaultRelayInterval       = 5 * time.Second
	defaultRelayAttemptTimeout = 30 * time.Second
)

var supportedTransports = map[string]struct{}{
	"axelar":          {},
	"wormhole":        {},
	"layerzero":       {},
	"arbitrum-parent": {},
	"arbitrum-child":  {},
	"loopback":        {},
}

// RemoteGatewayConfig names the counterpart gateway contract on one
// remote chain.
type RemoteGatewayConfig struct {
	Chain   string `mapstructure:"chain" json:"chain"`
	Address string `mapstructure:"address" json:"address"`
}

// Config is the top-level gateway service configuration.
type Config struct {
	LogLevel            string                `mapstructure:"log-level" json:"log-level"`
	Chain               string                `mapstructure:"chain" json:"chain"`
	Transport           string                `mapstructure:"transport" json:"transport"`
	Admin               string                `mapstructure:"admin" json:"admin"`
	RemoteGateways      []RemoteGatewayConfig `mapstructure:"remote-gateways" json:"remote-gateways"`
	RelayInterval       time.Duration         `mapstructure:"relay-interval" json:"relay-interval"`
	RelayAttemptTimeout time.Duration         `mapstructure:"relay-attempt-timeout" json:"relay-attempt-timeout"`
}

// Validate checks every field that later construction relies on, so
// failures surface at startup rather than on the first message.
func (c *Config) Validate() error {
	if _, err := chains.ParseChainID(c.Chain); err != nil {
		return fmt.Errorf("invalid chain %q: %w", c.Chain, err)
	}
	if _, ok := supportedTransports[c.Transport]; !ok {
		return fmt.Errorf("unsupported transport %q", c.Transport)
	}
	if c.Admin == "" {
		return fmt.Errorf("admin address not set")
	}
	for _, remote := range c.RemoteGateways {
		if _, err := chains.ParseChainID(remote.Chain); err != nil {
			return fmt.Errorf("invalid remote gateway chain %q: %w", remote.Chain, err)
		}
		if len(common.FromHex(remote.Address)) == 0 {
			return fmt.Errorf("invalid remote gateway address %q", remote.Address)
		}
	}
	if c.RelayInterval <= 0 {
		return fmt.Errorf("relay interval must be positive")
	}
	if c.RelayAttemptTimeout <= 0 {
		return fmt.Errorf("relay attempt timeout must be positive")
	}
	return nil
}

// ChainID returns the parsed local chain. Call after Validate.
func (c *Config) ChainID() chains.ChainID {
	id, _ := chains.ParseChainID(c.Chain)
	return id
}

// AdminAddress returns the admin identity as raw bytes.
func (c *Config) AdminAddress() []byte {
	return common.FromHex(c.Admin)
}

// GatewayRoutes returns the parsed remote gateway table.
func (c *Config) GatewayRoutes() (map[chains.ChainID][]byte, error) {
	routes := make(map[chains.ChainID][]byte, len(c.RemoteGateways))
	for _, remote := range c.RemoteGateways {
		id, err := chains.ParseChainID(remote.Chain)
		if err != nil {
			return nil, err
		}
		if _, ok := routes[id]; ok {
			return nil, fmt.Errorf("duplicate remote gateway for %s", id)
		}
		routes[id] = common.FromHex(remote.Address)
	}
	return routes, nil
}
