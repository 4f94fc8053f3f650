// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/gateway/chains"
)

func validConfig() Config {
	return Config{
		LogLevel:  "info",
		Chain:     "eip155:1",
		Transport: "wormhole",
		Admin:     "0x00112233445566778899aabbccddeeff00112233",
		RemoteGateways: []RemoteGatewayConfig{
			{Chain: "eip155:43114", Address: "0xbbbb"},
		},
		RelayInterval:       5 * time.Second,
		RelayAttemptTimeout: 30 * time.Second,
	}
}

func TestValidate(t *testing.T) {
	cfg := validConfig()
	require.NoError(t, cfg.Validate())

	bad := validConfig()
	bad.Chain = "e:1"
	require.Error(t, bad.Validate())

	bad = validConfig()
	bad.Transport = "carrier-pigeon"
	require.Error(t, bad.Validate())

	bad = validConfig()
	bad.Admin = ""
	require.Error(t, bad.Validate())

	bad = validConfig()
	bad.RemoteGateways[0].Chain = "nope"
	require.Error(t, bad.Validate())

	bad = validConfig()
	bad.RelayInterval = 0
	require.Error(t, bad.Validate())
}

func TestGatewayRoutes(t *testing.T) {
	cfg := validConfig()
	routes, err := cfg.GatewayRoutes()
	require.NoError(t, err)
	require.Len(t, routes, 1)
	require.Equal(t, []byte{0xbb, 0xbb}, routes[chains.EVM(43114)])

	cfg.RemoteGateways = append(cfg.RemoteGateways, RemoteGatewayConfig{
		Chain: "eip155:43114", Address: "0xcccc",
	})
	_, err = cfg.GatewayRoutes()
	require.Error(t, err)
}

func TestBuildViperFromFile(t *testing.T) {
	content := `{
		"chain": "eip155:1",
		"transport": "axelar",
		"admin": "0x0011",
		"remote-gateways": [
			{"chain": "eip155:43114", "address": "0xbbbb"}
		]
	}`
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String(ConfigFileKey, "", "config file path")
	require.NoError(t, fs.Parse([]string{"--config-file", path}))

	v, err := BuildViper(fs)
	require.NoError(t, err)

	cfg, err := NewConfig(v)
	require.NoError(t, err)
	require.Equal(t, "eip155:1", cfg.Chain)
	require.Equal(t, "axelar", cfg.Transport)
	// Defaults fill the keys the file leaves out.
	require.Equal(t, defaultLogLevel, cfg.LogLevel)
	require.Equal(t, defaultRelayInterval, cfg.RelayInterval)
}

func TestBuildViperMissingConfigFile(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String(ConfigFileKey, "", "config file path")
	require.NoError(t, fs.Parse(nil))

	_, err := BuildViper(fs)
	require.Error(t, err)
}
