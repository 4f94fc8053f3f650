// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/luxfi/ids"
	"github.com/luxfi/log"
	"github.com/spf13/cobra"

	"github.com/luxfi/gateway"
	"github.com/luxfi/gateway/chains"
	"github.com/luxfi/gateway/config"
	"github.com/luxfi/gateway/transport/loopback"
	"github.com/luxfi/gateway/types"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "gateway",
	Short: "Cross-chain message gateway CLI",
	Long: `Tools for working with cross-chain gateway messages: computing
message identifiers, inspecting chain identifiers, and exercising a full
send/receive round trip in process.`,
	Version: fmt.Sprintf("%s (built %s)", version, buildDate),
}

func init() {
	idCmd.Flags().String("source", "eip155:1", "CAIP-2 source chain")
	idCmd.Flags().String("dest", "eip155:43114", "CAIP-2 destination chain")
	idCmd.Flags().String("sender", "", "sender address (hex)")
	idCmd.Flags().String("receiver", "", "receiver address (hex)")
	idCmd.Flags().String("payload", "", "payload (hex)")

	chainCmd.Flags().String("chain", "", "CAIP-2 chain identifier")
	chainCmd.Flags().String("address", "", "optional account address (hex)")

	demoCmd.Flags().String("payload", "deadbeef", "payload to round-trip (hex)")

	checkConfigCmd.Flags().String(config.ConfigFileKey, "", "gateway config file (json)")

	rootCmd.AddCommand(idCmd)
	rootCmd.AddCommand(chainCmd)
	rootCmd.AddCommand(demoCmd)
	rootCmd.AddCommand(checkConfigCmd)
}

var checkConfigCmd = &cobra.Command{
	Use:   "check-config",
	Short: "Validate a gateway service configuration",
	Long:  `Load a gateway configuration file and report whether it is usable.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := config.BuildViper(cmd.Flags())
		if err != nil {
			return err
		}
		cfg, err := config.NewConfig(v)
		if err != nil {
			return err
		}
		routes, err := cfg.GatewayRoutes()
		if err != nil {
			return err
		}
		fmt.Printf("Configuration OK: chain %s, transport %s, %d remote gateway(s)\n",
			cfg.Chain, cfg.Transport, len(routes))
		return nil
	},
}

var idCmd = &cobra.Command{
	Use:   "id",
	Short: "Compute a message identifier",
	Long:  `Compute the content-addressed identifier of a cross-chain message.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		source, _ := cmd.Flags().GetString("source")
		dest, _ := cmd.Flags().GetString("dest")
		senderHex, _ := cmd.Flags().GetString("sender")
		receiverHex, _ := cmd.Flags().GetString("receiver")
		payloadHex, _ := cmd.Flags().GetString("payload")

		sourceID, err := chains.ParseChainID(source)
		if err != nil {
			return fmt.Errorf("invalid source chain: %w", err)
		}
		destID, err := chains.ParseChainID(dest)
		if err != nil {
			return fmt.Errorf("invalid destination chain: %w", err)
		}
		sender, err := hex.DecodeString(senderHex)
		if err != nil {
			return fmt.Errorf("invalid sender hex: %w", err)
		}
		receiver, err := hex.DecodeString(receiverHex)
		if err != nil {
			return fmt.Errorf("invalid receiver hex: %w", err)
		}
		payload, err := hex.DecodeString(payloadHex)
		if err != nil {
			return fmt.Errorf("invalid payload hex: %w", err)
		}

		msg, err := types.NewMessage(sourceID, destID, sender, receiver, payload, nil)
		if err != nil {
			return err
		}
		fmt.Printf("Message ID: %s\n", msg.ID())
		return nil
	},
}

var chainCmd = &cobra.Command{
	Use:   "chain",
	Short: "Inspect a chain identifier",
	Long:  `Parse a CAIP-2 chain identifier and print its packed and binary forms.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, _ := cmd.Flags().GetString("chain")
		addressHex, _ := cmd.Flags().GetString("address")

		id, err := chains.ParseChainID(raw)
		if err != nil {
			return err
		}
		address, err := hex.DecodeString(addressHex)
		if err != nil {
			return fmt.Errorf("invalid address hex: %w", err)
		}
		key := id.Key()
		binary, err := chains.NewChainTypeRegistry().EncodeBinary(chains.Account{Chain: id, Address: address})
		if err != nil {
			return err
		}

		fmt.Printf("Chain: %s\n", id)
		fmt.Printf("  Namespace: %s\n", id.Namespace)
		fmt.Printf("  Reference: %s\n", id.Reference)
		fmt.Printf("  Packed key: %x\n", key[:])
		fmt.Printf("  Interoperable address: %x\n", binary)
		return nil
	},
}

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run an in-process send/receive round trip",
	Long: `Wire a source and a destination gateway through the loopback
transport, send a message, and print each lifecycle step.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		payloadHex, _ := cmd.Flags().GetString("payload")
		payload, err := hex.DecodeString(payloadHex)
		if err != nil {
			return fmt.Errorf("invalid payload hex: %w", err)
		}

		admin := []byte("demo-admin")
		localGateway := []byte{0xaa, 0xaa}
		remoteGateway := []byte{0xbb, 0xbb}
		chainA := chains.EVM(1)
		chainB := chains.EVM(43114)

		transport := loopback.New(log.NoLog{}, localGateway)

		srcRegistry := gateway.NewRegistry(log.NoLog{}, admin)
		if err := srcRegistry.RegisterRemoteGateway(admin, chainB, remoteGateway); err != nil {
			return err
		}
		dstRegistry := gateway.NewRegistry(log.NoLog{}, admin)
		if err := dstRegistry.RegisterRemoteGateway(admin, chainA, localGateway); err != nil {
			return err
		}

		src, err := gateway.NewSource(gateway.SourceConfig{
			Log:      log.NoLog{},
			Chain:    chainA,
			Registry: srcRegistry,
			Adapter:  transport,
		})
		if err != nil {
			return err
		}
		dst, err := gateway.NewDestination(gateway.DestinationConfig{
			Log:      log.NoLog{},
			Chain:    chainB,
			Registry: dstRegistry,
			Admin:    admin,
		})
		if err != nil {
			return err
		}
		if err := dst.AddTrustedAdapter(admin, transport); err != nil {
			return err
		}
		transport.Bind(chainB, dst)

		receiver := make([]byte, gateway.AddressLen)
		receiver[19] = 0x01
		if err := dst.BindReceiver(receiver, false, printingReceiver{}); err != nil {
			return err
		}

		fmt.Printf("Sending %x from %s to %s\n", payload, chainA, chainB)
		id, err := src.SendMessage(
			context.Background(), []byte("demo-sender"), chainB, receiver, payload, nil, nil,
		)
		if err != nil {
			return err
		}
		fmt.Printf("Outbox: %s is %s\n", id, src.MessageStatus(id))
		fmt.Printf("Inbox:  %s is %s\n", id, dst.MessageStatus(id))
		return nil
	},
}

type printingReceiver struct{}

func (printingReceiver) ReceiveMessage(
	_ context.Context,
	id ids.ID,
	source chains.ChainID,
	sender []byte,
	payload []byte,
) (types.Selector, error) {
	fmt.Printf("Received %s from %s (sender %x): %x\n", id, source, sender, payload)
	return gateway.ReceiveConfirmation, nil
}
