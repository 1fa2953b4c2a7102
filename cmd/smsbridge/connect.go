package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"go.smsbridge.org/internal/bridge"
)

func newConnectCmd() *cobra.Command {
	var (
		flagPort      int
		flagSkipTCPIP bool
	)
	cmd := &cobra.Command{
		Use:   "connect <address>",
		Short: "Connect to a device over the network",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			br, err := newBridge()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 60*time.Second)
			defer cancel()
			result, err := br.Connect(ctx, args[0], flagPort, flagSkipTCPIP)
			if err != nil {
				return err
			}
			if !bridge.Connected(result) {
				return fmt.Errorf("connection failed: %s", result.Stdout)
			}
			fmt.Println("connected to", args[0])
			return nil
		},
	}
	cmd.Flags().IntVar(&flagPort, "port", 0, "device port (defaults to the configured adb port)")
	cmd.Flags().BoolVar(&flagSkipTCPIP, "skip-tcpip", false, "do not restart network mode first")
	return cmd
}

func newKillServerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "kill-server",
		Short: "Terminate the background adb server process",
		RunE: func(cmd *cobra.Command, args []string) error {
			br, err := newBridge()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			if err := br.KillServer(ctx); err != nil {
				return err
			}
			fmt.Println("ADB server has been terminated")
			return nil
		},
	}
}
