package main

import (
	"context"
	"fmt"
	"time"

	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"
)

func newDevicesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "List attached and connected devices with their status",
		RunE: func(cmd *cobra.Command, args []string) error {
			br, err := newBridge()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			devices, err := br.Devices(ctx)
			if err != nil {
				return err
			}
			table := uitable.New()
			table.AddRow("DEVICE", "STATUS", "READY")
			for _, d := range devices {
				table.AddRow(d.ID, string(d.Status), fmt.Sprintf("%v", d.Status.Ready()))
			}
			fmt.Println(table)
			return nil
		},
	}
}
