package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	bolt "go.etcd.io/bbolt"

	"go.smsbridge.org/internal/journal"
	"go.smsbridge.org/internal/sms"
)

func newSendCmd() *cobra.Command {
	var flagDevice string
	cmd := &cobra.Command{
		Use:   "send <phone-number> <message>",
		Short: "Send a text message through a connected device",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			br, err := newBridge()
			if err != nil {
				return err
			}
			db, err := bolt.Open(cfg.DBPath, 0o600, &bolt.Options{Timeout: time.Second})
			if err != nil {
				return err
			}
			defer func() {
				if err := db.Close(); err != nil {
					loggerInfo.Println("failed to close database:", err)
				}
			}()
			injector, err := sms.NewInjector(br, sms.Recorder(journal.New(db)), sms.LoggerDebug(loggerDebug))
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 60*time.Second)
			defer cancel()
			outcome, err := injector.SendText(ctx, args[0], args[1], flagDevice)
			if err != nil {
				return err
			}
			if !outcome.Success {
				return fmt.Errorf("device %s did not accept the message", outcome.DeviceID)
			}
			fmt.Printf("message sent through %s\n", outcome.DeviceID)
			return nil
		},
	}
	cmd.Flags().StringVar(&flagDevice, "device", "", "device to send through (defaults to the first ready device)")
	return cmd
}
