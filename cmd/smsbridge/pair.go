package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"go.smsbridge.org/internal/pairing"
)

func newPairCmd() *cobra.Command {
	var flagTimeout time.Duration
	cmd := &cobra.Command{
		Use:   "pair",
		Short: "Pair a new device wirelessly by scanning a QR code",
		RunE: func(cmd *cobra.Command, args []string) error {
			br, err := newBridge()
			if err != nil {
				return err
			}
			service, err := pairing.NewService(br,
				pairing.LoggerInfo(loggerInfo),
				pairing.LoggerDebug(loggerDebug),
			)
			if err != nil {
				return err
			}
			session, err := service.Start(flagTimeout)
			if err != nil {
				return err
			}
			art, err := session.RenderTerminal()
			if err != nil {
				return err
			}
			fmt.Println(art)
			fmt.Println(pairing.Instructions)
			fmt.Printf("Waiting up to %s...\n", session.Timeout)

			<-session.Done()
			if !session.Completed() {
				return fmt.Errorf("pairing session timed out; run pair again for a fresh code")
			}
			fmt.Println("Device paired and connected.")
			return nil
		},
	}
	cmd.Flags().DurationVar(&flagTimeout, "timeout", pairing.MaxTimeout, "how long to wait for the phone")
	return cmd
}
