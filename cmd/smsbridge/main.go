// smsbridge turns an Android phone into a programmable SMS server: an HTTP
// API and CLI around adb for device management, wireless QR pairing, and
// sending text messages over the cellular network.
package main

import (
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"go.smsbridge.org/internal/bridge"
	"go.smsbridge.org/internal/config"
)

const appVersion = "0.1.0"

var (
	flagConfig string
	flagDebug  bool

	cfg         config.Config
	loggerInfo  *log.Logger
	loggerDebug *log.Logger
)

func main() {
	root := &cobra.Command{
		Use:           "smsbridge",
		Short:         "HTTP/CLI bridge to Android devices for sending SMS over adb",
		Version:       appVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load(flagConfig)
			if err != nil {
				return err
			}
			if flagDebug || cfg.Debug {
				loggerInfo = log.New(os.Stdout, "[INFO] ", log.Ldate|log.Ltime|log.Lmsgprefix)
				loggerDebug = log.New(os.Stdout, "[DEBUG] ", log.Ldate|log.Ltime|log.Lmsgprefix)
			} else {
				loggerInfo = log.New(os.Stdout, "", log.Ldate|log.Ltime)
				loggerDebug = log.New(io.Discard, "", 0)
			}
			return nil
		},
	}
	root.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config file")
	root.PersistentFlags().BoolVar(&flagDebug, "debug", false, "verbose output for debugging")
	root.AddCommand(
		newServeCmd(),
		newDevicesCmd(),
		newConnectCmd(),
		newKillServerCmd(),
		newSendCmd(),
		newPairCmd(),
	)
	if err := root.Execute(); err != nil {
		log.Println(err)
		os.Exit(1)
	}
}

func newBridge() (*bridge.Bridge, error) {
	return bridge.New(cfg.AdbPath, bridge.Port(cfg.AdbPort), bridge.LoggerDebug(loggerDebug))
}
