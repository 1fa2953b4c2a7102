package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	bolt "go.etcd.io/bbolt"

	"go.smsbridge.org/internal/bridge"
	"go.smsbridge.org/internal/inspect"
	"go.smsbridge.org/internal/journal"
	"go.smsbridge.org/internal/pairing"
	"go.smsbridge.org/internal/server"
	"go.smsbridge.org/internal/sms"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
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
			j := journal.New(db)

			injector, err := sms.NewInjector(br, sms.Recorder(j), sms.LoggerDebug(loggerDebug))
			if err != nil {
				return err
			}
			pairingService, err := pairing.NewService(br,
				pairing.LoggerInfo(loggerInfo),
				pairing.LoggerDebug(loggerDebug),
				pairing.OnFinish(server.PairingSessionFinished),
			)
			if err != nil {
				return err
			}
			srv, err := server.New(br, injector, pairingService, appVersion,
				server.Inspector(inspect.NewInspector(loggerDebug)),
				server.History(j),
				server.Maintenance(cfg.Maintenance),
				server.PairingTimeout(cfg.PairingTimeout),
				server.LoggerInfo(loggerInfo),
				server.LoggerDebug(loggerDebug),
			)
			if err != nil {
				return err
			}

			if cfg.AutoConnect {
				autoConnect(br)
			}
			return srv.ListenAndServe(cfg.Listen)
		},
	}
}

// autoConnect tries to reach the configured default device once at startup.
// Failures are logged, never fatal: the server is useful without a device.
func autoConnect(br *bridge.Bridge) {
	loggerInfo.Printf("auto-connecting to %s", cfg.DefaultDevice)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	result, err := br.Connect(ctx, cfg.DefaultDevice, 0, false)
	if err != nil {
		loggerInfo.Println("auto-connect failed:", err)
		return
	}
	if bridge.Connected(result) {
		loggerInfo.Println("ADB is now connected to device")
	} else {
		loggerInfo.Printf("auto-connect rejected: %s", result.Stdout)
	}
}
