package bridge

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
)

// Connect puts the currently attached device into network mode (unless
// skipTCPIPRestart is set, e.g. right after a wireless pairing handshake that
// already enabled it) and then connects to the device at address:port.
//
// A refused or failed connection is not an error: the Result is returned and
// Connected decides success. Only executor-level failures are errors.
func (b *Bridge) Connect(ctx context.Context, address string, port int, skipTCPIPRestart bool) (Result, error) {
	if !skipTCPIPRestart {
		if _, err := b.Execute(ctx, "tcpip", strconv.Itoa(b.port)); err != nil {
			return Result{}, fmt.Errorf("tcpip restart failed: %w", err)
		}
	}
	// An address may already carry a port ("192.168.1.147:5555").
	if !strings.Contains(address, ":") {
		if port == 0 {
			port = b.port
		}
		address = net.JoinHostPort(address, strconv.Itoa(port))
	}
	result, err := b.Execute(ctx, "connect", address)
	if err != nil {
		return Result{}, fmt.Errorf("connect failed: %w", err)
	}
	return result, nil
}

// Pair issues a wireless pairing request against a pairing endpoint using a
// one-time password. Success is decided by Paired on the returned Result.
func (b *Bridge) Pair(ctx context.Context, address string, port int, password string) (Result, error) {
	result, err := b.Execute(ctx, "pair", net.JoinHostPort(address, strconv.Itoa(port)), password)
	if err != nil {
		return Result{}, fmt.Errorf("pair failed: %w", err)
	}
	return result, nil
}

// KillServer terminates the background adb server process. Idempotent; output
// is discarded.
func (b *Bridge) KillServer(ctx context.Context) error {
	if _, err := b.Execute(ctx, "kill-server"); err != nil {
		return fmt.Errorf("kill-server failed: %w", err)
	}
	return nil
}
