// Package bridge shells out to the adb binary and owns the text contracts of
// its output: the device listing format, the connect/pair success signals, and
// the process invocation itself.
package bridge

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"go.smsbridge.org/internal/errorbehavior"
)

const (
	// DefaultPort is the TCP port adb listens on after "tcpip".
	DefaultPort = 5555

	defaultTimeout = 10 * time.Second
)

// Bridge runs adb commands as external processes. The binary path and default
// port are read-only after construction, so a single Bridge is safe for
// concurrent use; every call spawns a fresh process.
type Bridge struct {
	path        string
	port        int
	timeout     time.Duration
	loggerDebug *log.Logger
}

type bridgeConfig struct {
	port        int
	timeout     time.Duration
	loggerDebug *log.Logger
}

func Port(p int) func(c *bridgeConfig) error {
	return func(c *bridgeConfig) error {
		if p <= 0 || p > 65535 {
			return fmt.Errorf("port %d out of range", p)
		}
		c.port = p
		return nil
	}
}

func DefaultTimeout(d time.Duration) func(c *bridgeConfig) error {
	return func(c *bridgeConfig) error {
		if d <= 0 {
			return fmt.Errorf("timeout must be positive")
		}
		c.timeout = d
		return nil
	}
}

func LoggerDebug(l *log.Logger) func(c *bridgeConfig) error {
	return func(c *bridgeConfig) error {
		c.loggerDebug = l
		return nil
	}
}

// New validates the adb binary path and returns a Bridge. A missing binary is
// a server configuration error, reported immediately as ErrExecutableNotFound.
func New(path string, options ...func(*bridgeConfig) error) (*Bridge, error) {
	config := bridgeConfig{
		port:        DefaultPort,
		timeout:     defaultTimeout,
		loggerDebug: log.New(io.Discard, "", 0),
	}
	for _, option := range options {
		if err := option(&config); err != nil {
			return nil, fmt.Errorf("config error: %s", err)
		}
	}
	if _, err := os.Stat(path); err != nil {
		return nil, errorbehavior.WrapNonRetryable(fmt.Errorf("%w: %s", ErrExecutableNotFound, path))
	}
	return &Bridge{
		path:        path,
		port:        config.port,
		timeout:     config.timeout,
		loggerDebug: config.loggerDebug,
	}, nil
}

// Path returns the validated binary path.
func (b *Bridge) Path() string {
	return b.path
}

// Port returns the configured TCP port for network mode.
func (b *Bridge) Port() int {
	return b.port
}
