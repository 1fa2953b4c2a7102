// Package pairing drives Android wireless-debugging QR pairing: it generates
// single-use credentials, renders them as a scannable code, listens for the
// phone's pairing advertisement over mDNS, and runs the pair+connect
// handshake in the background.
package pairing

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/grandcat/zeroconf"

	"go.smsbridge.org/internal/bridge"
)

const (
	// pairingServiceType is the well-known mDNS service type Android
	// advertises while the "pair device with QR code" screen is open.
	pairingServiceType = "_adb-tls-pairing._tcp"
	pairingDomain      = "local."

	// DefaultTimeout bounds a programmatic session; MaxTimeout bounds an
	// interactive one where an operator still has to reach for the phone.
	DefaultTimeout = 180 * time.Second
	MaxTimeout     = 300 * time.Second

	shutdownPollInterval = 500 * time.Millisecond
)

// Instructions is the operator-facing walkthrough printed next to the code.
const Instructions = `Scan the QR code from the phone:
Settings > Developer options > Wireless debugging > Pair device with QR code.
Keep the phone on the same Wi-Fi network as this server.
The code is single-use and expires when the session ends.`

// connector is the slice of *bridge.Bridge the handshake needs.
type connector interface {
	Pair(ctx context.Context, address string, port int, password string) (bridge.Result, error)
	Connect(ctx context.Context, address string, port int, skipTCPIPRestart bool) (bridge.Result, error)
}

// browseFunc subscribes entries to a service type until ctx is done. Swapped
// out in tests for a fake broadcaster.
type browseFunc func(ctx context.Context, service, domain string, entries chan<- *zeroconf.ServiceEntry) error

func zeroconfBrowse(ctx context.Context, service, domain string, entries chan<- *zeroconf.ServiceEntry) error {
	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return fmt.Errorf("zeroconf.NewResolver failed: %w", err)
	}
	return resolver.Browse(ctx, service, domain, entries)
}

// Service starts and supervises pairing sessions. Sessions are independent:
// one discovery browser and one worker goroutine each, no shared state.
type Service struct {
	connector   connector
	browse      browseFunc
	onFinish    func(state string)
	loggerInfo  *log.Logger
	loggerDebug *log.Logger
}

type serviceConfig struct {
	browse      browseFunc
	onFinish    func(state string)
	loggerInfo  *log.Logger
	loggerDebug *log.Logger
}

func Browser(b browseFunc) func(c *serviceConfig) error {
	return func(c *serviceConfig) error {
		c.browse = b
		return nil
	}
}

// OnFinish registers an observer called with the terminal state of every
// session, e.g. to count outcomes.
func OnFinish(f func(state string)) func(c *serviceConfig) error {
	return func(c *serviceConfig) error {
		c.onFinish = f
		return nil
	}
}

func LoggerInfo(l *log.Logger) func(c *serviceConfig) error {
	return func(c *serviceConfig) error {
		c.loggerInfo = l
		return nil
	}
}

func LoggerDebug(l *log.Logger) func(c *serviceConfig) error {
	return func(c *serviceConfig) error {
		c.loggerDebug = l
		return nil
	}
}

func NewService(conn connector, options ...func(*serviceConfig) error) (*Service, error) {
	config := serviceConfig{
		browse:      zeroconfBrowse,
		loggerInfo:  log.New(io.Discard, "", 0),
		loggerDebug: log.New(io.Discard, "", 0),
	}
	for _, option := range options {
		if err := option(&config); err != nil {
			return nil, fmt.Errorf("config error: %s", err)
		}
	}
	return &Service{
		connector:   conn,
		browse:      config.browse,
		onFinish:    config.onFinish,
		loggerInfo:  config.loggerInfo,
		loggerDebug: config.loggerDebug,
	}, nil
}

// Start creates a session and launches its background worker. The caller gets
// the session (and its rendered code) immediately; the handshake proceeds
// asynchronously until completion or timeout. There is no cancel API: an
// abandoned session simply runs out its clock.
func (s *Service) Start(timeout time.Duration) (*Session, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if timeout > MaxTimeout {
		timeout = MaxTimeout
	}
	session := newSession(timeout)
	if err := session.event(eventAdvertise); err != nil {
		return nil, fmt.Errorf("session start failed: %w", err)
	}
	s.loggerInfo.Printf("pairing session %s started, timeout %s", session.ServiceName, timeout)
	go s.run(session)
	return session, nil
}

// run is the per-session worker. It must never take the process down: every
// discovery-path error is swallowed and a panic is recovered, because one
// malformed broadcast must not abort an otherwise healthy session.
func (s *Service) run(session *Session) {
	defer func() {
		if r := recover(); r != nil {
			s.loggerInfo.Printf("pairing session %s: worker panic recovered: %v", session.ServiceName, r)
			session.finish(eventTimeout)
		}
		if s.onFinish != nil {
			s.onFinish(session.State())
		}
	}()

	// The worker's lifetime is bound by the session timeout, not by any
	// caller context.
	ctx, cancel := context.WithDeadline(context.Background(), session.Deadline())
	defer cancel()

	entries := make(chan *zeroconf.ServiceEntry, 8)
	if err := session.event(eventBrowse); err != nil {
		s.loggerDebug.Printf("pairing session %s: %s", session.ServiceName, err)
	}
	if err := s.browse(ctx, pairingServiceType, pairingDomain, entries); err != nil {
		s.loggerInfo.Printf("pairing session %s: discovery browser failed: %s", session.ServiceName, err)
		// Fall through: the poll loop below still enforces the timeout so
		// the session ends in a defined state.
	}

	ticker := time.NewTicker(shutdownPollInterval)
	defer ticker.Stop()
	for {
		select {
		case entry, ok := <-entries:
			if !ok {
				entries = nil
				continue
			}
			if s.handle(ctx, session, entry) {
				s.loggerInfo.Printf("pairing session %s: device paired and connected", session.ServiceName)
				session.finish(eventConnected)
				return
			}
		case <-ticker.C:
			if time.Now().After(session.Deadline()) || ctx.Err() != nil {
				s.loggerInfo.Printf("pairing session %s timed out after %s; the QR code is no longer valid", session.ServiceName, session.Timeout)
				session.finish(eventTimeout)
				return
			}
		}
	}
}

// handle processes one discovered service and reports whether the handshake
// completed. Pair strictly precedes connect.
func (s *Service) handle(ctx context.Context, session *Session, entry *zeroconf.ServiceEntry) bool {
	if entry == nil || !strings.Contains(entry.Instance, session.ServiceName) {
		return false
	}
	if len(entry.AddrIPv4) == 0 {
		s.loggerDebug.Printf("pairing session %s: advertisement without IPv4 address", session.ServiceName)
		return false
	}
	address := entry.AddrIPv4[0].String()
	if err := session.event(eventDiscovered); err != nil {
		s.loggerDebug.Printf("pairing session %s: %s", session.ServiceName, err)
		return false
	}
	s.loggerDebug.Printf("pairing session %s: discovered %s at %s:%d", session.ServiceName, entry.Instance, address, entry.Port)

	pairResult, err := s.connector.Pair(ctx, address, entry.Port, session.Password)
	if err != nil || !bridge.Paired(pairResult) {
		s.loggerDebug.Printf("pairing session %s: pair attempt failed (err=%v stdout=%q)", session.ServiceName, err, pairResult.Stdout)
		return false
	}
	if err := session.event(eventPaired); err != nil {
		s.loggerDebug.Printf("pairing session %s: %s", session.ServiceName, err)
		return false
	}

	// Pairing already put the device in network mode; skip the tcpip restart.
	connectResult, err := s.connector.Connect(ctx, address, 0, true)
	if err != nil || !bridge.Connected(connectResult) {
		s.loggerDebug.Printf("pairing session %s: connect attempt failed (err=%v stdout=%q)", session.ServiceName, err, connectResult.Stdout)
		return false
	}
	return true
}
