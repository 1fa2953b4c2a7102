package pairing

import (
	"context"
	"sync"
	"time"

	"github.com/looplab/fsm"
	qrcode "github.com/skip2/go-qrcode"
)

// Session states. A session either completes or times out; both are terminal
// and invalidate the credentials, so a retry always means a fresh session.
const (
	StateIdle              = "idle"
	StateAdvertising       = "advertising"
	StateAwaitingDiscovery = "awaiting_discovery"
	StatePairing           = "pairing"
	StateConnecting        = "connecting"
	StateCompleted         = "completed"
	StateTimedOut          = "timed_out"
)

const (
	eventAdvertise  = "advertise"
	eventBrowse     = "browse"
	eventDiscovered = "discovered"
	eventPaired     = "paired"
	eventConnected  = "connected"
	eventTimeout    = "timeout"
)

// Session is one bounded-lifetime pairing attempt. It owns its credentials
// for its lifetime; they are single-use and die with the session.
type Session struct {
	ServiceName string
	Password    string
	CreatedAt   time.Time
	Timeout     time.Duration

	machine  *fsm.FSM
	done     chan struct{}
	doneOnce sync.Once
}

func newSession(timeout time.Duration) *Session {
	s := &Session{
		ServiceName: newServiceName(),
		Password:    newPassword(),
		CreatedAt:   time.Now(),
		Timeout:     timeout,
		done:        make(chan struct{}),
	}
	s.machine = fsm.NewFSM(
		StateIdle,
		fsm.Events{
			{Name: eventAdvertise, Src: []string{StateIdle}, Dst: StateAdvertising},
			{Name: eventBrowse, Src: []string{StateAdvertising}, Dst: StateAwaitingDiscovery},
			// A failed handshake leaves the session in pairing/connecting;
			// a later broadcast may restart it until the deadline.
			{Name: eventDiscovered, Src: []string{StateAwaitingDiscovery, StatePairing, StateConnecting}, Dst: StatePairing},
			{Name: eventPaired, Src: []string{StatePairing}, Dst: StateConnecting},
			{Name: eventConnected, Src: []string{StateConnecting}, Dst: StateCompleted},
			{Name: eventTimeout, Src: []string{
				StateIdle, StateAdvertising, StateAwaitingDiscovery, StatePairing, StateConnecting,
			}, Dst: StateTimedOut},
		},
		fsm.Callbacks{},
	)
	return s
}

// State returns the current state name.
func (s *Session) State() string {
	return s.machine.Current()
}

// Completed reports whether the handshake finished successfully.
func (s *Session) Completed() bool {
	return s.machine.Is(StateCompleted)
}

// Done is closed when the session reaches a terminal state.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Deadline is the instant after which the credentials are invalid.
func (s *Session) Deadline() time.Time {
	return s.CreatedAt.Add(s.Timeout)
}

// Payload returns the QR payload string for this session's credentials.
func (s *Session) Payload() string {
	return Payload(s.ServiceName, s.Password)
}

// RenderTerminal renders the QR code as ASCII art for a terminal flow.
func (s *Session) RenderTerminal() (string, error) {
	q, err := qrcode.New(s.Payload(), qrcode.Medium)
	if err != nil {
		return "", err
	}
	return q.ToSmallString(false), nil
}

// RenderPNG renders the QR code as a PNG byte stream for an HTTP flow.
func (s *Session) RenderPNG(size int) ([]byte, error) {
	if size <= 0 {
		size = 256
	}
	return qrcode.Encode(s.Payload(), qrcode.Medium, size)
}

func (s *Session) event(name string) error {
	return s.machine.Event(context.Background(), name)
}

func (s *Session) finish(event string) {
	s.doneOnce.Do(func() {
		_ = s.event(event)
		close(s.done)
	})
}
