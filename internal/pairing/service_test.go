package pairing

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/grandcat/zeroconf"

	"go.smsbridge.org/internal/bridge"
)

type fakeConnector struct {
	mu           sync.Mutex
	pairStdout   string
	pairCalls    []string
	connectCalls []bool // skipTCPIPRestart per call
}

func (f *fakeConnector) Pair(ctx context.Context, address string, port int, password string) (bridge.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pairCalls = append(f.pairCalls, password)
	return bridge.Result{Stdout: f.pairStdout}, nil
}

func (f *fakeConnector) Connect(ctx context.Context, address string, port int, skipTCPIPRestart bool) (bridge.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.pairCalls) == 0 {
		return bridge.Result{}, nil // pair must come first; signal failure
	}
	f.connectCalls = append(f.connectCalls, skipTCPIPRestart)
	return bridge.Result{Stdout: "connected to 192.168.1.147:5555\n"}, nil
}

// broadcastOwnName fakes a phone that scanned the code: once ready is closed
// it advertises the session's own service name back.
func broadcastOwnName(session **Session, ready <-chan struct{}) browseFunc {
	return func(ctx context.Context, service, domain string, entries chan<- *zeroconf.ServiceEntry) error {
		go func() {
			<-ready
			entry := zeroconf.NewServiceEntry((*session).ServiceName, service, domain)
			entry.Port = 37123
			entry.AddrIPv4 = []net.IP{net.IPv4(192, 168, 1, 147)}
			entries <- entry
		}()
		return nil
	}
}

func silentBrowse(ctx context.Context, service, domain string, entries chan<- *zeroconf.ServiceEntry) error {
	return nil
}

func waitDone(t *testing.T, session *Session, timeout time.Duration) {
	t.Helper()
	select {
	case <-session.Done():
	case <-time.After(timeout):
		t.Fatalf("session stuck in state %s", session.State())
	}
}

func TestSessionCompletes(t *testing.T) {
	conn := &fakeConnector{pairStdout: "Successfully paired to 192.168.1.147:37123\n"}
	var session *Session
	ready := make(chan struct{})
	svc, err := NewService(conn, Browser(broadcastOwnName(&session, ready)))
	if err != nil {
		t.Fatal(err)
	}
	session, err = svc.Start(30 * time.Second)
	if err != nil {
		t.Fatal(err)
	}
	close(ready)
	waitDone(t, session, 5*time.Second)
	if !session.Completed() || session.State() != StateCompleted {
		t.Fatalf("expected completed session, state %s", session.State())
	}
	conn.mu.Lock()
	defer conn.mu.Unlock()
	if len(conn.pairCalls) != 1 || conn.pairCalls[0] != session.Password {
		t.Errorf("pair must run once with the session password, got %v", conn.pairCalls)
	}
	if len(conn.connectCalls) != 1 || !conn.connectCalls[0] {
		t.Errorf("connect must follow pair with skipTCPIPRestart=true, got %v", conn.connectCalls)
	}
}

func TestSessionTimesOut(t *testing.T) {
	conn := &fakeConnector{}
	svc, err := NewService(conn, Browser(silentBrowse))
	if err != nil {
		t.Fatal(err)
	}
	session, err := svc.Start(1 * time.Second)
	if err != nil {
		t.Fatal(err)
	}
	waitDone(t, session, 5*time.Second)
	if session.State() != StateTimedOut || session.Completed() {
		t.Fatalf("expected timed-out session, state %s", session.State())
	}
	conn.mu.Lock()
	defer conn.mu.Unlock()
	if len(conn.pairCalls) != 0 {
		t.Error("no broadcast arrived; pair must not run")
	}
}

// A new session never reuses the previous session's credentials: retrying
// after a timeout means a fresh name and password.
func TestCredentialsRotatePerSession(t *testing.T) {
	conn := &fakeConnector{}
	svc, err := NewService(conn, Browser(silentBrowse))
	if err != nil {
		t.Fatal(err)
	}
	first, err := svc.Start(1 * time.Second)
	if err != nil {
		t.Fatal(err)
	}
	waitDone(t, first, 5*time.Second)
	second, err := svc.Start(1 * time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if second.ServiceName == first.ServiceName || second.Password == first.Password {
		t.Errorf("credentials reused across sessions: %q/%q", second.ServiceName, second.Password)
	}
	waitDone(t, second, 5*time.Second)
}

// A failed pair attempt must not abort the session; it stays alive until the
// deadline in case another broadcast arrives.
func TestFailedPairKeepsSessionAlive(t *testing.T) {
	conn := &fakeConnector{pairStdout: "failed: wrong password\n"}
	var session *Session
	ready := make(chan struct{})
	svc, err := NewService(conn, Browser(broadcastOwnName(&session, ready)))
	if err != nil {
		t.Fatal(err)
	}
	session, err = svc.Start(1 * time.Second)
	if err != nil {
		t.Fatal(err)
	}
	close(ready)
	waitDone(t, session, 5*time.Second)
	if session.State() != StateTimedOut {
		t.Fatalf("expected timed-out session, state %s", session.State())
	}
	conn.mu.Lock()
	defer conn.mu.Unlock()
	if len(conn.connectCalls) != 0 {
		t.Error("connect must not run after a failed pair")
	}
}

func TestIgnoresForeignBroadcasts(t *testing.T) {
	conn := &fakeConnector{pairStdout: "Successfully paired\n"}
	foreign := func(ctx context.Context, service, domain string, entries chan<- *zeroconf.ServiceEntry) error {
		go func() {
			entry := zeroconf.NewServiceEntry("adb-pairing-someoneelse", service, domain)
			entry.Port = 37123
			entry.AddrIPv4 = []net.IP{net.IPv4(192, 168, 1, 10)}
			entries <- entry
		}()
		return nil
	}
	svc, err := NewService(conn, Browser(foreign))
	if err != nil {
		t.Fatal(err)
	}
	session, err := svc.Start(1 * time.Second)
	if err != nil {
		t.Fatal(err)
	}
	waitDone(t, session, 5*time.Second)
	if session.State() != StateTimedOut {
		t.Fatalf("foreign broadcast must not complete the session, state %s", session.State())
	}
	conn.mu.Lock()
	defer conn.mu.Unlock()
	if len(conn.pairCalls) != 0 {
		t.Error("pair must not run for a foreign broadcast")
	}
}

func TestOnFinishObserver(t *testing.T) {
	states := make(chan string, 1)
	svc, err := NewService(&fakeConnector{}, Browser(silentBrowse), OnFinish(func(state string) {
		states <- state
	}))
	if err != nil {
		t.Fatal(err)
	}
	session, err := svc.Start(1 * time.Second)
	if err != nil {
		t.Fatal(err)
	}
	waitDone(t, session, 5*time.Second)
	select {
	case state := <-states:
		if state != StateTimedOut {
			t.Errorf("observer saw %q", state)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("observer not called")
	}
}
