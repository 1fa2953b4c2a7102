// Package server is the HTTP surface over the bridge core. Authentication,
// accounts, and quotas live in front of this server; every handler assumes
// the request is already authorized.
package server

import (
	"context"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"go.smsbridge.org/internal/bridge"
	"go.smsbridge.org/internal/inspect"
	"go.smsbridge.org/internal/journal"
	"go.smsbridge.org/internal/pairing"
	"go.smsbridge.org/internal/sms"
)

type deviceBridge interface {
	Devices(ctx context.Context) ([]bridge.Device, error)
	Connect(ctx context.Context, address string, port int, skipTCPIPRestart bool) (bridge.Result, error)
	KillServer(ctx context.Context) error
}

type sender interface {
	SendText(ctx context.Context, phoneNumber, message, deviceID string) (sms.Outcome, error)
}

type pairingStarter interface {
	Start(timeout time.Duration) (*pairing.Session, error)
}

type deviceInspector interface {
	Inspect(serial string) (inspect.Info, error)
}

type messageHistory interface {
	Recent(limit int) ([]journal.Message, error)
}

type Server struct {
	bridge         deviceBridge
	sender         sender
	pairing        pairingStarter
	inspector      deviceInspector
	history        messageHistory
	version        string
	maintenance    bool
	pairingTimeout time.Duration
	loggerInfo     *log.Logger
	loggerDebug    *log.Logger
}

type serverConfig struct {
	inspector      deviceInspector
	history        messageHistory
	maintenance    bool
	pairingTimeout time.Duration
	loggerInfo     *log.Logger
	loggerDebug    *log.Logger
}

func Inspector(i deviceInspector) func(c *serverConfig) error {
	return func(c *serverConfig) error {
		c.inspector = i
		return nil
	}
}

func History(h messageHistory) func(c *serverConfig) error {
	return func(c *serverConfig) error {
		c.history = h
		return nil
	}
}

func Maintenance(m bool) func(c *serverConfig) error {
	return func(c *serverConfig) error {
		c.maintenance = m
		return nil
	}
}

func PairingTimeout(d time.Duration) func(c *serverConfig) error {
	return func(c *serverConfig) error {
		c.pairingTimeout = d
		return nil
	}
}

func LoggerInfo(l *log.Logger) func(c *serverConfig) error {
	return func(c *serverConfig) error {
		c.loggerInfo = l
		return nil
	}
}

func LoggerDebug(l *log.Logger) func(c *serverConfig) error {
	return func(c *serverConfig) error {
		c.loggerDebug = l
		return nil
	}
}

func New(b deviceBridge, snd sender, p pairingStarter, version string, options ...func(*serverConfig) error) (*Server, error) {
	config := serverConfig{
		pairingTimeout: pairing.DefaultTimeout,
		loggerInfo:     log.New(io.Discard, "", 0),
		loggerDebug:    log.New(io.Discard, "", 0),
	}
	for _, option := range options {
		if err := option(&config); err != nil {
			return nil, err
		}
	}
	return &Server{
		bridge:         b,
		sender:         snd,
		pairing:        p,
		inspector:      config.inspector,
		history:        config.history,
		version:        version,
		maintenance:    config.maintenance,
		pairingTimeout: config.pairingTimeout,
		loggerInfo:     config.loggerInfo,
		loggerDebug:    config.loggerDebug,
	}, nil
}

// Router builds the route table.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(countRequests)
	r.HandleFunc("/health/status", s.handleStatus).Methods("GET")
	r.HandleFunc("/adb/list-devices", s.handleListDevices).Methods("GET")
	r.HandleFunc("/adb/connect-device", s.handleConnectDevice).Methods("POST")
	r.HandleFunc("/adb/kill-server", s.handleKillServer).Methods("POST")
	r.HandleFunc("/adb/send-text-message", s.handleSendText).Methods("POST")
	r.HandleFunc("/adb/pair", s.handlePair).Methods("POST")
	if s.inspector != nil {
		r.HandleFunc("/adb/device/{serial}", s.handleInspect).Methods("GET")
	}
	if s.history != nil {
		r.HandleFunc("/adb/messages", s.handleMessages).Methods("GET")
	}
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")
	return r
}

// ListenAndServe runs the HTTP server until it fails or the listener closes.
func (s *Server) ListenAndServe(addr string) error {
	s.loggerInfo.Printf("listening on %s", addr)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return srv.ListenAndServe()
}
