package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"go.smsbridge.org/internal/bridge"
)

type statusResponse struct {
	Version     string `json:"version"`
	Filesystem  string `json:"filesystem"`
	Maintenance bool   `json:"maintenance"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, statusResponse{
		Version:     s.version,
		Filesystem:  runtime.GOOS,
		Maintenance: s.maintenance,
	})
}

func (s *Server) handleListDevices(w http.ResponseWriter, r *http.Request) {
	devices, err := s.bridge.Devices(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, devices)
}

type connectRequest struct {
	Address string `json:"address"`
	Port    int    `json:"port"`
}

type connectResponse struct {
	Connected bool   `json:"connected"`
	Detail    string `json:"detail"`
}

func (s *Server) handleConnectDevice(w http.ResponseWriter, r *http.Request) {
	var req connectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Address == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Detail:     "address is required",
			StatusCode: http.StatusBadRequest,
			ErrorType:  errorType(http.StatusBadRequest),
		})
		return
	}
	result, err := s.bridge.Connect(r.Context(), req.Address, req.Port, false)
	if err != nil {
		s.writeError(w, err)
		return
	}
	resp := connectResponse{Detail: "ADB Error while connecting to device!"}
	if bridge.Connected(result) {
		resp.Connected = true
		resp.Detail = "ADB is now connected to device"
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleKillServer(w http.ResponseWriter, r *http.Request) {
	if err := s.bridge.KillServer(r.Context()); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"detail": "ADB server has been terminated"})
}

type sendTextRequest struct {
	PhoneNumber string `json:"phone_number"`
	Message     string `json:"message"`
	DeviceID    string `json:"device_id"`
}

func (s *Server) handleSendText(w http.ResponseWriter, r *http.Request) {
	var req sendTextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Detail:     "malformed request body",
			StatusCode: http.StatusBadRequest,
			ErrorType:  errorType(http.StatusBadRequest),
		})
		return
	}
	outcome, err := s.sender.SendText(r.Context(), req.PhoneNumber, req.Message, req.DeviceID)
	if err != nil {
		smsSendsTotal.WithLabelValues("error").Inc()
		s.writeError(w, err)
		return
	}
	if outcome.Success {
		smsSendsTotal.WithLabelValues("sent").Inc()
	} else {
		smsSendsTotal.WithLabelValues("rejected").Inc()
	}
	writeJSON(w, http.StatusOK, outcome)
}

// handlePair starts a pairing session and answers with the rendered code.
// The handshake continues in the background; the code is single-use and dies
// with the session.
func (s *Server) handlePair(w http.ResponseWriter, r *http.Request) {
	timeout := s.pairingTimeout
	if raw := r.URL.Query().Get("timeout"); raw != "" {
		seconds, err := strconv.Atoi(raw)
		if err != nil || seconds <= 0 {
			writeJSON(w, http.StatusBadRequest, errorResponse{
				Detail:     "timeout must be a positive number of seconds",
				StatusCode: http.StatusBadRequest,
				ErrorType:  errorType(http.StatusBadRequest),
			})
			return
		}
		timeout = time.Duration(seconds) * time.Second
	}
	session, err := s.pairing.Start(timeout)
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("X-Pairing-Service", session.ServiceName)
	w.Header().Set("X-Pairing-Expires", session.Deadline().UTC().Format(time.RFC3339))
	switch r.URL.Query().Get("format") {
	case "", "png":
		png, err := session.RenderPNG(0)
		if err != nil {
			s.writeError(w, err)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(png)
	case "text":
		art, err := session.RenderTerminal()
		if err != nil {
			s.writeError(w, err)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = fmt.Fprint(w, art)
	default:
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Detail:     "format must be png or text",
			StatusCode: http.StatusBadRequest,
			ErrorType:  errorType(http.StatusBadRequest),
		})
	}
}

func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	info, err := s.inspector.Inspect(mux.Vars(r)["serial"])
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (s *Server) handleMessages(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeJSON(w, http.StatusBadRequest, errorResponse{
				Detail:     "limit must be a positive number",
				StatusCode: http.StatusBadRequest,
				ErrorType:  errorType(http.StatusBadRequest),
			})
			return
		}
		limit = n
	}
	messages, err := s.history.Recent(limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messages)
}
