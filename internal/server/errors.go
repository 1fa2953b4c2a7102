package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.smsbridge.org/internal/bridge"
	"go.smsbridge.org/internal/sms"
)

// errorResponse is the envelope every API error uses.
type errorResponse struct {
	Detail     string `json:"detail"`
	StatusCode int    `json:"status_code"`
	ErrorType  string `json:"error_type"`
}

func errorType(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "BadRequest"
	case http.StatusUnauthorized:
		return "Unauthorized"
	case http.StatusForbidden:
		return "Forbidden"
	case http.StatusNotFound:
		return "NotFound"
	case http.StatusConflict:
		return "Conflict"
	case http.StatusGatewayTimeout:
		return "GatewayTimeout"
	case http.StatusInternalServerError:
		return "InternalServerError"
	default:
		return "Error"
	}
}

// statusFor maps the core error taxonomy to HTTP statuses. Transient
// conditions (timeout, no device yet) get retryable statuses; permanent ones
// (bad request, unauthorized device, missing binary) do not.
func statusFor(err error) int {
	var unavailable *sms.DeviceUnavailableError
	switch {
	case errors.Is(err, sms.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.As(err, &unavailable):
		return http.StatusConflict
	case errors.Is(err, sms.ErrNoDevice):
		return http.StatusNotFound
	case errors.Is(err, bridge.ErrTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, bridge.ErrExecutableNotFound):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	s.loggerDebug.Printf("request failed (%d): %s", status, err)
	writeJSON(w, status, errorResponse{
		Detail:     err.Error(),
		StatusCode: status,
		ErrorType:  errorType(status),
	})
}
