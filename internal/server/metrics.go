package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "smsbridge_http_requests_total",
		Help: "HTTP requests handled, by method and path.",
	}, []string{"method", "path"})

	smsSendsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "smsbridge_sms_sends_total",
		Help: "SMS send requests by result (sent, rejected, error).",
	}, []string{"result"})

	pairingSessionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "smsbridge_pairing_sessions_total",
		Help: "Pairing sessions by terminal state.",
	}, []string{"state"})
)

// PairingSessionFinished records a session's terminal state. Wired into the
// pairing service's OnFinish observer.
func PairingSessionFinished(state string) {
	pairingSessionsTotal.WithLabelValues(state).Inc()
}

func countRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httpRequestsTotal.WithLabelValues(r.Method, r.URL.Path).Inc()
		next.ServeHTTP(w, r)
	})
}
