package middleware

import (
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"taskcanvas/logging"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func record(w http.ResponseWriter) *statusRecorder {
	if rec, ok := w.(*statusRecorder); ok {
		return rec
	}
	return &statusRecorder{ResponseWriter: w, status: http.StatusOK}
}

// RequestLogger logs one line per request with method, path, status and duration.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := record(w)
		next.ServeHTTP(rec, r)

		entry := logging.Logger.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   rec.status,
			"duration": time.Since(start).String(),
		})
		switch {
		case rec.status >= 500:
			entry.Errorf("Event ID: HTTP_REQUEST, Description: %s %s failed", r.Method, r.URL.Path)
		case rec.status >= 400:
			entry.Warnf("Event ID: HTTP_REQUEST, Description: %s %s rejected", r.Method, r.URL.Path)
		default:
			entry.Infof("Event ID: HTTP_REQUEST, Description: %s %s served", r.Method, r.URL.Path)
		}
	})
}

// Timeout bounds every request's context. Requests that run out of time get a
// 503 with a JSON {"message"} body.
func Timeout(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		h := http.TimeoutHandler(next, d, `{"message":"request timed out"}`)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h.ServeHTTP(timeoutBodyWriter{w}, r)
		})
	}
}

// timeoutBodyWriter labels the body http.TimeoutHandler writes on expiry,
// which carries no Content-Type of its own.
type timeoutBodyWriter struct {
	http.ResponseWriter
}

func (w timeoutBodyWriter) WriteHeader(code int) {
	if code == http.StatusServiceUnavailable && w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", "application/json")
	}
	w.ResponseWriter.WriteHeader(code)
}
