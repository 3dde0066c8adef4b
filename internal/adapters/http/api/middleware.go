package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/okian/polo/pkg/logger"
	"github.com/okian/polo/pkg/metrics"
)

// MetricsMiddleware records request count, latency and error class for
// endpoint. Server errors are also logged.
func MetricsMiddleware(next http.HandlerFunc, endpoint string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		status := strconv.Itoa(rec.status)
		metrics.RecordHTTPRequest(endpoint, r.Method, status)
		metrics.RecordHTTPRequestDuration(endpoint, r.Method, status, float64(time.Since(start).Microseconds())/1000)

		class := errorClass(rec.status)
		if class == "" {
			return
		}
		metrics.RecordErrorByEndpoint(endpoint, r.Method, class)
		metrics.RecordErrorByComponent("http", class)
		if rec.status >= http.StatusInternalServerError {
			logger.Get().Named("http").Error(r.Context(), "request failed",
				logger.String("endpoint", endpoint),
				logger.String("method", r.Method),
				logger.Int("status", rec.status))
		}
	}
}

// errorClass buckets a status code for the error metrics; "" means success.
func errorClass(status int) string {
	switch {
	case status >= http.StatusInternalServerError:
		return "server_error"
	case status == http.StatusUnprocessableEntity:
		return "precondition"
	case status == http.StatusRequestEntityTooLarge:
		return "too_large"
	case status == http.StatusNotFound:
		return "not_found"
	case status >= http.StatusBadRequest:
		return "client_error"
	}
	return ""
}

// statusRecorder remembers the status code written through it.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
