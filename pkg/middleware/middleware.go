// Package middleware wraps the HTTP surface with the cross-cutting
// request handling: panic recovery and access logging.
package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	custom_logger "github.com/conwetlab/privatedatasets-backend/pkg/logger"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Recovery turns a handler panic into a 500 response instead of
// killing the connection.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if p := recover(); p != nil {
				logger, _ := custom_logger.GetZapLogger(r.Context())
				logger.Error("handler panic", zap.Any("panic", p), zap.String("path", r.URL.Path))

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				_ = json.NewEncoder(w).Encode(map[string]any{
					"success": false,
					"error":   map[string]string{"message": "internal error"},
				})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// AccessLog logs one line per request with the response status and
// latency.
func AccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(recorder, r)

		logger, _ := custom_logger.GetZapLogger(r.Context())
		logger.Info("request handled",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", recorder.status),
			zap.Duration("latency", time.Since(started)))
	})
}
