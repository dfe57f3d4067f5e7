package handler

import (
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/conwetlab/privatedatasets-backend/pkg/errdomain"
)

// writeError maps the error taxonomy onto HTTP status codes:
// configuration, payload and validation errors are the caller's 4xx,
// authorization denials are 401/403, missing entities are 404, anything
// else is a 500 without leaking internals.
func writeError(w http.ResponseWriter, logger *zap.Logger, err error) {
	statusCode := http.StatusInternalServerError
	message := "internal error"

	var configErr *errdomain.ConfigError
	var malformedErr *errdomain.MalformedNotificationError
	var validationErr *errdomain.ValidationError

	switch {
	case errors.As(err, &configErr):
		statusCode = http.StatusBadRequest
		message = configErr.Error()
	case errors.As(err, &malformedErr):
		statusCode = http.StatusBadRequest
		message = malformedErr.Error()
	case errors.As(err, &validationErr):
		statusCode = http.StatusBadRequest
		message = validationErr.Error()
	case errors.Is(err, errdomain.ErrNotFound):
		statusCode = http.StatusNotFound
		message = err.Error()
	case errors.Is(err, errdomain.ErrUnauthenticated):
		statusCode = http.StatusUnauthorized
		message = err.Error()
	case errors.Is(err, errdomain.ErrNotAuthorized):
		statusCode = http.StatusForbidden
		message = err.Error()
	}

	if statusCode == http.StatusInternalServerError {
		logger.Error("request failed", zap.Error(err))
	} else {
		logger.Warn("request rejected", zap.Int("status", statusCode), zap.Error(err))
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"error":   map[string]string{"message": message},
	})
}
