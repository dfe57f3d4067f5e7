// Package handler exposes the backend's HTTP surface: the acquisition
// notification webhook, its revoke counterpart, and the per-user
// acquired-datasets view. Routing beyond these paths belongs to the
// host platform.
package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/gofrs/uuid"
	"go.uber.org/zap"

	"github.com/conwetlab/privatedatasets-backend/pkg/constant"
	"github.com/conwetlab/privatedatasets-backend/pkg/datamodel"
	"github.com/conwetlab/privatedatasets-backend/pkg/hook"
	custom_logger "github.com/conwetlab/privatedatasets-backend/pkg/logger"
	"github.com/conwetlab/privatedatasets-backend/pkg/service"
)

// maxNotificationSize bounds webhook bodies (1 MiB is far above any
// legitimate notification).
const maxNotificationSize = 1 << 20

// Handler wires the HTTP endpoints to the service layer and the
// lifecycle hooks.
type Handler struct {
	service service.Service
	hooks   *hook.Hooks
}

// NewHandler initiates a handler instance
func NewHandler(s service.Service, hooks *hook.Hooks) *Handler {
	return &Handler{service: s, hooks: hooks}
}

// Mux returns a ServeMux with the backend routes mounted.
func (h *Handler) Mux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/action/package_acquired", h.PackageAcquired)
	mux.HandleFunc("POST /api/action/revoke_access", h.RevokeAccess)
	mux.HandleFunc("GET /acquired-datasets", h.AcquisitionsList)

	mux.HandleFunc("POST /api/hooks/dataset/created", h.DatasetCreated)
	mux.HandleFunc("POST /api/hooks/dataset/updated", h.DatasetUpdated)
	mux.HandleFunc("POST /api/hooks/dataset/deleted", h.DatasetDeleted)
	mux.HandleFunc("POST /api/hooks/dataset/shown", h.DatasetShown)
	mux.HandleFunc("POST /api/hooks/dataset/searched", h.DatasetsSearched)
	mux.HandleFunc("POST /api/hooks/dataset/indexed", h.DatasetIndexed)
	return mux
}

// requestContext builds the typed request context from the forwarded
// identity headers. The host platform authenticates the caller; this
// backend only consumes the result.
func requestContext(r *http.Request) datamodel.RequestContext {
	reqCtx := datamodel.RequestContext{
		InternalCallback: r.Header.Get(constant.HeaderCallbackKey) == "true",
		DetailView:       r.Header.Get(constant.HeaderDetailViewKey) == "true",
	}
	if name := r.Header.Get(constant.HeaderActorNameKey); name != "" {
		reqCtx.Actor = &datamodel.Actor{
			ID:       r.Header.Get(constant.HeaderActorIDKey),
			Name:     name,
			Sysadmin: r.Header.Get(constant.HeaderActorSysadminKey) == "true",
		}
	}
	return reqCtx
}

func requestLogger(ctx context.Context, r *http.Request) *zap.Logger {
	logger, _ := custom_logger.GetZapLogger(ctx)
	requestID := r.Header.Get(constant.HeaderRequestIDKey)
	if requestID == "" {
		if generated, err := uuid.NewV4(); err == nil {
			requestID = generated.String()
		}
	}
	return logger.With(
		zap.String("request_id", requestID),
		zap.String("path", r.URL.Path),
	)
}

// PackageAcquired is the webhook called by external services whenever a
// user acquires a dataset. The response is the batch result: null on
// full success, or the list of per-item warnings.
func (h *Handler) PackageAcquired(w http.ResponseWriter, r *http.Request) {
	h.ingest(w, r, h.service.PackageAcquired)
}

// RevokeAccess is the mirror webhook removing previously granted
// access.
func (h *Handler) RevokeAccess(w http.ResponseWriter, r *http.Request) {
	h.ingest(w, r, h.service.RevokeAccess)
}

func (h *Handler) ingest(w http.ResponseWriter, r *http.Request,
	run func(context.Context, datamodel.RequestContext, []byte) (*service.AcquisitionResult, error)) {

	ctx := r.Context()
	logger := requestLogger(ctx, r)

	payload, err := io.ReadAll(io.LimitReader(r.Body, maxNotificationSize))
	if err != nil {
		writeError(w, logger, err)
		return
	}

	result, err := run(ctx, requestContext(r), payload)
	if err != nil {
		writeError(w, logger, err)
		return
	}

	if result == nil {
		writeResult(w, logger, nil)
		return
	}
	writeResult(w, logger, result)
}

// AcquisitionsList serves the "my acquired datasets" view. The user
// query parameter defaults to the requesting actor.
func (h *Handler) AcquisitionsList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := requestLogger(ctx, r)

	reqCtx := requestContext(r)
	datasets, err := h.service.AcquisitionsList(ctx, reqCtx, r.URL.Query().Get("user"))
	if err != nil {
		writeError(w, logger, err)
		return
	}
	writeResult(w, logger, datasets)
}

func writeResult(w http.ResponseWriter, logger *zap.Logger, result any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(map[string]any{
		"success": true,
		"result":  result,
	}); err != nil {
		logger.Error("response encoding failed", zap.Error(err))
	}
}
