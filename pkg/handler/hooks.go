package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/conwetlab/privatedatasets-backend/pkg/datamodel"
	"github.com/conwetlab/privatedatasets-backend/pkg/errdomain"
)

// The hook callbacks are invoked by the host catalog around its dataset
// lifecycle. They receive the dataset snapshot as the request body and,
// where the hook rewrites it, return the rewritten snapshot.

// DatasetCreated runs allow-list reconciliation after a dataset is
// created.
func (h *Handler) DatasetCreated(w http.ResponseWriter, r *http.Request) {
	h.lifecycle(w, r, h.hooks.AfterCreate)
}

// DatasetUpdated runs allow-list reconciliation after a dataset is
// updated.
func (h *Handler) DatasetUpdated(w http.ResponseWriter, r *http.Request) {
	h.lifecycle(w, r, h.hooks.AfterUpdate)
}

// DatasetDeleted cascades the delete onto the dataset's allow-list.
func (h *Handler) DatasetDeleted(w http.ResponseWriter, r *http.Request) {
	h.lifecycle(w, r, h.hooks.AfterDelete)
}

func (h *Handler) lifecycle(w http.ResponseWriter, r *http.Request,
	run func(ctx context.Context, reqCtx datamodel.RequestContext, dataset *datamodel.Dataset) error) {

	ctx := r.Context()
	logger := requestLogger(ctx, r)

	dataset, err := decodeDataset(r)
	if err != nil {
		writeError(w, logger, err)
		return
	}

	if err := run(ctx, requestContext(r), dataset); err != nil {
		writeError(w, logger, err)
		return
	}
	writeResult(w, logger, nil)
}

// DatasetShown redacts the hidden fields from a dataset snapshot about
// to be rendered and returns the redacted snapshot.
func (h *Handler) DatasetShown(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := requestLogger(ctx, r)

	dataset, err := decodeDataset(r)
	if err != nil {
		writeError(w, logger, err)
		return
	}

	h.hooks.AfterShow(ctx, requestContext(r), dataset)
	writeResult(w, logger, dataset)
}

// DatasetsSearched filters a page of search results and returns the
// filtered page.
func (h *Handler) DatasetsSearched(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := requestLogger(ctx, r)

	var body struct {
		Results []*datamodel.Dataset `json:"results"`
	}
	if err := json.NewDecoder(io.LimitReader(r.Body, maxNotificationSize)).Decode(&body); err != nil {
		writeError(w, logger, errdomain.NewMalformedNotification("Invalid dataset format"))
		return
	}

	h.hooks.AfterSearch(ctx, requestContext(r), body.Results)
	writeResult(w, logger, map[string]any{"results": body.Results})
}

// DatasetIndexed resolves the index-time visibility bucket of a
// dataset.
func (h *Handler) DatasetIndexed(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := requestLogger(ctx, r)

	dataset, err := decodeDataset(r)
	if err != nil {
		writeError(w, logger, err)
		return
	}

	capacity := h.hooks.BeforeIndex(ctx, dataset)
	writeResult(w, logger, map[string]string{"capacity": capacity})
}

func decodeDataset(r *http.Request) (*datamodel.Dataset, error) {
	var dataset datamodel.Dataset
	if err := json.NewDecoder(io.LimitReader(r.Body, maxNotificationSize)).Decode(&dataset); err != nil {
		return nil, errdomain.NewMalformedNotification("Invalid dataset format")
	}
	return &dataset, nil
}
