// Package hook implements the dataset lifecycle hooks this backend
// exposes to the host catalog: allow-list reconciliation on create and
// update, cascade cleanup on delete, and visibility filtering on show,
// search and index.
package hook

import (
	"context"

	"go.uber.org/zap"

	"github.com/conwetlab/privatedatasets-backend/config"
	"github.com/conwetlab/privatedatasets-backend/pkg/acl"
	"github.com/conwetlab/privatedatasets-backend/pkg/constant"
	"github.com/conwetlab/privatedatasets-backend/pkg/datamodel"
	custom_logger "github.com/conwetlab/privatedatasets-backend/pkg/logger"
	"github.com/conwetlab/privatedatasets-backend/pkg/search"
	"github.com/conwetlab/privatedatasets-backend/pkg/service"
)

// Hooks bundles the package-controller callbacks.
type Hooks struct {
	service   service.Service
	aclEngine *acl.ACL
	indexer   search.Indexer
	policy    config.PolicyConfig
}

// NewHooks initiates the lifecycle hook set
func NewHooks(s service.Service, a *acl.ACL, i search.Indexer, p config.PolicyConfig) *Hooks {
	return &Hooks{
		service:   s,
		aclEngine: a,
		indexer:   i,
		policy:    p,
	}
}

// AfterCreate validates the allow-list fields and reconciles the
// stored allow-list against the dataset payload. When the list changed,
// a visibility-index refresh is requested so search results do not go
// stale; the refresh is signalled only after the delta is committed.
func (h *Hooks) AfterCreate(ctx context.Context, reqCtx datamodel.RequestContext, dataset *datamodel.Dataset) error {
	logger, _ := custom_logger.GetZapLogger(ctx)

	// the web form submits the allow-list as a comma-separated string
	if dataset.AllowedUsers == nil {
		if raw, ok := dataset.Extras[constant.AllowedUsersStrKey]; ok {
			dataset.AllowedUsers = datamodel.ParseAllowedUsersStr(raw)
		}
	}

	if err := datamodel.ValidateDatasetFields(dataset, h.policy.AllowlistOrglessOnly); err != nil {
		return err
	}

	changed, err := h.service.ReconcileAllowedUsers(ctx, dataset.ID, dataset.AllowedUsers)
	if err != nil {
		return err
	}
	if changed {
		if err := h.indexer.RequestReindex(ctx, dataset.ID); err != nil {
			// the allow-list itself is consistent; the index catches up
			// on the next change
			logger.Warn("reindex request failed", zap.String("package_id", dataset.ID), zap.Error(err))
		}
	}
	return nil
}

// AfterUpdate behaves exactly like AfterCreate.
func (h *Hooks) AfterUpdate(ctx context.Context, reqCtx datamodel.RequestContext, dataset *datamodel.Dataset) error {
	return h.AfterCreate(ctx, reqCtx, dataset)
}

// AfterDelete removes every allow-list entry of the deleted dataset.
func (h *Hooks) AfterDelete(ctx context.Context, _ datamodel.RequestContext, dataset *datamodel.Dataset) error {
	return h.service.PurgeAllowedUsers(ctx, dataset.ID)
}

// AfterShow redacts the allow-list, searchable and acquisition-URL
// fields from a dataset snapshot about to be returned to the viewer.
// The fields stay visible only on a private dataset seen by its
// creator, a sysadmin, or an internal acquisition callback.
func (h *Hooks) AfterShow(_ context.Context, reqCtx datamodel.RequestContext, dataset *datamodel.Dataset) {
	if dataset.Private && h.canSeeHiddenFields(reqCtx, dataset) {
		return
	}
	redactHiddenFields(dataset)
}

func (h *Hooks) canSeeHiddenFields(reqCtx datamodel.RequestContext, dataset *datamodel.Dataset) bool {
	if reqCtx.InternalCallback {
		return true
	}
	if reqCtx.Actor == nil {
		return false
	}
	return reqCtx.Actor.Sysadmin || reqCtx.Actor.ID == dataset.CreatorUserID
}

func redactHiddenFields(dataset *datamodel.Dataset) {
	dataset.AllowedUsers = nil
	dataset.Searchable = nil
	dataset.AcquireURL = ""
}

// AfterSearch filters a search result page. Hidden fields are always
// stripped; additionally, hits the viewer cannot read lose their
// resource listings, so a searchable private dataset can surface its
// metadata without leaking download URLs.
func (h *Hooks) AfterSearch(ctx context.Context, reqCtx datamodel.RequestContext, results []*datamodel.Dataset) {
	// search listings never emit acquire notices
	listCtx := datamodel.RequestContext{Actor: reqCtx.Actor}

	for _, hit := range results {
		if err := h.aclEngine.CanShowPackage(ctx, listCtx, hit); err != nil {
			hit.Resources = nil
		}
		redactHiddenFields(hit)
	}
}

// BeforeIndex assigns the index-time visibility bucket: only an
// explicit searchable=false moves a private dataset out of the default
// search scope. Searchability is independent of the private flag.
func (h *Hooks) BeforeIndex(_ context.Context, dataset *datamodel.Dataset) string {
	if !dataset.SearchableOrDefault(h.policy.SearchableDefault) {
		return constant.CapacityPrivate
	}
	return constant.CapacityPublic
}
