// Package external declares the narrow contracts through which this
// backend consumes the host catalog platform. The catalog's storage,
// search indexer and rendering layers stay on the other side of these
// interfaces.
package external

import (
	"context"

	"github.com/conwetlab/privatedatasets-backend/pkg/datamodel"
)

// CatalogClient exposes the host catalog actions consumed by the
// authorization engine, the ingestion pipeline and the hooks.
type CatalogClient interface {
	// PackageShow fetches a dataset snapshot. The request context flags
	// control field visibility: internal-callback calls see the
	// allow-list even when the actor is not the creator.
	PackageShow(ctx context.Context, reqCtx datamodel.RequestContext, id string) (*datamodel.Dataset, error)

	// PackageUpdate persists a dataset, running the catalog's standard
	// update validation. Fails with *errdomain.ValidationError.
	PackageUpdate(ctx context.Context, reqCtx datamodel.RequestContext, dataset *datamodel.Dataset) (*datamodel.Dataset, error)

	// UserShow fetches a user snapshot by id or name.
	UserShow(ctx context.Context, id string) (*datamodel.User, error)
}

// OrgPermissionChecker answers organization membership questions. It is
// delegated to the host platform; this backend adds no group or
// hierarchy semantics of its own.
type OrgPermissionChecker interface {
	HasOrgPermission(ctx context.Context, orgID string, userName string, permission string) (bool, error)
}

// Noticer receives user-facing informational notices, such as the
// acquire-URL hint shown on a denied dataset detail view. The host's
// rendering layer decides how to surface them.
type Noticer interface {
	FlashNotice(ctx context.Context, reqCtx datamodel.RequestContext, message string)
}
