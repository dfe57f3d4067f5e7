// Package acl implements the authorization decision engine for
// dataset read and update access. Decisions are deterministic given a
// dataset snapshot, the actor identity, the organization-membership
// oracle and the allow-list store.
package acl

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/conwetlab/privatedatasets-backend/pkg/constant"
	"github.com/conwetlab/privatedatasets-backend/pkg/datamodel"
	"github.com/conwetlab/privatedatasets-backend/pkg/errdomain"
	"github.com/conwetlab/privatedatasets-backend/pkg/external"
	"github.com/conwetlab/privatedatasets-backend/pkg/repository"
)

// Org permissions delegated to the host platform
const (
	OrgPermissionRead          = "read"
	OrgPermissionUpdateDataset = "update_dataset"
)

// ACL is the authorization engine. All checks return nil on grant and
// an error wrapping errdomain.ErrNotAuthorized on deny.
type ACL struct {
	repository repository.Repository
	catalog    external.CatalogClient
	orgChecker external.OrgPermissionChecker
	noticer    external.Noticer
}

// NewACL initiates an authorization engine instance
func NewACL(r repository.Repository, c external.CatalogClient, o external.OrgPermissionChecker, n external.Noticer) *ACL {
	return &ACL{
		repository: r,
		catalog:    c,
		orgChecker: o,
		noticer:    n,
	}
}

// CanShowPackage decides read access on a dataset. Anonymous actors are
// allowed to call it; they can only be granted access to public, active
// datasets.
//
// On deny, when the request renders a dataset detail view and the
// dataset carries an acquisition URL, an informational notice with that
// URL is emitted through the noticer.
func (a *ACL) CanShowPackage(ctx context.Context, reqCtx datamodel.RequestContext, dataset *datamodel.Dataset) error {
	actor := reqCtx.Actor

	// the creator always sees their own dataset, whatever its state
	if actor != nil && dataset.CreatorUserID != "" && dataset.CreatorUserID == actor.ID {
		return nil
	}

	if dataset.IsActive() {
		if !dataset.Private {
			return nil
		}

		authorized := false
		if dataset.OwnerOrg != "" && actor != nil {
			ok, err := a.orgChecker.HasOrgPermission(ctx, dataset.OwnerOrg, actor.Name, OrgPermissionRead)
			if err != nil {
				return err
			}
			authorized = ok
		}

		// the allow-list is consulted only when nothing above granted
		if !authorized && actor != nil {
			entries, err := a.repository.ListAllowedUsers(ctx, repository.AllowedUserFilter{
				PackageID: dataset.ID,
				UserName:  actor.Name,
			})
			if err != nil {
				return err
			}
			authorized = len(entries) > 0
		}

		if authorized {
			return nil
		}

		// the acquire hint is only meaningful on the dataset detail
		// page, not on listings or profile pages
		if reqCtx.DetailView && dataset.AcquireURL != "" && a.noticer != nil {
			a.noticer.FlashNotice(ctx, reqCtx, fmt.Sprintf(
				"This private dataset can be acquired. To do so, please visit %s", dataset.AcquireURL))
		}
	}

	return errors.Wrapf(errdomain.ErrNotAuthorized,
		"User %s not authorized to read package %s", reqCtx.ActorName(), dataset.ID)
}

// CanUpdatePackage decides update access on a dataset.
func (a *ACL) CanUpdatePackage(ctx context.Context, reqCtx datamodel.RequestContext, dataset *datamodel.Dataset) error {
	actor := reqCtx.Actor

	if actor != nil && dataset.CreatorUserID != "" && dataset.CreatorUserID == actor.ID {
		return nil
	}

	if dataset.OwnerOrg != "" && actor != nil {
		ok, err := a.orgChecker.HasOrgPermission(ctx, dataset.OwnerOrg, actor.Name, OrgPermissionUpdateDataset)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
	}

	return errors.Wrapf(errdomain.ErrNotAuthorized,
		"User %s is not authorized to edit package %s", reqCtx.ActorName(), dataset.ID)
}

// CanShowResource resolves a resource to its owning dataset and
// delegates to CanShowPackage. A resource without an owning dataset is
// a data integrity fault, reported as not-found rather than as an
// authorization outcome.
func (a *ACL) CanShowResource(ctx context.Context, reqCtx datamodel.RequestContext, resource *datamodel.Resource) error {
	if resource.PackageID == "" {
		return errors.Wrap(errdomain.ErrNotFound, "no package found for this resource, cannot check auth")
	}

	showCtx := datamodel.RequestContext{Actor: reqCtx.Actor, BypassAuth: true}
	dataset, err := a.catalog.PackageShow(ctx, showCtx, resource.PackageID)
	if err != nil {
		if errors.Is(err, errdomain.ErrNotFound) {
			return errors.Wrap(errdomain.ErrNotFound, "no package found for this resource, cannot check auth")
		}
		return err
	}

	if err := a.CanShowPackage(ctx, reqCtx, dataset); err != nil {
		return errors.Wrapf(errdomain.ErrNotAuthorized,
			"User %s not authorized to read resource %s", reqCtx.ActorName(), resource.ID)
	}
	return nil
}

// CanNotifyAcquisition gates the acquisition webhook. The action only
// ever adds read access, so the gate is open; the parser validation is
// the real protection.
func (a *ACL) CanNotifyAcquisition(_ context.Context, _ datamodel.RequestContext) error {
	return nil
}

// CanListAcquisitions grants a user access to their own acquisitions
// list only. Anonymous requests are rejected as unauthenticated.
func (a *ACL) CanListAcquisitions(_ context.Context, reqCtx datamodel.RequestContext, requestedUser string) error {
	if reqCtx.Actor == nil {
		return errors.Wrap(errdomain.ErrUnauthenticated, "acquisitions list requires a logged-in user")
	}
	if reqCtx.Actor.Name == requestedUser {
		return nil
	}
	return errors.Wrapf(errdomain.ErrNotAuthorized,
		"User %s not authorized to list acquisitions of %s", reqCtx.ActorName(), requestedUser)
}

// CheckAccess dispatches an action name to its decision function,
// mirroring the host platform's check-access entry point.
func (a *ACL) CheckAccess(ctx context.Context, reqCtx datamodel.RequestContext, action string, payload any) error {
	if reqCtx.BypassAuth {
		return nil
	}

	switch action {
	case constant.ActionPackageShow:
		return a.CanShowPackage(ctx, reqCtx, payload.(*datamodel.Dataset))
	case constant.ActionPackageUpdate:
		return a.CanUpdatePackage(ctx, reqCtx, payload.(*datamodel.Dataset))
	case constant.ActionResourceShow:
		return a.CanShowResource(ctx, reqCtx, payload.(*datamodel.Resource))
	case constant.ActionPackageAcquired, constant.ActionRevokeAccess:
		return a.CanNotifyAcquisition(ctx, reqCtx)
	case constant.ActionAcquisitionsList:
		return a.CanListAcquisitions(ctx, reqCtx, payload.(string))
	default:
		return fmt.Errorf("unknown action %q", action)
	}
}
