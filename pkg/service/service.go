package service

import (
	"context"

	"github.com/conwetlab/privatedatasets-backend/config"
	"github.com/conwetlab/privatedatasets-backend/pkg/acl"
	"github.com/conwetlab/privatedatasets-backend/pkg/datamodel"
	"github.com/conwetlab/privatedatasets-backend/pkg/external"
	"github.com/conwetlab/privatedatasets-backend/pkg/repository"
	"github.com/conwetlab/privatedatasets-backend/pkg/search"
)

// AcquisitionResult aggregates the per-item warnings of one
// notification batch. A nil result means the whole batch succeeded.
type AcquisitionResult struct {
	Warns []string `json:"warns"`
}

// Service is the interface for the service layer
type Service interface {
	GetRepository() repository.Repository
	GetACL() *acl.ACL

	// ReconcileAllowedUsers applies the minimal delta between the
	// stored allow-list of a dataset and the desired one. A nil desired
	// slice means the field was absent from the update and nothing
	// happens. Returns whether the stored list changed.
	ReconcileAllowedUsers(ctx context.Context, packageID string, desired []string) (changed bool, err error)

	// PurgeAllowedUsers removes every allow-list entry of a dataset.
	// Called when the dataset is deleted.
	PurgeAllowedUsers(ctx context.Context, packageID string) error

	// PackageAcquired ingests an acquisition notification: every
	// referenced (user, dataset) pair is granted read access. Per-item
	// failures become warnings; only parser configuration and payload
	// errors abort the batch.
	PackageAcquired(ctx context.Context, reqCtx datamodel.RequestContext, rawNotification []byte) (*AcquisitionResult, error)

	// RevokeAccess is the mirror operation: referenced users are
	// removed from the datasets' allow-lists, with the same
	// partial-failure semantics.
	RevokeAccess(ctx context.Context, reqCtx datamodel.RequestContext, rawNotification []byte) (*AcquisitionResult, error)

	// AcquisitionsList returns the active datasets a user has been
	// granted access to. Users may only list their own acquisitions.
	AcquisitionsList(ctx context.Context, reqCtx datamodel.RequestContext, user string) ([]*datamodel.Dataset, error)
}

type service struct {
	cfg        *config.AppConfig
	repository repository.Repository
	catalog    external.CatalogClient
	aclEngine  *acl.ACL
	indexer    search.Indexer
}

// NewService returns a new service instance
func NewService(
	cfg *config.AppConfig,
	r repository.Repository,
	c external.CatalogClient,
	a *acl.ACL,
	i search.Indexer) Service {
	return &service{
		cfg:        cfg,
		repository: r,
		catalog:    c,
		aclEngine:  a,
		indexer:    i,
	}
}

func (s *service) GetRepository() repository.Repository {
	return s.repository
}

func (s *service) GetACL() *acl.ACL {
	return s.aclEngine
}
