// Package mock provides in-memory fakes for the interfaces this
// module depends on. They are used by the unit tests across packages.
package mock

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/conwetlab/privatedatasets-backend/pkg/datamodel"
	"github.com/conwetlab/privatedatasets-backend/pkg/errdomain"
	"github.com/conwetlab/privatedatasets-backend/pkg/repository"
)

// Repository is an in-memory implementation of repository.Repository
// backed by a nested map. It is safe for concurrent use.
type Repository struct {
	mu      sync.Mutex
	entries map[string]map[string]struct{}

	// FailWith, when set, makes every operation return this error.
	FailWith error
}

func NewRepository() *Repository {
	return &Repository{entries: map[string]map[string]struct{}{}}
}

func (r *Repository) EnsureSchema(ctx context.Context) error {
	return r.FailWith
}

func (r *Repository) ListAllowedUsers(ctx context.Context, filter repository.AllowedUserFilter) ([]*datamodel.AllowedUser, error) {
	if r.FailWith != nil {
		return nil, r.FailWith
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	var result []*datamodel.AllowedUser
	for packageID, users := range r.entries {
		if filter.PackageID != "" && filter.PackageID != packageID {
			continue
		}
		for userName := range users {
			if filter.UserName != "" && filter.UserName != userName {
				continue
			}
			result = append(result, &datamodel.AllowedUser{PackageID: packageID, UserName: userName})
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].PackageID != result[j].PackageID {
			return result[i].PackageID < result[j].PackageID
		}
		return result[i].UserName < result[j].UserName
	})
	return result, nil
}

func (r *Repository) AddAllowedUser(ctx context.Context, packageID string, userName string) error {
	if r.FailWith != nil {
		return r.FailWith
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	users, ok := r.entries[packageID]
	if !ok {
		users = map[string]struct{}{}
		r.entries[packageID] = users
	}
	if _, ok := users[userName]; ok {
		return fmt.Errorf("add allowed user: %w", repository.ErrAlreadyExists)
	}
	users[userName] = struct{}{}
	return nil
}

func (r *Repository) DeleteAllowedUser(ctx context.Context, packageID string, userName string) error {
	if r.FailWith != nil {
		return r.FailWith
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	users, ok := r.entries[packageID]
	if !ok {
		return fmt.Errorf("delete allowed user: %w", repository.ErrNoDataDeleted)
	}
	if _, ok := users[userName]; !ok {
		return fmt.Errorf("delete allowed user: %w", repository.ErrNoDataDeleted)
	}
	delete(users, userName)
	return nil
}

func (r *Repository) DeleteAllowedUsersByPackage(ctx context.Context, packageID string) error {
	if r.FailWith != nil {
		return r.FailWith
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, packageID)
	return nil
}

func (r *Repository) WithTransaction(ctx context.Context, fn func(repository.Repository) error) error {
	if r.FailWith != nil {
		return r.FailWith
	}
	return fn(r)
}

// Seed adds entries without going through AddAllowedUser.
func (r *Repository) Seed(packageID string, userNames ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	users, ok := r.entries[packageID]
	if !ok {
		users = map[string]struct{}{}
		r.entries[packageID] = users
	}
	for _, name := range userNames {
		users[name] = struct{}{}
	}
}

// Users returns the allow-list for a package, sorted.
func (r *Repository) Users(packageID string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var names []string
	for name := range r.entries[packageID] {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CatalogUpdate records a single PackageUpdate call.
type CatalogUpdate struct {
	ActorName string
	Dataset   *datamodel.Dataset
}

// Catalog is a configurable fake of external.CatalogClient and
// external.OrgPermissionChecker.
type Catalog struct {
	mu sync.Mutex

	Datasets map[string]*datamodel.Dataset
	Users    map[string]*datamodel.User

	// OrgPermissions maps "orgID/userName/permission" to true.
	OrgPermissions map[string]bool

	// ShowErr and UpdateErr, when set, override the map lookups.
	ShowErr   error
	UpdateErr error
	UserErr   error

	Updates []CatalogUpdate
}

func NewCatalog() *Catalog {
	return &Catalog{
		Datasets:       map[string]*datamodel.Dataset{},
		Users:          map[string]*datamodel.User{},
		OrgPermissions: map[string]bool{},
	}
}

func (c *Catalog) PackageShow(ctx context.Context, reqCtx datamodel.RequestContext, id string) (*datamodel.Dataset, error) {
	if c.ShowErr != nil {
		return nil, c.ShowErr
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	dataset, ok := c.Datasets[id]
	if !ok {
		return nil, fmt.Errorf("package %s: %w", id, errdomain.ErrNotFound)
	}
	clone := *dataset
	return &clone, nil
}

func (c *Catalog) PackageUpdate(ctx context.Context, reqCtx datamodel.RequestContext, dataset *datamodel.Dataset) (*datamodel.Dataset, error) {
	if c.UpdateErr != nil {
		return nil, c.UpdateErr
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	clone := *dataset
	c.Datasets[dataset.ID] = &clone
	c.Updates = append(c.Updates, CatalogUpdate{ActorName: reqCtx.ActorName(), Dataset: &clone})
	return &clone, nil
}

func (c *Catalog) UserShow(ctx context.Context, id string) (*datamodel.User, error) {
	if c.UserErr != nil {
		return nil, c.UserErr
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	user, ok := c.Users[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, errdomain.ErrNotFound)
	}
	return user, nil
}

func (c *Catalog) HasOrgPermission(ctx context.Context, orgID, userName, permission string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.OrgPermissions[orgID+"/"+userName+"/"+permission], nil
}

// Noticer records flash notices.
type Noticer struct {
	mu      sync.Mutex
	Notices []string
}

func (n *Noticer) FlashNotice(ctx context.Context, reqCtx datamodel.RequestContext, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Notices = append(n.Notices, message)
}

// Indexer records reindex requests.
type Indexer struct {
	mu       sync.Mutex
	Requests []string
	Err      error
}

func (i *Indexer) RequestReindex(ctx context.Context, packageID string) error {
	if i.Err != nil {
		return i.Err
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	i.Requests = append(i.Requests, packageID)
	return nil
}
