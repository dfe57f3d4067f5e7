package datamodel

import (
	"slices"
)

// AllowedUser grants one user read access to one private dataset. The
// pair is the natural key; there is no surrogate id.
type AllowedUser struct {
	PackageID string `json:"package_id" gorm:"primaryKey;column:package_id"`
	UserName  string `json:"user_name" gorm:"primaryKey;column:user_name"`
}

// TableName overrides the gorm naming convention.
func (AllowedUser) TableName() string {
	return "package_allowed_users"
}

// Resource is a downloadable artifact attached to a dataset. Resources
// are owned by the host catalog; only the fields needed for visibility
// filtering are kept here.
type Resource struct {
	ID        string `json:"id"`
	PackageID string `json:"package_id,omitempty"`
	Name      string `json:"name,omitempty"`
	URL       string `json:"url,omitempty"`
}

// Dataset is a snapshot of a catalog dataset, as returned by the host
// show API. AllowedUsers is nil when the field was absent from the
// payload, which reconciliation treats as "no change requested".
type Dataset struct {
	ID            string            `json:"id"`
	Name          string            `json:"name,omitempty"`
	Title         string            `json:"title,omitempty"`
	Private       bool              `json:"private"`
	CreatorUserID string            `json:"creator_user_id,omitempty"`
	OwnerOrg      string            `json:"owner_org,omitempty"`
	State         string            `json:"state,omitempty"`
	Searchable    *bool             `json:"searchable,omitempty"`
	AcquireURL    string            `json:"acquire_url,omitempty"`
	AllowedUsers  []string          `json:"allowed_users,omitempty"`
	Resources     []Resource        `json:"resources,omitempty"`
	Extras        map[string]string `json:"extras,omitempty"`
}

// IsActive reports whether the dataset is in the active lifecycle state.
func (d *Dataset) IsActive() bool {
	return d.State == "active"
}

// HasAllowedUser reports whether a user name is on the allow-list
// carried by this snapshot.
func (d *Dataset) HasAllowedUser(userName string) bool {
	return slices.Contains(d.AllowedUsers, userName)
}

// SearchableOrDefault resolves the searchable flag, falling back to the
// deployment default when the dataset does not set it.
func (d *Dataset) SearchableOrDefault(def bool) bool {
	if d.Searchable == nil {
		return def
	}
	return *d.Searchable
}

// User is a snapshot of a catalog user account.
type User struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Sysadmin bool   `json:"sysadmin,omitempty"`
}

// Actor identifies the requesting user. A nil *Actor means the request
// is anonymous.
type Actor struct {
	ID       string
	Name     string
	Sysadmin bool
}

// RequestContext carries the request identity and trust flags through
// every authorization and hook call, replacing ad-hoc inspection of a
// loosely-typed context mapping.
type RequestContext struct {
	Actor *Actor

	// BypassAuth skips authorization checks on host API calls made on
	// behalf of this request.
	BypassAuth bool

	// InternalCallback marks calls issued by the acquisition ingestion
	// pipeline; hidden fields stay visible to such calls.
	InternalCallback bool

	// DetailView is set when the request renders a dataset detail page,
	// the only place where an acquire-URL notice may be emitted.
	DetailView bool
}

// ActorName returns the requesting user name, or an empty string for
// anonymous requests.
func (c RequestContext) ActorName() string {
	if c.Actor == nil {
		return ""
	}
	return c.Actor.Name
}

// IsAnonymous reports whether the request carries no identity.
func (c RequestContext) IsAnonymous() bool {
	return c.Actor == nil
}

// UserDatasets lists the datasets acquired by one user in a
// notification.
type UserDatasets struct {
	User     string   `json:"user"`
	Datasets []string `json:"datasets"`
}

// ParsedAcquisition is the normalized output of a notification parser,
// consumed immediately by the ingestion pipeline.
type ParsedAcquisition struct {
	UsersDatasets []UserDatasets `json:"users_datasets"`
}
