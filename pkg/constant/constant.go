package constant

// Dataset field names managed by this backend
const AllowedUsersKey = "allowed_users"
const AllowedUsersStrKey = "allowed_users_str"
const SearchableKey = "searchable"
const AcquireURLKey = "acquire_url"

// Action names dispatched through the authorization engine
const ActionPackageShow = "package_show"
const ActionPackageUpdate = "package_update"
const ActionResourceShow = "resource_show"
const ActionPackageAcquired = "package_acquired"
const ActionAcquisitionsList = "acquisitions_list"
const ActionRevokeAccess = "revoke_access"

// Dataset states
const StateActive = "active"
const StateDraft = "draft"
const StateDeleted = "deleted"

// Index-time visibility buckets
const CapacityPublic = "public"
const CapacityPrivate = "private"

// Headers carrying the request identity and trust flags between this
// backend and the host catalog
const HeaderActorNameKey = "X-Actor-Name"
const HeaderActorIDKey = "X-Actor-Id"
const HeaderActorSysadminKey = "X-Actor-Sysadmin"
const HeaderBypassAuthKey = "X-Bypass-Auth"
const HeaderCallbackKey = "X-Acquisition-Callback"
const HeaderDetailViewKey = "X-Detail-View"
const HeaderRequestIDKey = "X-Request-Id"
