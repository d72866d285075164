// Package platform models the local collaboration platform's account, group,
// shared-folder, ACL, and configuration state, backed by an embedded SQLite
// database. The reconciliation engine only sees the interfaces defined here.
package platform

import "context"

// Account is a local user account. Accounts are owned by the platform; the
// engine never creates them, it only mutates group memberships.
type Account struct {
	UID         string
	DisplayName string
}

// Folder is a shared-storage folder keyed by its mount point.
type Folder struct {
	ID         int64
	MountPoint string
	ACLEnabled bool
	GroupIDs   []string // applicable groups, in insertion order
}

// Rule is an access-control entry on a file node.
type Rule struct {
	ID          int64
	FileID      int64
	MappingType string
	MappingID   string
	Mask        int
	Permissions int
}

// Permission bit masks, matching the platform's constants.
const (
	PermissionRead = 1
	PermissionAll  = 31
)

// PrincipalTypeGroup is the mapping type for group principals in folder ACL
// delegation and ACL rules.
const PrincipalTypeGroup = "group"

// AccountDirectory provides read access to local accounts.
type AccountDirectory interface {
	// GetAccount returns the account with the given UID, or nil when absent.
	GetAccount(ctx context.Context, uid string) (*Account, error)
	// ListAccountsWithPrefix returns every account whose UID starts with prefix.
	ListAccountsWithPrefix(ctx context.Context, prefix string) ([]Account, error)
}

// GroupDirectory manages local groups and their memberships.
type GroupDirectory interface {
	// GroupExists reports whether a group with the given id exists.
	GroupExists(ctx context.Context, gid string) (bool, error)
	// CreateGroup creates the group if absent. Idempotent.
	CreateGroup(ctx context.Context, gid string) error
	// AddMember adds the account to the group. Idempotent.
	AddMember(ctx context.Context, gid, uid string) error
	// RemoveMember removes the account from the group. Removing a missing
	// membership is not an error.
	RemoveMember(ctx context.Context, gid, uid string) error
	// GroupIDsForAccount returns the ids of every group the account belongs to.
	GroupIDsForAccount(ctx context.Context, uid string) ([]string, error)
	// MemberUIDs returns the UIDs of the group's members.
	MemberUIDs(ctx context.Context, gid string) ([]string, error)
}

// FolderManager manages shared-storage folders and their applicable groups.
type FolderManager interface {
	// ListFolders returns all folders with their applicable groups.
	ListFolders(ctx context.Context) ([]Folder, error)
	// GetFolder returns the folder with the given id, or nil when absent.
	GetFolder(ctx context.Context, id int64) (*Folder, error)
	// CreateFolder creates a folder with the given mount point and returns its
	// id. The folder's root file node is created alongside it.
	CreateFolder(ctx context.Context, mountPoint string) (int64, error)
	// AddApplicableGroup attaches a group to a folder. Idempotent.
	AddApplicableGroup(ctx context.Context, folderID int64, gid string) error
	// SetGroupPermissions sets the permission mask for a group on a folder.
	SetGroupPermissions(ctx context.Context, folderID int64, gid string, permissions int) error
	// SetFolderACLEnabled toggles folder-level ACL enforcement.
	SetFolderACLEnabled(ctx context.Context, folderID int64, enabled bool) error
	// SetACLDelegation grants or revokes ACL management delegation for a
	// principal on a folder.
	SetACLDelegation(ctx context.Context, folderID int64, principalType, principalID string, enabled bool) error
}

// RuleStore manages access-control entries on file nodes.
type RuleStore interface {
	// RulesForPath returns all rules on the file node at path within storage.
	RulesForPath(ctx context.Context, storageID int64, path string) ([]Rule, error)
	// FileIDByPath resolves the storage identifier of the file node at path.
	// Returns ok=false when no such node exists.
	FileIDByPath(ctx context.Context, storageID int64, path string) (int64, bool, error)
	// InsertRule writes a new access-control entry directly.
	InsertRule(ctx context.Context, fileID int64, mappingType, mappingID string, mask, permissions int) error
	// RootStorageID returns the storage identifier of the root mount.
	RootStorageID() int64
}

// ConfigStore is string key-value storage scoped to the engine's namespace.
type ConfigStore interface {
	// GetAppValue returns the value for key, or empty string when absent.
	GetAppValue(ctx context.Context, key string) (string, error)
	// SetAppValue writes the value for key, overwriting any previous value.
	SetAppValue(ctx context.Context, key, value string) error
}

// RunRecorder keeps a history of reconciliation passes.
type RunRecorder interface {
	// RecordRunStart inserts a history row for a starting pass.
	RecordRunStart(ctx context.Context, id, kind string) error
	// RecordRunFinish stamps the outcome on a history row. errText is empty
	// for successful passes.
	RecordRunFinish(ctx context.Context, id, outcome, errText string) error
}
