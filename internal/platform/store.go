package platform

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver, registers as "sqlite".
)

// Named constants for pragma values.
const (
	walJournalSizeLimit = 67108864 // 64 MiB WAL journal size limit

	// rootStorageID is the storage identifier of the root mount. A single
	// local instance has exactly one root storage.
	rootStorageID = 1
)

// Store implements the platform interfaces on an embedded SQLite database
// with WAL mode. All local state (accounts, groups, memberships, folders,
// ACL rules, config values, sync-run history) is persisted here.
type Store struct {
	db     *sql.DB
	logger *slog.Logger

	// Prepared statements for repeated queries, grouped by domain.
	accountStmts accountStatements
	groupStmts   groupStatements
	folderStmts  folderStatements
	ruleStmts    ruleStatements
	configStmts  configStatements
	runStmts     runStatements
}

// Statement groups keep the struct readable.
type accountStatements struct {
	get, upsert, listPrefix *sql.Stmt
}

type groupStatements struct {
	exists, create, addMember, removeMember, groupsForAccount, members *sql.Stmt
}

type folderStatements struct {
	list, get, create, listGroups, addGroup, setPermissions, setACL, setDelegation *sql.Stmt
}

type ruleStatements struct {
	forFile, insert, fileByPath, insertFile *sql.Stmt
}

type configStatements struct {
	get, set *sql.Stmt
}

type runStatements struct {
	start, finish *sql.Stmt
}

// NewStore opens the database at dbPath, applies migrations, and prepares all
// repeated statements. Use ":memory:" for tests.
func NewStore(dbPath string, logger *slog.Logger) (*Store, error) {
	logger.Info("opening platform database", "path", dbPath)

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := setPragmas(context.Background(), db, logger); err != nil {
		db.Close()
		return nil, err
	}

	if err := runMigrations(context.Background(), db, logger); err != nil {
		db.Close()
		return nil, err
	}

	s := &Store{db: db, logger: logger}

	if err := s.prepareAllStatements(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("prepare statements: %w", err)
	}

	logger.Info("platform database ready", "path", dbPath)

	return s, nil
}

// setPragmas configures SQLite for WAL mode and safety.
func setPragmas(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
	pragmas := []struct {
		sql  string
		desc string
	}{
		{"PRAGMA journal_mode = WAL", "WAL mode"},
		{"PRAGMA synchronous = FULL", "synchronous FULL"},
		{"PRAGMA foreign_keys = ON", "foreign keys"},
		{fmt.Sprintf("PRAGMA journal_size_limit = %d", walJournalSizeLimit), "journal size limit"},
	}

	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p.sql); err != nil {
			return fmt.Errorf("set pragma %s: %w", p.desc, err)
		}

		logger.Debug("pragma set", "pragma", p.desc)
	}

	return nil
}

// --- SQL query constants ---

// Account queries.
const (
	sqlGetAccount = `SELECT uid, display_name FROM accounts WHERE uid = ?`

	sqlUpsertAccount = `INSERT INTO accounts (uid, display_name, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT(uid) DO UPDATE SET display_name = excluded.display_name`

	sqlListAccountsPrefix = `SELECT uid, display_name FROM accounts
		WHERE uid LIKE ? ESCAPE '\' ORDER BY uid`
)

// Group queries.
const (
	sqlGroupExists = `SELECT 1 FROM groups WHERE gid = ?`

	sqlCreateGroup = `INSERT INTO groups (gid, created_at) VALUES (?, ?)
		ON CONFLICT(gid) DO NOTHING`

	sqlAddMember = `INSERT INTO group_members (gid, uid) VALUES (?, ?)
		ON CONFLICT(gid, uid) DO NOTHING`

	sqlRemoveMember = `DELETE FROM group_members WHERE gid = ? AND uid = ?`

	sqlGroupsForAccount = `SELECT gid FROM group_members WHERE uid = ? ORDER BY gid`

	sqlGroupMembers = `SELECT uid FROM group_members WHERE gid = ? ORDER BY uid`
)

// Folder queries.
const (
	sqlListFolders = `SELECT id, mount_point, acl_enabled FROM folders ORDER BY id`

	sqlGetFolder = `SELECT id, mount_point, acl_enabled FROM folders WHERE id = ?`

	sqlCreateFolder = `INSERT INTO folders (mount_point, acl_enabled, created_at)
		VALUES (?, 0, ?)`

	sqlListFolderGroups = `SELECT gid FROM folder_groups
		WHERE folder_id = ? ORDER BY sort_order, gid`

	sqlAddFolderGroup = `INSERT INTO folder_groups (folder_id, gid, sort_order)
		VALUES (?, ?, (SELECT COUNT(*) FROM folder_groups WHERE folder_id = ?))
		ON CONFLICT(folder_id, gid) DO NOTHING`

	sqlSetFolderGroupPerms = `UPDATE folder_groups SET permissions = ?
		WHERE folder_id = ? AND gid = ?`

	sqlSetFolderACL = `UPDATE folders SET acl_enabled = ? WHERE id = ?`

	sqlSetFolderDelegation = `UPDATE folder_groups SET acl_manager = ?
		WHERE folder_id = ? AND gid = ?`
)

// ACL rule and file queries.
const (
	sqlRulesForFile = `SELECT id, file_id, mapping_type, mapping_id, mask, permissions
		FROM acl_rules WHERE file_id = ?`

	sqlInsertRule = `INSERT INTO acl_rules (file_id, mapping_type, mapping_id, mask, permissions)
		VALUES (?, ?, ?, ?, ?)`

	sqlFileByPath = `SELECT id FROM files WHERE storage_id = ? AND path = ?`

	sqlInsertFile = `INSERT INTO files (storage_id, path) VALUES (?, ?)
		ON CONFLICT(storage_id, path) DO NOTHING`
)

// Config queries.
const (
	sqlGetConfig = `SELECT value FROM app_config WHERE key = ?`

	sqlSetConfig = `INSERT INTO app_config (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`
)

// Sync-run history queries.
const (
	sqlRunStart = `INSERT INTO sync_runs (id, kind, started_at) VALUES (?, ?, ?)`

	sqlRunFinish = `UPDATE sync_runs SET finished_at = ?, outcome = ?, error = ?
		WHERE id = ?`
)

// stmtDef maps a SQL string to the prepared statement pointer it should
// populate. Used by the generic prepare helper to eliminate repetitive error
// handling.
type stmtDef struct {
	dest **sql.Stmt
	sql  string
	name string
}

// prepareAll prepares a batch of statements, returning on first error.
func prepareAll(ctx context.Context, db *sql.DB, defs []stmtDef) error {
	for i := range defs {
		stmt, err := db.PrepareContext(ctx, defs[i].sql)
		if err != nil {
			return fmt.Errorf("prepare %s: %w", defs[i].name, err)
		}

		*defs[i].dest = stmt
	}

	return nil
}

func (s *Store) prepareAllStatements(ctx context.Context) error {
	if err := prepareAll(ctx, s.db, []stmtDef{
		{&s.accountStmts.get, sqlGetAccount, "getAccount"},
		{&s.accountStmts.upsert, sqlUpsertAccount, "upsertAccount"},
		{&s.accountStmts.listPrefix, sqlListAccountsPrefix, "listAccountsPrefix"},
	}); err != nil {
		return err
	}

	if err := prepareAll(ctx, s.db, []stmtDef{
		{&s.groupStmts.exists, sqlGroupExists, "groupExists"},
		{&s.groupStmts.create, sqlCreateGroup, "createGroup"},
		{&s.groupStmts.addMember, sqlAddMember, "addMember"},
		{&s.groupStmts.removeMember, sqlRemoveMember, "removeMember"},
		{&s.groupStmts.groupsForAccount, sqlGroupsForAccount, "groupsForAccount"},
		{&s.groupStmts.members, sqlGroupMembers, "groupMembers"},
	}); err != nil {
		return err
	}

	if err := prepareAll(ctx, s.db, []stmtDef{
		{&s.folderStmts.list, sqlListFolders, "listFolders"},
		{&s.folderStmts.get, sqlGetFolder, "getFolder"},
		{&s.folderStmts.create, sqlCreateFolder, "createFolder"},
		{&s.folderStmts.listGroups, sqlListFolderGroups, "listFolderGroups"},
		{&s.folderStmts.addGroup, sqlAddFolderGroup, "addFolderGroup"},
		{&s.folderStmts.setPermissions, sqlSetFolderGroupPerms, "setFolderGroupPerms"},
		{&s.folderStmts.setACL, sqlSetFolderACL, "setFolderACL"},
		{&s.folderStmts.setDelegation, sqlSetFolderDelegation, "setFolderDelegation"},
	}); err != nil {
		return err
	}

	if err := prepareAll(ctx, s.db, []stmtDef{
		{&s.ruleStmts.forFile, sqlRulesForFile, "rulesForFile"},
		{&s.ruleStmts.insert, sqlInsertRule, "insertRule"},
		{&s.ruleStmts.fileByPath, sqlFileByPath, "fileByPath"},
		{&s.ruleStmts.insertFile, sqlInsertFile, "insertFile"},
	}); err != nil {
		return err
	}

	if err := prepareAll(ctx, s.db, []stmtDef{
		{&s.configStmts.get, sqlGetConfig, "getConfig"},
		{&s.configStmts.set, sqlSetConfig, "setConfig"},
	}); err != nil {
		return err
	}

	return prepareAll(ctx, s.db, []stmtDef{
		{&s.runStmts.start, sqlRunStart, "runStart"},
		{&s.runStmts.finish, sqlRunFinish, "runFinish"},
	})
}

// nowUnix returns the current time in Unix seconds for created_at columns.
func nowUnix() int64 {
	return time.Now().Unix()
}

// --- Account methods ---

// GetAccount retrieves an account by UID. Returns (nil, nil) when absent —
// callers use the nil account to distinguish "unknown UID" from "found".
func (s *Store) GetAccount(ctx context.Context, uid string) (*Account, error) {
	a := &Account{}

	err := s.accountStmts.get.QueryRowContext(ctx, uid).Scan(&a.UID, &a.DisplayName)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil //nolint:nilnil // nil account means "not found"
	}

	if err != nil {
		return nil, fmt.Errorf("get account %q: %w", uid, err)
	}

	return a, nil
}

// UpsertAccount inserts or updates an account. Account provisioning belongs
// to the host platform; the engine itself never calls this.
func (s *Store) UpsertAccount(ctx context.Context, a Account) error {
	_, err := s.accountStmts.upsert.ExecContext(ctx, a.UID, a.DisplayName, nowUnix())
	if err != nil {
		return fmt.Errorf("upsert account %q: %w", a.UID, err)
	}

	return nil
}

// ListAccountsWithPrefix returns all accounts whose UID starts with prefix.
func (s *Store) ListAccountsWithPrefix(ctx context.Context, prefix string) ([]Account, error) {
	rows, err := s.accountStmts.listPrefix.QueryContext(ctx, escapeLike(prefix)+"%")
	if err != nil {
		return nil, fmt.Errorf("list accounts with prefix %q: %w", prefix, err)
	}
	defer rows.Close()

	var accounts []Account

	for rows.Next() {
		var a Account
		if err := rows.Scan(&a.UID, &a.DisplayName); err != nil {
			return nil, fmt.Errorf("scan account row: %w", err)
		}

		accounts = append(accounts, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate account rows: %w", err)
	}

	return accounts, nil
}

// escapeLike escapes LIKE wildcards so a prefix containing % or _ matches
// literally.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)

	return s
}

// --- Group methods ---

// GroupExists reports whether a group with the given id exists.
func (s *Store) GroupExists(ctx context.Context, gid string) (bool, error) {
	var one int

	err := s.groupStmts.exists.QueryRowContext(ctx, gid).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}

	if err != nil {
		return false, fmt.Errorf("group exists %q: %w", gid, err)
	}

	return true, nil
}

// CreateGroup creates the group if absent. Idempotent.
func (s *Store) CreateGroup(ctx context.Context, gid string) error {
	s.logger.Debug("creating group", "gid", gid)

	_, err := s.groupStmts.create.ExecContext(ctx, gid, nowUnix())
	if err != nil {
		return fmt.Errorf("create group %q: %w", gid, err)
	}

	return nil
}

// AddMember adds the account to the group. Idempotent.
func (s *Store) AddMember(ctx context.Context, gid, uid string) error {
	_, err := s.groupStmts.addMember.ExecContext(ctx, gid, uid)
	if err != nil {
		return fmt.Errorf("add member %q to %q: %w", uid, gid, err)
	}

	return nil
}

// RemoveMember removes the account from the group. Removing a missing
// membership is not an error.
func (s *Store) RemoveMember(ctx context.Context, gid, uid string) error {
	_, err := s.groupStmts.removeMember.ExecContext(ctx, gid, uid)
	if err != nil {
		return fmt.Errorf("remove member %q from %q: %w", uid, gid, err)
	}

	return nil
}

// GroupIDsForAccount returns the ids of every group the account belongs to.
func (s *Store) GroupIDsForAccount(ctx context.Context, uid string) ([]string, error) {
	rows, err := s.groupStmts.groupsForAccount.QueryContext(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("groups for account %q: %w", uid, err)
	}
	defer rows.Close()

	return scanStrings(rows)
}

// MemberUIDs returns the UIDs of the group's members.
func (s *Store) MemberUIDs(ctx context.Context, gid string) ([]string, error) {
	rows, err := s.groupStmts.members.QueryContext(ctx, gid)
	if err != nil {
		return nil, fmt.Errorf("members of %q: %w", gid, err)
	}
	defer rows.Close()

	return scanStrings(rows)
}

// scanStrings collects a single-column string result set.
func scanStrings(rows *sql.Rows) ([]string, error) {
	var out []string

	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan string row: %w", err)
		}

		out = append(out, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate string rows: %w", err)
	}

	return out, nil
}

// --- Folder methods ---

// ListFolders returns all folders with their applicable groups.
func (s *Store) ListFolders(ctx context.Context) ([]Folder, error) {
	rows, err := s.folderStmts.list.QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}
	defer rows.Close()

	var folders []Folder

	for rows.Next() {
		var f Folder

		var aclEnabled int

		if err := rows.Scan(&f.ID, &f.MountPoint, &aclEnabled); err != nil {
			return nil, fmt.Errorf("scan folder row: %w", err)
		}

		f.ACLEnabled = aclEnabled == 1
		folders = append(folders, f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate folder rows: %w", err)
	}

	for i := range folders {
		gids, err := s.folderGroupIDs(ctx, folders[i].ID)
		if err != nil {
			return nil, err
		}

		folders[i].GroupIDs = gids
	}

	return folders, nil
}

// GetFolder returns the folder with the given id, or nil when absent.
func (s *Store) GetFolder(ctx context.Context, id int64) (*Folder, error) {
	f := &Folder{}

	var aclEnabled int

	err := s.folderStmts.get.QueryRowContext(ctx, id).Scan(&f.ID, &f.MountPoint, &aclEnabled)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil //nolint:nilnil // nil folder means "not found"
	}

	if err != nil {
		return nil, fmt.Errorf("get folder %d: %w", id, err)
	}

	f.ACLEnabled = aclEnabled == 1

	gids, err := s.folderGroupIDs(ctx, f.ID)
	if err != nil {
		return nil, err
	}

	f.GroupIDs = gids

	return f, nil
}

func (s *Store) folderGroupIDs(ctx context.Context, folderID int64) ([]string, error) {
	rows, err := s.folderStmts.listGroups.QueryContext(ctx, folderID)
	if err != nil {
		return nil, fmt.Errorf("list folder groups %d: %w", folderID, err)
	}
	defer rows.Close()

	return scanStrings(rows)
}

// CreateFolder creates a folder with the given mount point and its root file
// node, returning the folder id.
func (s *Store) CreateFolder(ctx context.Context, mountPoint string) (int64, error) {
	s.logger.Info("creating folder", "mount_point", mountPoint)

	res, err := s.folderStmts.create.ExecContext(ctx, mountPoint, nowUnix())
	if err != nil {
		return 0, fmt.Errorf("create folder %q: %w", mountPoint, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("create folder %q: last insert id: %w", mountPoint, err)
	}

	// The folder's root node lives under the root storage.
	rootPath := FolderRootPath(id)
	if _, err := s.ruleStmts.insertFile.ExecContext(ctx, rootStorageID, rootPath); err != nil {
		return 0, fmt.Errorf("create folder root node %q: %w", rootPath, err)
	}

	return id, nil
}

// AddApplicableGroup attaches a group to a folder. Idempotent.
func (s *Store) AddApplicableGroup(ctx context.Context, folderID int64, gid string) error {
	_, err := s.folderStmts.addGroup.ExecContext(ctx, folderID, gid, folderID)
	if err != nil {
		return fmt.Errorf("add applicable group %q to folder %d: %w", gid, folderID, err)
	}

	return nil
}

// SetGroupPermissions sets the permission mask for a group on a folder.
func (s *Store) SetGroupPermissions(ctx context.Context, folderID int64, gid string, permissions int) error {
	_, err := s.folderStmts.setPermissions.ExecContext(ctx, permissions, folderID, gid)
	if err != nil {
		return fmt.Errorf("set permissions for %q on folder %d: %w", gid, folderID, err)
	}

	return nil
}

// SetFolderACLEnabled toggles folder-level ACL enforcement.
func (s *Store) SetFolderACLEnabled(ctx context.Context, folderID int64, enabled bool) error {
	val := 0
	if enabled {
		val = 1
	}

	_, err := s.folderStmts.setACL.ExecContext(ctx, val, folderID)
	if err != nil {
		return fmt.Errorf("set folder %d acl: %w", folderID, err)
	}

	return nil
}

// SetACLDelegation grants or revokes ACL management delegation for a
// principal on a folder. Only group principals are supported.
func (s *Store) SetACLDelegation(ctx context.Context, folderID int64, principalType, principalID string, enabled bool) error {
	if principalType != PrincipalTypeGroup {
		return fmt.Errorf("set acl delegation: unsupported principal type %q", principalType)
	}

	val := 0
	if enabled {
		val = 1
	}

	_, err := s.folderStmts.setDelegation.ExecContext(ctx, val, folderID, principalID)
	if err != nil {
		return fmt.Errorf("set acl delegation for %q on folder %d: %w", principalID, folderID, err)
	}

	return nil
}

// FolderRootPath returns the storage path of a folder's root node.
func FolderRootPath(folderID int64) string {
	return fmt.Sprintf("__groupfolders/%d", folderID)
}

// --- ACL rule methods ---

// RootStorageID returns the storage identifier of the root mount.
func (s *Store) RootStorageID() int64 {
	return rootStorageID
}

// FileIDByPath resolves the file node at path within a storage.
// Returns ok=false when no such node exists.
func (s *Store) FileIDByPath(ctx context.Context, storageID int64, path string) (int64, bool, error) {
	var id int64

	err := s.ruleStmts.fileByPath.QueryRowContext(ctx, storageID, path).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}

	if err != nil {
		return 0, false, fmt.Errorf("file by path %q: %w", path, err)
	}

	return id, true, nil
}

// RulesForPath returns all ACL rules on the file node at path. A path with no
// file node has no rules.
func (s *Store) RulesForPath(ctx context.Context, storageID int64, path string) ([]Rule, error) {
	fileID, ok, err := s.FileIDByPath(ctx, storageID, path)
	if err != nil {
		return nil, err
	}

	if !ok {
		return nil, nil
	}

	rows, err := s.ruleStmts.forFile.QueryContext(ctx, fileID)
	if err != nil {
		return nil, fmt.Errorf("rules for path %q: %w", path, err)
	}
	defer rows.Close()

	var rules []Rule

	for rows.Next() {
		var r Rule
		if err := rows.Scan(&r.ID, &r.FileID, &r.MappingType, &r.MappingID, &r.Mask, &r.Permissions); err != nil {
			return nil, fmt.Errorf("scan rule row: %w", err)
		}

		rules = append(rules, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rule rows: %w", err)
	}

	return rules, nil
}

// InsertRule writes a new access-control entry directly.
func (s *Store) InsertRule(ctx context.Context, fileID int64, mappingType, mappingID string, mask, permissions int) error {
	s.logger.Debug("inserting acl rule",
		"file_id", fileID, "mapping_id", mappingID, "permissions", permissions)

	_, err := s.ruleStmts.insert.ExecContext(ctx, fileID, mappingType, mappingID, mask, permissions)
	if err != nil {
		return fmt.Errorf("insert rule for file %d: %w", fileID, err)
	}

	return nil
}

// --- Config methods ---

// GetAppValue returns the value for key, or empty string when absent.
func (s *Store) GetAppValue(ctx context.Context, key string) (string, error) {
	var value string

	err := s.configStmts.get.QueryRowContext(ctx, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}

	if err != nil {
		return "", fmt.Errorf("get app value %q: %w", key, err)
	}

	return value, nil
}

// SetAppValue writes the value for key, overwriting any previous value.
func (s *Store) SetAppValue(ctx context.Context, key, value string) error {
	_, err := s.configStmts.set.ExecContext(ctx, key, value)
	if err != nil {
		return fmt.Errorf("set app value %q: %w", key, err)
	}

	return nil
}

// --- Sync-run history methods ---

// RecordRunStart inserts a history row for a starting pass.
func (s *Store) RecordRunStart(ctx context.Context, id, kind string) error {
	_, err := s.runStmts.start.ExecContext(ctx, id, kind, nowUnix())
	if err != nil {
		return fmt.Errorf("record run start %q: %w", id, err)
	}

	return nil
}

// RecordRunFinish stamps the outcome on a history row.
func (s *Store) RecordRunFinish(ctx context.Context, id, outcome, errText string) error {
	_, err := s.runStmts.finish.ExecContext(ctx, nowUnix(), outcome, errText, id)
	if err != nil {
		return fmt.Errorf("record run finish %q: %w", id, err)
	}

	return nil
}

// Close closes all prepared statements and the database connection.
func (s *Store) Close() error {
	s.logger.Info("closing platform database")

	if err := s.closeStatements(); err != nil {
		s.logger.Error("error closing statements", "error", err)
	}

	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}

	return nil
}

// closeStatements closes all prepared statements, collecting errors.
func (s *Store) closeStatements() error {
	stmts := []*sql.Stmt{
		s.accountStmts.get, s.accountStmts.upsert, s.accountStmts.listPrefix,
		s.groupStmts.exists, s.groupStmts.create, s.groupStmts.addMember,
		s.groupStmts.removeMember, s.groupStmts.groupsForAccount, s.groupStmts.members,
		s.folderStmts.list, s.folderStmts.get,
		s.folderStmts.create, s.folderStmts.listGroups, s.folderStmts.addGroup,
		s.folderStmts.setPermissions, s.folderStmts.setACL, s.folderStmts.setDelegation,
		s.ruleStmts.forFile, s.ruleStmts.insert, s.ruleStmts.fileByPath, s.ruleStmts.insertFile,
		s.configStmts.get, s.configStmts.set,
		s.runStmts.start, s.runStmts.finish,
	}

	var errs []string

	for _, stmt := range stmts {
		if stmt != nil {
			if err := stmt.Close(); err != nil {
				errs = append(errs, err.Error())
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close statements: %s", strings.Join(errs, "; "))
	}

	return nil
}

// Compile-time interface checks.
var (
	_ AccountDirectory = (*Store)(nil)
	_ GroupDirectory   = (*Store)(nil)
	_ FolderManager    = (*Store)(nil)
	_ RuleStore        = (*Store)(nil)
	_ ConfigStore      = (*Store)(nil)
	_ RunRecorder      = (*Store)(nil)
)
