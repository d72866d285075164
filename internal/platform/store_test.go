package platform

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestStore opens an in-memory store with migrations applied.
func newTestStore(t *testing.T) *Store {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	s, err := NewStore(":memory:", logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	return s
}

func TestAccounts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a, err := s.GetAccount(ctx, "ct-42")
	require.NoError(t, err)
	assert.Nil(t, a, "unknown uid yields nil account")

	require.NoError(t, s.UpsertAccount(ctx, Account{UID: "ct-42", DisplayName: "Ada L"}))
	require.NoError(t, s.UpsertAccount(ctx, Account{UID: "ct-43", DisplayName: "Grace H"}))
	require.NoError(t, s.UpsertAccount(ctx, Account{UID: "admin", DisplayName: "Admin"}))

	a, err = s.GetAccount(ctx, "ct-42")
	require.NoError(t, err)
	require.NotNil(t, a)
	assert.Equal(t, "Ada L", a.DisplayName)

	// Upsert updates in place.
	require.NoError(t, s.UpsertAccount(ctx, Account{UID: "ct-42", DisplayName: "Ada Lovelace"}))

	a, err = s.GetAccount(ctx, "ct-42")
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", a.DisplayName)

	managed, err := s.ListAccountsWithPrefix(ctx, "ct-")
	require.NoError(t, err)
	require.Len(t, managed, 2)
	assert.Equal(t, "ct-42", managed[0].UID)
	assert.Equal(t, "ct-43", managed[1].UID)
}

func TestListAccountsWithPrefix_EscapesWildcards(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertAccount(ctx, Account{UID: "ct_42"}))
	require.NoError(t, s.UpsertAccount(ctx, Account{UID: "ctX42"}))

	// "_" must match literally, not as a single-character wildcard.
	accounts, err := s.ListAccountsWithPrefix(ctx, "ct_")
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, "ct_42", accounts[0].UID)
}

func TestGroupsAndMemberships(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertAccount(ctx, Account{UID: "ct-42"}))
	require.NoError(t, s.UpsertAccount(ctx, Account{UID: "ct-43"}))

	exists, err := s.GroupExists(ctx, "ct-Youth")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, s.CreateGroup(ctx, "ct-Youth"))
	require.NoError(t, s.CreateGroup(ctx, "ct-Youth"), "create is idempotent")

	exists, err = s.GroupExists(ctx, "ct-Youth")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, s.AddMember(ctx, "ct-Youth", "ct-42"))
	require.NoError(t, s.AddMember(ctx, "ct-Youth", "ct-42"), "add is idempotent")
	require.NoError(t, s.AddMember(ctx, "ct-Youth", "ct-43"))

	members, err := s.MemberUIDs(ctx, "ct-Youth")
	require.NoError(t, err)
	assert.Equal(t, []string{"ct-42", "ct-43"}, members)

	gids, err := s.GroupIDsForAccount(ctx, "ct-42")
	require.NoError(t, err)
	assert.Equal(t, []string{"ct-Youth"}, gids)

	require.NoError(t, s.RemoveMember(ctx, "ct-Youth", "ct-42"))
	require.NoError(t, s.RemoveMember(ctx, "ct-Youth", "ct-42"), "removing twice is fine")

	members, err = s.MemberUIDs(ctx, "ct-Youth")
	require.NoError(t, err)
	assert.Equal(t, []string{"ct-43"}, members)
}

func TestFolders(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	folders, err := s.ListFolders(ctx)
	require.NoError(t, err)
	assert.Empty(t, folders)

	id, err := s.CreateFolder(ctx, "Youth")
	require.NoError(t, err)
	require.Positive(t, id)

	// The root file node is created alongside the folder.
	fileID, ok, err := s.FileIDByPath(ctx, s.RootStorageID(), FolderRootPath(id))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Positive(t, fileID)

	f, err := s.GetFolder(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, f)
	assert.Equal(t, "Youth", f.MountPoint)
	assert.False(t, f.ACLEnabled)
	assert.Empty(t, f.GroupIDs)

	require.NoError(t, s.CreateGroup(ctx, "ct-Youth"))
	require.NoError(t, s.CreateGroup(ctx, "ct-Youth (Leitung)"))
	require.NoError(t, s.AddApplicableGroup(ctx, id, "ct-Youth"))
	require.NoError(t, s.AddApplicableGroup(ctx, id, "ct-Youth (Leitung)"))
	require.NoError(t, s.AddApplicableGroup(ctx, id, "ct-Youth"), "attach is idempotent")
	require.NoError(t, s.SetGroupPermissions(ctx, id, "ct-Youth", PermissionAll))
	require.NoError(t, s.SetACLDelegation(ctx, id, PrincipalTypeGroup, "ct-Youth (Leitung)", true))
	require.NoError(t, s.SetFolderACLEnabled(ctx, id, true))

	f, err = s.GetFolder(ctx, id)
	require.NoError(t, err)
	assert.True(t, f.ACLEnabled)
	assert.Equal(t, []string{"ct-Youth", "ct-Youth (Leitung)"}, f.GroupIDs)

	folders, err = s.ListFolders(ctx)
	require.NoError(t, err)
	require.Len(t, folders, 1)
	assert.Equal(t, f.GroupIDs, folders[0].GroupIDs)

	missing, err := s.GetFolder(ctx, 999)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestSetACLDelegation_RejectsNonGroupPrincipal(t *testing.T) {
	s := newTestStore(t)

	err := s.SetACLDelegation(context.Background(), 1, "user", "alice", true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported principal type")
}

func TestRules(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rules, err := s.RulesForPath(ctx, s.RootStorageID(), "__groupfolders/1")
	require.NoError(t, err)
	assert.Nil(t, rules, "path without a file node has no rules")

	id, err := s.CreateFolder(ctx, "Youth")
	require.NoError(t, err)

	path := FolderRootPath(id)

	fileID, ok, err := s.FileIDByPath(ctx, s.RootStorageID(), path)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, s.InsertRule(ctx, fileID, PrincipalTypeGroup, "ct-Youth", PermissionAll, PermissionRead))
	require.NoError(t, s.InsertRule(ctx, fileID, PrincipalTypeGroup, "ct-Youth (Leitung)", PermissionAll, PermissionAll))

	rules, err = s.RulesForPath(ctx, s.RootStorageID(), path)
	require.NoError(t, err)
	require.Len(t, rules, 2)

	assert.Equal(t, "ct-Youth", rules[0].MappingID)
	assert.Equal(t, PermissionRead, rules[0].Permissions)
	assert.Equal(t, PermissionAll, rules[0].Mask)
	assert.Equal(t, "ct-Youth (Leitung)", rules[1].MappingID)
	assert.Equal(t, PermissionAll, rules[1].Permissions)
}

func TestAppConfig(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	v, err := s.GetAppValue(ctx, "api_session")
	require.NoError(t, err)
	assert.Empty(t, v)

	require.NoError(t, s.SetAppValue(ctx, "api_session", "cookie=1"))
	require.NoError(t, s.SetAppValue(ctx, "api_session", "cookie=2"))

	v, err = s.GetAppValue(ctx, "api_session")
	require.NoError(t, err)
	assert.Equal(t, "cookie=2", v)
}

func TestRunHistory(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.RecordRunStart(ctx, "run-1", "full"))
	require.NoError(t, s.RecordRunFinish(ctx, "run-1", "success", ""))

	var kind, outcome string
	err := s.db.QueryRowContext(ctx,
		`SELECT kind, outcome FROM sync_runs WHERE id = ?`, "run-1").Scan(&kind, &outcome)
	require.NoError(t, err)
	assert.Equal(t, "full", kind)
	assert.Equal(t, "success", outcome)
}
