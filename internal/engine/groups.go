package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/devdot/churchsync/internal/churchtools"
	"github.com/devdot/churchsync/internal/platform"
)

// ReconcileGroups runs the full-catalog group/folder pass: for every remote
// group carrying the configured folder tag, ensure the local group, leader
// group, shared folder, folder permissions, and ACL rules exist. Every
// mutation is create-if-absent; existing configuration is never modified.
//
// When folder sync is disabled this is a no-op — local groups are then
// created lazily by person reconciliation assigning memberships.
//
// Groups are processed independently: a failure on one group does not stop
// the others, and all failures are joined into the returned error.
func (e *Engine) ReconcileGroups(ctx context.Context, groups []churchtools.Group) error {
	if !e.settings.FoldersEnabled {
		e.logger.Debug("folder sync disabled, skipping group reconciliation")
		return nil
	}

	folders, err := e.folders.ListFolders(ctx)
	if err != nil {
		return fmt.Errorf("engine: listing folders: %w", err)
	}

	byMount := make(map[string]platform.Folder, len(folders))
	for _, f := range folders {
		byMount[f.MountPoint] = f
	}

	var errs []error

	reconciled := 0

	for _, g := range groups {
		if !g.HasTag(e.settings.FolderTag) {
			continue
		}

		if err := e.reconcileGroupFolder(ctx, g, byMount); err != nil {
			e.logger.Error("group reconciliation failed",
				slog.Int("group_id", g.ID),
				slog.String("group_name", g.Name),
				slog.String("error", err.Error()),
			)

			errs = append(errs, fmt.Errorf("group %q: %w", g.Name, err))

			continue
		}

		reconciled++
	}

	e.logger.Info("group reconciliation complete",
		slog.Int("reconciled", reconciled),
		slog.Int("failed", len(errs)),
	)

	if len(errs) > 0 {
		return fmt.Errorf("engine: reconciling groups: %w", errors.Join(errs...))
	}

	return nil
}

// reconcileGroupFolder ensures one remote group's local group, leader group,
// folder, permissions, and ACL rules exist.
func (e *Engine) reconcileGroupFolder(ctx context.Context, g churchtools.Group, byMount map[string]platform.Folder) error {
	gid := e.localGroupName(g.Name)
	if err := e.groups.CreateGroup(ctx, gid); err != nil {
		return err
	}

	// The leader group always exists, even while no member is a leader, so
	// the folder ACL setup below has valid principals.
	leaderGID := e.leaderGroupName(gid)
	if err := e.groups.CreateGroup(ctx, leaderGID); err != nil {
		return err
	}

	folder, err := e.ensureFolder(ctx, g.Name, byMount)
	if err != nil {
		return err
	}

	// Idempotence gate: permissions are established exactly once, when the
	// folder has no applicable groups yet. A folder that already has any
	// group keeps its group list untouched so manual configuration survives.
	if len(folder.GroupIDs) == 0 {
		if err := e.setupFolderGroups(ctx, folder.ID, gid, leaderGID); err != nil {
			return err
		}
	}

	return e.ensureFolderRules(ctx, folder.ID, gid, leaderGID)
}

// ensureFolder resolves the folder mounted at the remote group name, creating
// it when absent.
func (e *Engine) ensureFolder(ctx context.Context, mountPoint string, byMount map[string]platform.Folder) (*platform.Folder, error) {
	if f, ok := byMount[mountPoint]; ok {
		return &f, nil
	}

	id, err := e.folders.CreateFolder(ctx, mountPoint)
	if err != nil {
		return nil, err
	}

	folder, err := e.folders.GetFolder(ctx, id)
	if err != nil {
		return nil, err
	}

	if folder == nil {
		return nil, fmt.Errorf("folder %d missing after create", id)
	}

	e.logger.Info("created folder",
		slog.String("mount_point", mountPoint),
		slog.Int64("folder_id", id),
	)

	return folder, nil
}

// setupFolderGroups grants the member group and leader group full permissions
// on the folder, delegates ACL management to the leader group, and enables
// folder-level ACL enforcement.
func (e *Engine) setupFolderGroups(ctx context.Context, folderID int64, gid, leaderGID string) error {
	if err := e.folders.AddApplicableGroup(ctx, folderID, gid); err != nil {
		return err
	}

	if err := e.folders.SetGroupPermissions(ctx, folderID, gid, platform.PermissionAll); err != nil {
		return err
	}

	if err := e.folders.AddApplicableGroup(ctx, folderID, leaderGID); err != nil {
		return err
	}

	if err := e.folders.SetGroupPermissions(ctx, folderID, leaderGID, platform.PermissionAll); err != nil {
		return err
	}

	if err := e.folders.SetACLDelegation(ctx, folderID, platform.PrincipalTypeGroup, leaderGID, true); err != nil {
		return err
	}

	return e.folders.SetFolderACLEnabled(ctx, folderID, true)
}

// ensureFolderRules inserts the two ACL rules for the folder's root node:
// read-only for the member group, full control for the leader group.
// Idempotence gate: rules are written only when no rule exists for the path,
// so manual rules are never duplicated or clobbered.
func (e *Engine) ensureFolderRules(ctx context.Context, folderID int64, gid, leaderGID string) error {
	storageID := e.rules.RootStorageID()
	path := platform.FolderRootPath(folderID)

	rules, err := e.rules.RulesForPath(ctx, storageID, path)
	if err != nil {
		return err
	}

	if len(rules) > 0 {
		return nil
	}

	fileID, ok, err := e.rules.FileIDByPath(ctx, storageID, path)
	if err != nil {
		return err
	}

	if !ok {
		return fmt.Errorf("no file node at %q", path)
	}

	if err := e.rules.InsertRule(ctx, fileID, platform.PrincipalTypeGroup, gid,
		platform.PermissionAll, platform.PermissionRead); err != nil {
		return err
	}

	if err := e.rules.InsertRule(ctx, fileID, platform.PrincipalTypeGroup, leaderGID,
		platform.PermissionAll, platform.PermissionAll); err != nil {
		return err
	}

	e.logger.Info("installed folder acl rules",
		slog.Int64("folder_id", folderID),
		slog.String("group", gid),
		slog.String("leader_group", leaderGID),
	)

	return nil
}
