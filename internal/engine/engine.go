// Package engine implements the reconciliation passes that converge local
// group, folder, and membership state toward the remote church directory.
// All mutations are idempotence-gated, so a failed pass is safe to re-run.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/devdot/churchsync/internal/churchtools"
	"github.com/devdot/churchsync/internal/platform"
)

// Sync-run kinds recorded in the run history.
const (
	runKindFull   = "full"
	runKindPerson = "person"
)

// Run outcomes recorded in the run history.
const (
	outcomeSuccess = "success"
	outcomeFailure = "failure"
)

// RemoteDirectory is the remote church-directory surface the engine consumes.
// *churchtools.Client provides the real implementation.
type RemoteDirectory interface {
	Authenticate(ctx context.Context) error
	FetchAllGroups(ctx context.Context) ([]churchtools.Group, error)
	FetchAllPersons(ctx context.Context) ([]churchtools.Person, error)
	FindPerson(ctx context.Context, id int) (*churchtools.Person, error)
	FetchMemberships(ctx context.Context, personID int) ([]churchtools.GroupMembership, error)
	IsLeaderRole(ctx context.Context, roleTypeID int) (bool, error)
	InvalidateCaches()
}

// Settings are the name-derivation and scoping rules for one engine instance.
type Settings struct {
	// UserPrefix scopes which local accounts are managed: UID = prefix +
	// remote person id. Accounts without the prefix are never touched.
	UserPrefix string
	// GroupPrefix is prepended to remote group names to form local group ids.
	GroupPrefix string
	// LeaderGroupSuffix is appended to a local group id to form the
	// leader-tier group id.
	LeaderGroupSuffix string
	// FolderTag marks a remote group as eligible for folder provisioning.
	FolderTag string
	// FoldersEnabled gates the whole group/folder reconciliation pass.
	FoldersEnabled bool
}

// Engine runs the reconciliation passes. Construct one per CLI invocation, or
// hold one long-lived instance and call InvalidateCaches between passes.
type Engine struct {
	remote   RemoteDirectory
	accounts platform.AccountDirectory
	groups   platform.GroupDirectory
	folders  platform.FolderManager
	rules    platform.RuleStore
	runs     platform.RunRecorder
	settings Settings
	logger   *slog.Logger

	// single serializes concurrent single-account syncs for the same UID
	// (a login racing the scheduler). Different UIDs proceed in parallel.
	single singleflight.Group
}

// New creates a reconciliation engine.
func New(
	remote RemoteDirectory,
	accounts platform.AccountDirectory,
	groups platform.GroupDirectory,
	folders platform.FolderManager,
	rules platform.RuleStore,
	runs platform.RunRecorder,
	settings Settings,
	logger *slog.Logger,
) *Engine {
	if logger == nil {
		logger = slog.Default()
	}

	return &Engine{
		remote:   remote,
		accounts: accounts,
		groups:   groups,
		folders:  folders,
		rules:    rules,
		runs:     runs,
		settings: settings,
		logger:   logger,
	}
}

// InvalidateCaches drops the remote client's cached session and role-type
// table. Long-lived callers use this to bound cache staleness to one pass.
func (e *Engine) InvalidateCaches() {
	e.remote.InvalidateCaches()
}

// RunFullSync executes one full reconciliation pass: authenticate, fetch the
// remote group catalog, reconcile groups and folders, fetch the remote person
// directory, then reconcile every managed account's memberships. Strictly
// sequential; authentication failure is fatal and no group or person work is
// attempted.
func (e *Engine) RunFullSync(ctx context.Context) error {
	runID := uuid.NewString()
	logger := e.logger.With(slog.String("run_id", runID))

	logger.Info("starting full sync")

	if err := e.runs.RecordRunStart(ctx, runID, runKindFull); err != nil {
		return fmt.Errorf("engine: recording run start: %w", err)
	}

	err := e.fullSync(ctx, logger)
	e.finishRun(ctx, logger, runID, err)

	if err != nil {
		return err
	}

	logger.Info("full sync complete")

	return nil
}

func (e *Engine) fullSync(ctx context.Context, logger *slog.Logger) error {
	if err := e.remote.Authenticate(ctx); err != nil {
		return fmt.Errorf("engine: authentication: %w", err)
	}

	groups, err := e.remote.FetchAllGroups(ctx)
	if err != nil {
		return fmt.Errorf("engine: fetching groups: %w", err)
	}

	if err := e.ReconcileGroups(ctx, groups); err != nil {
		return err
	}

	persons, err := e.remote.FetchAllPersons(ctx)
	if err != nil {
		return fmt.Errorf("engine: fetching persons: %w", err)
	}

	return e.ReconcileAllPersons(ctx, persons, logger)
}

// RunSingleSync reconciles one account's memberships, used after a successful
// login so membership is fresh without waiting for the scheduled full pass.
// Concurrent calls for the same UID are collapsed into one execution.
// Accounts whose UID does not carry the configured prefix are not managed and
// are left untouched.
func (e *Engine) RunSingleSync(ctx context.Context, uid string) error {
	if !strings.HasPrefix(uid, e.settings.UserPrefix) {
		e.logger.Debug("account not managed, skipping", slog.String("uid", uid))
		return nil
	}

	_, err, _ := e.single.Do(uid, func() (any, error) {
		return nil, e.singleSync(ctx, uid)
	})

	return err
}

func (e *Engine) singleSync(ctx context.Context, uid string) error {
	runID := uuid.NewString()
	logger := e.logger.With(slog.String("run_id", runID), slog.String("uid", uid))

	logger.Info("starting single-account sync")

	if err := e.runs.RecordRunStart(ctx, runID, runKindPerson); err != nil {
		return fmt.Errorf("engine: recording run start: %w", err)
	}

	err := e.authAndReconcileOne(ctx, uid, logger)
	e.finishRun(ctx, logger, runID, err)

	if err != nil {
		return err
	}

	logger.Info("single-account sync complete")

	return nil
}

func (e *Engine) authAndReconcileOne(ctx context.Context, uid string, logger *slog.Logger) error {
	if err := e.remote.Authenticate(ctx); err != nil {
		return fmt.Errorf("engine: authentication: %w", err)
	}

	account, err := e.accounts.GetAccount(ctx, uid)
	if err != nil {
		return fmt.Errorf("engine: loading account %q: %w", uid, err)
	}

	if account == nil {
		logger.Warn("account not found locally, skipping")
		return nil
	}

	return e.ReconcilePerson(ctx, uid, nil, logger)
}

// finishRun stamps the run history row. History bookkeeping never masks the
// pass outcome.
func (e *Engine) finishRun(ctx context.Context, logger *slog.Logger, runID string, runErr error) {
	outcome := outcomeSuccess
	errText := ""

	if runErr != nil {
		outcome = outcomeFailure
		errText = runErr.Error()
	}

	if err := e.runs.RecordRunFinish(ctx, runID, outcome, errText); err != nil {
		logger.Warn("failed to record run finish", slog.String("error", err.Error()))
	}
}

// personID extracts the remote person id from a managed UID.
// ok=false when the UID does not carry the prefix or the remainder is not a
// number — such accounts are not managed by this engine.
func (e *Engine) personID(uid string) (int, bool) {
	rest, found := strings.CutPrefix(uid, e.settings.UserPrefix)
	if !found {
		return 0, false
	}

	id, err := strconv.Atoi(rest)
	if err != nil {
		return 0, false
	}

	return id, true
}

// localGroupName derives the local group id for a remote group name.
func (e *Engine) localGroupName(remoteName string) string {
	return e.settings.GroupPrefix + remoteName
}

// leaderGroupName derives the leader-tier group id for a local group id.
func (e *Engine) leaderGroupName(localName string) string {
	return localName + e.settings.LeaderGroupSuffix
}
