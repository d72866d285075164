package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/devdot/churchsync/internal/churchtools"
)

// ReconcileAllPersons reconciles membership for every managed local account,
// resolving each account's remote person in the supplied directory snapshot.
// Accounts whose UID does not carry the configured prefix, or whose person id
// is absent from the snapshot, are skipped entirely. Accounts are processed
// independently; all failures are joined into the returned error.
func (e *Engine) ReconcileAllPersons(ctx context.Context, persons []churchtools.Person, logger *slog.Logger) error {
	if logger == nil {
		logger = e.logger
	}

	byID := make(map[int]churchtools.Person, len(persons))
	for _, p := range persons {
		byID[p.ID] = p
	}

	accounts, err := e.accounts.ListAccountsWithPrefix(ctx, e.settings.UserPrefix)
	if err != nil {
		return fmt.Errorf("engine: listing accounts: %w", err)
	}

	var errs []error

	reconciled := 0

	for _, account := range accounts {
		id, ok := e.personID(account.UID)
		if !ok {
			continue
		}

		person, found := byID[id]
		if !found {
			// Absent from the remote directory: leave memberships as-is.
			logger.Debug("no remote person for account",
				slog.String("uid", account.UID),
				slog.Int("person_id", id),
			)

			continue
		}

		if err := e.ReconcilePerson(ctx, account.UID, &person, logger); err != nil {
			errs = append(errs, fmt.Errorf("account %q: %w", account.UID, err))
			continue
		}

		reconciled++
	}

	logger.Info("person reconciliation complete",
		slog.Int("accounts", len(accounts)),
		slog.Int("reconciled", reconciled),
		slog.Int("failed", len(errs)),
	)

	if len(errs) > 0 {
		return fmt.Errorf("engine: reconciling persons: %w", errors.Join(errs...))
	}

	return nil
}

// ReconcilePerson reconciles one account's local group memberships against
// its current remote memberships as a full-replace diff. Pass a nil person to
// have it resolved from the account's UID; when no remote person exists, the
// account is left untouched (existing memberships are not purged).
func (e *Engine) ReconcilePerson(ctx context.Context, uid string, person *churchtools.Person, logger *slog.Logger) error {
	if logger == nil {
		logger = e.logger
	}

	if person == nil {
		id, ok := e.personID(uid)
		if !ok {
			logger.Debug("account not managed, skipping", slog.String("uid", uid))
			return nil
		}

		found, err := e.remote.FindPerson(ctx, id)
		if err != nil {
			return fmt.Errorf("engine: resolving person %d: %w", id, err)
		}

		if found == nil {
			logger.Debug("no remote person, leaving memberships unchanged",
				slog.String("uid", uid),
				slog.Int("person_id", id),
			)

			return nil
		}

		person = found
	}

	memberships, err := e.remote.FetchMemberships(ctx, person.ID)
	if err != nil {
		return fmt.Errorf("engine: fetching memberships for person %d: %w", person.ID, err)
	}

	// Snapshot current memberships before mutating. Everything not
	// re-confirmed by a remote membership below gets removed.
	current, err := e.groups.GroupIDsForAccount(ctx, uid)
	if err != nil {
		return fmt.Errorf("engine: reading current groups for %q: %w", uid, err)
	}

	keep := make(map[string]bool, len(memberships)*2)

	for _, m := range memberships {
		kept, err := e.applyMembership(ctx, uid, m)
		if err != nil {
			return err
		}

		for _, gid := range kept {
			keep[gid] = true
		}
	}

	return e.removeStale(ctx, uid, current, keep, logger)
}

// applyMembership adds the account to the membership's local group and, for
// leader-tier roles, to the leader group. Groups that do not exist locally
// are skipped; they are created by the group pass, not here. Returns the
// group ids confirmed by this membership.
func (e *Engine) applyMembership(ctx context.Context, uid string, m churchtools.GroupMembership) ([]string, error) {
	var kept []string

	gid := e.localGroupName(m.GroupName)

	exists, err := e.groups.GroupExists(ctx, gid)
	if err != nil {
		return nil, fmt.Errorf("engine: checking group %q: %w", gid, err)
	}

	if exists {
		if err := e.groups.AddMember(ctx, gid, uid); err != nil {
			return nil, fmt.Errorf("engine: adding %q to %q: %w", uid, gid, err)
		}

		kept = append(kept, gid)
	}

	leader, err := e.remote.IsLeaderRole(ctx, m.RoleTypeID)
	if err != nil {
		return nil, fmt.Errorf("engine: classifying role %d: %w", m.RoleTypeID, err)
	}

	if !leader {
		return kept, nil
	}

	leaderGID := e.leaderGroupName(gid)

	exists, err = e.groups.GroupExists(ctx, leaderGID)
	if err != nil {
		return nil, fmt.Errorf("engine: checking group %q: %w", leaderGID, err)
	}

	if exists {
		if err := e.groups.AddMember(ctx, leaderGID, uid); err != nil {
			return nil, fmt.Errorf("engine: adding %q to %q: %w", uid, leaderGID, err)
		}

		kept = append(kept, leaderGID)
	}

	return kept, nil
}

// removeStale removes the account from every group it belonged to before the
// pass that no qualifying remote membership re-confirmed:
// toRemove = current − keep. Groups that vanished locally are skipped.
func (e *Engine) removeStale(ctx context.Context, uid string, current []string, keep map[string]bool, logger *slog.Logger) error {
	var toRemove []string

	for _, gid := range current {
		if !keep[gid] {
			toRemove = append(toRemove, gid)
		}
	}

	sort.Strings(toRemove)

	for _, gid := range toRemove {
		exists, err := e.groups.GroupExists(ctx, gid)
		if err != nil {
			return fmt.Errorf("engine: checking group %q: %w", gid, err)
		}

		if !exists {
			continue
		}

		if err := e.groups.RemoveMember(ctx, gid, uid); err != nil {
			return fmt.Errorf("engine: removing %q from %q: %w", uid, gid, err)
		}

		logger.Info("removed stale membership",
			slog.String("uid", uid),
			slog.String("gid", gid),
		)
	}

	return nil
}
