package churchtools

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
)

// adminRoleName is the reserved role name that grants leader tier regardless
// of the isLeader flag.
const adminRoleName = "Administrator"

type roleListResponse struct {
	Data []roleTypeResponse `json:"data"`
}

// RoleType returns the role type for the given id, or ok=false when the id is
// unknown to the remote taxonomy. The table is fetched once, lazily, on first
// lookup and reused for the client's lifetime — role taxonomies change
// rarely, and InvalidateCaches bounds the staleness for long-lived callers.
func (c *Client) RoleType(ctx context.Context, id int) (RoleType, bool, error) {
	types, err := c.roleTypeTable(ctx)
	if err != nil {
		return RoleType{}, false, err
	}

	rt, ok := types[id]

	return rt, ok, nil
}

// IsLeaderRole reports whether the given role type id is leader-tier: its
// isLeader flag is set, or its name is the reserved administrator marker.
// An unknown role type id is non-leader, never an error.
func (c *Client) IsLeaderRole(ctx context.Context, id int) (bool, error) {
	rt, ok, err := c.RoleType(ctx, id)
	if err != nil {
		return false, err
	}

	if !ok {
		return false, nil
	}

	return rt.IsLeader || rt.Name == adminRoleName, nil
}

// roleTypeTable returns the cached role-type table, fetching it on first use.
func (c *Client) roleTypeTable(ctx context.Context) (map[int]RoleType, error) {
	c.roleMu.Lock()
	defer c.roleMu.Unlock()

	if c.roleTypes != nil {
		return c.roleTypes, nil
	}

	resp, err := c.Do(ctx, http.MethodGet, "/api/group/roles", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var rr roleListResponse
	if err := json.NewDecoder(resp.Body).Decode(&rr); err != nil {
		return nil, fmt.Errorf("churchtools: decoding role types: %w", err)
	}

	types := make(map[int]RoleType, len(rr.Data))
	for _, r := range rr.Data {
		rt := r.toRoleType()
		types[rt.ID] = rt
	}

	c.roleTypes = types

	c.logger.Info("cached role type table", slog.Int("role_types", len(types)))

	return types, nil
}
