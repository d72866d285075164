package churchtools

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
)

type groupListResponse struct {
	Data []groupResponse `json:"data"`
	Meta listMeta        `json:"meta"`
}

// FetchAllGroups retrieves the full remote group catalog with tags embedded,
// requesting successive pages until the server-reported last page is reached.
// A single failed page aborts the whole fetch — no partial group set is
// returned for downstream use.
func (c *Client) FetchAllGroups(ctx context.Context) ([]Group, error) {
	c.logger.Info("fetching all remote groups")

	var groups []Group

	page := 1

	for {
		pageGroups, last, err := c.fetchGroupPage(ctx, page)
		if err != nil {
			return nil, err
		}

		groups = append(groups, pageGroups...)

		c.logger.Debug("accumulated group page",
			slog.Int("page", page),
			slog.Int("page_groups", len(pageGroups)),
			slog.Int("total_groups", len(groups)),
		)

		if page >= last {
			break
		}

		page++
	}

	c.logger.Info("fetched all remote groups",
		slog.Int("groups", len(groups)),
		slog.Int("pages", page),
	)

	return groups, nil
}

// fetchGroupPage retrieves one page of the group listing and reports the
// server's last-page index.
func (c *Client) fetchGroupPage(ctx context.Context, page int) ([]Group, int, error) {
	path := fmt.Sprintf("/api/groups?include=tags&page=%d", page)

	resp, err := c.Do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	var gr groupListResponse
	if err := json.NewDecoder(resp.Body).Decode(&gr); err != nil {
		return nil, 0, fmt.Errorf("churchtools: decoding group page %d: %w", page, err)
	}

	groups := make([]Group, 0, len(gr.Data))
	for _, g := range gr.Data {
		groups = append(groups, g.toGroup())
	}

	last := gr.Meta.Pagination.LastPage
	if last < 1 {
		last = page
	}

	return groups, last, nil
}
