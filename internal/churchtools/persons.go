package churchtools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
)

type personListResponse struct {
	Data []personResponse `json:"data"`
	Meta listMeta         `json:"meta"`
}

type personGetResponse struct {
	Data personResponse `json:"data"`
}

type membershipListResponse struct {
	Data []membershipResponse `json:"data"`
}

// FetchAllPersons retrieves the full remote person directory, page by page.
// A single failed page aborts the whole fetch.
func (c *Client) FetchAllPersons(ctx context.Context) ([]Person, error) {
	c.logger.Info("fetching all remote persons")

	var persons []Person

	page := 1

	for {
		pagePersons, last, err := c.fetchPersonPage(ctx, page)
		if err != nil {
			return nil, err
		}

		persons = append(persons, pagePersons...)

		if page >= last {
			break
		}

		page++
	}

	c.logger.Info("fetched all remote persons",
		slog.Int("persons", len(persons)),
		slog.Int("pages", page),
	)

	return persons, nil
}

func (c *Client) fetchPersonPage(ctx context.Context, page int) ([]Person, int, error) {
	path := fmt.Sprintf("/api/persons?page=%d", page)

	resp, err := c.Do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	var pr personListResponse
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		return nil, 0, fmt.Errorf("churchtools: decoding person page %d: %w", page, err)
	}

	persons := make([]Person, 0, len(pr.Data))
	for _, p := range pr.Data {
		persons = append(persons, p.toPerson())
	}

	last := pr.Meta.Pagination.LastPage
	if last < 1 {
		last = page
	}

	return persons, last, nil
}

// FindPerson resolves a single person by remote id. It searches by id first
// so routine lookups do not clutter the remote audit trail, then falls back
// to a direct fetch. Returns (nil, nil) when no such person exists — a person
// absent from the remote directory is an expected condition, not an error.
func (c *Client) FindPerson(ctx context.Context, id int) (*Person, error) {
	person, err := c.searchPerson(ctx, id)
	if err != nil {
		return nil, err
	}

	if person != nil {
		return person, nil
	}

	return c.getPerson(ctx, id)
}

// searchPerson looks a person up through the filtered listing endpoint.
// Returns (nil, nil) when the search yields no match.
func (c *Client) searchPerson(ctx context.Context, id int) (*Person, error) {
	path := fmt.Sprintf("/api/persons?ids%%5B%%5D=%d", id)

	resp, err := c.Do(ctx, http.MethodGet, path, nil)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}

		return nil, err
	}
	defer resp.Body.Close()

	var pr personListResponse
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		return nil, fmt.Errorf("churchtools: decoding person search: %w", err)
	}

	if len(pr.Data) == 0 {
		return nil, nil
	}

	person := pr.Data[0].toPerson()

	return &person, nil
}

// getPerson fetches a person directly by id.
// Returns (nil, nil) on HTTP 404.
func (c *Client) getPerson(ctx context.Context, id int) (*Person, error) {
	path := fmt.Sprintf("/api/persons/%d", id)

	resp, err := c.Do(ctx, http.MethodGet, path, nil)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}

		return nil, err
	}
	defer resp.Body.Close()

	var pr personGetResponse
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		return nil, fmt.Errorf("churchtools: decoding person %d: %w", id, err)
	}

	person := pr.Data.toPerson()
	if person.ID == 0 {
		return nil, nil
	}

	return &person, nil
}

// FetchMemberships retrieves a person's current remote group memberships.
// The result is a per-pass snapshot; it is never cached.
func (c *Client) FetchMemberships(ctx context.Context, personID int) ([]GroupMembership, error) {
	path := fmt.Sprintf("/api/persons/%d/groups", personID)

	resp, err := c.Do(ctx, http.MethodGet, path, nil)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}

		return nil, err
	}
	defer resp.Body.Close()

	var mr membershipListResponse
	if err := json.NewDecoder(resp.Body).Decode(&mr); err != nil {
		return nil, fmt.Errorf("churchtools: decoding memberships for person %d: %w", personID, err)
	}

	memberships := make([]GroupMembership, 0, len(mr.Data))
	for _, m := range mr.Data {
		memberships = append(memberships, m.toMembership())
	}

	c.logger.Debug("fetched person memberships",
		slog.Int("person_id", personID),
		slog.Int("memberships", len(memberships)),
	)

	return memberships, nil
}
