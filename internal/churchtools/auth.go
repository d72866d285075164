package churchtools

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
)

// whoamiPath identifies the authenticated user and is the cheapest call that
// validates a session.
const whoamiPath = "/api/whoami"

// Authenticate obtains a usable API session, trying cached-session reuse
// before falling back to the standing login token:
//
//  1. Read the persisted session cookie from the credential store; if
//     non-empty, validate it against the API. On success, persist the
//     (possibly rotated) cookie and return.
//  2. Authenticate with the login token. On success, persist the resulting
//     session cookie and return.
//  3. Return ErrAuthFailed.
//
// Callers must treat ErrAuthFailed as fatal for the current pass; it is not
// retried within the same invocation. The previously persisted session is
// never cleared on failure.
func (c *Client) Authenticate(ctx context.Context) error {
	session, err := c.creds.Session(ctx)
	if err != nil {
		return fmt.Errorf("churchtools: reading persisted session: %w", err)
	}

	if session != "" {
		if err := c.attemptSession(ctx, session); err == nil {
			c.logger.Debug("authenticated with persisted session")
			return nil
		} else if !errors.Is(err, ErrUnauthorized) && !errors.Is(err, ErrForbidden) {
			// Transport or server failure, not a rejected session.
			return err
		}

		c.logger.Info("persisted session rejected, falling back to login token")
	}

	if err := c.attemptToken(ctx); err != nil {
		if errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrForbidden) {
			c.logger.Warn("login token rejected")
			return ErrAuthFailed
		}

		return err
	}

	c.logger.Info("authenticated with login token")

	return nil
}

// attemptSession validates an existing session cookie and, on success,
// installs and persists the (possibly rotated) session.
func (c *Client) attemptSession(ctx context.Context, session string) error {
	return c.whoami(ctx, func(req *http.Request) {
		req.Header.Set("Cookie", session)
	}, session)
}

// attemptToken authenticates with the standing login token and, on success,
// installs and persists the session cookie issued by the server.
func (c *Client) attemptToken(ctx context.Context) error {
	return c.whoami(ctx, func(req *http.Request) {
		req.Header.Set("Authorization", "Login "+c.loginToken)
	}, "")
}

// whoami performs a single authentication probe. No retry: a rejected
// credential stays rejected within one pass, and transient failures abort the
// pass per the engine's no-retry policy.
func (c *Client) whoami(ctx context.Context, authorize func(*http.Request), fallback string) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("churchtools: request canceled: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+whoamiPath, nil)
	if err != nil {
		return fmt.Errorf("churchtools: creating whoami request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)
	authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("churchtools: whoami request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    "whoami rejected",
			Err:        classifyStatus(resp.StatusCode),
		}
	}

	session := sessionFromResponse(resp)
	if session == "" {
		// Server did not rotate the session — keep what we presented.
		session = fallback
	}

	c.mu.Lock()
	c.session = session
	c.mu.Unlock()

	if err := c.creds.SaveSession(ctx, session); err != nil {
		return fmt.Errorf("churchtools: persisting session: %w", err)
	}

	c.logger.Debug("session persisted", slog.Bool("rotated", session != fallback))

	return nil
}

// sessionFromResponse builds a Cookie header value from the Set-Cookie
// headers of an authentication response. Returns empty when the server set
// no cookies.
func sessionFromResponse(resp *http.Response) string {
	cookies := resp.Cookies()
	if len(cookies) == 0 {
		return ""
	}

	pairs := make([]string, 0, len(cookies))
	for _, ck := range cookies {
		pairs = append(pairs, ck.Name+"="+ck.Value)
	}

	return strings.Join(pairs, "; ")
}
