package churchtools

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthClient(url string, creds *memCreds) *Client {
	c := NewClient(url, http.DefaultClient, creds, "standing-token", slog.Default(), Options{})
	c.sleepFunc = noopSleep

	return c
}

func TestAuthenticate_ReusesPersistedSession(t *testing.T) {
	var tokenUsed bool

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, whoamiPath, r.URL.Path)

		if r.Header.Get("Authorization") != "" {
			tokenUsed = true
		}

		if r.Header.Get("Cookie") == "ChurchTools_session=old" {
			w.WriteHeader(http.StatusOK)
			return
		}

		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	creds := &memCreds{session: "ChurchTools_session=old"}
	client := newAuthClient(srv.URL, creds)

	require.NoError(t, client.Authenticate(context.Background()))
	assert.False(t, tokenUsed, "login token must not be used when the session is valid")
	// Server set no cookie, so the presented session is re-persisted as is.
	assert.Equal(t, "ChurchTools_session=old", creds.session)
	assert.Equal(t, 1, creds.saves)
	assert.Equal(t, "ChurchTools_session=old", client.session)
}

func TestAuthenticate_PersistsRotatedSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "ChurchTools_session", Value: "rotated"})
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	creds := &memCreds{session: "ChurchTools_session=old"}
	client := newAuthClient(srv.URL, creds)

	require.NoError(t, client.Authenticate(context.Background()))
	assert.Equal(t, "ChurchTools_session=rotated", creds.session)
	assert.Equal(t, "ChurchTools_session=rotated", client.session)
}

func TestAuthenticate_FallsBackToToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "Login standing-token" {
			http.SetCookie(w, &http.Cookie{Name: "ChurchTools_session", Value: "fresh"})
			w.WriteHeader(http.StatusOK)

			return
		}

		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	creds := &memCreds{session: "ChurchTools_session=stale"}
	client := newAuthClient(srv.URL, creds)

	require.NoError(t, client.Authenticate(context.Background()))
	assert.Equal(t, "ChurchTools_session=fresh", creds.session)
}

func TestAuthenticate_NoSessionGoesStraightToToken(t *testing.T) {
	var calls int

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++

		require.Equal(t, "Login standing-token", r.Header.Get("Authorization"))
		http.SetCookie(w, &http.Cookie{Name: "ChurchTools_session", Value: "fresh"})
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	creds := &memCreds{}
	client := newAuthClient(srv.URL, creds)

	require.NoError(t, client.Authenticate(context.Background()))
	assert.Equal(t, 1, calls)
}

func TestAuthenticate_BothRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	creds := &memCreds{session: "ChurchTools_session=stale"}
	client := newAuthClient(srv.URL, creds)

	err := client.Authenticate(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAuthFailed)
	// The stored session is left alone so the operator can inspect it.
	assert.Equal(t, "ChurchTools_session=stale", creds.session)
	assert.Zero(t, creds.saves)
}

func TestAuthenticate_ServerErrorIsNotAuthFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	creds := &memCreds{session: "ChurchTools_session=valid"}
	client := newAuthClient(srv.URL, creds)

	err := client.Authenticate(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrServerError)
	assert.NotErrorIs(t, err, ErrAuthFailed)
}

func TestSessionFromResponse_JoinsCookies(t *testing.T) {
	resp := &http.Response{Header: http.Header{}}
	resp.Header.Add("Set-Cookie", "a=1; Path=/; HttpOnly")
	resp.Header.Add("Set-Cookie", "b=2")

	assert.Equal(t, "a=1; b=2", sessionFromResponse(resp))
}

func TestSessionFromResponse_Empty(t *testing.T) {
	resp := &http.Response{Header: http.Header{}}
	assert.Empty(t, sessionFromResponse(resp))
}
