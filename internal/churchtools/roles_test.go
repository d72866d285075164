package churchtools

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const roleTableJSON = `{"data":[
	{"id":9,"name":"Leiter","isLeader":true},
	{"id":15,"name":"Administrator","isLeader":false},
	{"id":16,"name":"Teilnehmer","isLeader":false}
]}`

func newRoleServer(t *testing.T, fetches *atomic.Int32) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/group/roles", r.URL.Path)
		fetches.Add(1)
		_, _ = w.Write([]byte(roleTableJSON))
	}))
}

func TestIsLeaderRole(t *testing.T) {
	var fetches atomic.Int32

	srv := newRoleServer(t, &fetches)
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	ctx := context.Background()

	tests := []struct {
		name   string
		roleID int
		leader bool
	}{
		{"isLeader flag", 9, true},
		{"administrator name overrides flag", 15, true},
		{"regular member", 16, false},
		{"unknown role id", 999, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			leader, err := client.IsLeaderRole(ctx, tt.roleID)
			require.NoError(t, err)
			assert.Equal(t, tt.leader, leader)
		})
	}

	assert.Equal(t, int32(1), fetches.Load(), "role table must be fetched exactly once")
}

func TestRoleType_CacheInvalidation(t *testing.T) {
	var fetches atomic.Int32

	srv := newRoleServer(t, &fetches)
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	ctx := context.Background()

	_, ok, err := client.RoleType(ctx, 9)
	require.NoError(t, err)
	assert.True(t, ok)

	client.InvalidateCaches()

	rt, ok, err := client.RoleType(ctx, 9)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Leiter", rt.Name)
	assert.True(t, rt.IsLeader)

	assert.Equal(t, int32(2), fetches.Load(), "invalidation must force a refetch")
}

func TestRoleTypeTable_FetchErrorNotCached(t *testing.T) {
	var fetches atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if fetches.Add(1) == 1 {
			w.WriteHeader(http.StatusForbidden)
			return
		}

		_, _ = w.Write([]byte(roleTableJSON))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	ctx := context.Background()

	_, err := client.IsLeaderRole(ctx, 9)
	require.Error(t, err)

	leader, err := client.IsLeaderRole(ctx, 9)
	require.NoError(t, err)
	assert.True(t, leader)
}
