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

func TestFindPerson_SearchHit(t *testing.T) {
	var directFetches atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/persons":
			require.Equal(t, "42", r.URL.Query().Get("ids[]"))
			_, _ = w.Write([]byte(`{"data":[{"id":42,"firstName":"Ada","lastName":"L","email":"ada@example.org"}]}`))
		case "/api/persons/42":
			directFetches.Add(1)
			_, _ = w.Write([]byte(`{"data":{"id":42}}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	person, err := client.FindPerson(context.Background(), 42)
	require.NoError(t, err)
	require.NotNil(t, person)
	assert.Equal(t, 42, person.ID)
	assert.Equal(t, "Ada", person.FirstName)
	assert.Zero(t, directFetches.Load(), "search hit must not trigger a direct fetch")
}

func TestFindPerson_FallsBackToDirectFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/persons":
			_, _ = w.Write([]byte(`{"data":[]}`))
		case "/api/persons/42":
			_, _ = w.Write([]byte(`{"data":{"id":42,"firstName":"Ada"}}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	person, err := client.FindPerson(context.Background(), 42)
	require.NoError(t, err)
	require.NotNil(t, person)
	assert.Equal(t, 42, person.ID)
}

func TestFindPerson_Missing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/persons" {
			_, _ = w.Write([]byte(`{"data":[]}`))
			return
		}

		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	person, err := client.FindPerson(context.Background(), 999)
	require.NoError(t, err)
	assert.Nil(t, person)
}

func TestFindPerson_EmptyDirectBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/persons" {
			_, _ = w.Write([]byte(`{"data":[]}`))
			return
		}

		// Some deployments answer 200 with an empty record instead of 404.
		_, _ = w.Write([]byte(`{"data":{}}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	person, err := client.FindPerson(context.Background(), 999)
	require.NoError(t, err)
	assert.Nil(t, person)
}

func TestFetchAllPersons_Paginates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "1" {
			_, _ = w.Write([]byte(`{"data":[{"id":1,"firstName":"Ada"}],
				"meta":{"pagination":{"current":1,"lastPage":2}}}`))
			return
		}

		_, _ = w.Write([]byte(`{"data":[{"id":2,"firstName":"Grace"}],
			"meta":{"pagination":{"current":2,"lastPage":2}}}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	persons, err := client.FetchAllPersons(context.Background())
	require.NoError(t, err)
	require.Len(t, persons, 2)
	assert.Equal(t, "Grace", persons[1].FirstName)
}

func TestFetchMemberships(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/persons/42/groups", r.URL.Path)
		_, _ = w.Write([]byte(`{"data":[
			{"group":{"domainIdentifier":"7","title":"Youth"},"groupTypeRoleId":9},
			{"group":{"domainIdentifier":"8","title":"Choir"},"groupTypeRoleId":16}
		]}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	memberships, err := client.FetchMemberships(context.Background(), 42)
	require.NoError(t, err)
	require.Len(t, memberships, 2)

	assert.Equal(t, GroupMembership{GroupID: 7, GroupName: "Youth", RoleTypeID: 9}, memberships[0])
	assert.Equal(t, GroupMembership{GroupID: 8, GroupName: "Choir", RoleTypeID: 16}, memberships[1])
}

func TestFetchMemberships_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	memberships, err := client.FetchMemberships(context.Background(), 42)
	require.NoError(t, err)
	assert.Nil(t, memberships)
}
