package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shoenig/test/must"

	"github.com/enterprise/taskboard/pkg/session"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *session.MemStore) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	store := session.NewMemStore()
	return New(srv.URL, store, zerolog.Nop()), store
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, body string) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err := w.Write([]byte(body))
	must.NoError(t, err)
}

func TestExchangeLogin_Success(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		must.Eq(t, http.MethodPost, r.Method)
		must.Eq(t, "/auth/login", r.URL.Path)
		must.NotEq(t, "", r.Header.Get("X-Request-ID"))

		var req struct{ Username, Password string }
		must.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		must.Eq(t, "alice", req.Username)

		writeJSON(t, w, http.StatusOK,
			`{"success":true,"message":"Login successful","data":{"accessToken":"tok-A"}}`)
	}))

	tok, err := c.ExchangeLogin(context.Background(), "alice", "s3cret")
	must.NoError(t, err)
	must.Eq(t, "tok-A", tok)
}

func TestExchangeLogin_RejectedCarriesBackendMessage(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusUnauthorized,
			`{"success":false,"message":"Invalid credentials","data":null}`)
	}))

	_, err := c.ExchangeLogin(context.Background(), "bob", "wrong")
	must.ErrorIs(t, err, ErrUnauthorized)
	must.ErrorContains(t, err, "Invalid credentials")
}

func TestExchangeLogin_MissingToken(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, `{"success":true,"message":"ok","data":{}}`)
	}))

	_, err := c.ExchangeLogin(context.Background(), "alice", "s3cret")
	must.ErrorIs(t, err, ErrMalformedResponse)
}

func TestResolve_AttachesBearerToken(t *testing.T) {
	var got string
	c, store := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		writeJSON(t, w, http.StatusOK,
			`{"success":true,"message":"User fetched","data":{"id":"1","username":"alice","roles":["ROLE_ADMIN"]}}`)
	}))
	must.NoError(t, store.Save("tok-A"))

	id, err := c.Resolve(context.Background())
	must.NoError(t, err)
	must.Eq(t, "Bearer tok-A", got)
	must.Eq(t, "alice", id.Username)
	must.True(t, id.HasRole("ROLE_ADMIN"))
}

func TestResolve_WithoutStoredCredential(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request should be made without a stored credential")
	}))

	_, err := c.Resolve(context.Background())
	must.ErrorIs(t, err, ErrUnauthorized)
}

func TestResolve_HeterogeneousRoleDesignators(t *testing.T) {
	// Older backends emit roles as objects and ids as numbers; both forms
	// must normalize.
	c, store := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK,
			`{"success":true,"message":"User fetched","data":{"id":42,"username":"carol","roles":[{"name":"ROLE_MANAGER"},"ROLE_EMPLOYEE"]}}`)
	}))
	must.NoError(t, store.Save("tok-A"))

	id, err := c.Resolve(context.Background())
	must.NoError(t, err)
	must.Eq(t, "42", id.ID)
	must.True(t, id.HasRole("ROLE_MANAGER"))
	must.True(t, id.HasRole("ROLE_EMPLOYEE"))
	must.False(t, id.HasRole("ROLE_ADMIN"))
}

func TestResolve_ExpiredTokenIsUnauthorized(t *testing.T) {
	c, store := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusUnauthorized,
			`{"success":false,"message":"token expired","data":null}`)
	}))
	must.NoError(t, store.Save("tok-B"))

	_, err := c.Resolve(context.Background())
	must.ErrorIs(t, err, ErrUnauthorized)
}

func TestResolve_MalformedBody(t *testing.T) {
	c, store := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, `<html>gateway error</html>`)
	}))
	must.NoError(t, store.Save("tok-A"))

	_, err := c.Resolve(context.Background())
	must.ErrorIs(t, err, ErrMalformedResponse)
}

func TestResolve_NetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	store := session.NewMemStore()
	must.NoError(t, store.Save("tok-A"))
	c := New(srv.URL, store, zerolog.Nop())
	srv.Close()

	_, err := c.Resolve(context.Background())
	must.ErrorIs(t, err, ErrNetwork)
	must.False(t, errors.Is(err, ErrUnauthorized))
}

func TestTasks_PerProjectPath(t *testing.T) {
	c, store := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		must.Eq(t, "/tasks/project/p1", r.URL.Path)
		must.Eq(t, "2", r.URL.Query().Get("page"))
		writeJSON(t, w, http.StatusOK,
			`{"success":true,"message":"Tasks fetched","data":{"items":[{"id":"t1","title":"Ship it","status":"todo","priority":"high","project_id":"p1"}],"total":21,"page":2,"limit":20,"total_pages":2}}`)
	}))
	must.NoError(t, store.Save("tok-A"))

	page, err := c.Tasks(context.Background(), "p1", 2, 20)
	must.NoError(t, err)
	must.Len(t, 1, page.Items)
	must.Eq(t, "Ship it", page.Items[0].Title)
	must.Eq(t, int64(21), page.Total)
}

func TestProjects_List(t *testing.T) {
	c, store := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		must.Eq(t, "/projects", r.URL.Path)
		writeJSON(t, w, http.StatusOK,
			`{"success":true,"message":"Projects fetched","data":[{"id":"p1","name":"Atlas","owner_id":"1","member_ids":["1","2"]}]}`)
	}))
	must.NoError(t, store.Save("tok-A"))

	projects, err := c.Projects(context.Background())
	must.NoError(t, err)
	must.Len(t, 1, projects)
	must.Eq(t, "Atlas", projects[0].Name)
}

func TestUsers_ForbiddenForNonAdmin(t *testing.T) {
	c, store := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusForbidden,
			`{"success":false,"message":"insufficient role","data":null}`)
	}))
	must.NoError(t, store.Save("tok-A"))

	_, err := c.Users(context.Background())
	must.ErrorIs(t, err, ErrUnauthorized)
}
