package session

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shoenig/test/must"
)

type fakeResolver struct {
	calls   int
	resolve func(ctx context.Context) (*Identity, error)
}

func (f *fakeResolver) Resolve(ctx context.Context) (*Identity, error) {
	f.calls++
	return f.resolve(ctx)
}

type fakeExchanger struct {
	calls    int
	exchange func(ctx context.Context, username, password string) (string, error)
}

func (f *fakeExchanger) ExchangeLogin(ctx context.Context, username, password string) (string, error) {
	f.calls++
	return f.exchange(ctx, username, password)
}

func aliceIdentity() *Identity {
	return NewIdentity("1", "alice", "alice@example.com", "Alice", []string{"ROLE_ADMIN", "ROLE_EMPLOYEE"})
}

func newTestManager(store CredentialStore, r *fakeResolver, e *fakeExchanger) *Manager {
	return NewManager(store, r, e, zerolog.Nop())
}

func TestStart_NoCredential_SettlesUnauthenticatedWithoutResolving(t *testing.T) {
	resolver := &fakeResolver{resolve: func(context.Context) (*Identity, error) {
		t.Fatal("resolver must not be called without a stored credential")
		return nil, nil
	}}
	m := newTestManager(NewMemStore(), resolver, &fakeExchanger{})

	must.Eq(t, StatusInitializing, m.Status())
	m.Start(context.Background())

	must.Eq(t, StatusUnauthenticated, m.Status())
	must.Nil(t, m.Identity())
	must.Zero(t, resolver.calls)
}

func TestStart_StoredCredentialResolves(t *testing.T) {
	store := NewMemStore()
	must.NoError(t, store.Save("tok-A"))
	resolver := &fakeResolver{resolve: func(context.Context) (*Identity, error) {
		return aliceIdentity(), nil
	}}
	m := newTestManager(store, resolver, &fakeExchanger{})

	m.Start(context.Background())

	must.Eq(t, StatusAuthenticated, m.Status())
	must.Eq(t, "alice", m.Identity().Username)
	must.True(t, m.HasRole("ROLE_ADMIN"))
	must.Eq(t, 1, resolver.calls)
}

func TestStart_RejectedCredentialIsCleared(t *testing.T) {
	store := NewMemStore()
	must.NoError(t, store.Save("tok-B"))
	resolver := &fakeResolver{resolve: func(context.Context) (*Identity, error) {
		return nil, errors.New("401 unauthorized")
	}}
	m := newTestManager(store, resolver, &fakeExchanger{})

	m.Start(context.Background())

	must.Eq(t, StatusUnauthenticated, m.Status())
	_, ok, err := store.Load()
	must.NoError(t, err)
	must.False(t, ok, must.Sprint("rejected credential must not survive startup"))
}

func TestStart_Idempotent(t *testing.T) {
	store := NewMemStore()
	must.NoError(t, store.Save("tok-A"))
	resolver := &fakeResolver{resolve: func(context.Context) (*Identity, error) {
		return aliceIdentity(), nil
	}}
	m := newTestManager(store, resolver, &fakeExchanger{})

	m.Start(context.Background())
	m.Start(context.Background())
	m.Start(context.Background())

	must.Eq(t, 1, resolver.calls)
	must.Eq(t, StatusAuthenticated, m.Status())
}

func TestLogin_Success(t *testing.T) {
	store := NewMemStore()
	resolver := &fakeResolver{resolve: func(context.Context) (*Identity, error) {
		return aliceIdentity(), nil
	}}
	exchanger := &fakeExchanger{exchange: func(_ context.Context, username, password string) (string, error) {
		must.Eq(t, "alice", username)
		must.Eq(t, "s3cret", password)
		return "tok-A", nil
	}}
	m := newTestManager(store, resolver, exchanger)
	m.Start(context.Background())

	must.NoError(t, m.Login(context.Background(), "alice", "s3cret"))

	must.Eq(t, StatusAuthenticated, m.Status())
	tok, ok, err := store.Load()
	must.NoError(t, err)
	must.True(t, ok)
	must.Eq(t, "tok-A", tok)
}

func TestLogin_RejectedCredentialsLeaveStateUntouched(t *testing.T) {
	store := NewMemStore()
	resolver := &fakeResolver{resolve: func(context.Context) (*Identity, error) {
		t.Fatal("resolver must not be called when the exchange fails")
		return nil, nil
	}}
	exchanger := &fakeExchanger{exchange: func(context.Context, string, string) (string, error) {
		return "", errors.New("Invalid credentials")
	}}
	m := newTestManager(store, resolver, exchanger)
	m.Start(context.Background())

	err := m.Login(context.Background(), "bob", "wrong")

	must.ErrorContains(t, err, "Invalid credentials")
	must.Eq(t, StatusUnauthenticated, m.Status())
	_, ok, _ := store.Load()
	must.False(t, ok)
	must.Zero(t, resolver.calls)
}

func TestLogin_ResolutionFailureClearsFreshToken(t *testing.T) {
	store := NewMemStore()
	resolver := &fakeResolver{resolve: func(context.Context) (*Identity, error) {
		return nil, errors.New("connection reset")
	}}
	exchanger := &fakeExchanger{exchange: func(context.Context, string, string) (string, error) {
		return "tok-A", nil
	}}
	m := newTestManager(store, resolver, exchanger)
	m.Start(context.Background())

	err := m.Login(context.Background(), "alice", "s3cret")

	must.Error(t, err)
	must.Eq(t, StatusUnauthenticated, m.Status())
	must.Nil(t, m.Identity())
	_, ok, _ := store.Load()
	must.False(t, ok, must.Sprint("token from a half-finished login must not persist"))
}

func TestLogout_Idempotent(t *testing.T) {
	store := NewMemStore()
	must.NoError(t, store.Save("tok-A"))
	resolver := &fakeResolver{resolve: func(context.Context) (*Identity, error) {
		return aliceIdentity(), nil
	}}
	m := newTestManager(store, resolver, &fakeExchanger{})
	m.Start(context.Background())
	must.Eq(t, StatusAuthenticated, m.Status())

	must.NoError(t, m.Logout())
	must.NoError(t, m.Logout())

	must.Eq(t, StatusUnauthenticated, m.Status())
	must.Nil(t, m.Identity())
	_, ok, _ := store.Load()
	must.False(t, ok)
}

func TestRefresh_UpdatesIdentity(t *testing.T) {
	store := NewMemStore()
	must.NoError(t, store.Save("tok-A"))
	roles := []string{"ROLE_EMPLOYEE"}
	resolver := &fakeResolver{resolve: func(context.Context) (*Identity, error) {
		return NewIdentity("1", "alice", "", "", roles), nil
	}}
	m := newTestManager(store, resolver, &fakeExchanger{})
	m.Start(context.Background())
	must.False(t, m.HasRole("ROLE_MANAGER"))

	roles = []string{"ROLE_EMPLOYEE", "ROLE_MANAGER"}
	must.NoError(t, m.Refresh(context.Background()))

	must.True(t, m.HasRole("ROLE_MANAGER"))
}

func TestRefresh_SupersededByLogout(t *testing.T) {
	store := NewMemStore()
	must.NoError(t, store.Save("tok-A"))

	entered := make(chan struct{})
	release := make(chan struct{})
	first := true
	resolver := &fakeResolver{resolve: func(context.Context) (*Identity, error) {
		if first {
			first = false
			return aliceIdentity(), nil
		}
		close(entered)
		<-release
		return aliceIdentity(), nil
	}}
	m := newTestManager(store, resolver, &fakeExchanger{})
	m.Start(context.Background())

	done := make(chan error, 1)
	go func() { done <- m.Refresh(context.Background()) }()
	<-entered

	must.NoError(t, m.Logout())
	close(release)

	must.ErrorIs(t, <-done, ErrSuperseded)
	must.Eq(t, StatusUnauthenticated, m.Status(),
		must.Sprint("a resolution finishing after logout must not resurrect the session"))
	must.Nil(t, m.Identity())
}

func TestHasRole_TotalInEveryState(t *testing.T) {
	m := newTestManager(NewMemStore(), &fakeResolver{}, &fakeExchanger{})

	// Initializing: no identity yet.
	must.False(t, m.HasRole("ROLE_ADMIN"))

	m.Start(context.Background())
	// Unauthenticated: still false, never panics.
	must.False(t, m.HasRole("ROLE_ADMIN"))
	must.False(t, m.HasRole(""))
}
