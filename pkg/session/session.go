package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// Status is the coarse session state exposed to callers. There is no
// "logging in" state: a login in flight leaves the previous status
// observable until it concludes.
type Status uint8

const (
	// StatusInitializing holds from construction until the first startup
	// resolution (or the discovery that no credential exists) concludes.
	StatusInitializing Status = iota
	StatusAuthenticated
	StatusUnauthenticated
)

func (s Status) String() string {
	switch s {
	case StatusInitializing:
		return "initializing"
	case StatusAuthenticated:
		return "authenticated"
	case StatusUnauthenticated:
		return "unauthenticated"
	default:
		return fmt.Sprintf("status(%d)", uint8(s))
	}
}

// ErrSuperseded is returned by Login or Refresh when the resolution
// completed but a later state transition (for example a Logout) had
// already taken effect, so the result was discarded.
var ErrSuperseded = errors.New("session: resolution superseded")

// Resolver exchanges a stored credential for the identity behind it.
type Resolver interface {
	Resolve(ctx context.Context) (*Identity, error)
}

// LoginExchanger exchanges a username and password for an access token.
type LoginExchanger interface {
	ExchangeLogin(ctx context.Context, username, password string) (string, error)
}

// Manager owns the session state machine. All exposed state is read and
// written under a single mutex; resolutions run outside the lock and are
// tagged with a generation counter so a stale result can never overwrite
// a newer transition.
type Manager struct {
	store     CredentialStore
	resolver  Resolver
	exchanger LoginExchanger
	log       zerolog.Logger

	startOnce sync.Once

	mu       sync.Mutex
	status   Status
	identity *Identity
	gen      uint64
}

func NewManager(store CredentialStore, resolver Resolver, exchanger LoginExchanger, log zerolog.Logger) *Manager {
	return &Manager{
		store:     store,
		resolver:  resolver,
		exchanger: exchanger,
		log:       log.With().Str("component", "session").Logger(),
		status:    StatusInitializing,
	}
}

// Status returns the current session status.
func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// Identity returns the resolved identity, or nil unless the session is
// authenticated.
func (m *Manager) Identity() *Identity {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.identity
}

// HasRole reports whether the current identity holds the role. It is
// total: in any non-authenticated state it simply returns false.
func (m *Manager) HasRole(role string) bool {
	return m.Identity().HasRole(role)
}

// Start performs the one-time startup sequence: probe the store for a
// persisted credential and, if one exists, resolve it. With no credential
// the session settles unauthenticated without any network traffic. Start
// is idempotent; calls after the first are no-ops.
func (m *Manager) Start(ctx context.Context) {
	m.startOnce.Do(func() {
		_, ok, err := m.store.Load()
		if err != nil {
			m.log.Warn().Err(err).Msg("credential store unreadable, starting unauthenticated")
		}
		if !ok || err != nil {
			m.settle(m.begin(), nil)
			return
		}
		gen := m.begin()
		id, rerr := m.resolver.Resolve(ctx)
		if rerr != nil {
			m.log.Info().Err(rerr).Msg("stored credential rejected, clearing")
			if cerr := m.store.Clear(); cerr != nil {
				m.log.Warn().Err(cerr).Msg("clear credential store")
			}
			m.settle(gen, nil)
			return
		}
		if !m.settle(gen, id) {
			return
		}
		m.log.Debug().Str("username", id.Username).Msg("session restored")
	})
}

// Login exchanges the credentials for a token, persists it, then resolves
// the identity. Both calls must succeed: if resolution fails the freshly
// stored token is cleared again and the previous session state is kept,
// so a failed login never leaves a half-authenticated session behind.
func (m *Manager) Login(ctx context.Context, username, password string) error {
	token, err := m.exchanger.ExchangeLogin(ctx, username, password)
	if err != nil {
		m.log.Info().Str("username", username).Err(err).Msg("login rejected")
		return err
	}
	if err := m.store.Save(token); err != nil {
		return fmt.Errorf("persist credential: %w", err)
	}
	gen := m.begin()
	id, err := m.resolver.Resolve(ctx)
	if err != nil {
		if cerr := m.store.Clear(); cerr != nil {
			m.log.Warn().Err(cerr).Msg("clear credential store")
		}
		m.settle(gen, nil)
		return fmt.Errorf("resolve identity after login: %w", err)
	}
	if !m.settle(gen, id) {
		return ErrSuperseded
	}
	m.log.Info().Str("username", id.Username).Msg("logged in")
	return nil
}

// Refresh re-resolves the identity behind the stored credential, picking
// up role or profile changes. If the credential no longer resolves the
// session drops to unauthenticated, same as a failed startup.
func (m *Manager) Refresh(ctx context.Context) error {
	if _, ok, err := m.store.Load(); err != nil || !ok {
		m.settle(m.begin(), nil)
		return err
	}
	gen := m.begin()
	id, err := m.resolver.Resolve(ctx)
	if err != nil {
		if cerr := m.store.Clear(); cerr != nil {
			m.log.Warn().Err(cerr).Msg("clear credential store")
		}
		m.settle(gen, nil)
		return err
	}
	if !m.settle(gen, id) {
		return ErrSuperseded
	}
	return nil
}

// Logout clears the stored credential and drops the session to
// unauthenticated. It is idempotent and performs no network calls; any
// resolution still in flight is superseded and its result discarded.
func (m *Manager) Logout() error {
	err := m.store.Clear()
	m.settle(m.begin(), nil)
	if err != nil {
		return err
	}
	m.log.Info().Msg("logged out")
	return nil
}

// begin stamps a new generation. Any resolution started before this call
// becomes stale and will not be applied.
func (m *Manager) begin() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gen++
	return m.gen
}

// settle applies a resolution outcome if its generation is still current.
// A nil identity settles the session unauthenticated. Reports whether the
// outcome was applied.
func (m *Manager) settle(gen uint64, id *Identity) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.gen {
		m.log.Debug().Uint64("gen", gen).Uint64("current", m.gen).Msg("stale resolution discarded")
		return false
	}
	m.identity = id
	if id != nil {
		m.status = StatusAuthenticated
	} else {
		m.status = StatusUnauthenticated
	}
	return true
}
