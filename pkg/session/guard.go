package session

// Decision is the outcome of a guard check for a protected view.
type Decision uint8

const (
	// Defer means the session is still initializing; render nothing and
	// check again once startup concludes.
	Defer Decision = iota
	// Allow admits the user to the view.
	Allow
	// RedirectLogin sends an unauthenticated user to the login flow.
	RedirectLogin
	// Deny rejects an authenticated user who lacks the required role.
	Deny
)

func (d Decision) String() string {
	switch d {
	case Defer:
		return "defer"
	case Allow:
		return "allow"
	case RedirectLogin:
		return "redirect-login"
	case Deny:
		return "deny"
	default:
		return "unknown"
	}
}

// Guard derives admission decisions from the live session state.
type Guard struct {
	m *Manager
}

func NewGuard(m *Manager) *Guard { return &Guard{m: m} }

// Admit evaluates access to a view that requires the given role. An empty
// role means any authenticated user is admitted. Decisions are strictly
// ordered: initialization defers everything, authentication is checked
// before authorization.
func (g *Guard) Admit(requiredRole string) Decision {
	switch g.m.Status() {
	case StatusInitializing:
		return Defer
	case StatusUnauthenticated:
		return RedirectLogin
	}
	if requiredRole == "" || g.m.HasRole(requiredRole) {
		return Allow
	}
	return Deny
}
