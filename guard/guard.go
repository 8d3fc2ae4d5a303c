// Package guard gates role-specific route subtrees. The decision is a pure
// function of session state; it keeps no memory between evaluations and is
// safe to re-run on every navigation.
package guard

import (
	"net/http"

	"github.com/agrilink/agrilink-go/session"
	"github.com/agrilink/agrilink-go/users"
)

// Decision is the guard's verdict for one navigation.
type Decision int

const (
	// Wait means bootstrap has not finished; render a neutral waiting state
	// and make no redirect decision yet.
	Wait Decision = iota
	// Allow renders the protected content.
	Allow
	// RedirectLogin sends an unauthenticated user to the login entry point.
	RedirectLogin
	// RedirectHome silently corrects a wrong-role user to their own home.
	RedirectHome
)

// Outcome pairs a decision with its redirect target, when there is one.
type Outcome struct {
	Decision Decision
	Target   string
}

// Evaluate decides whether the current session may see a route. requiredRole
// is empty for routes that only need authentication. A wrong-role user is
// redirected to their own role home, never shown an error page; an
// unrecognized role falls back to the public landing page.
func Evaluate(state session.State, requiredRole users.RoleType) Outcome {
	if state.Loading {
		return Outcome{Decision: Wait}
	}
	if state.User == nil {
		return Outcome{Decision: RedirectLogin, Target: users.LoginPath}
	}
	if requiredRole != "" && state.User.Role != requiredRole {
		return Outcome{Decision: RedirectHome, Target: state.User.Role.HomePath()}
	}
	return Outcome{Decision: Allow}
}

// SessionReader is the slice of the session manager the guard consumes.
type SessionReader interface {
	State() session.State
}

// Middleware adapts Evaluate to an HTTP route guard. Pass an empty role for
// routes that require login but no particular role.
func Middleware(sessions SessionReader, requiredRole users.RoleType) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			outcome := Evaluate(sessions.State(), requiredRole)
			switch outcome.Decision {
			case Wait:
				w.Header().Set("Retry-After", "1")
				http.Error(w, "session loading", http.StatusServiceUnavailable)
			case RedirectLogin, RedirectHome:
				http.Redirect(w, r, outcome.Target, http.StatusSeeOther)
			case Allow:
				next.ServeHTTP(w, r)
			}
		})
	}
}
