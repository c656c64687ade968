package routing

import (
	"github.com/dmitrijs2005/campuslink/internal/client/models"
	"github.com/dmitrijs2005/campuslink/internal/client/session"
)

// Decision is the outcome of a guard evaluation: either render the
// requested view or redirect elsewhere.
type Decision struct {
	Render     bool
	RedirectTo string
}

func render() Decision            { return Decision{Render: true} }
func redirect(to string) Decision { return Decision{RedirectTo: to} }

// Decide evaluates the role gate for a protected view.
//
//   - not authenticated           -> redirect to the login view
//   - role allowed (or no roles)  -> render
//   - role not allowed            -> redirect to that role's home view
func Decide(s session.Session, required []models.Role) Decision {
	if !s.IsAuthenticated || s.User == nil {
		return redirect(PathLogin)
	}
	if len(required) == 0 {
		return render()
	}
	for _, r := range required {
		if s.User.Role == r {
			return render()
		}
	}
	return redirect(RoleHome(s.User.Role))
}

// DecidePublic evaluates the inverse guard for the login/registration
// views: an already authenticated user is sent to their role's home view.
func DecidePublic(s session.Session) Decision {
	if s.IsAuthenticated && s.User != nil {
		return redirect(RoleHome(s.User.Role))
	}
	return render()
}

// DecidePath resolves path and applies the appropriate guard. Unmatched
// paths redirect to the login view.
func DecidePath(s session.Session, path string) Decision {
	route, ok := Resolve(path)
	if !ok {
		return redirect(PathLogin)
	}
	if route.Public {
		return DecidePublic(s)
	}
	return Decide(s, route.Roles)
}
