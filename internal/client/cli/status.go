package cli

import "fmt"

// getStatus renders the prompt decoration: "email (role)" plus the unread
// counter when there is one.
func (a *App) getStatus() string {
	st := a.store.State()
	if !st.IsAuthenticated {
		return "(guest)"
	}
	s := fmt.Sprintf("%s (%s)", st.User.Email, st.User.Role)
	if n := a.unread.Load(); n > 0 {
		s = fmt.Sprintf("%s [%d]", s, n)
	}
	return s
}
