// Package cli is the interactive shell of the campuslink client.
//
// It composes the views behind the route table: every navigation and every
// render goes through the role gate, and a session subscription re-evaluates
// the current route whenever the session changes, so a logout or a role
// redirect takes effect without imperative navigation sprinkled through the
// views.
package cli
