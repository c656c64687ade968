// Package routing decides, per navigable route, whether the client renders
// the requested view or redirects. The decision function is pure: it reads
// a session snapshot and a role requirement and has no failure modes.
package routing

import (
	"strings"

	"github.com/dmitrijs2005/campuslink/internal/client/models"
)

// Well-known paths.
const (
	PathLogin    = "/login"
	PathRegister = "/register"

	PathDashboard   = "/dashboard"
	PathCourses     = "/courses"
	PathAssignments = "/assignments"
	PathGrades      = "/grades"
	PathMessages    = "/messages"
	PathSettings    = "/settings"
	PathMaterials   = "/materials"
	PathOfflineMode = "/offline-mode"

	PathFacultyHome = "/faculty/dashboard"
	PathAdminHome   = "/admin/dashboard"

	facultyPrefix = "/faculty/"
	adminPrefix   = "/admin/"
)

// Route describes one navigable view.
type Route struct {
	Path   string
	Title  string
	Public bool
	// Roles lists the roles allowed to view the route. Empty means any
	// authenticated user.
	Roles []models.Role
}

// routes is the exact-match table. Prefix routes (/faculty/*, /admin/*) are
// handled in Resolve.
var routes = []Route{
	{Path: PathLogin, Title: "Sign in", Public: true},
	{Path: PathRegister, Title: "Create account", Public: true},

	{Path: PathDashboard, Title: "Dashboard"},
	{Path: PathCourses, Title: "Courses"},
	{Path: PathAssignments, Title: "Assignments"},
	{Path: PathGrades, Title: "Grades"},
	{Path: PathMessages, Title: "Messages"},
	{Path: PathSettings, Title: "Settings"},
	{Path: PathMaterials, Title: "Materials"},
	{Path: PathOfflineMode, Title: "Offline mode"},
}

// Resolve maps a path to its route. Exact matches win; otherwise the
// faculty and admin subtrees match by prefix. Unknown paths (including "/")
// resolve to nothing and the caller redirects to the login view.
func Resolve(path string) (Route, bool) {
	for _, r := range routes {
		if r.Path == path {
			return r, true
		}
	}
	if strings.HasPrefix(path, facultyPrefix) {
		return Route{Path: path, Title: "Faculty", Roles: []models.Role{models.RoleTeacher}}, true
	}
	if strings.HasPrefix(path, adminPrefix) {
		return Route{Path: path, Title: "Admin", Roles: []models.Role{models.RoleAdmin}}, true
	}
	return Route{}, false
}

// Known returns the route table plus the two prefix subtrees, for help
// output.
func Known() []Route {
	out := make([]Route, len(routes), len(routes)+2)
	copy(out, routes)
	out = append(out,
		Route{Path: facultyPrefix + "*", Title: "Faculty", Roles: []models.Role{models.RoleTeacher}},
		Route{Path: adminPrefix + "*", Title: "Admin", Roles: []models.Role{models.RoleAdmin}},
	)
	return out
}

// RoleHome is the landing page for a role: admins and teachers get their
// own dashboards, everyone else lands on the student dashboard.
func RoleHome(role models.Role) string {
	switch role {
	case models.RoleAdmin:
		return PathAdminHome
	case models.RoleTeacher:
		return PathFacultyHome
	default:
		return PathDashboard
	}
}
