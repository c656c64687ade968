package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/campuslink/internal/client/api"
	"github.com/dmitrijs2005/campuslink/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/campuslink/internal/client/routing"
	"github.com/dmitrijs2005/campuslink/internal/client/services"
	"github.com/dmitrijs2005/campuslink/internal/client/session"
	"github.com/dmitrijs2005/campuslink/internal/jwtx"
)

// Open navigates to path. The role gate decides first: a denied path prints
// the redirect and renders the target instead, so a view can never appear
// for a session that is not allowed to see it.
func (a *App) Open(ctx context.Context, path string) error {
	return a.open(ctx, path, 0)
}

// A redirect chain is at most public->home or protected->login; three hops
// means the route table is inconsistent.
const maxRedirects = 3

func (a *App) open(ctx context.Context, path string, depth int) error {
	if depth >= maxRedirects {
		return fmt.Errorf("redirect loop at %s", path)
	}

	// The snapshot the gate approved is the one the view renders from; a
	// concurrent reset between decision and render must not be observable.
	snap := a.store.State()
	d := routing.DecidePath(snap, path)
	if !d.Render {
		printlnFn("->", d.RedirectTo)
		return a.open(ctx, d.RedirectTo, depth+1)
	}

	a.setPath(path)
	return a.render(ctx, path, snap)
}

// Home opens the dashboard for the current role, or the sign-in view when
// nobody is signed in.
func (a *App) Home(ctx context.Context) error {
	st := a.store.State()
	if !st.IsAuthenticated {
		return a.Open(ctx, routing.PathLogin)
	}
	return a.Open(ctx, routing.RoleHome(st.User.Role))
}

func (a *App) render(ctx context.Context, path string, snap session.Session) error {
	switch {
	case path == routing.PathLogin:
		return a.Login(ctx)
	case path == routing.PathRegister:
		return a.Register(ctx)
	case path == routing.PathCourses:
		return a.viewCourses(ctx)
	case path == routing.PathAssignments:
		return a.viewAssignments(ctx)
	case path == routing.PathGrades:
		return a.viewGrades(ctx)
	case path == routing.PathMaterials:
		return a.viewMaterials(ctx)
	case path == routing.PathMessages:
		return a.viewMessages(ctx)
	case path == routing.PathSettings:
		return a.viewSettings(ctx)
	case path == routing.PathOfflineMode:
		return a.viewOffline(ctx)
	default:
		// Dashboards, including the faculty and admin subtrees.
		return a.viewDashboard(snap, path)
	}
}

func (a *App) viewDashboard(snap session.Session, path string) error {
	// The gate only admits authenticated sessions here, but a background
	// reset can still race the render; stay quiet rather than panic.
	if snap.User == nil {
		return nil
	}

	title := "Dashboard"
	switch {
	case strings.HasPrefix(path, "/admin/"):
		title = "Admin dashboard"
	case strings.HasPrefix(path, "/faculty/"):
		title = "Faculty dashboard"
	}

	printlnFn(fmt.Sprintf("== %s ==", title))
	printlnFn(fmt.Sprintf("%s, %s campus", snap.User.FullName, snap.User.Campus))
	if n := a.unread.Load(); n > 0 {
		printlnFn(fmt.Sprintf("You have %d unread message(s)", n))
	}
	return nil
}

func (a *App) viewCourses(ctx context.Context) error {
	items, err := a.campus.Courses(ctx)
	if err != nil {
		printlnFn(api.ErrorMessage(err, "Could not load courses"))
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CODE\tTITLE\tTEACHER\tCREDITS\tSEMESTER")
	for _, c := range items {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", c.Code, c.Title, c.Teacher, c.Credits, c.Semester)
	}
	return w.Flush()
}

func (a *App) viewAssignments(ctx context.Context) error {
	items, err := a.campus.Assignments(ctx)
	if err != nil {
		printlnFn(api.ErrorMessage(err, "Could not load assignments"))
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "DUE\tTITLE\tSTATUS")
	for _, it := range items {
		status := "pending"
		if it.Submitted {
			status = "submitted"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", it.DueDate.Format("2006-01-02 15:04"), it.Title, status)
	}
	return w.Flush()
}

func (a *App) viewGrades(ctx context.Context) error {
	items, err := a.campus.Grades(ctx)
	if err != nil {
		printlnFn(api.ErrorMessage(err, "Could not load grades"))
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "COURSE\tSCORE\tCREDITS")
	for _, g := range items {
		fmt.Fprintf(w, "%s\t%.1f\t%d\n", g.Course, g.Score, g.Credits)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	printlnFn(fmt.Sprintf("Weighted average: %.2f", services.WeightedAverage(items)))
	return nil
}

func (a *App) viewMaterials(ctx context.Context) error {
	items, err := a.campus.Materials(ctx)
	if err != nil {
		printlnFn(api.ErrorMessage(err, "Could not load materials"))
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "KIND\tTITLE\tURL")
	for _, m := range items {
		fmt.Fprintf(w, "%s\t%s\t%s\n", m.Kind, m.Title, m.URL)
	}
	return w.Flush()
}

// viewMessages shows a live unread count and refreshes the cached counter
// the prompt uses.
func (a *App) viewMessages(ctx context.Context) error {
	n, err := a.campus.UnreadCount(ctx)
	if err != nil {
		printlnFn(api.ErrorMessage(err, "Could not load messages"))
		printlnFn(fmt.Sprintf("Last known unread count: %d", a.unread.Load()))
		return err
	}
	a.unread.Store(int64(n))
	printlnFn(fmt.Sprintf("Unread messages: %d", n))
	return nil
}

// viewSettings shows the local preferences and lets the user change them.
// An empty answer keeps the current value.
func (a *App) viewSettings(ctx context.Context) error {
	theme, _ := a.store.Preference(ctx, metadata.KeyTheme)
	if theme == "" {
		theme = "dark"
	}
	language, _ := a.store.Preference(ctx, metadata.KeyLanguage)
	if language == "" {
		language = "en"
	}

	printlnFn(fmt.Sprintf("Theme: %s, language: %s", theme, language))

	if v, err := getSimpleText(a.reader, "New theme (empty to keep)", os.Stdout); err == nil && v != "" {
		if err := a.store.SetPreference(ctx, metadata.KeyTheme, v); err != nil {
			printlnFn("Could not save theme:", err.Error())
		}
	}
	if v, err := getSimpleText(a.reader, "New language (empty to keep)", os.Stdout); err == nil && v != "" {
		if err := a.store.SetPreference(ctx, metadata.KeyLanguage, v); err != nil {
			printlnFn("Could not save language:", err.Error())
		}
	}
	return nil
}

// viewOffline inspects the locally cached session: who it belongs to and
// how long its token is still good for.
func (a *App) viewOffline(ctx context.Context) error {
	user, token, err := a.store.LoadPersisted(ctx)
	if err != nil {
		printlnFn("No usable cached session:", err.Error())
		return err
	}

	printlnFn(fmt.Sprintf("Cached session for %s <%s> (%s)", user.FullName, user.Email, user.Role))
	if exp, ok := jwtx.ExpiresAt(token); ok {
		printlnFn("Token valid until", exp.Format("2006-01-02 15:04:05"))
	} else {
		printlnFn("Token has no readable expiry")
	}
	return nil
}
