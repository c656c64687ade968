package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/campuslink/internal/client/routing"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
//
// Every view command funnels through Open, so a render only ever happens
// after the role gate has allowed the path.
type execIface interface {
	isLoggedIn() bool
	Open(ctx context.Context, path string) error
	Home(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
}

// runREPL starts a simple read–eval–print loop for the campuslink CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// Prompt & Commands
//
// The prompt shows the current status (from statusFn) and accepts commands:
//
//	Not signed in:
//	  - help           — show available commands
//	  - register       — create an account
//	  - login          — sign in
//	  - exit | quit    — leave the program
//
//	Signed in:
//	  - help           — show available commands
//	  - home           — open the dashboard for your role
//	  - courses, assignments, grades, materials, messages, settings
//	  - offline        — inspect the locally cached session
//	  - go <path>      — open an arbitrary route by path
//	  - whoami         — show the current session
//	  - logout         — sign out
//	  - exit | quit    — leave the program
//
// Any errors returned by command handlers are ignored here; handlers report
// their own errors. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("cl> %s > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: home, courses, assignments, grades, materials, messages, settings, offline, go <path>, whoami, logout, exit")
			} else {
				printlnFn("Available commands: register, login, exit")
			}

		case "register":
			_ = a.Open(ctx, routing.PathRegister)

		case "login":
			_ = a.Open(ctx, routing.PathLogin)

		case "home", "dashboard":
			_ = a.Home(ctx)

		case "courses":
			_ = a.Open(ctx, routing.PathCourses)

		case "assignments":
			_ = a.Open(ctx, routing.PathAssignments)

		case "grades":
			_ = a.Open(ctx, routing.PathGrades)

		case "materials":
			_ = a.Open(ctx, routing.PathMaterials)

		case "messages":
			_ = a.Open(ctx, routing.PathMessages)

		case "settings":
			_ = a.Open(ctx, routing.PathSettings)

		case "offline":
			_ = a.Open(ctx, routing.PathOfflineMode)

		case "go":
			if len(args) == 0 {
				printlnFn("Usage: go <path>")
				continue
			}
			_ = a.Open(ctx, args[0])

		case "whoami":
			_ = a.WhoAmI(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
