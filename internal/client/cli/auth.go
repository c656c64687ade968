package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/dmitrijs2005/campuslink/internal/client/models"
	"github.com/dmitrijs2005/campuslink/internal/client/routing"
	"github.com/dmitrijs2005/campuslink/internal/common"
)

// getSimpleText, getPassword and getChoice are indirections used to
// facilitate testing. They point to interactive input helpers and can be
// swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword
var getChoice = GetChoice

// Login prompts the user for credentials and tries to authenticate.
//
// On success it prints a greeting and moves the current route to the home
// view for the user's role. A concurrent login attempt is reported and
// dropped; any other failure has already been written to the session store
// by the auth service, so here it is only echoed to the user.
//
// The password byte slice is securely wiped before returning.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	snap, err := a.auth.Login(ctx, email, string(password))
	if err != nil {
		if errors.Is(err, common.ErrOperationInFlight) {
			printlnFn("A sign-in is already in progress")
			return err
		}
		printlnFn("Sign-in failed:", snap.Err)
		return err
	}

	printlnFn(fmt.Sprintf("Welcome, %s!", snap.User.FullName))
	a.setPath(routing.RoleHome(snap.User.Role))
	return nil
}

// Register collects the registration form, creates the account, and signs
// the user in. The password byte slice is securely wiped before returning.
func (a *App) Register(ctx context.Context) error {
	fullName, err := getSimpleText(a.reader, "Enter full name", os.Stdout)
	if err != nil {
		return err
	}

	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	role, err := getChoice(a.reader, "Role", []string{
		string(models.RoleStudent), string(models.RoleTeacher),
	}, os.Stdout)
	if err != nil {
		return err
	}

	campus, err := getSimpleText(a.reader, "Enter campus", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	snap, err := a.auth.Register(ctx, models.NewUser{
		FullName: fullName,
		Email:    email,
		Password: string(password),
		Role:     models.Role(role),
		Campus:   campus,
	})
	if err != nil {
		if errors.Is(err, common.ErrOperationInFlight) {
			printlnFn("A registration is already in progress")
			return err
		}
		printlnFn("Registration failed:", snap.Err)
		return err
	}

	printlnFn(fmt.Sprintf("Welcome, %s!", snap.User.FullName))
	a.setPath(routing.RoleHome(snap.User.Role))
	return nil
}

// Logout signs the user out. The local session always clears, so this only
// fails when a logout is already running.
func (a *App) Logout(ctx context.Context) error {
	if err := a.auth.Logout(ctx); err != nil {
		if errors.Is(err, common.ErrOperationInFlight) {
			printlnFn("A sign-out is already in progress")
		}
		return err
	}
	a.setPath(routing.PathLogin)
	printlnFn("Signed out")
	return nil
}

// WhoAmI prints the current session snapshot.
func (a *App) WhoAmI(_ context.Context) error {
	st := a.store.State()
	if !st.IsAuthenticated {
		printlnFn("Not signed in")
		return nil
	}
	printlnFn(fmt.Sprintf("%s <%s> (%s, %s)", st.User.FullName, st.User.Email, st.User.Role, st.User.Campus))
	if st.Err != "" {
		printlnFn("Last error:", st.Err)
	}
	return nil
}
