package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/officeledger/internal/common"
)

// getPassword is an indirection used to facilitate testing.
var getPassword = GetPassword

func (a *App) login(ctx context.Context, args []string) error {
	var username string
	if len(args) > 0 {
		username = args[0]
	} else {
		var err error
		if username, err = GetSimpleText(a.reader, "Username", a.out); err != nil {
			return err
		}
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.Wipe(password)

	u, err := a.sessions.Login(ctx, username, string(password))
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Welcome, %s (%s)\n", u.Name, u.Role)
	return nil
}

func (a *App) logout(ctx context.Context, _ []string) error {
	if err := a.sessions.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Logged out.")
	return nil
}

func (a *App) whoami(_ context.Context, _ []string) error {
	u, err := a.sessions.RequireUser()
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s (%s)\nName:  %s\nEmail: %s\nID:    %s\n", u.Username, u.Role, u.Name, orDash(u.Email), u.ID)
	return nil
}
