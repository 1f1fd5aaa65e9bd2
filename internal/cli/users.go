package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/officeledger/internal/common"
	"github.com/dmitrijs2005/officeledger/internal/ledger"
	"github.com/dmitrijs2005/officeledger/internal/models"
)

func (a *App) listUsers(_ context.Context, _ []string) error {
	tw := newTable(a.out)
	fmt.Fprintln(tw, "USERNAME\tNAME\tROLE\tEMAIL\tCREATED\tID")
	for _, u := range a.ledger.Snapshot().Users {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", u.Username, u.Name, u.Role, orDash(u.Email), fmtTime(u.CreatedAt), u.ID)
	}
	return tw.Flush()
}

func (a *App) addUser(ctx context.Context, _ []string) error {
	var (
		in  ledger.NewUser
		err error
	)
	if in.Name, err = GetSimpleText(a.reader, "Full name", a.out); err != nil {
		return err
	}
	if in.Username, err = GetSimpleText(a.reader, "Username", a.out); err != nil {
		return err
	}
	role, err := GetDefault(a.reader, "Role (admin, user)", string(models.RoleUser), a.out)
	if err != nil {
		return err
	}
	in.Role = models.Role(role)
	if in.Email, err = GetSimpleText(a.reader, "Email (optional)", a.out); err != nil {
		return err
	}

	pw, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.Wipe(pw)
	in.Password = string(pw)

	u, err := a.ledger.AddUser(ctx, in)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Added %s (%s)\n", u.Username, u.ID)
	return nil
}

func (a *App) editUser(ctx context.Context, args []string) error {
	u, err := a.lookupUser(args[0])
	if err != nil {
		return err
	}

	var patch ledger.UserPatch
	if patch.Name, err = a.editText("Full name", u.Name); err != nil {
		return err
	}
	if patch.Username, err = a.editText("Username", u.Username); err != nil {
		return err
	}
	role, err := a.editText("Role", string(u.Role))
	if err != nil {
		return err
	}
	if role != nil {
		r := models.Role(*role)
		patch.Role = &r
	}
	if patch.Email, err = a.editText("Email", u.Email); err != nil {
		return err
	}

	change, err := Confirm(a.reader, "Change password?", a.out)
	if err != nil {
		return err
	}
	if change {
		pw, err := getPassword(a.out)
		if err != nil {
			return err
		}
		defer common.Wipe(pw)
		s := string(pw)
		patch.Password = &s
	}

	if err := a.ledger.UpdateUser(ctx, u.ID, patch); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Updated %s\n", u.Username)
	return nil
}

func (a *App) deleteUser(ctx context.Context, args []string) error {
	u, err := a.lookupUser(args[0])
	if err != nil {
		return err
	}
	if me, ok := a.sessions.Current(); ok && me.ID == u.ID {
		return fmt.Errorf("cannot delete the account you are logged in with: %w", common.ErrForbidden)
	}
	ok, err := Confirm(a.reader, fmt.Sprintf("Delete user %s?", u.Username), a.out)
	if err != nil || !ok {
		return err
	}
	if err := a.ledger.DeleteUser(ctx, u.ID); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Deleted %s\n", u.Username)
	return nil
}
