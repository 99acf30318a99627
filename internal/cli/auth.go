package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/tripkeeper/internal/common"
	"github.com/dmitrijs2005/tripkeeper/internal/models"
	"github.com/dmitrijs2005/tripkeeper/internal/services"
)

var errUsage = errors.New("wrong arguments, see help")

// Register prompts for a new local account. The password is wiped before
// returning.
func (a *App) Register(ctx context.Context, _ []string) error {
	username, err := a.ask("Enter username")
	if err != nil {
		return err
	}
	fullName, err := a.ask("Enter full name (as on the manifest)")
	if err != nil {
		return err
	}
	position, err := a.ask("Enter position (driver, helper, dispatcher, admin)")
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	u, err := a.auth.Register(ctx, services.RegisterInput{
		Username: username,
		FullName: fullName,
		Position: models.Position(position),
		Password: password,
	})
	if err != nil {
		return err
	}

	a.printf("Registered %s\n", u.Username)
	return nil
}

// Login authenticates against the local accounts. It never needs the
// network.
func (a *App) Login(ctx context.Context, _ []string) error {
	username, err := a.ask("Enter username")
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	u, err := a.auth.Login(ctx, username, password)
	if err != nil {
		return err
	}

	a.setUser(u)
	a.printf("Welcome, %s (%s)\n", u.FullName, u.Position)
	return nil
}

func (a *App) Logout(ctx context.Context, _ []string) error {
	if err := a.auth.Logout(ctx); err != nil {
		return err
	}
	a.setUser(nil)
	a.printf("Logged out\n")
	return nil
}

// Profile edits the full name and optionally the password of the session
// user.
func (a *App) Profile(ctx context.Context, _ []string) error {
	u := a.currentUser()

	fullName, err := a.ask(fmt.Sprintf("Full name [%s]", u.FullName))
	if err != nil {
		return err
	}
	change, err := a.ask("Change password? (y/N)")
	if err != nil {
		return err
	}

	in := services.ProfileInput{FullName: fullName}
	if change == "y" || change == "Y" {
		in.Password, err = getPassword(a.out)
		if err != nil {
			return err
		}
		defer common.WipeByteArray(in.Password)
	}

	updated, err := a.auth.UpdateProfile(ctx, u.ID, in)
	if err != nil {
		return err
	}
	a.setUser(updated)
	a.printf("Profile saved\n")
	return nil
}

// Users lists local accounts, or deletes one with "users delete <id>".
func (a *App) Users(ctx context.Context, args []string) error {
	if !a.currentUser().Position.CanManageUsers() {
		return common.ErrForbidden
	}

	if len(args) > 0 {
		if len(args) != 2 || args[0] != "delete" {
			return errUsage
		}
		id, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return errUsage
		}
		if err := a.auth.Delete(ctx, id); err != nil {
			return err
		}
		a.printf("Deleted user %d\n", id)
		return nil
	}

	users, err := a.auth.List(ctx)
	if err != nil {
		return err
	}
	for _, u := range users {
		a.printf("%4d  %-16s %-24s %s\n", u.ID, u.Username, u.FullName, u.Position)
	}
	return nil
}
