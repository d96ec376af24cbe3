package main

import (
	"context"
	"time"

	"github.com/mtembezi/maktaba/core"
	"github.com/mtembezi/maktaba/core/user"
)

// addUser updates or creates an account. It bypasses the password policy;
// it exists to bootstrap deployments with a first administrator.
func (cli *commandLine) addUser(email, name, deptID, pwd string, isAdmin bool) error {
	ctx := context.Background()
	email = core.CleanString(email, true /* lower */)

	now := time.Now().UTC()
	usr, err := cli.usrRepo.GetUser(ctx, user.GetFilter{Email: email})
	if err != nil {
		if err != user.ErrNotFound {
			return err
		}
		usr = user.User{
			Email:     email,
			Role:      user.RoleStudent,
			CreatedAt: now,
		}
	}
	if name != "" {
		usr.Name = name
	}
	if deptID != "" {
		usr.SetDepartment(deptID)
	}
	if isAdmin {
		usr.Role = user.RoleAdmin
	}
	usr.SetActive(true)
	usr.UpdatedAt = now
	if err = usr.SetPassword(pwd); err != nil {
		return err
	}
	if _, err = cli.usrRepo.UpdateOrCreateUser(ctx, usr); err != nil {
		return err
	}
	return nil
}
