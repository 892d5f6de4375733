package main

import (
	"context"
	"time"

	"github.com/trezcool/studylog/core"
	"github.com/trezcool/studylog/core/admin"
)

// addAdmin updates or creates an admin.Admin
func (cli *commandLine) addAdmin(name, uname, email, pwd string) error {
	var adm admin.Admin
	var err error
	ctx := context.Background()
	name = core.CleanString(name)
	uname = core.CleanString(uname, true /* lower */)
	email = core.CleanString(email, true /* lower */)

	now := time.Now().UTC()
	if adm, err = cli.admRepo.GetAdmin(ctx, admin.GetFilter{UsernameOrEmail: []string{uname, email}}); err != nil {
		if err != admin.ErrNotFound {
			return err
		}
		adm = admin.Admin{
			Username:  uname,
			Email:     email,
			CreatedAt: now,
		}
	}
	adm.Name = name
	adm.UpdatedAt = now
	adm.SetActive(true)
	if err := adm.SetPassword(pwd); err != nil {
		return err
	}
	if _, err := cli.admRepo.UpdateOrCreateAdmin(ctx, adm); err != nil {
		return err
	}
	return nil
}
