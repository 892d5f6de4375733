package main

import (
	"context"
	"time"

	"github.com/trezcool/studylog/core/admin"
)

func (cli *commandLine) resetPassword(uname, pwd string) error {
	ctx := context.Background()
	adm, err := cli.admRepo.GetAdmin(ctx, admin.GetFilter{UsernameOrEmail: []string{uname}})
	if err != nil {
		return err
	}
	if err := adm.SetPassword(pwd); err != nil {
		return err
	}
	adm.UpdatedAt = time.Now().UTC()
	if _, err := cli.admRepo.UpdateAdmin(ctx, adm); err != nil {
		return err
	}
	return nil
}
