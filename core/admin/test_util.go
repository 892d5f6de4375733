package admin

import (
	"context"

	"github.com/trezcool/studylog/core"
)

type serviceMock struct {
	service
}

// NewServiceMock returns a Service whose side effects run synchronously, for tests.
func NewServiceMock(repo Repository, mailSvc core.EmailService, conf *core.Config) Service {
	initTokenGen(conf)
	return &serviceMock{
		service: service{
			repo:    repo,
			mailSvc: mailSvc,
			conf:    conf,
		},
	}
}

func (svc *serviceMock) RequestPasswordReset(ctx context.Context, email string) error {
	adm, err := svc.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	// run synchronously
	svc.sendPasswordResetMail(adm)
	return nil
}
