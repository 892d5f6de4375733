package admin

import (
	"context"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/studylog/core"
)

type (
	Repository interface {
		CheckUsernameUniqueness(ctx context.Context, username, email string, excludedAdmins []Admin) error
		CreateAdmin(ctx context.Context, adm Admin) (Admin, error)
		QueryAllAdmins(ctx context.Context) ([]Admin, error)
		GetAdmin(ctx context.Context, filter GetFilter) (Admin, error)
		UpdateAdmin(ctx context.Context, adm Admin) (Admin, error)
		UpdateOrCreateAdmin(ctx context.Context, adm Admin) (Admin, error)
		DeleteAdminsByID(ctx context.Context, ids ...string) (int, error)
	}

	Service interface {
		Create(ctx context.Context, na NewAdmin) (Admin, error)
		QueryAll(ctx context.Context) ([]Admin, error)
		GetByID(ctx context.Context, id string) (Admin, error)
		GetByEmail(ctx context.Context, email string) (Admin, error)
		GetByUsernameOrEmail(ctx context.Context, uname string) (Admin, error)
		SetLastLogin(ctx context.Context, adm Admin) (Admin, error)
		Delete(ctx context.Context, ids ...string) error
		RequestPasswordReset(ctx context.Context, email string) error
		ResetPassword(ctx context.Context, data ResetAdminPassword) error
		CheckUniqueness(uname, email string, excludedAdmins ...Admin) error
	}

	service struct {
		repo    Repository
		mailSvc core.EmailService
		conf    *core.Config
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, mailSvc core.EmailService, conf *core.Config) Service {
	initTokenGen(conf)
	return &service{
		repo:    repo,
		mailSvc: mailSvc,
		conf:    conf,
	}
}

func (svc *service) CheckUniqueness(uname, email string, excludedAdmins ...Admin) error {
	if err := svc.repo.CheckUsernameUniqueness(context.Background(), uname, email, excludedAdmins); err != nil {
		var field string
		switch err {
		case ErrUsernameExists:
			field = "username"
		case ErrEmailExists:
			field = "email"
		default:
			return err
		}
		return core.NewValidationError(err, core.FieldError{Field: field, Error: err.Error()})
	}
	return nil
}

func (svc *service) Create(ctx context.Context, na NewAdmin) (Admin, error) {
	now := time.Now().UTC()
	adm := Admin{
		Name:      na.Name,
		Username:  na.Username,
		Email:     na.Email,
		CreatedAt: now,
		UpdatedAt: now,
	}
	adm.SetActive(true)
	if err := adm.SetPassword(na.Password); err != nil {
		return Admin{}, errors.Wrap(err, "setting password")
	}
	return svc.repo.CreateAdmin(ctx, adm)
}

func (svc *service) QueryAll(ctx context.Context) ([]Admin, error) {
	return svc.repo.QueryAllAdmins(ctx)
}

func (svc *service) GetByID(ctx context.Context, id string) (Admin, error) {
	return svc.repo.GetAdmin(ctx, GetFilter{ID: id})
}

func (svc *service) GetByEmail(ctx context.Context, email string) (Admin, error) {
	return svc.repo.GetAdmin(ctx, GetFilter{Email: email})
}

func (svc *service) GetByUsernameOrEmail(ctx context.Context, uname string) (Admin, error) {
	return svc.repo.GetAdmin(ctx, GetFilter{UsernameOrEmail: []string{uname}})
}

func (svc *service) SetLastLogin(ctx context.Context, adm Admin) (Admin, error) {
	adm.LastLogin = time.Now().UTC()
	return svc.repo.UpdateAdmin(ctx, adm)
}

func (svc *service) Delete(ctx context.Context, ids ...string) error {
	cnt, err := svc.repo.DeleteAdminsByID(ctx, ids...)
	if err != nil {
		return err
	}
	if cnt == 0 {
		return ErrNotFound
	}
	return nil
}

func (svc *service) RequestPasswordReset(ctx context.Context, email string) error {
	adm, err := svc.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	go svc.sendPasswordResetMail(adm)
	return nil
}

func (svc *service) sendPasswordResetMail(adm Admin) {
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: adm.Name, Address: adm.Email}},
		Subject:      "Password Reset",
		TemplateName: "password-reset",
		TemplateData: struct {
			Name  string
			UID   string
			Token string
		}{
			Name:  adm.Name,
			UID:   EncodeUID(adm),
			Token: makeToken(adm),
		},
	})
}

func (svc *service) ResetPassword(ctx context.Context, data ResetAdminPassword) error {
	id, err := decodeUID(data.UID)
	if err != nil {
		return core.NewValidationError(errInvalidToken)
	}
	adm, err := svc.repo.GetAdmin(ctx, GetFilter{ID: id})
	if err != nil {
		if err == ErrNotFound {
			return core.NewValidationError(errInvalidToken)
		}
		return errors.Wrap(err, "finding admin")
	}
	if err = verifyToken(adm, data.Token); err != nil {
		return core.NewValidationError(err)
	}

	if err = adm.SetPassword(data.Password); err != nil {
		return errors.Wrap(err, "setting password")
	}
	adm.UpdatedAt = time.Now().UTC()
	if _, err = svc.repo.UpdateAdmin(ctx, adm); err != nil {
		return errors.Wrap(err, "updating admin")
	}
	return nil
}
