package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/studylog/core/admin"
)

type adminRow struct {
	ID           string      `db:"id"`
	Name         string      `db:"name"`
	Username     null.String `db:"username"`
	Email        null.String `db:"email"`
	IsActive     bool        `db:"is_active"`
	PasswordHash []byte      `db:"password_hash"`
	CreatedAt    time.Time   `db:"created_at"`
	UpdatedAt    time.Time   `db:"updated_at"`
	LastLogin    null.Time   `db:"last_login"`
}

func (row adminRow) admin() admin.Admin {
	adm := admin.Admin{
		ID:           row.ID,
		Name:         row.Name,
		Username:     row.Username.String,
		Email:        row.Email.String,
		PasswordHash: row.PasswordHash,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
		LastLogin:    row.LastLogin.Time,
	}
	adm.SetActive(row.IsActive)
	return adm
}

func newAdminRow(adm admin.Admin) adminRow {
	return adminRow{
		ID:           adm.ID,
		Name:         adm.Name,
		Username:     null.NewString(adm.Username, adm.Username != ""),
		Email:        null.NewString(adm.Email, adm.Email != ""),
		IsActive:     adm.IsActive != nil && *adm.IsActive,
		PasswordHash: adm.PasswordHash,
		CreatedAt:    adm.CreatedAt,
		UpdatedAt:    adm.UpdatedAt,
		LastLogin:    null.NewTime(adm.LastLogin, !adm.LastLogin.IsZero()),
	}
}

type adminRepository struct {
	db *sqlx.DB
}

var _ admin.Repository = (*adminRepository)(nil)

func NewAdminRepository(db *sqlx.DB) admin.Repository {
	return &adminRepository{db: db}
}

func (repo *adminRepository) CheckUsernameUniqueness(ctx context.Context, username, email string, excludedAdmins []admin.Admin) error {
	excluded := make(map[string]bool, len(excludedAdmins))
	for _, adm := range excludedAdmins {
		excluded[adm.ID] = true
	}

	var rows []adminRow
	q := `
	SELECT * FROM admin_users
	WHERE (LOWER(username) = LOWER($1) AND $1 <> '') OR (LOWER(email) = LOWER($2) AND $2 <> '')`
	if err := repo.db.SelectContext(ctx, &rows, q, username, email); err != nil {
		return errors.Wrap(err, "checking admin uniqueness")
	}

	for _, row := range rows {
		if excluded[row.ID] {
			continue
		}
		if username != "" && row.Username.String == username {
			return admin.ErrUsernameExists
		}
		if email != "" && row.Email.String == email {
			return admin.ErrEmailExists
		}
	}
	return nil
}

func (repo *adminRepository) CreateAdmin(ctx context.Context, adm admin.Admin) (admin.Admin, error) {
	if adm.ID == "" {
		adm.ID = uuid.New().String()
	}
	q := `
	INSERT INTO admin_users (id, name, username, email, is_active, password_hash, created_at, updated_at, last_login)
	VALUES (:id, :name, :username, :email, :is_active, :password_hash, :created_at, :updated_at, :last_login)`
	if _, err := repo.db.NamedExecContext(ctx, q, newAdminRow(adm)); err != nil {
		return admin.Admin{}, errors.Wrap(err, "inserting admin")
	}
	return adm, nil
}

func (repo *adminRepository) QueryAllAdmins(ctx context.Context) ([]admin.Admin, error) {
	var rows []adminRow
	if err := repo.db.SelectContext(ctx, &rows, "SELECT * FROM admin_users ORDER BY created_at ASC"); err != nil {
		return nil, errors.Wrap(err, "querying admins")
	}

	admins := make([]admin.Admin, len(rows))
	for i, row := range rows {
		admins[i] = row.admin()
	}
	return admins, nil
}

func (repo *adminRepository) GetAdmin(ctx context.Context, filter admin.GetFilter) (admin.Admin, error) {
	var (
		q    string
		args []interface{}
	)
	switch {
	case filter.ID != "":
		q = "SELECT * FROM admin_users WHERE id = $1"
		args = []interface{}{filter.ID}
	case filter.Username != "":
		q = "SELECT * FROM admin_users WHERE LOWER(username) = LOWER($1)"
		args = []interface{}{filter.Username}
	case filter.Email != "":
		q = "SELECT * FROM admin_users WHERE LOWER(email) = LOWER($1)"
		args = []interface{}{filter.Email}
	case len(filter.UsernameOrEmail) > 0:
		uname := filter.UsernameOrEmail[0]
		email := uname
		if len(filter.UsernameOrEmail) > 1 {
			email = filter.UsernameOrEmail[1]
		}
		q = "SELECT * FROM admin_users WHERE LOWER(username) = LOWER($1) OR LOWER(email) = LOWER($2)"
		args = []interface{}{uname, email}
	default:
		return admin.Admin{}, admin.ErrNotFound
	}

	var row adminRow
	if err := repo.db.GetContext(ctx, &row, q, args...); err != nil {
		return admin.Admin{}, trapNoRowsErr(err, admin.ErrNotFound, "getting admin")
	}
	return row.admin(), nil
}

func (repo *adminRepository) UpdateAdmin(ctx context.Context, adm admin.Admin) (admin.Admin, error) {
	q := `
	UPDATE admin_users
	SET name = :name, username = :username, email = :email, is_active = :is_active,
	    password_hash = :password_hash, updated_at = :updated_at, last_login = :last_login
	WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, q, newAdminRow(adm))
	if err != nil {
		return admin.Admin{}, errors.Wrap(err, "updating admin")
	}
	if cnt, err := res.RowsAffected(); err == nil && cnt == 0 {
		return admin.Admin{}, admin.ErrNotFound
	}
	return adm, nil
}

func (repo *adminRepository) UpdateOrCreateAdmin(ctx context.Context, adm admin.Admin) (admin.Admin, error) {
	if adm.ID == "" {
		return repo.CreateAdmin(ctx, adm)
	}
	updated, err := repo.UpdateAdmin(ctx, adm)
	if err == admin.ErrNotFound {
		return repo.CreateAdmin(ctx, adm)
	}
	return updated, err
}

func (repo *adminRepository) DeleteAdminsByID(ctx context.Context, ids ...string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	q, args, err := sqlx.In("DELETE FROM admin_users WHERE id IN (?)", ids)
	if err != nil {
		return 0, errors.Wrap(err, "deleting admins")
	}
	res, err := repo.db.ExecContext(ctx, repo.db.Rebind(q), args...)
	if err != nil {
		return 0, errors.Wrap(err, "deleting admins")
	}
	cnt, _ := res.RowsAffected()
	return int(cnt), nil
}
