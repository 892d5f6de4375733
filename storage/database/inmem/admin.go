package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/trezcool/studylog/core/admin"
)

type adminRepository struct {
	db *adminTable
}

var _ admin.Repository = (*adminRepository)(nil)

func NewAdminRepository(db *DB) admin.Repository {
	return &adminRepository{db: db.admins}
}

func (repo *adminRepository) query() []admin.Admin {
	admins := make([]admin.Admin, 0, len(repo.db.table))
	for _, adm := range repo.db.table {
		admins = append(admins, *adm)
	}
	return admins
}

func (repo *adminRepository) CheckUsernameUniqueness(_ context.Context, username, email string, excludedAdmins []admin.Admin) error {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	excluded := make(map[string]bool, len(excludedAdmins))
	for _, adm := range excludedAdmins {
		excluded[adm.ID] = true
	}

	for _, adm := range repo.query() {
		if excluded[adm.ID] {
			continue
		}
		if username != "" && strings.EqualFold(adm.Username, username) {
			return admin.ErrUsernameExists
		}
		if email != "" && strings.EqualFold(adm.Email, email) {
			return admin.ErrEmailExists
		}
	}
	return nil
}

func (repo *adminRepository) CreateAdmin(_ context.Context, adm admin.Admin) (admin.Admin, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if adm.ID == "" {
		adm.ID = uuid.New().String()
	}
	repo.db.table[adm.ID] = &adm
	return adm, nil
}

func (repo *adminRepository) QueryAllAdmins(_ context.Context) ([]admin.Admin, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	admins := repo.query()
	sort.Slice(admins, func(i, j int) bool { return admins[i].CreatedAt.Before(admins[j].CreatedAt) })
	return admins, nil
}

func (repo *adminRepository) GetAdmin(_ context.Context, filter admin.GetFilter) (admin.Admin, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if filter.ID != "" {
		if adm, ok := repo.db.table[filter.ID]; ok {
			return *adm, nil
		}
		return admin.Admin{}, admin.ErrNotFound
	}

	for _, adm := range repo.query() {
		switch {
		case filter.Username != "":
			if strings.EqualFold(adm.Username, filter.Username) {
				return adm, nil
			}
		case filter.Email != "":
			if strings.EqualFold(adm.Email, filter.Email) {
				return adm, nil
			}
		case len(filter.UsernameOrEmail) > 0:
			uname := filter.UsernameOrEmail[0]
			email := uname
			if len(filter.UsernameOrEmail) > 1 {
				email = filter.UsernameOrEmail[1]
			}
			if (uname != "" && strings.EqualFold(adm.Username, uname)) ||
				(email != "" && strings.EqualFold(adm.Email, email)) {
				return adm, nil
			}
		}
	}
	return admin.Admin{}, admin.ErrNotFound
}

func (repo *adminRepository) UpdateAdmin(_ context.Context, adm admin.Admin) (admin.Admin, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	orig, ok := repo.db.table[adm.ID]
	if !ok {
		return admin.Admin{}, admin.ErrNotFound
	}

	// only save set fields
	if adm.PasswordHash != nil {
		orig.PasswordHash = adm.PasswordHash
	}
	if adm.IsActive != nil {
		orig.SetActive(*adm.IsActive)
	}
	orig.Name = adm.Name
	orig.Username = adm.Username
	orig.Email = adm.Email
	orig.UpdatedAt = adm.UpdatedAt
	orig.LastLogin = adm.LastLogin

	repo.db.table[adm.ID] = orig
	return *orig, nil
}

func (repo *adminRepository) UpdateOrCreateAdmin(ctx context.Context, adm admin.Admin) (admin.Admin, error) {
	if adm.ID != "" {
		if updated, err := repo.UpdateAdmin(ctx, adm); err == nil {
			return updated, nil
		} else if err != admin.ErrNotFound {
			return admin.Admin{}, err
		}
	}
	return repo.CreateAdmin(ctx, adm)
}

func (repo *adminRepository) DeleteAdminsByID(_ context.Context, ids ...string) (int, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	var cnt int
	for _, id := range ids {
		if _, ok := repo.db.table[id]; ok {
			delete(repo.db.table, id)
			cnt++
		}
	}
	return cnt, nil
}
