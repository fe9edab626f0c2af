package postgres

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/frahmantamala/org-directory/internal/user"

	departmentDatamodel "github.com/frahmantamala/org-directory/internal/core/datamodel/department"
	organisationDatamodel "github.com/frahmantamala/org-directory/internal/core/datamodel/organisation"
	refreshtokenDatamodel "github.com/frahmantamala/org-directory/internal/core/datamodel/refreshtoken"
	systemstateDatamodel "github.com/frahmantamala/org-directory/internal/core/datamodel/systemstate"
	userDatamodel "github.com/frahmantamala/org-directory/internal/core/datamodel/user"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) user.Repository {
	return &UserRepository{db: db}
}

func (r *UserRepository) WithTx(fn func(user.Repository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&UserRepository{db: tx})
	})
}

func (r *UserRepository) Create(u *userDatamodel.User) error {
	return r.db.Create(u).Error
}

func (r *UserRepository) GetByID(id uuid.UUID) (*userDatamodel.User, error) {
	var u userDatamodel.User
	err := r.db.Where("id = ?", id).First(&u).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetByEmail(email string, excludeID *uuid.UUID) (*userDatamodel.User, error) {
	q := r.db.Where("LOWER(email) = LOWER(?)", email)
	if excludeID != nil {
		q = q.Where("id <> ?", *excludeID)
	}

	var u userDatamodel.User
	err := q.First(&u).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) List() ([]*userDatamodel.User, error) {
	var users []*userDatamodel.User
	err := r.db.Order("created_at ASC").Find(&users).Error
	return users, err
}

func (r *UserRepository) ListByOrganisation(orgID uuid.UUID) ([]*userDatamodel.User, error) {
	var users []*userDatamodel.User
	err := r.db.Where("organisation_id = ?", orgID).Order("created_at ASC").Find(&users).Error
	return users, err
}

func (r *UserRepository) ListByDepartment(deptID uuid.UUID) ([]*userDatamodel.User, error) {
	var users []*userDatamodel.User
	err := r.db.Where("department_id = ?", deptID).Order("created_at ASC").Find(&users).Error
	return users, err
}

func (r *UserRepository) Update(u *userDatamodel.User) error {
	return r.db.Save(u).Error
}

// Delete removes the user and their refresh tokens in one transaction, and
// clears any department manager reference pointing at them.
func (r *UserRepository) Delete(id uuid.UUID) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&refreshtokenDatamodel.RefreshToken{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&departmentDatamodel.Department{}).
			Where("manager_id = ?", id).
			Update("manager_id", nil).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&userDatamodel.User{}).Error
	})
}

func (r *UserRepository) BootstrapCompleted() (bool, error) {
	var count int64
	err := r.db.Model(&systemstateDatamodel.BootstrapMarker{}).Count(&count).Error
	return count > 0, err
}

func (r *UserRepository) MarkBootstrapCompleted() error {
	return r.db.Create(&systemstateDatamodel.BootstrapMarker{ID: 1, CompletedAt: time.Now()}).Error
}

func (r *UserRepository) GetOrganisation(id uuid.UUID) (*organisationDatamodel.Organisation, error) {
	var org organisationDatamodel.Organisation
	err := r.db.Where("id = ?", id).First(&org).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &org, nil
}

func (r *UserRepository) GetDepartment(id uuid.UUID) (*departmentDatamodel.Department, error) {
	var dept departmentDatamodel.Department
	err := r.db.Where("id = ?", id).First(&dept).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &dept, nil
}
