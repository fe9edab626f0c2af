package postgres

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/frahmantamala/org-directory/internal/department"

	departmentDatamodel "github.com/frahmantamala/org-directory/internal/core/datamodel/department"
	organisationDatamodel "github.com/frahmantamala/org-directory/internal/core/datamodel/organisation"
	userDatamodel "github.com/frahmantamala/org-directory/internal/core/datamodel/user"
)

type DepartmentRepository struct {
	db *gorm.DB
}

func NewDepartmentRepository(db *gorm.DB) department.Repository {
	return &DepartmentRepository{db: db}
}

func (r *DepartmentRepository) WithTx(fn func(department.Repository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&DepartmentRepository{db: tx})
	})
}

func (r *DepartmentRepository) Create(dept *departmentDatamodel.Department) error {
	return r.db.Create(dept).Error
}

func (r *DepartmentRepository) GetByID(id uuid.UUID) (*departmentDatamodel.Department, error) {
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

func (r *DepartmentRepository) FindByNameInOrganisation(orgID uuid.UUID, name string, excludeID *uuid.UUID) (*departmentDatamodel.Department, error) {
	q := r.db.Where("organisation_id = ? AND LOWER(name) = LOWER(?)", orgID, name)
	if excludeID != nil {
		q = q.Where("id <> ?", *excludeID)
	}

	var dept departmentDatamodel.Department
	err := q.First(&dept).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &dept, nil
}

func (r *DepartmentRepository) List() ([]*departmentDatamodel.Department, error) {
	var depts []*departmentDatamodel.Department
	err := r.db.Order("name ASC").Find(&depts).Error
	return depts, err
}

func (r *DepartmentRepository) ListByOrganisation(orgID uuid.UUID) ([]*departmentDatamodel.Department, error) {
	var depts []*departmentDatamodel.Department
	err := r.db.Where("organisation_id = ?", orgID).Order("name ASC").Find(&depts).Error
	return depts, err
}

func (r *DepartmentRepository) Update(dept *departmentDatamodel.Department) error {
	return r.db.Save(dept).Error
}

// Delete detaches member users before removing the department row.
func (r *DepartmentRepository) Delete(id uuid.UUID) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&userDatamodel.User{}).
			Where("department_id = ?", id).
			Update("department_id", nil).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&departmentDatamodel.Department{}).Error
	})
}

func (r *DepartmentRepository) SetManager(deptID uuid.UUID, managerID *uuid.UUID) error {
	return r.db.Model(&departmentDatamodel.Department{}).
		Where("id = ?", deptID).
		Update("manager_id", managerID).Error
}

func (r *DepartmentRepository) GetOrganisation(id uuid.UUID) (*organisationDatamodel.Organisation, error) {
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

func (r *DepartmentRepository) GetUser(id uuid.UUID) (*userDatamodel.User, error) {
	var user userDatamodel.User
	err := r.db.Where("id = ?", id).First(&user).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *DepartmentRepository) SetUserRole(id uuid.UUID, role string) error {
	return r.db.Model(&userDatamodel.User{}).
		Where("id = ?", id).
		Update("role", role).Error
}

func (r *DepartmentRepository) SetUserRoleAndDepartment(id uuid.UUID, role string, deptID *uuid.UUID) error {
	return r.db.Model(&userDatamodel.User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"role": role, "department_id": deptID}).Error
}
