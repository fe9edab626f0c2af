package postgres

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/frahmantamala/org-directory/internal/organisation"

	departmentDatamodel "github.com/frahmantamala/org-directory/internal/core/datamodel/department"
	organisationDatamodel "github.com/frahmantamala/org-directory/internal/core/datamodel/organisation"
	userDatamodel "github.com/frahmantamala/org-directory/internal/core/datamodel/user"
)

type OrganisationRepository struct {
	db *gorm.DB
}

func NewOrganisationRepository(db *gorm.DB) organisation.Repository {
	return &OrganisationRepository{db: db}
}

func (r *OrganisationRepository) WithTx(fn func(organisation.Repository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&OrganisationRepository{db: tx})
	})
}

func (r *OrganisationRepository) Create(org *organisationDatamodel.Organisation) error {
	return r.db.Create(org).Error
}

func (r *OrganisationRepository) GetByID(id uuid.UUID) (*organisationDatamodel.Organisation, error) {
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

func (r *OrganisationRepository) FindByName(name string, excludeID *uuid.UUID) (*organisationDatamodel.Organisation, error) {
	q := r.db.Where("LOWER(name) = LOWER(?)", name)
	if excludeID != nil {
		q = q.Where("id <> ?", *excludeID)
	}

	var org organisationDatamodel.Organisation
	err := q.First(&org).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &org, nil
}

func (r *OrganisationRepository) List() ([]*organisationDatamodel.Organisation, error) {
	var orgs []*organisationDatamodel.Organisation
	err := r.db.Order("name ASC").Find(&orgs).Error
	return orgs, err
}

func (r *OrganisationRepository) Update(org *organisationDatamodel.Organisation) error {
	return r.db.Save(org).Error
}

// Delete cascades departments and detaches users in a single transaction.
func (r *OrganisationRepository) Delete(id uuid.UUID) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&userDatamodel.User{}).
			Where("organisation_id = ?", id).
			Updates(map[string]interface{}{"organisation_id": nil, "department_id": nil}).Error; err != nil {
			return err
		}
		if err := tx.Where("organisation_id = ?", id).Delete(&departmentDatamodel.Department{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&organisationDatamodel.Organisation{}).Error
	})
}
