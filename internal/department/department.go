package department

import (
	"github.com/google/uuid"

	departmentDatamodel "github.com/frahmantamala/org-directory/internal/core/datamodel/department"
	organisationDatamodel "github.com/frahmantamala/org-directory/internal/core/datamodel/organisation"
	userDatamodel "github.com/frahmantamala/org-directory/internal/core/datamodel/user"
)

// Repository covers department storage plus the narrow user/organisation
// lookups and writes the manager workflows need. Manager assignment and
// removal touch a department row and a user row; WithTx makes those two
// writes a single transaction.
type Repository interface {
	WithTx(fn func(Repository) error) error

	Create(dept *departmentDatamodel.Department) error
	GetByID(id uuid.UUID) (*departmentDatamodel.Department, error)
	// FindByNameInOrganisation matches case-insensitively within one
	// organisation, optionally excluding an id. Returns (nil, nil) when no
	// row matches.
	FindByNameInOrganisation(orgID uuid.UUID, name string, excludeID *uuid.UUID) (*departmentDatamodel.Department, error)
	List() ([]*departmentDatamodel.Department, error)
	ListByOrganisation(orgID uuid.UUID) ([]*departmentDatamodel.Department, error)
	Update(dept *departmentDatamodel.Department) error
	Delete(id uuid.UUID) error

	SetManager(deptID uuid.UUID, managerID *uuid.UUID) error

	GetOrganisation(id uuid.UUID) (*organisationDatamodel.Organisation, error)
	GetUser(id uuid.UUID) (*userDatamodel.User, error)
	SetUserRole(id uuid.UUID, role string) error
	SetUserRoleAndDepartment(id uuid.UUID, role string, deptID *uuid.UUID) error
}
