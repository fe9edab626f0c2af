package user

import (
	"github.com/google/uuid"

	departmentDatamodel "github.com/frahmantamala/org-directory/internal/core/datamodel/department"
	organisationDatamodel "github.com/frahmantamala/org-directory/internal/core/datamodel/organisation"
	userDatamodel "github.com/frahmantamala/org-directory/internal/core/datamodel/user"
)

// Repository is user storage plus the organisation/department lookups needed
// to validate references. The bootstrap marker and the duplicate-email check
// run inside WithTx so user creation stays consistent under concurrency.
type Repository interface {
	WithTx(fn func(Repository) error) error

	Create(user *userDatamodel.User) error
	GetByID(id uuid.UUID) (*userDatamodel.User, error)
	// GetByEmail matches case-insensitively, optionally excluding an id.
	// Returns (nil, nil) when no row matches.
	GetByEmail(email string, excludeID *uuid.UUID) (*userDatamodel.User, error)
	List() ([]*userDatamodel.User, error)
	ListByOrganisation(orgID uuid.UUID) ([]*userDatamodel.User, error)
	ListByDepartment(deptID uuid.UUID) ([]*userDatamodel.User, error)
	Update(user *userDatamodel.User) error
	// Delete removes the user together with any refresh tokens they hold.
	Delete(id uuid.UUID) error

	// BootstrapCompleted reports whether the one-time first-account
	// bootstrap has already happened.
	BootstrapCompleted() (bool, error)
	// MarkBootstrapCompleted inserts the single marker row. A second
	// insert conflicts on the primary key, so only one transaction can
	// ever complete the bootstrap.
	MarkBootstrapCompleted() error

	GetOrganisation(id uuid.UUID) (*organisationDatamodel.Organisation, error)
	GetDepartment(id uuid.UUID) (*departmentDatamodel.Department, error)
}
