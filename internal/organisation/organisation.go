package organisation

import (
	"github.com/google/uuid"

	organisationDatamodel "github.com/frahmantamala/org-directory/internal/core/datamodel/organisation"
)

// Repository is the storage contract for organisations. WithTx runs fn
// against a transaction-bound repository; the duplicate-name check and the
// insert must share one transaction (a unique index backs this up at the
// storage level).
type Repository interface {
	WithTx(fn func(Repository) error) error
	Create(org *organisationDatamodel.Organisation) error
	GetByID(id uuid.UUID) (*organisationDatamodel.Organisation, error)
	// FindByName matches case-insensitively, optionally excluding one id
	// (for rename checks). Returns (nil, nil) when no row matches.
	FindByName(name string, excludeID *uuid.UUID) (*organisationDatamodel.Organisation, error)
	List() ([]*organisationDatamodel.Organisation, error)
	Update(org *organisationDatamodel.Organisation) error
	// Delete removes the organisation, cascades its departments and
	// detaches its users, all in one transaction.
	Delete(id uuid.UUID) error
}
