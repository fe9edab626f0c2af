package organisation

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/frahmantamala/org-directory/internal"
	"github.com/frahmantamala/org-directory/internal/auth"
	organisationDatamodel "github.com/frahmantamala/org-directory/internal/core/datamodel/organisation"
)

type Service struct {
	repo   Repository
	audit  auth.AuditRecorder
	logger *slog.Logger
}

func NewService(repo Repository, audit auth.AuditRecorder, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, audit: audit, logger: logger}
}

// Create makes a new organisation. Superadmin only; the duplicate-name check
// runs inside the insert transaction.
func (s *Service) Create(ctx context.Context, actor auth.Principal, dto CreateOrganisationDTO) (*organisationDatamodel.Organisation, error) {
	if err := auth.Authorize(actor, auth.ActionOrganisationCreate, auth.Target{}); err != nil {
		return nil, err
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	org := &organisationDatamodel.Organisation{
		Name:           dto.Name,
		Address:        dto.Address,
		EmployeesCount: dto.EmployeesCount,
		AdminID:        dto.AdminID,
	}

	err := s.repo.WithTx(func(tx Repository) error {
		existing, err := tx.FindByName(dto.Name, nil)
		if err != nil {
			return internal.NewInternalError("failed to check organisation name", err)
		}
		if existing != nil {
			return internal.NewConflictError("Organisation with this name already exists", internal.ErrCodeDuplicateName)
		}
		return tx.Create(org)
	})
	if err != nil {
		if _, ok := internal.IsAppError(err); ok {
			return nil, err
		}
		return nil, internal.NewInternalError("failed to create organisation", err)
	}

	if err := s.audit.Record(ctx, &actor.ID, fmt.Sprintf("Created organisation: %s", org.Name), &org.ID, nil); err != nil {
		return org, internal.NewInternalError("failed to record organisation creation", err)
	}
	return org, nil
}

// List returns the organisations the actor may see: all for superadmin, a
// singleton for an organisation admin.
func (s *Service) List(ctx context.Context, actor auth.Principal) ([]*organisationDatamodel.Organisation, error) {
	scope, err := auth.ListScope(actor, auth.ActionOrganisationList)
	if err != nil {
		return nil, err
	}

	switch scope {
	case auth.ScopeAny:
		orgs, listErr := s.repo.List()
		if listErr != nil {
			return nil, internal.NewInternalError("failed to list organisations", listErr)
		}
		return orgs, nil
	case auth.ScopeOrganisation:
		if actor.OrganisationID == nil {
			return nil, internal.NewNotFoundError("Your organisation not found", internal.ErrCodeOrganisationNotFound)
		}
		org, getErr := s.repo.GetByID(*actor.OrganisationID)
		if getErr != nil {
			return nil, internal.NewInternalError("failed to load organisation", getErr)
		}
		if org == nil {
			return nil, internal.NewNotFoundError("Your organisation not found", internal.ErrCodeOrganisationNotFound)
		}
		return []*organisationDatamodel.Organisation{org}, nil
	default:
		return nil, internal.ErrForbidden
	}
}

func (s *Service) Get(ctx context.Context, actor auth.Principal, id uuid.UUID) (*organisationDatamodel.Organisation, error) {
	org, err := s.repo.GetByID(id)
	if err != nil {
		return nil, internal.NewInternalError("failed to load organisation", err)
	}
	if org == nil {
		return nil, internal.ErrOrganisationNotFound
	}

	if err := auth.Authorize(actor, auth.ActionOrganisationView, auth.Target{OrganisationID: &org.ID}); err != nil {
		return nil, err
	}
	return org, nil
}

func (s *Service) Update(ctx context.Context, actor auth.Principal, id uuid.UUID, dto UpdateOrganisationDTO) (*organisationDatamodel.Organisation, error) {
	if err := auth.Authorize(actor, auth.ActionOrganisationUpdate, auth.Target{OrganisationID: &id}); err != nil {
		return nil, err
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	var updated *organisationDatamodel.Organisation
	err := s.repo.WithTx(func(tx Repository) error {
		org, getErr := tx.GetByID(id)
		if getErr != nil {
			return internal.NewInternalError("failed to load organisation", getErr)
		}
		if org == nil {
			return internal.ErrOrganisationNotFound
		}

		if dto.Name != nil {
			duplicate, dupErr := tx.FindByName(*dto.Name, &id)
			if dupErr != nil {
				return internal.NewInternalError("failed to check organisation name", dupErr)
			}
			if duplicate != nil {
				return internal.NewConflictError("Another organisation with this name already exists", internal.ErrCodeDuplicateName)
			}
			org.Name = *dto.Name
		}
		if dto.Address != nil {
			org.Address = *dto.Address
		}
		if dto.EmployeesCount != nil {
			org.EmployeesCount = *dto.EmployeesCount
		}
		if dto.AdminID != nil {
			org.AdminID = dto.AdminID
		}

		if updErr := tx.Update(org); updErr != nil {
			return internal.NewInternalError("failed to update organisation", updErr)
		}
		updated = org
		return nil
	})
	if err != nil {
		if _, ok := internal.IsAppError(err); ok {
			return nil, err
		}
		return nil, internal.NewInternalError("failed to update organisation", err)
	}

	if err := s.audit.Record(ctx, &actor.ID, fmt.Sprintf("Updated organisation: %s", updated.Name), &updated.ID, nil); err != nil {
		return updated, internal.NewInternalError("failed to record organisation update", err)
	}
	return updated, nil
}

// Delete removes the organisation together with its departments; users keep
// their rows but lose their organisation and department references.
func (s *Service) Delete(ctx context.Context, actor auth.Principal, id uuid.UUID) error {
	if err := auth.Authorize(actor, auth.ActionOrganisationDelete, auth.Target{OrganisationID: &id}); err != nil {
		return err
	}

	org, err := s.repo.GetByID(id)
	if err != nil {
		return internal.NewInternalError("failed to load organisation", err)
	}
	if org == nil {
		return internal.ErrOrganisationNotFound
	}

	if err := s.repo.Delete(id); err != nil {
		return internal.NewInternalError("failed to delete organisation", err)
	}

	if err := s.audit.Record(ctx, &actor.ID, fmt.Sprintf("Deleted organisation: %s", org.Name), &id, nil); err != nil {
		return internal.NewInternalError("failed to record organisation deletion", err)
	}
	return nil
}
