package user

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/frahmantamala/org-directory/internal"
	"github.com/frahmantamala/org-directory/internal/auth"
	userDatamodel "github.com/frahmantamala/org-directory/internal/core/datamodel/user"
)

type Service struct {
	repo       Repository
	audit      auth.AuditRecorder
	bcryptCost int
	logger     *slog.Logger
}

func NewService(repo Repository, audit auth.AuditRecorder, bcryptCost int, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, audit: audit, bcryptCost: bcryptCost, logger: logger}
}

// Create registers a user. Until the bootstrap marker is set the request may
// be anonymous and the new account becomes superadmin regardless of the
// payload role; the marker is written inside the same transaction as the
// insert. Every later creation requires an authenticated actor with
// user.create scope over the target organisation.
func (s *Service) Create(ctx context.Context, actor *auth.Principal, dto CreateUserDTO) (*userDatamodel.User, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	role := auth.RoleEmployee
	if dto.Role != "" {
		parsed, parseErr := auth.ParseRole(dto.Role)
		if parseErr != nil {
			return nil, parseErr
		}
		role = parsed
	}

	if err := s.checkPlacement(dto.OrganisationID, dto.DepartmentID); err != nil {
		return nil, err
	}

	hash, hashErr := auth.HashPassword(dto.Password, s.bcryptCost)
	if hashErr != nil {
		return nil, hashErr
	}

	user := &userDatamodel.User{
		FirstName:      dto.FirstName,
		LastName:       dto.LastName,
		Age:            dto.Age,
		Email:          dto.Email,
		PasswordHash:   hash,
		Role:           string(role),
		OrganisationID: dto.OrganisationID,
		DepartmentID:   dto.DepartmentID,
	}

	err := s.repo.WithTx(func(tx Repository) error {
		bootstrapped, checkErr := tx.BootstrapCompleted()
		if checkErr != nil {
			return internal.NewInternalError("failed to check bootstrap state", checkErr)
		}

		if !bootstrapped {
			user.Role = string(auth.RoleSuperadmin)
			if markErr := tx.MarkBootstrapCompleted(); markErr != nil {
				return internal.NewInternalError("failed to record bootstrap", markErr)
			}
		} else {
			if actor == nil {
				return internal.NewUnauthorizedError("Authentication required", internal.ErrCodeInvalidToken)
			}
			if authErr := auth.Authorize(*actor, auth.ActionUserCreate, auth.Target{OrganisationID: dto.OrganisationID}); authErr != nil {
				return authErr
			}
			if !auth.CanAssignRole(actor.Role, role) {
				return internal.NewForbiddenError("You cannot create a user with role "+string(role), internal.ErrCodeAccessDenied)
			}
		}

		existing, findErr := tx.GetByEmail(dto.Email, nil)
		if findErr != nil {
			return internal.NewInternalError("failed to check email", findErr)
		}
		if existing != nil {
			return internal.ErrDuplicateEmail
		}
		return tx.Create(user)
	})
	if err != nil {
		if _, ok := internal.IsAppError(err); ok {
			return nil, err
		}
		return nil, internal.NewInternalError("failed to create user", err)
	}

	var actorID *uuid.UUID
	if actor != nil {
		actorID = &actor.ID
	}
	if err := s.audit.Record(ctx, actorID, fmt.Sprintf("Created user: %s", user.Email), user.OrganisationID, user.DepartmentID); err != nil {
		return user, internal.NewInternalError("failed to record user creation", err)
	}
	return user, nil
}

// List returns the users visible to the actor. Employees see only themselves.
func (s *Service) List(ctx context.Context, actor auth.Principal) ([]*userDatamodel.User, error) {
	scope, err := auth.ListScope(actor, auth.ActionUserList)
	if err != nil {
		return nil, err
	}

	switch scope {
	case auth.ScopeAny:
		users, listErr := s.repo.List()
		if listErr != nil {
			return nil, internal.NewInternalError("failed to list users", listErr)
		}
		return users, nil
	case auth.ScopeOrganisation:
		if actor.OrganisationID == nil {
			return []*userDatamodel.User{}, nil
		}
		users, listErr := s.repo.ListByOrganisation(*actor.OrganisationID)
		if listErr != nil {
			return nil, internal.NewInternalError("failed to list users", listErr)
		}
		return users, nil
	case auth.ScopeDepartment:
		if actor.DepartmentID == nil {
			return []*userDatamodel.User{}, nil
		}
		users, listErr := s.repo.ListByDepartment(*actor.DepartmentID)
		if listErr != nil {
			return nil, internal.NewInternalError("failed to list users", listErr)
		}
		return users, nil
	case auth.ScopeSelf:
		self, getErr := s.repo.GetByID(actor.ID)
		if getErr != nil {
			return nil, internal.NewInternalError("failed to load user", getErr)
		}
		if self == nil {
			return []*userDatamodel.User{}, nil
		}
		return []*userDatamodel.User{self}, nil
	default:
		return nil, internal.ErrForbidden
	}
}

func (s *Service) Get(ctx context.Context, actor auth.Principal, id uuid.UUID) (*userDatamodel.User, error) {
	user, err := s.repo.GetByID(id)
	if err != nil {
		return nil, internal.NewInternalError("failed to load user", err)
	}
	if user == nil {
		return nil, internal.ErrUserNotFound
	}

	target := auth.Target{OrganisationID: user.OrganisationID, DepartmentID: user.DepartmentID, UserID: &user.ID}
	if err := auth.Authorize(actor, auth.ActionUserView, target); err != nil {
		return nil, err
	}
	return user, nil
}

// Update changes profile fields. Role, organisation and department changes go
// through here only for admins editing someone else; everyone else gets a
// 403 when the payload touches them.
func (s *Service) Update(ctx context.Context, actor auth.Principal, id uuid.UUID, dto UpdateUserDTO) (*userDatamodel.User, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	user, err := s.repo.GetByID(id)
	if err != nil {
		return nil, internal.NewInternalError("failed to load user", err)
	}
	if user == nil {
		return nil, internal.ErrUserNotFound
	}

	target := auth.Target{OrganisationID: user.OrganisationID, DepartmentID: user.DepartmentID, UserID: &user.ID}
	if err := auth.Authorize(actor, auth.ActionUserUpdate, target); err != nil {
		return nil, err
	}

	if dto.TouchesRestrictedFields() {
		if auth.RestrictedUpdateFields(actor, id) {
			return nil, internal.NewForbiddenError("You cannot change role, organisation or department here", internal.ErrCodeRestrictedField)
		}
		if dto.Role != nil {
			parsed, parseErr := auth.ParseRole(*dto.Role)
			if parseErr != nil {
				return nil, parseErr
			}
			if !auth.CanAssignRole(actor.Role, parsed) {
				return nil, internal.NewForbiddenError("You cannot assign role "+string(parsed), internal.ErrCodeAccessDenied)
			}
		}
		orgID := user.OrganisationID
		if dto.OrganisationID != nil {
			orgID = dto.OrganisationID
		}
		deptID := user.DepartmentID
		if dto.DepartmentID != nil {
			deptID = dto.DepartmentID
		}
		if err := s.checkPlacement(orgID, deptID); err != nil {
			return nil, err
		}
	}

	var updated *userDatamodel.User
	err = s.repo.WithTx(func(tx Repository) error {
		current, getErr := tx.GetByID(id)
		if getErr != nil {
			return internal.NewInternalError("failed to load user", getErr)
		}
		if current == nil {
			return internal.ErrUserNotFound
		}

		if dto.Email != nil {
			duplicate, dupErr := tx.GetByEmail(*dto.Email, &id)
			if dupErr != nil {
				return internal.NewInternalError("failed to check email", dupErr)
			}
			if duplicate != nil {
				return internal.ErrDuplicateEmail
			}
			current.Email = *dto.Email
		}
		if dto.FirstName != nil {
			current.FirstName = *dto.FirstName
		}
		if dto.LastName != nil {
			current.LastName = *dto.LastName
		}
		if dto.Age != nil {
			current.Age = *dto.Age
		}
		if dto.Password != nil {
			hash, hashErr := auth.HashPassword(*dto.Password, s.bcryptCost)
			if hashErr != nil {
				if _, ok := internal.IsAppError(hashErr); ok {
					return hashErr
				}
				return internal.NewInternalError("failed to hash password", hashErr)
			}
			current.PasswordHash = hash
		}
		if dto.Role != nil {
			parsed, _ := auth.ParseRole(*dto.Role)
			current.Role = string(parsed)
		}
		if dto.OrganisationID != nil {
			current.OrganisationID = dto.OrganisationID
		}
		if dto.DepartmentID != nil {
			current.DepartmentID = dto.DepartmentID
		}

		if updErr := tx.Update(current); updErr != nil {
			return internal.NewInternalError("failed to update user", updErr)
		}
		updated = current
		return nil
	})
	if err != nil {
		if _, ok := internal.IsAppError(err); ok {
			return nil, err
		}
		return nil, internal.NewInternalError("failed to update user", err)
	}

	if err := s.audit.Record(ctx, &actor.ID, fmt.Sprintf("Updated user: %s", updated.Email), updated.OrganisationID, updated.DepartmentID); err != nil {
		return updated, internal.NewInternalError("failed to record user update", err)
	}
	return updated, nil
}

// Delete removes the user and revokes their refresh tokens.
func (s *Service) Delete(ctx context.Context, actor auth.Principal, id uuid.UUID) error {
	user, err := s.repo.GetByID(id)
	if err != nil {
		return internal.NewInternalError("failed to load user", err)
	}
	if user == nil {
		return internal.ErrUserNotFound
	}

	target := auth.Target{OrganisationID: user.OrganisationID, DepartmentID: user.DepartmentID, UserID: &user.ID}
	if err := auth.Authorize(actor, auth.ActionUserDelete, target); err != nil {
		return err
	}

	if err := s.repo.Delete(id); err != nil {
		return internal.NewInternalError("failed to delete user", err)
	}

	if err := s.audit.Record(ctx, &actor.ID, fmt.Sprintf("Deleted user: %s", user.Email), user.OrganisationID, user.DepartmentID); err != nil {
		return internal.NewInternalError("failed to record user deletion", err)
	}
	return nil
}

// checkPlacement validates organisation and department references: both must
// exist and the department must belong to the organisation.
func (s *Service) checkPlacement(orgID, deptID *uuid.UUID) error {
	if orgID != nil {
		org, err := s.repo.GetOrganisation(*orgID)
		if err != nil {
			return internal.NewInternalError("failed to load organisation", err)
		}
		if org == nil {
			return internal.ErrOrganisationNotFound
		}
	}
	if deptID != nil {
		dept, err := s.repo.GetDepartment(*deptID)
		if err != nil {
			return internal.NewInternalError("failed to load department", err)
		}
		if dept == nil {
			return internal.ErrDepartmentNotFound
		}
		if orgID == nil || dept.OrganisationID != *orgID {
			return internal.NewConflictError("Department belongs to a different organisation", internal.ErrCodeOrganisationMismatch)
		}
	}
	return nil
}
