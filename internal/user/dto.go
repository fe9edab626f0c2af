package user

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/frahmantamala/org-directory/internal"
)

var validate = validator.New()

type CreateUserDTO struct {
	FirstName      string     `json:"first_name" validate:"required,min=1,max=120"`
	LastName       string     `json:"last_name" validate:"required,min=1,max=120"`
	Age            int        `json:"age" validate:"gte=0,lte=150"`
	Email          string     `json:"email" validate:"required,email"`
	Password       string     `json:"password" validate:"required,min=8"`
	Role           string     `json:"role,omitempty"`
	OrganisationID *uuid.UUID `json:"organisation_id,omitempty"`
	DepartmentID   *uuid.UUID `json:"department_id,omitempty"`
}

type UpdateUserDTO struct {
	FirstName      *string    `json:"first_name,omitempty" validate:"omitempty,min=1,max=120"`
	LastName       *string    `json:"last_name,omitempty" validate:"omitempty,min=1,max=120"`
	Age            *int       `json:"age,omitempty" validate:"omitempty,gte=0,lte=150"`
	Email          *string    `json:"email,omitempty" validate:"omitempty,email"`
	Password       *string    `json:"password,omitempty" validate:"omitempty,min=8"`
	Role           *string    `json:"role,omitempty"`
	OrganisationID *uuid.UUID `json:"organisation_id,omitempty"`
	DepartmentID   *uuid.UUID `json:"department_id,omitempty"`
}

func (d *CreateUserDTO) Validate() *internal.AppError {
	d.Email = strings.ToLower(strings.TrimSpace(d.Email))
	d.FirstName = strings.TrimSpace(d.FirstName)
	d.LastName = strings.TrimSpace(d.LastName)
	if err := validate.Struct(d); err != nil {
		return internal.NewValidationError("first_name, last_name, a valid email and a password of at least 8 characters are required", internal.ErrCodeValidationFailed)
	}
	return nil
}

// TouchesRestrictedFields reports whether the update tries to change role or
// organisational placement.
func (d *UpdateUserDTO) TouchesRestrictedFields() bool {
	return d.Role != nil || d.OrganisationID != nil || d.DepartmentID != nil
}

func (d *UpdateUserDTO) Validate() *internal.AppError {
	if d.Email != nil {
		normalized := strings.ToLower(strings.TrimSpace(*d.Email))
		d.Email = &normalized
	}
	if err := validate.Struct(d); err != nil {
		return internal.NewValidationError("invalid user payload", internal.ErrCodeValidationFailed)
	}
	return nil
}
