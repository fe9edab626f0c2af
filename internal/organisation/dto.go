package organisation

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/frahmantamala/org-directory/internal"
)

var validate = validator.New()

type CreateOrganisationDTO struct {
	Name           string     `json:"name" validate:"required,min=2,max=120"`
	Address        string     `json:"address"`
	EmployeesCount int        `json:"employees_count" validate:"min=0"`
	AdminID        *uuid.UUID `json:"admin_id,omitempty"`
}

type UpdateOrganisationDTO struct {
	Name           *string    `json:"name,omitempty" validate:"omitempty,min=2,max=120"`
	Address        *string    `json:"address,omitempty"`
	EmployeesCount *int       `json:"employees_count,omitempty" validate:"omitempty,min=0"`
	AdminID        *uuid.UUID `json:"admin_id,omitempty"`
}

func (d *CreateOrganisationDTO) Validate() *internal.AppError {
	d.Name = strings.TrimSpace(d.Name)
	if err := validate.Struct(d); err != nil {
		return internal.NewValidationError("organisation name is required", internal.ErrCodeValidationFailed)
	}
	return nil
}

func (d *UpdateOrganisationDTO) Validate() *internal.AppError {
	if d.Name != nil {
		trimmed := strings.TrimSpace(*d.Name)
		d.Name = &trimmed
	}
	if err := validate.Struct(d); err != nil {
		return internal.NewValidationError("invalid organisation payload", internal.ErrCodeValidationFailed)
	}
	return nil
}
