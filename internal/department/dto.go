package department

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/frahmantamala/org-directory/internal"
)

var validate = validator.New()

type CreateDepartmentDTO struct {
	Name           string     `json:"name" validate:"required,min=2,max=120"`
	OrganisationID uuid.UUID  `json:"organisation_id" validate:"required"`
	ManagerID      *uuid.UUID `json:"manager_id,omitempty"`
}

type UpdateDepartmentDTO struct {
	Name      *string    `json:"name,omitempty" validate:"omitempty,min=2,max=120"`
	ManagerID *uuid.UUID `json:"manager_id,omitempty"`
}

func (d *CreateDepartmentDTO) Validate() *internal.AppError {
	d.Name = strings.TrimSpace(d.Name)
	if err := validate.Struct(d); err != nil {
		return internal.NewValidationError("department name and organisation_id are required", internal.ErrCodeValidationFailed)
	}
	return nil
}

func (d *UpdateDepartmentDTO) Validate() *internal.AppError {
	if d.Name != nil {
		trimmed := strings.TrimSpace(*d.Name)
		d.Name = &trimmed
	}
	if err := validate.Struct(d); err != nil {
		return internal.NewValidationError("invalid department payload", internal.ErrCodeValidationFailed)
	}
	return nil
}
