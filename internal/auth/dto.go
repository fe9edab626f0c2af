package auth

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/frahmantamala/org-directory/internal"
)

var validate = validator.New()

// LoginDTO is the transport shape for login requests.
type LoginDTO struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshTokenDTO for rotation and logout requests.
type RefreshTokenDTO struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

func (d *LoginDTO) Validate() *internal.AppError {
	d.Email = strings.ToLower(strings.TrimSpace(d.Email))
	if err := validate.Struct(d); err != nil {
		return internal.NewValidationError("email and password are required", internal.ErrCodeValidationFailed)
	}
	return nil
}

func (d *RefreshTokenDTO) Validate() *internal.AppError {
	if err := validate.Struct(d); err != nil {
		return internal.NewValidationError("refresh_token is required", internal.ErrCodeValidationFailed)
	}
	return nil
}
