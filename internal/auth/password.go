package auth

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/frahmantamala/org-directory/internal"
)

// bcrypt operates on at most 72 bytes of input. Longer secrets are rejected
// outright instead of silently truncated.
const maxPasswordBytes = 72

// HashPassword produces a salted bcrypt digest of the password.
func HashPassword(password string, cost int) (string, *internal.AppError) {
	if len(password) > maxPasswordBytes {
		return "", internal.NewValidationError("password must not exceed 72 bytes", internal.ErrCodePasswordTooLong)
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", internal.NewInternalError("failed to hash password", err)
	}
	return string(hash), nil
}

// VerifyPassword reports whether password matches the stored digest. A
// malformed digest verifies as false, never as an error.
func VerifyPassword(hashedPassword, password string) bool {
	if len(password) > maxPasswordBytes {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)) == nil
}
