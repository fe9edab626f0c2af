package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/frahmantamala/org-directory/internal"
)

// Role is the closed set of privilege levels. Stored and compared lowercase.
type Role string

const (
	RoleSuperadmin        Role = "superadmin"
	RoleOrganisationAdmin Role = "organisation_admin"
	RoleDepartmentManager Role = "department_manager"
	RoleEmployee          Role = "employee"
)

var allRoles = []Role{RoleSuperadmin, RoleOrganisationAdmin, RoleDepartmentManager, RoleEmployee}

// ParseRole normalizes an untrusted role string into the enum. Role strings
// are case-insensitive at the boundary.
func ParseRole(s string) (Role, *internal.AppError) {
	normalized := Role(strings.ToLower(strings.TrimSpace(s)))
	for _, r := range allRoles {
		if normalized == r {
			return r, nil
		}
	}
	return "", internal.NewValidationError("invalid role: "+s, internal.ErrCodeInvalidRole)
}

// Roles returns the closed role set, highest privilege first.
func Roles() []Role {
	out := make([]Role, len(allRoles))
	copy(out, allRoles)
	return out
}

// Principal is the authenticated actor for one request. Resolved fresh from
// storage on every request so promotions take effect immediately.
type Principal struct {
	ID             uuid.UUID  `json:"id"`
	Email          string     `json:"email"`
	Role           Role       `json:"role"`
	OrganisationID *uuid.UUID `json:"organisation_id,omitempty"`
	DepartmentID   *uuid.UUID `json:"department_id,omitempty"`
}

// Claims carried by both access and refresh tokens. Only registered claims
// are used: sub (user id), iat, exp.
type Claims struct {
	jwt.RegisteredClaims
}

type AuthTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

// TokenGenerator creates and validates signed tokens.
type TokenGenerator interface {
	GenerateAccessToken(userID string) (string, error)
	GenerateRefreshToken(userID string) (token string, expiresAt time.Time, err error)
	ValidateToken(tokenString string) (*Claims, error)
}

type JWTTokenGenerator struct {
	Secret          []byte
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

// NewJWTTokenGenerator creates an HS256 token generator. Access and refresh
// tokens share the encoding; they differ in TTL and storage treatment.
func NewJWTTokenGenerator(secret string, accessTTL, refreshTTL time.Duration) *JWTTokenGenerator {
	if accessTTL <= 0 {
		accessTTL = internal.DefaultAccessTokenDuration
	}
	if refreshTTL <= 0 {
		refreshTTL = internal.DefaultRefreshTokenDuration
	}
	return &JWTTokenGenerator{
		Secret:          []byte(secret),
		AccessTokenTTL:  accessTTL,
		RefreshTokenTTL: refreshTTL,
	}
}

func (j *JWTTokenGenerator) sign(userID string, ttl time.Duration) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(ttl)

	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(j.Secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

func (j *JWTTokenGenerator) GenerateAccessToken(userID string) (string, error) {
	signed, _, err := j.sign(userID, j.AccessTokenTTL)
	return signed, err
}

func (j *JWTTokenGenerator) GenerateRefreshToken(userID string) (string, time.Time, error) {
	return j.sign(userID, j.RefreshTokenTTL)
}

// ValidateToken verifies signature and expiry. Expiry and malformed tokens
// fail with distinct errors so callers can answer "log in again" versus
// "malformed request".
func (j *JWTTokenGenerator) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, internal.ErrInvalidToken
		}
		return j.Secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, internal.ErrTokenExpired
		}
		return nil, internal.ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, internal.ErrInvalidToken
	}

	return claims, nil
}
