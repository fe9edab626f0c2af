package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/frahmantamala/org-directory/internal"
	refreshtokenDatamodel "github.com/frahmantamala/org-directory/internal/core/datamodel/refreshtoken"
	userDatamodel "github.com/frahmantamala/org-directory/internal/core/datamodel/user"
)

// UserRepository is the slice of user storage the auth service needs.
// Lookups return (nil, nil) when no row matches.
type UserRepository interface {
	GetByEmail(email string) (*userDatamodel.User, error)
	GetByID(id uuid.UUID) (*userDatamodel.User, error)
	UpdateRole(id uuid.UUID, role string) error
}

// RefreshTokenRepository persists the revocable side of refresh tokens.
type RefreshTokenRepository interface {
	Create(rec *refreshtokenDatamodel.RefreshToken) error
	GetByToken(token string) (*refreshtokenDatamodel.RefreshToken, error)
	// Rotate deletes the consumed row and inserts the replacement in one
	// transaction.
	Rotate(oldToken string, next *refreshtokenDatamodel.RefreshToken) error
	// DeleteByToken is idempotent; deleting an absent row is not an error.
	DeleteByToken(token string) error
}

// AuditRecorder is the append-only activity sink. Implemented by the audit
// service; a failed write must not undo the action that triggered it.
type AuditRecorder interface {
	Record(ctx context.Context, userID *uuid.UUID, action string, orgID, deptID *uuid.UUID) error
}

type Service struct {
	users    UserRepository
	tokens   RefreshTokenRepository
	tokenGen TokenGenerator
	audit    AuditRecorder
	logger   *slog.Logger
}

func NewService(users UserRepository, tokens RefreshTokenRepository, tokenGen TokenGenerator, audit AuditRecorder, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		users:    users,
		tokens:   tokens,
		tokenGen: tokenGen,
		audit:    audit,
		logger:   logger,
	}
}

// Authenticate verifies credentials and issues a token pair. Both failure
// modes return the same error to the caller; the audit trail records which
// one happened.
func (s *Service) Authenticate(ctx context.Context, dto LoginDTO) (AuthTokens, error) {
	if err := dto.Validate(); err != nil {
		return AuthTokens{}, err
	}

	u, err := s.users.GetByEmail(dto.Email)
	if err != nil {
		return AuthTokens{}, internal.NewInternalError("failed to look up user", err)
	}
	if u == nil {
		s.recordBestEffort(ctx, nil, fmt.Sprintf("Login failed (email not found): %s", dto.Email), nil, nil)
		return AuthTokens{}, internal.ErrInvalidCredentials
	}

	if !VerifyPassword(u.PasswordHash, dto.Password) {
		s.recordBestEffort(ctx, &u.ID, "Login failed (wrong password)", u.OrganisationID, u.DepartmentID)
		return AuthTokens{}, internal.ErrInvalidCredentials
	}

	pair, err := s.issuePair(u.ID)
	if err != nil {
		return AuthTokens{}, err
	}

	if err := s.audit.Record(ctx, &u.ID, fmt.Sprintf("User logged in: %s", u.Email), u.OrganisationID, u.DepartmentID); err != nil {
		// Tokens are already issued and the refresh row committed; surface
		// the audit failure without revoking them.
		return pair, internal.NewInternalError("failed to record login", err)
	}

	return pair, nil
}

// RefreshTokens performs single-use rotation. The persisted row, not the
// signature, is the source of truth for validity.
func (s *Service) RefreshTokens(ctx context.Context, refreshToken string) (AuthTokens, error) {
	rec, err := s.tokens.GetByToken(refreshToken)
	if err != nil {
		return AuthTokens{}, internal.NewInternalError("failed to look up refresh token", err)
	}
	if rec == nil {
		return AuthTokens{}, internal.ErrRefreshInvalid
	}
	if rec.Revoked {
		return AuthTokens{}, internal.ErrRefreshRevoked
	}
	if time.Now().After(rec.ExpiresAt) {
		return AuthTokens{}, internal.ErrRefreshExpired
	}

	accessToken, err := s.tokenGen.GenerateAccessToken(rec.UserID.String())
	if err != nil {
		return AuthTokens{}, internal.NewInternalError("failed to generate access token", err)
	}

	newRefresh, expiresAt, err := s.tokenGen.GenerateRefreshToken(rec.UserID.String())
	if err != nil {
		return AuthTokens{}, internal.NewInternalError("failed to generate refresh token", err)
	}

	next := &refreshtokenDatamodel.RefreshToken{
		Token:     newRefresh,
		UserID:    rec.UserID,
		ExpiresAt: expiresAt,
	}
	if err := s.tokens.Rotate(refreshToken, next); err != nil {
		return AuthTokens{}, internal.NewInternalError("failed to rotate refresh token", err)
	}

	return AuthTokens{
		AccessToken:  accessToken,
		RefreshToken: newRefresh,
		TokenType:    "bearer",
		ExpiresIn:    s.accessTokenSeconds(),
	}, nil
}

// Logout discards the persisted refresh row. Calling it with a stale or
// already-consumed token succeeds.
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	rec, err := s.tokens.GetByToken(refreshToken)
	if err != nil {
		return internal.NewInternalError("failed to look up refresh token", err)
	}
	if rec == nil {
		return nil
	}
	if err := s.tokens.DeleteByToken(refreshToken); err != nil {
		return internal.NewInternalError("failed to delete refresh token", err)
	}
	s.recordBestEffort(ctx, &rec.UserID, "User logged out", nil, nil)
	return nil
}

// ValidateAccessToken decodes and verifies an access token.
func (s *Service) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.tokenGen.ValidateToken(tokenString)
}

// ResolvePrincipal turns a bearer token into the live principal record. Role,
// organisation and department are read from storage on every call so that a
// promotion is effective on the very next request.
func (s *Service) ResolvePrincipal(ctx context.Context, bearerToken string) (*Principal, error) {
	claims, err := s.tokenGen.ValidateToken(bearerToken)
	if err != nil {
		return nil, err
	}

	userID, parseErr := uuid.Parse(claims.Subject)
	if parseErr != nil {
		return nil, internal.ErrInvalidToken
	}

	u, err := s.users.GetByID(userID)
	if err != nil {
		return nil, internal.NewInternalError("failed to look up user", err)
	}
	if u == nil {
		// Token is cryptographically valid but the user is gone.
		return nil, internal.ErrPrincipalNotFound
	}

	role, roleErr := ParseRole(u.Role)
	if roleErr != nil {
		return nil, internal.NewInternalError("stored role is not a known role", roleErr)
	}

	return &Principal{
		ID:             u.ID,
		Email:          u.Email,
		Role:           role,
		OrganisationID: u.OrganisationID,
		DepartmentID:   u.DepartmentID,
	}, nil
}

// PromoteToOrgAdmin elevates a user to organisation_admin. Superadmin only;
// self-promotion is blocked and an already-privileged target is a conflict.
func (s *Service) PromoteToOrgAdmin(ctx context.Context, actor Principal, targetID uuid.UUID) (*userDatamodel.User, error) {
	if err := Authorize(actor, ActionUserPromote, Target{UserID: &targetID}); err != nil {
		return nil, err
	}

	if actor.ID == targetID {
		return nil, internal.NewValidationError("You cannot promote yourself.", internal.ErrCodeSelfPromotion)
	}

	target, err := s.users.GetByID(targetID)
	if err != nil {
		return nil, internal.NewInternalError("failed to look up user", err)
	}
	if target == nil {
		return nil, internal.ErrUserNotFound
	}

	if target.Role == string(RoleOrganisationAdmin) || target.Role == string(RoleSuperadmin) {
		return nil, internal.NewConflictError(fmt.Sprintf("User already has role: %s", target.Role), internal.ErrCodeRoleAlreadyHeld)
	}

	if err := s.users.UpdateRole(targetID, string(RoleOrganisationAdmin)); err != nil {
		return nil, internal.NewInternalError("failed to update role", err)
	}
	target.Role = string(RoleOrganisationAdmin)

	if err := s.audit.Record(ctx, &actor.ID, fmt.Sprintf("Promoted %s to organisation admin", target.Email), target.OrganisationID, nil); err != nil {
		return target, internal.NewInternalError("failed to record promotion", err)
	}

	return target, nil
}

// issuePair signs an access/refresh pair and persists the refresh side.
func (s *Service) issuePair(userID uuid.UUID) (AuthTokens, error) {
	accessToken, err := s.tokenGen.GenerateAccessToken(userID.String())
	if err != nil {
		return AuthTokens{}, internal.NewInternalError("failed to generate access token", err)
	}

	refreshToken, expiresAt, err := s.tokenGen.GenerateRefreshToken(userID.String())
	if err != nil {
		return AuthTokens{}, internal.NewInternalError("failed to generate refresh token", err)
	}

	rec := &refreshtokenDatamodel.RefreshToken{
		Token:     refreshToken,
		UserID:    userID,
		ExpiresAt: expiresAt,
	}
	if err := s.tokens.Create(rec); err != nil {
		// The token string carries fresh iat entropy; a unique violation
		// here is an integrity fault, not a retry case.
		return AuthTokens{}, internal.NewInternalError("failed to persist refresh token", err)
	}

	return AuthTokens{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
		ExpiresIn:    s.accessTokenSeconds(),
	}, nil
}

func (s *Service) accessTokenSeconds() int64 {
	if gen, ok := s.tokenGen.(*JWTTokenGenerator); ok {
		return int64(gen.AccessTokenTTL / time.Second)
	}
	return int64(internal.DefaultAccessTokenDuration / time.Second)
}

// recordBestEffort logs audit failures instead of propagating them; used on
// paths that already return an error of their own.
func (s *Service) recordBestEffort(ctx context.Context, userID *uuid.UUID, action string, orgID, deptID *uuid.UUID) {
	if err := s.audit.Record(ctx, userID, action, orgID, deptID); err != nil {
		s.logger.ErrorContext(ctx, "audit write failed", "action", action, "error", err)
	}
}
