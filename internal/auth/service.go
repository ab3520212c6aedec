package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/backoffice/admin-system/internal/platform/httpx"
	"github.com/backoffice/admin-system/internal/rbac"
	"github.com/backoffice/admin-system/internal/shared"
)

// Revocations tracks signed-out tokens.
type Revocations interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	// Claim atomically revokes tokenID and reports false if it was already revoked.
	Claim(ctx context.Context, tokenID string, until time.Time) (bool, error)
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// PermissionResolver returns the effective permissions of an admin.
type PermissionResolver interface {
	EffectivePermissions(ctx context.Context, adminID int64) (rbac.PermissionSet, error)
}

// Service wraps authentication business rules.
type Service struct {
	repo    Repository
	tokens  *TokenManager
	revoked Revocations
	perms   PermissionResolver
	cost    int
	now     func() time.Time
}

// NewService constructs a new Service.
func NewService(repo Repository, tokens *TokenManager, revoked Revocations, perms PermissionResolver) *Service {
	return &Service{repo: repo, tokens: tokens, revoked: revoked, perms: perms, cost: bcrypt.DefaultCost, now: time.Now}
}

// Login validates username/password credentials and issues a token.
func (s *Service) Login(ctx context.Context, username, password, ip string) (LoginResult, error) {
	admin, err := s.repo.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, httpx.ErrNotFound) {
			return LoginResult{}, shared.ErrInvalidCredentials
		}
		return LoginResult{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		return LoginResult{}, shared.ErrInvalidCredentials
	}
	if !admin.Active() {
		return LoginResult{}, shared.ErrAccountDisabled
	}
	token, err := s.tokens.Issue(admin.ID, admin.Username)
	if err != nil {
		return LoginResult{}, err
	}
	if err := s.repo.RecordLogin(ctx, admin.ID, ip, s.now().UTC()); err != nil {
		return LoginResult{}, fmt.Errorf("auth: record login: %w", err)
	}
	info, err := s.userInfo(ctx, admin)
	if err != nil {
		return LoginResult{}, err
	}
	return LoginResult{Token: token, User: info}, nil
}

// Authenticate verifies a bearer token and loads its active admin.
func (s *Service) Authenticate(ctx context.Context, raw string) (*Claims, *Admin, error) {
	claims, err := s.tokens.Parse(raw)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", httpx.ErrUnauthorized, err)
	}
	admin, err := s.checkToken(ctx, claims)
	if err != nil {
		return nil, nil, err
	}
	return claims, admin, nil
}

// Logout revokes the token until it could no longer be refreshed.
func (s *Service) Logout(ctx context.Context, claims *Claims) error {
	return s.revoked.Revoke(ctx, claims.ID, s.tokens.RefreshDeadline(claims))
}

// Refresh trades a token inside its refresh window for a new one.
func (s *Service) Refresh(ctx context.Context, raw string) (Token, error) {
	claims, err := s.tokens.ParseForRefresh(raw)
	if err != nil {
		return Token{}, fmt.Errorf("%w: %w", httpx.ErrUnauthorized, err)
	}
	admin, err := s.checkToken(ctx, claims)
	if err != nil {
		return Token{}, err
	}
	claimed, err := s.revoked.Claim(ctx, claims.ID, s.tokens.RefreshDeadline(claims))
	if err != nil {
		return Token{}, fmt.Errorf("auth: revoke refreshed token: %w", err)
	}
	if !claimed {
		return Token{}, fmt.Errorf("%w: token already refreshed or revoked", httpx.ErrUnauthorized)
	}
	return s.tokens.Issue(admin.ID, admin.Username)
}

// Me returns the admin's profile, role names and permission codes.
func (s *Service) Me(ctx context.Context, adminID int64) (UserInfo, error) {
	admin, err := s.repo.FindByID(ctx, adminID)
	if err != nil {
		return UserInfo{}, err
	}
	return s.userInfo(ctx, admin)
}

// UpdateProfile stores the admin's own profile fields.
func (s *Service) UpdateProfile(ctx context.Context, adminID int64, in ProfileInput) (UserInfo, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Avatar = strings.TrimSpace(in.Avatar)
	if err := s.repo.UpdateProfile(ctx, adminID, in); err != nil {
		return UserInfo{}, err
	}
	return s.Me(ctx, adminID)
}

// ChangePassword replaces the admin's password after checking the old one.
func (s *Service) ChangePassword(ctx context.Context, adminID int64, in PasswordChange) error {
	admin, err := s.repo.FindByID(ctx, adminID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(in.OldPassword)); err != nil {
		return httpx.ValidationErrors{"old_password": "is incorrect"}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.NewPassword), s.cost)
	if err != nil {
		return fmt.Errorf("auth: hash password: %w", err)
	}
	return s.repo.SetPassword(ctx, adminID, string(hash))
}

func (s *Service) checkToken(ctx context.Context, claims *Claims) (*Admin, error) {
	revoked, err := s.revoked.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("auth: revocation lookup: %w", err)
	}
	if revoked {
		return nil, fmt.Errorf("token revoked: %w", httpx.ErrUnauthorized)
	}
	adminID, err := claims.AdminID()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", httpx.ErrUnauthorized, err)
	}
	admin, err := s.repo.FindByID(ctx, adminID)
	if err != nil {
		if errors.Is(err, httpx.ErrNotFound) {
			return nil, fmt.Errorf("admin %d gone: %w", adminID, httpx.ErrUnauthorized)
		}
		return nil, err
	}
	if !admin.Active() {
		return nil, shared.ErrAccountDisabled
	}
	return admin, nil
}

func (s *Service) userInfo(ctx context.Context, admin *Admin) (UserInfo, error) {
	roles, err := s.repo.RoleNames(ctx, admin.ID)
	if err != nil {
		return UserInfo{}, fmt.Errorf("auth: load roles: %w", err)
	}
	perms, err := s.perms.EffectivePermissions(ctx, admin.ID)
	if err != nil {
		return UserInfo{}, err
	}
	if roles == nil {
		roles = []string{}
	}
	return UserInfo{
		ID:          admin.ID,
		Username:    admin.Username,
		Name:        admin.Name,
		Email:       admin.Email,
		Phone:       admin.Phone,
		Avatar:      admin.Avatar,
		Roles:       roles,
		Permissions: perms.Codes(),
		CreatedAt:   admin.CreatedAt,
	}, nil
}
