// internal/service/auth/service.go
package auth

import (
	"context"
	"strings"
	"time"

	"flota-service/internal/domain/unit"
	"flota-service/internal/domain/user"
	xerrors "flota-service/internal/pkg/errors"
	"flota-service/internal/pkg/jwt"
	"flota-service/internal/pkg/session"
	"flota-service/internal/repository/postgres"
	"flota-service/internal/service/access"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type Service struct {
	users    *postgres.UserRepository
	tokens   *jwt.Manager
	sessions *session.Manager
	limiter  *session.RateLimiter
	policy   *access.Policy
	logger   *zap.Logger
}

func NewService(
	users *postgres.UserRepository,
	tokens *jwt.Manager,
	sessions *session.Manager,
	limiter *session.RateLimiter,
	policy *access.Policy,
	logger *zap.Logger,
) *Service {
	return &Service{
		users:    users,
		tokens:   tokens,
		sessions: sessions,
		limiter:  limiter,
		policy:   policy,
		logger:   logger,
	}
}

// Login verifies credentials, signs a token and opens its Redis session.
// Invalid email and invalid password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, ip string, req *user.LoginRequest) (*user.LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	allowed, remaining, err := s.limiter.CheckLoginAttempt(ctx, ip, email)
	if err != nil {
		s.logger.Warn("rate limiter unavailable", zap.Error(err))
	} else if !allowed {
		return nil, xerrors.Wrap(xerrors.ErrUnauthorized, "too many login attempts")
	}

	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, xerrors.Wrap(xerrors.ErrUnauthorized, "invalid credentials")
	}
	if !u.IsActive {
		return nil, xerrors.Wrap(xerrors.ErrUnauthorized, "account disabled")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.Info("failed login attempt",
			zap.String("email", email),
			zap.Int64("attempts_remaining", remaining),
		)
		return nil, xerrors.Wrap(xerrors.ErrUnauthorized, "invalid credentials")
	}

	token, jti, err := s.tokens.Generate(u.ID, u.Admin, u.Unidad.String())
	if err != nil {
		return nil, xerrors.Wrap(xerrors.ErrInternal, "failed to issue token")
	}

	now := time.Now()
	err = s.sessions.Create(ctx, &session.Data{
		JTI:            jti,
		UserID:         u.ID,
		Email:          u.Email,
		Admin:          u.Admin,
		Unidad:         u.Unidad.String(),
		LoginAt:        now,
		LastActivityAt: now,
		ExpiresAt:      now.Add(s.tokens.TTL()),
	})
	if err != nil {
		return nil, xerrors.Wrap(xerrors.ErrInternal, "failed to open session")
	}

	if err := s.limiter.ResetLoginAttempts(ctx, ip, email); err != nil {
		s.logger.Warn("failed to reset login attempts", zap.Error(err))
	}

	s.logger.Info("user logged in", zap.Int64("user_id", u.ID), zap.Bool("admin", u.Admin))

	return &user.LoginResponse{
		Token: token,
		User:  u.ToProfile(),
	}, nil
}

// ValidateToken checks both the signature and the live session: a valid
// token whose session was invalidated is treated as expired.
func (s *Service) ValidateToken(ctx context.Context, token string) (*jwt.Claims, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, xerrors.Wrap(xerrors.ErrUnauthorized, "invalid token")
	}

	if _, err := s.sessions.Get(ctx, claims.UserID, claims.ID); err != nil {
		return nil, xerrors.Wrap(xerrors.ErrSessionExpired, "session not found")
	}
	return claims, nil
}

func (s *Service) Logout(ctx context.Context, userID int64, jti string) error {
	return s.sessions.Invalidate(ctx, userID, jti)
}

// CreateUser provisions an account. Admin only.
func (s *Service) CreateUser(ctx context.Context, p user.Principal, req *user.CreateUserRequest) (*user.Profile, error) {
	if !p.Admin {
		return nil, xerrors.Wrap(xerrors.ErrPermissionDenied, "admin access required")
	}

	unidad := unit.Normalize(req.Unidad)
	if req.Unidad != "" && !unidad.Valid() {
		return nil, xerrors.Wrap(xerrors.ErrValidation, "unknown unit")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, xerrors.Wrap(xerrors.ErrInternal, "failed to hash password")
	}

	u := &user.User{
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: string(hash),
		FullName:     req.FullName,
		Admin:        req.Admin,
		Unidad:       unidad,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}

	s.logger.Info("user created", zap.Int64("user_id", u.ID), zap.Int64("by", p.ID))
	return u.ToProfile(), nil
}

// UpdateUser applies the supplied fields. Demoting or deactivating a
// protected account is refused even for admins.
func (s *Service) UpdateUser(ctx context.Context, p user.Principal, id int64, req *user.UpdateUserRequest) (*user.Profile, error) {
	if !p.Admin {
		return nil, xerrors.Wrap(xerrors.ErrPermissionDenied, "admin access required")
	}

	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.FullName != nil {
		u.FullName = *req.FullName
	}
	if req.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, xerrors.Wrap(xerrors.ErrInternal, "failed to hash password")
		}
		u.PasswordHash = string(hash)
	}
	if req.Admin != nil {
		if u.Admin && !*req.Admin && !s.policy.CanDemote(p, id) {
			return nil, xerrors.Wrap(xerrors.ErrPermissionDenied, "account cannot be demoted")
		}
		u.Admin = *req.Admin
	}
	if req.Unidad != nil {
		unidad := unit.Normalize(*req.Unidad)
		if *req.Unidad != "" && !unidad.Valid() {
			return nil, xerrors.Wrap(xerrors.ErrValidation, "unknown unit")
		}
		u.Unidad = unidad
	}
	if req.IsActive != nil {
		if !*req.IsActive && !s.policy.CanDeleteUser(p, id) {
			return nil, xerrors.Wrap(xerrors.ErrPermissionDenied, "account cannot be deactivated")
		}
		u.IsActive = *req.IsActive
	}

	if err := s.users.Update(ctx, u); err != nil {
		return nil, err
	}

	// Credentials or privileges changed: kill every live session
	if req.Password != nil || req.Admin != nil || req.IsActive != nil {
		if err := s.sessions.InvalidateAll(ctx, id); err != nil {
			s.logger.Warn("failed to invalidate sessions", zap.Int64("user_id", id), zap.Error(err))
		}
	}

	return u.ToProfile(), nil
}

func (s *Service) DeleteUser(ctx context.Context, p user.Principal, id int64) error {
	if !s.policy.CanDeleteUser(p, id) {
		return xerrors.Wrap(xerrors.ErrPermissionDenied, "account cannot be deleted")
	}
	if p.ID == id {
		return xerrors.Wrap(xerrors.ErrValidation, "cannot delete own account")
	}

	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.sessions.InvalidateAll(ctx, id); err != nil {
		s.logger.Warn("failed to invalidate sessions", zap.Int64("user_id", id), zap.Error(err))
	}

	s.logger.Info("user deleted", zap.Int64("user_id", id), zap.Int64("by", p.ID))
	return nil
}

func (s *Service) ListUsers(ctx context.Context, p user.Principal) ([]user.Profile, error) {
	if !p.Admin {
		return nil, xerrors.Wrap(xerrors.ErrPermissionDenied, "admin access required")
	}

	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}

	profiles := make([]user.Profile, 0, len(users))
	for i := range users {
		profiles = append(profiles, *users[i].ToProfile())
	}
	return profiles, nil
}

func (s *Service) Profile(ctx context.Context, userID int64) (*user.Profile, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return u.ToProfile(), nil
}

func (s *Service) RegisterPushToken(ctx context.Context, userID int64, token string) error {
	return s.users.SetPushToken(ctx, userID, token)
}

// EnsureRootAdmin seeds the root admin account on startup when it does not
// exist yet. Returns the account id so it can be added to the protected set.
func (s *Service) EnsureRootAdmin(ctx context.Context, email, password, fullName string) (int64, error) {
	if email == "" || password == "" {
		return 0, nil
	}

	email = strings.ToLower(strings.TrimSpace(email))
	if existing, err := s.users.FindByEmail(ctx, email); err == nil {
		return existing.ID, nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return 0, xerrors.Wrap(xerrors.ErrInternal, "failed to hash root admin password")
	}

	u := &user.User{
		Email:        email,
		PasswordHash: string(hash),
		FullName:     fullName,
		Admin:        true,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return 0, err
	}

	s.logger.Info("root admin seeded", zap.Int64("user_id", u.ID))
	return u.ID, nil
}
