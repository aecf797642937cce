package services

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"expensetracker/internal/apperr"
	"expensetracker/internal/interfaces"
	"expensetracker/internal/models"
)

const (
	MsgUserExists         = "User with this email already exists"
	MsgInvalidCredentials = "Invalid credentials"
	MsgResetRequested     = "If an account exists with that email, you will receive a reset link shortly"
	MsgResetInvalid       = "Invalid or expired reset link"
	MsgResetExpired       = "Reset link has expired"
	MsgResetUsed          = "Reset link has already been used"
	MsgResetDone          = "Password has been reset successfully"
	MsgPasswordTooLong    = "password must be at most 72 bytes"
)

// Reset request outcomes, as reported to a ResetObserver.
const (
	OutcomeUnknownUser = "unknown_user"
	OutcomeRateLimited = "rate_limited"
	OutcomeIssued      = "issued"
	OutcomeFailed      = "failed"
)

// ResetObserver receives reset bookkeeping events, typically for metrics.
type ResetObserver interface {
	ResetRequested(outcome string)
	ResetsCleaned(n int64)
}

type noopObserver struct{}

func (noopObserver) ResetRequested(string) {}
func (noopObserver) ResetsCleaned(int64)   {}

type AuthConfig struct {
	FrontendURL string
	ResetTTL    time.Duration
	ResetWindow time.Duration
	ResetLimit  int
}

func DefaultAuthConfig(frontendURL string) AuthConfig {
	return AuthConfig{
		FrontendURL: frontendURL,
		ResetTTL:    time.Hour,
		ResetWindow: 60 * time.Minute,
		ResetLimit:  3,
	}
}

// AuthDeps are the collaborators of AuthService. Limiter and Observer are
// optional.
type AuthDeps struct {
	Users    interfaces.UserRepository
	Resets   interfaces.PasswordResetRepository
	Hasher   PasswordHasher
	Tokens   TokenGenerator
	Notifier ResetNotifier
	Sessions SessionIssuer
	Limiter  ResetLimiter
	Observer ResetObserver
	Logger   *slog.Logger
}

type AuthService struct {
	AuthDeps
	cfg AuthConfig
	now func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

func NewAuthService(deps AuthDeps, cfg AuthConfig) *AuthService {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Observer == nil {
		deps.Observer = noopObserver{}
	}
	if deps.Tokens == nil {
		deps.Tokens = NewTokenGenerator()
	}
	def := DefaultAuthConfig(cfg.FrontendURL)
	if cfg.ResetTTL <= 0 {
		cfg.ResetTTL = def.ResetTTL
	}
	if cfg.ResetWindow <= 0 {
		cfg.ResetWindow = def.ResetWindow
	}
	if cfg.ResetLimit <= 0 {
		cfg.ResetLimit = def.ResetLimit
	}
	cfg.FrontendURL = strings.TrimRight(cfg.FrontendURL, "/")
	return &AuthService{AuthDeps: deps, cfg: cfg, now: time.Now}
}

// NormalizeEmail is applied to every email before lookup or storage.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	email := NormalizeEmail(req.Email)

	_, err := s.Users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, apperr.Conflict(MsgUserExists)
	case !apperr.Is(err, apperr.CodeNotFound):
		return nil, err
	}

	hash, err := s.Hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	u := &models.User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         trimName(req.Name),
		PasswordHash: hash,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.Users.Create(ctx, u); err != nil {
		// A concurrent registration can win between lookup and insert.
		if apperr.Is(err, apperr.CodeConflict) {
			return nil, apperr.Conflict(MsgUserExists)
		}
		return nil, err
	}

	s.Logger.InfoContext(ctx, "user registered", "user_id", u.ID)
	return s.session(u)
}

func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	u, err := s.Users.GetByEmail(ctx, NormalizeEmail(req.Email))
	if err != nil {
		if !apperr.Is(err, apperr.CodeNotFound) {
			return nil, err
		}
		s.burnCompare(req.Password)
		return nil, apperr.Unauthorized(MsgInvalidCredentials)
	}

	ok, err := s.Hasher.Verify(req.Password, u.PasswordHash)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.Unauthorized(MsgInvalidCredentials)
	}
	return s.session(u)
}

// burnCompare spends the same work as a real password check so a missing
// account is not distinguishable by latency.
func (s *AuthService) burnCompare(password string) {
	s.dummyOnce.Do(func() {
		h, err := s.Hasher.Hash(uuid.NewString())
		if err != nil {
			s.Logger.Warn("dummy hash unavailable", "error", err)
			return
		}
		s.dummyHash = h
	})
	if s.dummyHash != "" {
		_, _ = s.Hasher.Verify(password, s.dummyHash)
	}
}

func (s *AuthService) session(u *models.User) (*models.AuthResponse, error) {
	token, err := s.Sessions.Issue(u.ID, u.Email)
	if err != nil {
		return nil, err
	}
	return &models.AuthResponse{AccessToken: token, User: u.Public()}, nil
}

// Me returns the profile of an authenticated user.
func (s *AuthService) Me(ctx context.Context, userID string) (*models.PublicUser, error) {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		if apperr.Is(err, apperr.CodeNotFound) {
			return nil, apperr.Unauthorized("User not found")
		}
		return nil, err
	}
	pub := u.Public()
	return &pub, nil
}

// RequestPasswordReset always answers with the same message. Failures are
// logged and counted, never returned.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email, locale string) *models.MessageResponse {
	outcome, err := s.issueReset(ctx, NormalizeEmail(email), locale)
	if err != nil {
		apperr.LogError(s.Logger, "password reset request failed", err)
	}
	s.Observer.ResetRequested(outcome)
	return &models.MessageResponse{Message: MsgResetRequested}
}

func (s *AuthService) issueReset(ctx context.Context, email, locale string) (string, error) {
	u, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		if apperr.Is(err, apperr.CodeNotFound) {
			return OutcomeUnknownUser, nil
		}
		return OutcomeFailed, err
	}

	if s.Limiter != nil {
		allowed, err := s.Limiter.Allow(ctx, u.ID)
		switch {
		case err != nil:
			apperr.LogError(s.Logger, "reset limiter unavailable, using row count", err)
		case !allowed:
			return OutcomeRateLimited, nil
		}
	}

	now := s.now().UTC()
	recent, err := s.Resets.CountSince(ctx, u.ID, now.Add(-s.cfg.ResetWindow))
	if err != nil {
		return OutcomeFailed, err
	}
	if recent >= s.cfg.ResetLimit {
		s.Logger.InfoContext(ctx, "password reset rate limited", "user_id", u.ID, "recent", recent)
		return OutcomeRateLimited, nil
	}

	raw, err := s.Tokens.RandomSecret()
	if err != nil {
		return OutcomeFailed, err
	}
	reset := &models.PasswordReset{
		ID:        uuid.NewString(),
		UserID:    u.ID,
		TokenHash: s.Tokens.Digest(raw),
		ExpiresAt: now.Add(s.cfg.ResetTTL),
		CreatedAt: now,
	}
	if err := s.Resets.Create(ctx, reset); err != nil {
		return OutcomeFailed, err
	}

	link := s.cfg.FrontendURL + "/reset-password?token=" + url.QueryEscape(raw)
	if !s.Notifier.SendPasswordResetLink(ctx, u.Email, u.Name, link, locale) {
		s.Logger.WarnContext(ctx, "password reset link not delivered", "user_id", u.ID)
	}
	return OutcomeIssued, nil
}

// VerifyResetToken reports whether raw names a request that can still be
// consumed. It never writes.
func (s *AuthService) VerifyResetToken(ctx context.Context, raw string) bool {
	if raw == "" {
		return false
	}
	reset, err := s.Resets.GetByTokenHash(ctx, s.Tokens.Digest(raw))
	if err != nil {
		if !apperr.Is(err, apperr.CodeNotFound) {
			apperr.LogError(s.Logger, "verify reset token", err)
		}
		return false
	}
	return reset.Usable(s.now())
}

func (s *AuthService) ResetPassword(ctx context.Context, req models.ResetPasswordRequest) (*models.MessageResponse, error) {
	reset, err := s.Resets.GetByTokenHash(ctx, s.Tokens.Digest(req.Token))
	if err != nil {
		if apperr.Is(err, apperr.CodeNotFound) {
			return nil, apperr.BadRequest(MsgResetInvalid)
		}
		return nil, err
	}
	if reset.Expired(s.now()) {
		return nil, apperr.BadRequest(MsgResetExpired)
	}
	if reset.Used {
		return nil, apperr.BadRequest(MsgResetUsed)
	}

	hash, err := s.Hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}
	if err := s.Resets.Consume(ctx, reset.ID, reset.UserID, hash); err != nil {
		if errors.Is(err, interfaces.ErrResetConsumed) {
			s.Logger.InfoContext(ctx, "password reset lost race", "reset_id", reset.ID)
			return nil, apperr.BadRequest(MsgResetUsed)
		}
		return nil, err
	}

	s.Logger.InfoContext(ctx, "password reset", "user_id", reset.UserID)
	return &models.MessageResponse{Message: MsgResetDone}, nil
}

// CleanupExpiredTokens deletes expired and used reset requests and returns
// how many were removed.
func (s *AuthService) CleanupExpiredTokens(ctx context.Context) (int64, error) {
	n, err := s.Resets.DeleteExpiredOrUsed(ctx, s.now().UTC())
	if err != nil {
		return 0, err
	}
	s.Observer.ResetsCleaned(n)
	if n > 0 {
		s.Logger.InfoContext(ctx, "cleaned up password resets", "deleted", n)
	}
	return n, nil
}

func trimName(name *string) *string {
	if name == nil {
		return nil
	}
	v := strings.TrimSpace(*name)
	if v == "" {
		return nil
	}
	return &v
}
