// AngelaMos | 2026
// service.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/carterperez-dev/flashforge/internal/core"
	"github.com/carterperez-dev/flashforge/internal/middleware"
)

const sessionIDBytes = 32

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailExists        = errors.New("email already exists")
)

type UserInfo struct {
	ID           string
	Email        string
	PasswordHash string
}

type UserProvider interface {
	GetByEmail(ctx context.Context, email string) (*UserInfo, error)
	GetByID(ctx context.Context, id string) (*UserInfo, error)
	Create(ctx context.Context, email, passwordHash string) (*UserInfo, error)
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
	EmailExists(ctx context.Context, email string) (bool, error)
}

type Service struct {
	repo         Repository
	tokens       *TokenManager
	userProvider UserProvider
	now          func() time.Time
}

func NewService(
	repo Repository,
	tokens *TokenManager,
	userProvider UserProvider,
) *Service {
	return &Service{
		repo:         repo,
		tokens:       tokens,
		userProvider: userProvider,
		now:          time.Now,
	}
}

// Register stores a new credential. An email that is already taken is
// rejected before anything is written.
func (s *Service) Register(
	ctx context.Context,
	req RegisterRequest,
) (*UserInfo, error) {
	exists, err := s.userProvider.EmailExists(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return nil, ErrEmailExists
	}

	passwordHash, err := core.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.userProvider.Create(ctx, req.Email, passwordHash)
	if err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return user, nil
}

func (s *Service) Authenticate(
	ctx context.Context,
	email, password string,
) (*UserInfo, error) {
	user, err := s.userProvider.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			//nolint:errcheck // timing attack prevention - always verify to prevent enumeration
			_, _, _ = core.VerifyPasswordTimingSafe(password, "")
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	valid, newHash, err := core.VerifyPasswordTimingSafe(
		password,
		user.PasswordHash,
	)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}

	if !valid {
		return nil, ErrInvalidCredentials
	}

	if newHash != "" {
		if err := s.userProvider.UpdatePassword(ctx, user.ID, newHash); err != nil {
			slog.Warn("password rehash failed", "user_id", user.ID, "error", err)
		}
	}

	return user, nil
}

func (s *Service) Login(
	ctx context.Context,
	req LoginRequest,
	userAgent, ipAddress string,
) (*LoginResult, error) {
	user, err := s.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}

	sessionID, err := core.GenerateSecureToken(sessionIDBytes)
	if err != nil {
		return nil, fmt.Errorf("generate session id: %w", err)
	}

	now := s.now()
	session := &Session{
		ID:        sessionID,
		UserID:    user.ID,
		UserAgent: userAgent,
		IPAddress: ipAddress,
		CreatedAt: now,
		ExpiresAt: now.Add(s.tokens.TTL()),
	}

	if err := s.repo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}

	token, err := s.tokens.Issue(session.ID, user.ID, now)
	if err != nil {
		//nolint:errcheck // best-effort cleanup of an unusable session
		_ = s.repo.Delete(ctx, session.ID)
		return nil, fmt.Errorf("issue session token: %w", err)
	}

	return &LoginResult{
		User:      user,
		Token:     token,
		ExpiresAt: session.ExpiresAt,
	}, nil
}

// Logout drops the server-side session. Tokens that no longer parse are
// already unusable, so they are not an error.
func (s *Service) Logout(ctx context.Context, token string) error {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil
	}

	if err := s.repo.Delete(ctx, claims.SessionID); err != nil {
		return fmt.Errorf("logout: %w", err)
	}

	return nil
}

// ResolveSession turns a cookie value into the authenticated user. The
// signature proves the cookie was issued here; the Redis entry proves it
// has not been logged out.
func (s *Service) ResolveSession(
	ctx context.Context,
	token string,
) (*middleware.SessionClaims, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, err
	}

	session, err := s.repo.FindByID(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, fmt.Errorf("resolve session: %w", core.ErrTokenRevoked)
		}
		return nil, fmt.Errorf("resolve session: %w", err)
	}

	if session.UserID != claims.UserID {
		return nil, fmt.Errorf(
			"resolve session: subject mismatch: %w",
			core.ErrTokenInvalid,
		)
	}

	if session.IsExpired(s.now()) {
		//nolint:errcheck // the key is about to expire anyway
		_ = s.repo.Delete(ctx, session.ID)
		return nil, fmt.Errorf("resolve session: %w", core.ErrTokenExpired)
	}

	return &middleware.SessionClaims{
		SessionID: session.ID,
		UserID:    session.UserID,
		ExpiresAt: claims.ExpiresAt,
	}, nil
}

var _ middleware.SessionResolver = (*Service)(nil)
