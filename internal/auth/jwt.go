// AngelaMos | 2026
// jwt.go

package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/lestrrat-go/jwx/v3/jwt"

	"github.com/carterperez-dev/flashforge/internal/config"
	"github.com/carterperez-dev/flashforge/internal/core"
)

const sessionTokenType = "session"

// TokenManager signs the session cookie. The token is HS256 over the
// application secret and names the session by jti and the user by sub.
type TokenManager struct {
	key    jwk.Key
	issuer string
	ttl    time.Duration
}

type SessionTokenClaims struct {
	SessionID string
	UserID    string
	ExpiresAt time.Time
}

func NewTokenManager(cfg config.SessionConfig) (*TokenManager, error) {
	if cfg.Secret == "" {
		return nil, errors.New("session secret is empty")
	}

	key, err := jwk.Import([]byte(cfg.Secret))
	if err != nil {
		return nil, fmt.Errorf("import session key: %w", err)
	}

	if setErr := key.Set(jwk.AlgorithmKey, jwa.HS256()); setErr != nil {
		return nil, fmt.Errorf("set algorithm: %w", setErr)
	}

	return &TokenManager{
		key:    key,
		issuer: cfg.Issuer,
		ttl:    cfg.TTL,
	}, nil
}

func (m *TokenManager) TTL() time.Duration {
	return m.ttl
}

func (m *TokenManager) Issue(sessionID, userID string, now time.Time) (string, error) {
	token, err := jwt.NewBuilder().
		JwtID(sessionID).
		Issuer(m.issuer).
		Subject(userID).
		IssuedAt(now).
		Expiration(now.Add(m.ttl)).
		NotBefore(now).
		Claim("type", sessionTokenType).
		Build()
	if err != nil {
		return "", fmt.Errorf("build token: %w", err)
	}

	signed, err := jwt.Sign(token, jwt.WithKey(jwa.HS256(), m.key))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return string(signed), nil
}

func (m *TokenManager) Parse(tokenString string) (*SessionTokenClaims, error) {
	token, err := jwt.Parse(
		[]byte(tokenString),
		jwt.WithKey(jwa.HS256(), m.key),
		jwt.WithValidate(true),
		jwt.WithIssuer(m.issuer),
	)
	if err != nil {
		if isTokenExpiredError(err) {
			return nil, fmt.Errorf("parse session token: %w", core.ErrTokenExpired)
		}
		return nil, fmt.Errorf("parse session token: %w", core.ErrTokenInvalid)
	}

	var tokenType string
	if err := token.Get("type", &tokenType); err != nil ||
		tokenType != sessionTokenType {
		return nil, fmt.Errorf(
			"parse session token: invalid token type: %w",
			core.ErrTokenInvalid,
		)
	}

	sessionID, ok := token.JwtID()
	if !ok || sessionID == "" {
		return nil, fmt.Errorf(
			"parse session token: missing jti: %w",
			core.ErrTokenInvalid,
		)
	}

	subject, ok := token.Subject()
	if !ok || subject == "" {
		return nil, fmt.Errorf(
			"parse session token: missing subject: %w",
			core.ErrTokenInvalid,
		)
	}

	expiresAt, _ := token.Expiration()

	return &SessionTokenClaims{
		SessionID: sessionID,
		UserID:    subject,
		ExpiresAt: expiresAt,
	}, nil
}

func isTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "exp") &&
		strings.Contains(errStr, "not satisfied")
}
