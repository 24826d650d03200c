// AngelaMos | 2026
// auth.go

package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/carterperez-dev/flashforge/internal/core"
)

const (
	UserIDKey     contextKey = "user_id"
	expectJSONKey contextKey = "expect_json"
)

const loginRequiredFlash = "Please log in to continue."

type SessionResolver interface {
	ResolveSession(ctx context.Context, token string) (*SessionClaims, error)
}

type SessionClaims struct {
	SessionID string
	UserID    string
	ExpiresAt time.Time
}

// Authenticator resolves the session cookie once per request and stores
// the authenticated user in the request context. Requests without a valid
// session are answered with 401 JSON on JSON routes and a flash redirect
// to the index everywhere else.
func Authenticator(
	resolver SessionResolver,
	cookieName string,
) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ExtractSessionToken(r, cookieName)
			if token == "" {
				rejectUnauthenticated(w, r, nil)
				return
			}

			claims, err := resolver.ResolveSession(r.Context(), token)
			if err != nil {
				rejectUnauthenticated(w, r, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(withSession(r.Context(), claims)))
		})
	}
}

func OptionalAuth(
	resolver SessionResolver,
	cookieName string,
) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token := ExtractSessionToken(r, cookieName); token != "" {
				claims, err := resolver.ResolveSession(r.Context(), token)
				if err == nil {
					r = r.WithContext(withSession(r.Context(), claims))
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ExpectJSON marks the route as a JSON API so authentication failures are
// reported as JSON instead of a redirect.
func ExpectJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), expectJSONKey, true)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func ExtractSessionToken(r *http.Request, cookieName string) string {
	cookie, err := r.Cookie(cookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func rejectUnauthenticated(w http.ResponseWriter, r *http.Request, err error) {
	if err != nil && !errors.Is(err, core.ErrTokenInvalid) &&
		!errors.Is(err, core.ErrTokenExpired) &&
		!errors.Is(err, core.ErrTokenRevoked) {
		slog.Warn("session resolution failed", "error", err, "path", r.URL.Path)
	}

	if expectsJSON(r) {
		core.JSONError(w, core.UnauthorizedError("Login required."))
		return
	}

	core.RedirectWithFlash(w, r, "/", core.FlashDanger, loginRequiredFlash)
}

func expectsJSON(r *http.Request) bool {
	if v, ok := r.Context().Value(expectJSONKey).(bool); ok && v {
		return true
	}
	return core.WantsJSON(r)
}

func withSession(ctx context.Context, claims *SessionClaims) context.Context {
	return context.WithValue(ctx, UserIDKey, claims.UserID)
}

func GetUserID(ctx context.Context) string {
	if id, ok := ctx.Value(UserIDKey).(string); ok {
		return id
	}
	return ""
}
