// AngelaMos | 2026
// handler.go

package auth

import (
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/flashforge/internal/config"
	"github.com/carterperez-dev/flashforge/internal/core"
	"github.com/carterperez-dev/flashforge/internal/middleware"
)

const (
	flashEmailTaken    = "Email already registered!"
	flashRegistered    = "Registration successful! Please log in."
	flashBadLogin      = "Invalid credentials"
	flashLoggedIn      = "Logged in successfully!"
	flashLoggedOut     = "Logged out successfully!"
	flashServerFailure = "Something went wrong. Please try again."
)

type Handler struct {
	service   *Service
	cookie    config.SessionConfig
	validator *validator.Validate
}

func NewHandler(service *Service, cookie config.SessionConfig) *Handler {
	return &Handler{
		service:   service,
		cookie:    cookie,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Post("/register", h.Register)
	r.Post("/login", h.Login)
	r.With(authenticator).Get("/logout", h.Logout)
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	req := RegisterRequest{
		Email:    strings.TrimSpace(r.PostFormValue("email")),
		Password: r.PostFormValue("password"),
	}

	if err := h.validator.Struct(req); err != nil {
		core.RedirectWithFlash(w, r, "/", core.FlashDanger,
			core.FormatValidationError(err))
		return
	}

	if _, err := h.service.Register(r.Context(), req); err != nil {
		if errors.Is(err, ErrEmailExists) {
			core.RedirectWithFlash(w, r, "/", core.FlashDanger, flashEmailTaken)
			return
		}
		slog.Error("register failed", "error", err)
		core.RedirectWithFlash(w, r, "/", core.FlashDanger, flashServerFailure)
		return
	}

	core.RedirectWithFlash(w, r, "/", core.FlashSuccess, flashRegistered)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	req := LoginRequest{
		Email:    strings.TrimSpace(r.PostFormValue("email")),
		Password: r.PostFormValue("password"),
	}

	if err := h.validator.Struct(req); err != nil {
		core.RedirectWithFlash(w, r, "/", core.FlashDanger, flashBadLogin)
		return
	}

	result, err := h.service.Login(
		r.Context(),
		req,
		r.UserAgent(),
		extractIPAddress(r),
	)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			core.RedirectWithFlash(w, r, "/", core.FlashDanger, flashBadLogin)
			return
		}
		slog.Error("login failed", "error", err)
		core.RedirectWithFlash(w, r, "/", core.FlashDanger, flashServerFailure)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.CookieName,
		Value:    result.Token,
		Path:     "/",
		Expires:  result.ExpiresAt,
		MaxAge:   int(h.cookie.TTL.Seconds()),
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})

	core.RedirectWithFlash(w, r, "/", core.FlashSuccess, flashLoggedIn)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	token := middleware.ExtractSessionToken(r, h.cookie.CookieName)

	if err := h.service.Logout(r.Context(), token); err != nil {
		slog.Warn("logout failed",
			"user_id", middleware.GetUserID(r.Context()),
			"error", err,
		)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})

	core.RedirectWithFlash(w, r, "/", core.FlashInfo, flashLoggedOut)
}

func extractIPAddress(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		ips := strings.Split(xff, ",")
		return strings.TrimSpace(ips[len(ips)-1])
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}

	return ip
}
