// AngelaMos | 2026
// handler.go

package user

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/carterperez-dev/flashforge/internal/core"
	"github.com/carterperez-dev/flashforge/internal/middleware"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	optionalAuth, authenticator func(http.Handler) http.Handler,
) {
	r.With(optionalAuth).Get("/", h.Index)

	r.Group(func(r chi.Router) {
		r.Use(middleware.ExpectJSON)
		r.Use(authenticator)
		r.Get("/me", h.Me)
	})
}

// Index reports who is logged in and drains pending flash messages.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	resp := IndexResponse{}

	if userID := middleware.GetUserID(r.Context()); userID != "" {
		account, err := h.service.GetAccount(r.Context(), userID)
		switch {
		case err == nil:
			resp.User = account
		case errors.Is(err, core.ErrNotFound):
			slog.Warn("session references missing user", "user_id", userID)
		default:
			core.InternalServerError(w, err)
			return
		}
	}

	resp.Flashes = core.PopFlashes(w, r)
	core.OK(w, resp)
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	account, err := h.service.GetAccount(
		r.Context(),
		middleware.GetUserID(r.Context()),
	)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "user")
			return
		}
		if errors.Is(err, core.ErrUnauthorized) {
			core.Unauthorized(w, "")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, account)
}
