// AngelaMos | 2026
// handler.go

package flashcard

import (
	"errors"
	"net/http"
	"strconv"

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
	authenticator func(http.Handler) http.Handler,
) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.ExpectJSON)
		r.Use(authenticator)
		r.Get("/flashcards", h.List)
	})
}

// List returns the session user's flashcards, newest first.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	params := ListParams{
		Limit:  parseIntQuery(r, "limit", defaultPageSize),
		Offset: parseIntQuery(r, "offset", 0),
	}.Normalize()

	cards, total, err := h.service.List(
		r.Context(),
		middleware.GetUserID(r.Context()),
		params,
	)
	if err != nil {
		if errors.Is(err, core.ErrUnauthorized) {
			core.Unauthorized(w, "")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ListResponse{
		Flashcards: ToFlashcardResponseList(cards),
		Total:      total,
		Limit:      params.Limit,
		Offset:     params.Offset,
	})
}

func parseIntQuery(r *http.Request, key string, defaultVal int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal
	}

	parsed, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}

	return parsed
}
