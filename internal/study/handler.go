// AngelaMos | 2026
// handler.go

package study

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/carterperez-dev/flashforge/internal/core"
	"github.com/carterperez-dev/flashforge/internal/middleware"
)

const (
	maxBodyBytes = 256 << 10

	msgQuotaReached = "Limit reached. Please subscribe for 1 month at Ksh 299."
	msgMissingText  = "No input text provided."
	msgTextTooLong  = "Input text is too long."
	msgInvalidMode  = "Invalid mode"
	msgUpstream     = "The AI service failed to respond. Please try again."
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
	limiter func(http.Handler) http.Handler,
) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.ExpectJSON)
		r.Use(authenticator)
		if limiter != nil {
			r.Use(limiter)
		}
		r.Post("/generate", h.Generate)
	})
}

func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest

	// Decode failures are resolved by the service so the quota check still
	// runs first. An oversized body is too long; anything else is empty.
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		var tooLarge *http.MaxBytesError
		req = GenerateRequest{BodyTooLarge: errors.As(err, &tooLarge)}
	}

	res, err := h.service.Generate(
		r.Context(),
		middleware.GetUserID(r.Context()),
		req,
	)
	if err != nil {
		writeGenerateError(w, err)
		return
	}

	core.OK(w, ToResponse(res))
}

func writeGenerateError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrQuotaExceeded):
		core.JSONError(w, core.QuotaExceededError(msgQuotaReached))
	case errors.Is(err, ErrMissingText):
		core.BadRequest(w, msgMissingText)
	case errors.Is(err, ErrTextTooLong):
		core.BadRequest(w, msgTextTooLong)
	case errors.Is(err, ErrInvalidMode):
		core.BadRequest(w, msgInvalidMode)
	case errors.Is(err, core.ErrUpstream):
		core.JSONError(w, core.UpstreamError(err, msgUpstream))
	case errors.Is(err, core.ErrNotFound):
		core.Unauthorized(w, "")
	default:
		core.InternalServerError(w, err)
	}
}
