// AngelaMos | 2026
// handler.go

package billing

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/carterperez-dev/flashforge/internal/core"
	"github.com/carterperez-dev/flashforge/internal/middleware"
	"github.com/carterperez-dev/flashforge/internal/payment"
)

const (
	flashUnavailable       = "Payment temporarily unavailable. Please try again later."
	flashGatewayPrefix     = "Paystack error: "
	flashUnexpected        = "Unexpected Paystack response. Please try again."
	flashConnectFailed     = "Failed to connect to Paystack. Please try again."
	flashAlreadySubscribed = "You are already subscribed."
	flashMissingReference  = "Missing transaction reference."
	flashSubscribed        = "Subscription successful! 🎉"
	flashVerifyFailed      = "Payment verification failed. Please try again."
	flashServerFailure     = "Something went wrong. Please try again."
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
		r.Use(authenticator)
		r.Post("/subscribe", h.Subscribe)
		r.Get("/verify", h.Verify)
	})
}

func (h *Handler) Subscribe(w http.ResponseWriter, r *http.Request) {
	checkoutURL, err := h.service.Subscribe(
		r.Context(),
		middleware.GetUserID(r.Context()),
	)
	if err != nil {
		if errors.Is(err, ErrAlreadySubscribed) {
			core.RedirectWithFlash(w, r, "/", core.FlashInfo, flashAlreadySubscribed)
			return
		}
		category, message := gatewayFlash(err)
		core.RedirectWithFlash(w, r, "/", category, message)
		return
	}

	http.Redirect(w, r, checkoutURL, http.StatusSeeOther)
}

func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	_, err := h.service.Verify(
		r.Context(),
		middleware.GetUserID(r.Context()),
		r.URL.Query().Get("reference"),
	)

	var pe *payment.Error
	switch {
	case err == nil:
		core.RedirectWithFlash(w, r, "/", core.FlashSuccess, flashSubscribed)
	case errors.Is(err, ErrMissingReference):
		core.RedirectWithFlash(w, r, "/", core.FlashDanger, flashMissingReference)
	case errors.Is(err, ErrUnknownReference), errors.Is(err, ErrVerificationFailed):
		core.RedirectWithFlash(w, r, "/", core.FlashDanger, flashVerifyFailed)
	case errors.As(err, &pe) && pe.Kind == payment.KindTransport:
		core.RedirectWithFlash(w, r, "/", core.FlashDanger, flashConnectFailed)
	case errors.As(err, &pe):
		core.RedirectWithFlash(w, r, "/", core.FlashDanger, flashVerifyFailed)
	default:
		slog.Error("verify payment", "error", err)
		core.RedirectWithFlash(w, r, "/", core.FlashDanger, flashServerFailure)
	}
}

func gatewayFlash(err error) (string, string) {
	var pe *payment.Error
	if !errors.As(err, &pe) {
		slog.Error("subscribe", "error", err)
		return core.FlashDanger, flashServerFailure
	}

	switch pe.Kind {
	case payment.KindUnavailable:
		return core.FlashWarning, flashUnavailable
	case payment.KindRejected:
		return core.FlashDanger, flashGatewayPrefix + pe.Message
	case payment.KindTransport:
		return core.FlashDanger, flashConnectFailed
	default:
		return core.FlashDanger, flashUnexpected
	}
}
