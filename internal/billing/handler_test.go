// AngelaMos | 2026
// handler_test.go

package billing

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/carterperez-dev/flashforge/internal/core"
	"github.com/carterperez-dev/flashforge/internal/middleware"
	"github.com/carterperez-dev/flashforge/internal/payment"
)

func withUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), middleware.UserIDKey, "u1")
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func flashesFrom(t *testing.T, rec *httptest.ResponseRecorder) []core.Flash {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name != "flash" {
			continue
		}
		data, err := base64.RawURLEncoding.DecodeString(c.Value)
		if err != nil {
			t.Fatalf("decode flash cookie: %v", err)
		}
		var flashes []core.Flash
		if err := json.Unmarshal(data, &flashes); err != nil {
			t.Fatalf("unmarshal flash cookie: %v", err)
		}
		return flashes
	}
	return nil
}

func serve(f *billingFixture, method, target string) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	NewHandler(f.service).RegisterRoutes(r, withUser)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestSubscribeHandlerRedirectsToCheckout(t *testing.T) {
	f := newBillingFixture()

	rec := serve(f, http.MethodPost, "/subscribe")

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); len(loc) < len("https://checkout.test/") ||
		loc[:len("https://checkout.test/")] != "https://checkout.test/" {
		t.Errorf("Location = %q", loc)
	}
}

func TestSubscribeHandlerFlashes(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		wantCategory string
		wantMessage  string
	}{
		{
			name:         "no active channel",
			err:          &payment.Error{Kind: payment.KindUnavailable, Message: "No active channel"},
			wantCategory: core.FlashWarning,
			wantMessage:  "Payment temporarily unavailable. Please try again later.",
		},
		{
			name:         "rejected",
			err:          &payment.Error{Kind: payment.KindRejected, Message: "Invalid key"},
			wantCategory: core.FlashDanger,
			wantMessage:  "Paystack error: Invalid key",
		},
		{
			name:         "malformed",
			err:          &payment.Error{Kind: payment.KindMalformed},
			wantCategory: core.FlashDanger,
			wantMessage:  "Unexpected Paystack response. Please try again.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newBillingFixture()
			f.gateway.InitializeFunc = func(context.Context, string, string) (*payment.Checkout, error) {
				return nil, tt.err
			}

			rec := serve(f, http.MethodPost, "/subscribe")

			if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/" {
				t.Fatalf("status = %d, location = %q", rec.Code, rec.Header().Get("Location"))
			}
			flashes := flashesFrom(t, rec)
			if len(flashes) != 1 {
				t.Fatalf("flashes = %v", flashes)
			}
			if flashes[0].Category != tt.wantCategory || flashes[0].Message != tt.wantMessage {
				t.Errorf("flash = %+v", flashes[0])
			}
		})
	}
}

func TestVerifyHandler(t *testing.T) {
	f := newBillingFixture()
	ref := f.subscribe(t)

	tests := []struct {
		target      string
		wantMessage string
	}{
		{target: "/verify", wantMessage: "Missing transaction reference."},
		{target: "/verify?reference=unknown", wantMessage: "Payment verification failed. Please try again."},
		{target: "/verify?reference=" + ref, wantMessage: "Subscription successful! 🎉"},
		{target: "/verify?reference=" + ref, wantMessage: "Subscription successful! 🎉"},
	}

	for _, tt := range tests {
		rec := serve(f, http.MethodGet, tt.target)

		if rec.Code != http.StatusFound {
			t.Fatalf("%s: status = %d", tt.target, rec.Code)
		}
		flashes := flashesFrom(t, rec)
		if len(flashes) != 1 || flashes[0].Message != tt.wantMessage {
			t.Errorf("%s: flashes = %+v, want %q", tt.target, flashes, tt.wantMessage)
		}
	}

	if f.store.settles != 1 {
		t.Errorf("settles = %d, want 1", f.store.settles)
	}
}
