// AngelaMos | 2026
// ratelimit_test.go

package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// unreachableRedis forces the limiter onto its in-process fallback.
func unreachableRedis(t *testing.T) *redis.Client {
	t.Helper()
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func TestRateLimiterFallsBackWhenRedisIsDown(t *testing.T) {
	rl := NewRateLimiter(unreachableRedis(t), RateLimitConfig{
		Name:     "generate",
		Limit:    PerWindow(1, 1, time.Hour),
		KeyFunc:  KeyByUser,
		FailOpen: true,
	})
	h := rl.Handler(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	serve := func(userID string) int {
		req := httptest.NewRequest(http.MethodPost, "/generate", nil)
		req = req.WithContext(context.WithValue(req.Context(), UserIDKey, userID))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	if got := serve("u1"); got != http.StatusOK {
		t.Fatalf("first request status = %d, want 200", got)
	}
	if got := serve("u1"); got != http.StatusTooManyRequests {
		t.Fatalf("second request status = %d, want 429", got)
	}
	if got := serve("u2"); got != http.StatusOK {
		t.Errorf("other user status = %d, want 200", got)
	}
}

func TestRateLimitKeys(t *testing.T) {
	tests := []struct {
		name   string
		userID string
		header map[string]string
		remote string
		want   string
	}{
		{
			name:   "user id wins",
			userID: "u1",
			remote: "10.0.0.1:1234",
			want:   "ratelimit:user:u1",
		},
		{
			name:   "anonymous uses remote addr",
			remote: "10.0.0.1:1234",
			want:   "ratelimit:ip:10.0.0.1",
		},
		{
			name:   "last forwarded hop",
			header: map[string]string{"X-Forwarded-For": "1.1.1.1, 2.2.2.2"},
			remote: "10.0.0.1:1234",
			want:   "ratelimit:ip:2.2.2.2",
		},
		{
			name:   "real ip header",
			header: map[string]string{"X-Real-IP": "3.3.3.3"},
			remote: "10.0.0.1:1234",
			want:   "ratelimit:ip:3.3.3.3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.header {
				req.Header.Set(k, v)
			}
			if tt.userID != "" {
				req = req.WithContext(context.WithValue(req.Context(), UserIDKey, tt.userID))
			}

			if got := KeyByUser(req); got != tt.want {
				t.Errorf("KeyByUser = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPerWindowDefaultsToMinute(t *testing.T) {
	if got := PerWindow(10, 2, 0).Period; got != time.Minute {
		t.Errorf("Period = %v, want 1m", got)
	}
	if got := PerWindow(10, 2, time.Hour); got.Rate != 10 || got.Burst != 2 ||
		got.Period != time.Hour {
		t.Errorf("PerWindow = %+v", got)
	}
}
