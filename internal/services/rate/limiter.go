package rate

import (
	"context"
	"fmt"
	"strings"
	"time"
)

const loginWindow = time.Minute

// WindowStore counts events inside a fixed expiring window.
type WindowStore interface {
	IncrementWindow(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
	WindowState(ctx context.Context, key string) (int64, time.Duration, error)
}

// LoginLimiter throttles login attempts per client IP. A zero or
// negative perMinute limit disables throttling entirely.
type LoginLimiter struct {
	store     WindowStore
	perMinute int
}

func NewLoginLimiter(store WindowStore, perMinute int) *LoginLimiter {
	if perMinute < 0 {
		perMinute = 0
	}

	return &LoginLimiter{
		store:     store,
		perMinute: perMinute,
	}
}

// AllowLogin registers one attempt from the given IP and reports whether
// it is inside the limit. When blocked it returns the number of seconds
// until the window resets.
func (l *LoginLimiter) AllowLogin(ctx context.Context, ip string) (int64, bool, error) {
	if l == nil || l.store == nil || l.perMinute <= 0 {
		return 0, true, nil
	}

	ip = strings.TrimSpace(ip)
	if ip == "" {
		return 0, false, fmt.Errorf("client ip is required")
	}

	count, ttl, err := l.store.IncrementWindow(ctx, loginKey(ip), loginWindow)
	if err != nil {
		return 0, false, err
	}
	if count > int64(l.perMinute) {
		return ceilSeconds(ttl), false, nil
	}

	return 0, true, nil
}

// RetryAfterLogin reports the current wait without counting an attempt.
func (l *LoginLimiter) RetryAfterLogin(ctx context.Context, ip string) (int64, error) {
	if l == nil || l.store == nil || l.perMinute <= 0 {
		return 0, nil
	}

	ip = strings.TrimSpace(ip)
	if ip == "" {
		return 0, fmt.Errorf("client ip is required")
	}

	count, ttl, err := l.store.WindowState(ctx, loginKey(ip))
	if err != nil {
		return 0, err
	}
	if count >= int64(l.perMinute) {
		return ceilSeconds(ttl), nil
	}

	return 0, nil
}

func loginKey(ip string) string {
	return "rate:login:min:" + ip
}

func ceilSeconds(d time.Duration) int64 {
	if d <= 0 {
		return 0
	}
	sec := int64(d / time.Second)
	if d%time.Second != 0 {
		sec++
	}
	if sec <= 0 {
		sec = 1
	}
	return sec
}
