package guard

import (
	"sync"
	"time"
)

const (
	refreshLimit  = 5
	refreshWindow = time.Hour
)

type refreshEntry struct {
	count       int
	windowStart time.Time
}

/* RefreshThrottle bounds how often a principal's session may be refreshed:
   at most 5 attempts per hour, measured from the first attempt in the
   window. It is independent of the request rate limiters and is consulted
   only by handlers that perform a token refresh, never by the main guard
   pipeline. */
type RefreshThrottle struct {
	mu       sync.Mutex
	attempts map[string]*refreshEntry

	now func() time.Time
}

/* NewRefreshThrottle creates a refresh throttle */
func NewRefreshThrottle() *RefreshThrottle {
	return newRefreshThrottle(time.Now)
}

func newRefreshThrottle(now func() time.Time) *RefreshThrottle {
	return &RefreshThrottle{
		attempts: make(map[string]*refreshEntry),
		now:      now,
	}
}

/* MayRefresh records a refresh attempt for the principal and reports whether
   it is allowed. When the hour since the first attempt has elapsed the
   counter restarts at 1, counting this call itself. */
func (t *RefreshThrottle) MayRefresh(principalID string) bool {
	now := t.now()

	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.attempts[principalID]
	if !ok || now.Sub(e.windowStart) > refreshWindow {
		t.attempts[principalID] = &refreshEntry{count: 1, windowStart: now}
		return true
	}

	if e.count >= refreshLimit {
		return false
	}

	e.count++
	return true
}
