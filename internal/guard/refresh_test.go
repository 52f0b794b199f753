package guard

import (
	"testing"
	"time"
)

func TestRefreshThrottleLimit(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	throttle := newRefreshThrottle(func() time.Time { return now })

	for i := 0; i < 5; i++ {
		if !throttle.MayRefresh("user-1") {
			t.Fatalf("refresh %d should be allowed", i+1)
		}
	}

	if throttle.MayRefresh("user-1") {
		t.Fatal("sixth refresh within the hour should be denied")
	}

	// Other principals are unaffected.
	if !throttle.MayRefresh("user-2") {
		t.Fatal("different principal should not be throttled")
	}
}

func TestRefreshThrottleWindowRestart(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	throttle := newRefreshThrottle(func() time.Time { return now })

	for i := 0; i < 5; i++ {
		throttle.MayRefresh("user-1")
	}
	if throttle.MayRefresh("user-1") {
		t.Fatal("should be denied at the limit")
	}

	// The window is measured from the first attempt, so one hour after that
	// the counter restarts.
	now = now.Add(time.Hour + time.Second)
	if !throttle.MayRefresh("user-1") {
		t.Fatal("refresh after the window should be allowed")
	}

	// The restart counted the allowing call itself, leaving four more.
	for i := 0; i < 4; i++ {
		if !throttle.MayRefresh("user-1") {
			t.Fatalf("refresh %d of the new window should be allowed", i+2)
		}
	}
	if throttle.MayRefresh("user-1") {
		t.Fatal("new window should deny at the limit again")
	}
}
