package guard

import (
	"fmt"
	"strconv"
	"time"
)

/* AuthRequirement controls whether a route needs an authenticated principal */
type AuthRequirement int

const (
	AuthNone AuthRequirement = iota
	AuthOptional
	AuthRequired
)

/* RateLimitPolicy is a fixed-window limit: at most Requests per Window.
   Window is an integer with a unit suffix: "30s", "1m", "2h", "1d". */
type RateLimitPolicy struct {
	Requests int    `yaml:"requests"`
	Window   string `yaml:"window"`
}

/* String returns a stable serialization used in counter keys, so the same
   subject checked against different policies never shares a counter. */
func (p RateLimitPolicy) String() string {
	return fmt.Sprintf("%d/%s", p.Requests, p.Window)
}

/* WindowDuration parses the window string. An unrecognized unit or a
   malformed value falls back to one minute. */
func (p RateLimitPolicy) WindowDuration() time.Duration {
	if len(p.Window) < 2 {
		return time.Minute
	}
	value, err := strconv.Atoi(p.Window[:len(p.Window)-1])
	if err != nil || value <= 0 {
		return time.Minute
	}
	switch p.Window[len(p.Window)-1] {
	case 's':
		return time.Duration(value) * time.Second
	case 'm':
		return time.Duration(value) * time.Minute
	case 'h':
		return time.Duration(value) * time.Hour
	case 'd':
		return time.Duration(value) * 24 * time.Hour
	default:
		return time.Minute
	}
}

/* SecurityConfig describes the policy for one protected route. One config
   governs one logical operation; it is read-only at request time and shared
   across all requests to that route. */
type SecurityConfig struct {
	Auth                AuthRequirement
	AdminOnly           bool
	RequiredRoles       []string
	RequiredPermissions []string
	UserRateLimit       *RateLimitPolicy
	IPRateLimit         *RateLimitPolicy
	AllowedOrigins      []string
	HTTPSOnly           bool
}
