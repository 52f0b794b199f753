package guard

import (
	"net/http"
	"strconv"
)

/* Fixed CORS response values. These match what the dashboard client sends. */
const (
	corsAllowMethods = "GET, POST, PUT, DELETE, OPTIONS"
	corsAllowHeaders = "Content-Type, Authorization"
	corsMaxAge       = 24 * 60 * 60
)

/* originAllowed reports whether origin may call a route restricted to
   allowed. A missing Origin header means a same-origin request and is always
   allowed. */
func originAllowed(origin string, allowed []string) bool {
	if origin == "" {
		return true
	}
	for _, a := range allowed {
		if a == "*" || a == origin {
			return true
		}
	}
	return false
}

/* ApplyCORSHeaders sets CORS headers on a response for a route with origin
   restrictions. Routes without AllowedOrigins pass through untouched. A
   specific allowed origin is echoed back in preference to the wildcard. This
   runs on both success and error responses. */
func ApplyCORSHeaders(w http.ResponseWriter, cfg SecurityConfig, origin string) {
	if len(cfg.AllowedOrigins) == 0 {
		return
	}

	hasWildcard := false
	originMatches := false
	for _, a := range cfg.AllowedOrigins {
		if a == "*" {
			hasWildcard = true
		}
		if origin != "" && a == origin {
			originMatches = true
		}
	}

	if originMatches {
		w.Header().Set("Access-Control-Allow-Origin", origin)
	} else if hasWildcard {
		w.Header().Set("Access-Control-Allow-Origin", "*")
	}

	w.Header().Set("Access-Control-Allow-Methods", corsAllowMethods)
	w.Header().Set("Access-Control-Allow-Headers", corsAllowHeaders)
	w.Header().Set("Access-Control-Max-Age", strconv.Itoa(corsMaxAge))
}
