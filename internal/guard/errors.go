package guard

import (
	"encoding/json"
	"net/http"
)

/* Error codes returned to API clients. The code/status pairs are part of the
   wire contract and must not change. */
const (
	CodeHTTPSRequired           = "HTTPS_REQUIRED"
	CodeCORSViolation           = "CORS_VIOLATION"
	CodeRateLimitExceeded       = "RATE_LIMIT_EXCEEDED"
	CodeAuthRequired            = "AUTH_REQUIRED"
	CodeInsufficientPermissions = "INSUFFICIENT_PERMISSIONS"
)

/* SecurityError is a policy violation raised by one of the guard gates. It is
   always converted to a JSON response at the guard boundary and never escapes
   the request lifecycle. */
type SecurityError struct {
	Code    string `json:"error"`
	Status  int    `json:"-"`
	Message string `json:"message"`
}

/* Error implements the error interface */
func (e *SecurityError) Error() string {
	return e.Code + ": " + e.Message
}

func errHTTPSRequired() *SecurityError {
	return &SecurityError{Code: CodeHTTPSRequired, Status: http.StatusForbidden, Message: "HTTPS is required for this endpoint"}
}

func errCORSViolation(origin string) *SecurityError {
	return &SecurityError{Code: CodeCORSViolation, Status: http.StatusForbidden, Message: "Origin " + origin + " is not allowed"}
}

func errRateLimitExceeded() *SecurityError {
	return &SecurityError{Code: CodeRateLimitExceeded, Status: http.StatusTooManyRequests, Message: "Rate limit exceeded, retry later"}
}

func errAuthRequired() *SecurityError {
	return &SecurityError{Code: CodeAuthRequired, Status: http.StatusUnauthorized, Message: "Authentication required"}
}

func errInsufficientPermissions(message string) *SecurityError {
	return &SecurityError{Code: CodeInsufficientPermissions, Status: http.StatusForbidden, Message: message}
}

/* writeSecurityError writes the standard error envelope. CORS headers are set
   before the status line so they survive WriteHeader. */
func writeSecurityError(w http.ResponseWriter, cfg SecurityConfig, origin string, serr *SecurityError) {
	ApplyCORSHeaders(w, cfg, origin)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(serr.Status)
	json.NewEncoder(w).Encode(serr)
}
