package routes

import (
	"crypto/subtle"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// bearerToken extracts the token from "Authorization: Bearer <token>".
func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(h) < len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(h[len(prefix):])
}

// authorizedCron reports whether the request carries the configured cron secret.
// An unset secret authorizes nothing.
func authorizedCron(r *http.Request, secret string) bool {
	if secret == "" {
		return false
	}
	tok := bearerToken(r)
	return subtle.ConstantTimeCompare([]byte(tok), []byte(secret)) == 1
}

// parseLimit reads ?limit=, defaulting to def when absent. Range checks are left to validation.
func parseLimit(r *http.Request, def int) (int, error) {
	s := r.URL.Query().Get("limit")
	if s == "" {
		return def, nil
	}
	return strconv.Atoi(s)
}
