package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// TokenAuth rejects webhook calls whose path token differs from the bot
// token. Telegram authenticates webhooks only through the secrecy of the
// URL, so the comparison must not leak timing information and mismatches
// look like any other unknown path.
func TokenAuth(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := chi.URLParam(r, "token")
			if subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
				http.NotFound(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
