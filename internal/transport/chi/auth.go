package chi

import (
	"net/http"
	"strings"

	"github.com/datakaveri/tgdex-catalogue-server-sub000/internal/domain/access"
)

// exemptPaths are routes that bypass authentication (health, metrics).
var exemptPaths = map[string]struct{}{
	"/health":  {},
	"/metrics": {},
}

// BearerAuthMiddleware resolves Bearer tokens to a requester subject and stores
// the access context on the request. A request without an Authorization header
// is anonymous; a malformed header or an unknown token is rejected with 401.
func BearerAuthMiddleware(tokens map[string]string) func(http.Handler) http.Handler {
	subjects := make(map[string]string, len(tokens))
	for token, subject := range tokens {
		if token != "" && subject != "" {
			subjects[token] = subject
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := exemptPaths[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			auth := r.Header.Get("Authorization")
			if auth == "" {
				ctx := access.ContextWith(r.Context(), access.Anonymous())
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			const bearerPrefix = "Bearer "
			if !strings.HasPrefix(auth, bearerPrefix) {
				writeError(w, http.StatusUnauthorized, codeUnauthorized, "authorization header must use Bearer scheme")
				return
			}

			subject, ok := subjects[auth[len(bearerPrefix):]]
			if !ok {
				writeError(w, http.StatusUnauthorized, codeUnauthorized, "invalid token")
				return
			}

			ctx := access.ContextWith(r.Context(), access.New(subject, ""))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
