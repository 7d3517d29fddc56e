package middleware

import (
	"context"
	"net/http"

	"github.com/managementproperties/mono-repo/backend/shared/go-utils"
)

type contextKey string

const (
	ContextKeyAdmin = contextKey("admin")
)

// AdminTokenMiddleware guards mutating endpoints. The request must carry
// "Authorization: Bearer <secret>" with exactly the configured secret,
// otherwise it is rejected with 401 before the handler runs. An empty
// secret rejects everything.
func AdminTokenMiddleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !utils.TokenMatches(utils.BearerToken(r), secret) {
				utils.RespondErrorWithCode(
					w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, utils.ErrUnauthorized.Error(), nil,
				)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyAdmin, true)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IsAdmin reports whether AdminTokenMiddleware accepted the request.
func IsAdmin(ctx context.Context) bool {
	ok, _ := ctx.Value(ContextKeyAdmin).(bool)
	return ok
}
