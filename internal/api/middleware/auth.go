package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	appErr "github.com/chartviz/engine/pkg/errors"
)

type userKeyType string

const UserIDKey userKeyType = "user_id"

// TokenParser validates an access token and returns its subject.
type TokenParser interface {
	ParseToken(token string) (uuid.UUID, error)
}

// Auth validates a Bearer token and adds the user id to context.
// Browsers cannot set headers on websocket upgrades, so an access_token query
// parameter is accepted as well.
func Auth(parser TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := bearer(r)
			if tokenStr == "" {
				writeError(w, http.StatusUnauthorized, string(appErr.CodeUnauthorized), "missing bearer token")
				return
			}
			uid, err := parser.ParseToken(tokenStr)
			if err != nil {
				writeError(w, http.StatusUnauthorized, string(appErr.CodeUnauthorized), "invalid token")
				return
			}
			ctx := WithUserID(r.Context(), uid)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearer(r *http.Request) string {
	ah := r.Header.Get("Authorization")
	if len(ah) > len("bearer ") && strings.EqualFold(ah[:len("bearer ")], "bearer ") {
		return strings.TrimSpace(ah[len("bearer "):])
	}
	return r.URL.Query().Get("access_token")
}

// WithUserID stores uid in ctx. Used by Auth and by handler tests.
func WithUserID(ctx context.Context, uid uuid.UUID) context.Context {
	return context.WithValue(ctx, UserIDKey, uid)
}

func GetUserID(ctx context.Context) uuid.UUID {
	if v := ctx.Value(UserIDKey); v != nil {
		if id, ok := v.(uuid.UUID); ok {
			return id
		}
	}
	return uuid.Nil
}
