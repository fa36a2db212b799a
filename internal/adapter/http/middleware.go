package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/societyq/societyq/internal/domain"
)

// TokenParser verifies a bearer token and rebuilds the actor it encodes.
// Implemented by app.AuthService.
type TokenParser interface {
	ParseToken(token string) (domain.Actor, error)
}

type ctxKey int

const actorKey ctxKey = 0

// Authenticator parses the Authorization header and stashes the verified
// actor in the request context. Requests without a valid token pass through
// anonymously; each handler decides whether it requires an actor.
func Authenticator(parser TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if ok {
				if actor, err := parser.ParseToken(token); err == nil {
					r = r.WithContext(context.WithValue(r.Context(), actorKey, actor))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// actorFrom returns the authenticated actor or ErrUnauthenticated.
func actorFrom(ctx context.Context) (domain.Actor, error) {
	actor, ok := ctx.Value(actorKey).(domain.Actor)
	if !ok {
		return domain.Actor{}, domain.ErrUnauthenticated
	}
	return actor, nil
}
