package mcp

import (
	"context"
	"net/http"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/kioku/pkg/model"
	"github.com/m-mizutani/kioku/pkg/utils/logging"
)

type identityKey struct{}

// WithIdentity returns a new context carrying the caller's identity
func WithIdentity(ctx context.Context, identity model.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

// IdentityFrom retrieves the caller's identity from the context. The zero
// identity is returned when none was resolved; callers must check Valid.
func IdentityFrom(ctx context.Context) model.Identity {
	if identity, ok := ctx.Value(identityKey{}).(model.Identity); ok {
		return identity
	}
	return model.Identity{}
}

// TokenVerifier resolves a bearer token to a stable user key. The OAuth
// authorization flow that issued the token lives outside this service.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (model.Identity, error)
}

// StaticVerifier maps fixed tokens to user keys. Intended for development
// and tests; production deployments plug in a real introspection client.
type StaticVerifier struct {
	tokens map[string]string
}

// NewStaticVerifier creates a verifier from a token -> user key map
func NewStaticVerifier(tokens map[string]string) *StaticVerifier {
	return &StaticVerifier{tokens: tokens}
}

func (v *StaticVerifier) Verify(ctx context.Context, token string) (model.Identity, error) {
	userKey, ok := v.tokens[token]
	if !ok {
		return model.Identity{}, goerr.Wrap(model.ErrNotAuthenticated, "unknown token")
	}
	return model.Identity{UserKey: userKey}, nil
}

// authMiddleware resolves the caller's identity from the Authorization
// header and attaches it to the request context. Requests without a usable
// token pass through with no identity; the tools answer those with a
// "not authenticated" text rather than a transport-level rejection.
func authMiddleware(verifier TokenVerifier, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if token := bearerToken(r); token != "" {
			identity, err := verifier.Verify(ctx, token)
			if err != nil {
				logging.From(ctx).Warn("token verification failed", "error", err)
			} else {
				ctx = WithIdentity(ctx, identity)
			}
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(auth) > len(prefix) && strings.EqualFold(auth[:len(prefix)], prefix) {
		return auth[len(prefix):]
	}
	return ""
}
