package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-logr/logr"

	"github.com/kdex-tech/kdex-splitscreen/pkg/auth"
)

type contextKey string

const claimsContextKey contextKey = "claims"

// WithAuthentication requires a bearer token signed with secret and carrying role.
// A missing or invalid token is 401, a valid token without the role is 403.
func WithAuthentication(secret []byte, issuer, role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log := logr.FromContextOrDiscard(r.Context())

			scheme, tokenString, ok := strings.Cut(r.Header.Get("Authorization"), " ")
			if !ok || !strings.EqualFold(scheme, "bearer") || tokenString == "" {
				w.Header().Set("WWW-Authenticate", `Bearer realm="editor"`)
				http.Error(w, "Missing bearer token", http.StatusUnauthorized)
				return
			}

			claims, err := auth.ParseToken(tokenString, issuer, secret)
			if err != nil {
				log.V(1).Info("rejected token", "err", err.Error())
				w.Header().Set("WWW-Authenticate", `Bearer realm="editor", error="invalid_token"`)
				http.Error(w, "Invalid token", http.StatusUnauthorized)
				return
			}

			if role != "" && !claims.HasRole(role) {
				log.V(1).Info("missing role", "uid", claims.UID, "role", role)
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}

			ctx := logr.NewContext(r.Context(), log.WithValues("uid", claims.UID))
			next.ServeHTTP(w, r.WithContext(context.WithValue(ctx, claimsContextKey, claims)))
		})
	}
}

// GetClaims retrieves the claims placed by WithAuthentication.
func GetClaims(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(claimsContextKey).(*auth.Claims)
	return claims, ok
}
