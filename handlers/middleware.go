package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"pulsefeed.dev/project-pulsefeed/auth"
)

// AuthMiddleware resolves the token header into an auth context on every
// request. Missing or invalid tokens yield the anonymous variant; each
// operation decides whether it requires an authenticated caller.
func AuthMiddleware(tokens *auth.TokenManager) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actx := auth.Anonymous()
			if raw := r.Header.Get("token"); raw != "" {
				if identity, err := tokens.Verify(raw); err == nil {
					actx = auth.Authenticated(identity)
				}
			}
			next.ServeHTTP(w, r.WithContext(auth.NewContext(r.Context(), actx)))
		})
	}
}

// requireIdentity rejects anonymous callers before any coordinator runs.
func requireIdentity(w http.ResponseWriter, r *http.Request) (auth.Identity, bool) {
	identity, err := auth.FromContext(r.Context()).Identity()
	if err != nil {
		http.Error(w, "User is not authenticated", http.StatusUnauthorized)
		return auth.Identity{}, false
	}
	return identity, true
}
