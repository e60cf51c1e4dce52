package httpapi

import (
	"context"
	"net/http"
)

type ctxKey string

const userIDKey ctxKey = "userID"

// TokenCookieName is the cookie carrying the access token.
const TokenCookieName = "token"

// requireAuth resolves the principal from the token cookie and stores its id
// in the request context. Requests without a valid token get 401.
func (s *HTTPServer) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		cookie, err := r.Cookie(TokenCookieName)
		if err != nil || cookie.Value == "" {
			s.writeError(r.Context(), w, http.StatusUnauthorized, "missing token")
			return
		}

		userID, err := s.users.VerifyToken(cookie.Value)
		if err != nil {
			s.writeError(r.Context(), w, http.StatusUnauthorized, "invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, userID)
		next(w, r.WithContext(ctx))
	}
}

// principalID returns the id stored by requireAuth.
func principalID(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}

// cors allows the configured origin to call the API with credentials and
// answers preflight requests.
func (s *HTTPServer) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.corsOrigin != "" {
			w.Header().Set("Access-Control-Allow-Origin", s.corsOrigin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
		}

		if r.Method == http.MethodOptions {
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func setTokenCookie(w http.ResponseWriter, token string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     TokenCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
