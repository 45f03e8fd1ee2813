package handler

import (
	"net/http"
	"strings"

	"github.com/cineflixpay/ashley-assistant-go/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// SessionAuthMiddleware validates the session Bearer token and checks
// that its subject matches the {sessionId} in the path. The widget gets
// the token when the session is created and sends it on every call after.
//
// WebSocket exception: browsers cannot set headers on the WS handshake,
// so the token is also accepted as a ?token= query parameter.
func SessionAuthMiddleware(tokens *service.TokenManager, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := bearerToken(r)
			if tokenString == "" {
				tokenString = r.URL.Query().Get("token")
			}
			if tokenString == "" {
				logger.Warn("auth: missing session token",
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr),
				)
				writeError(w, http.StatusUnauthorized, "session token required")
				return
			}

			subject, err := tokens.Validate(tokenString)
			if err != nil {
				logger.Warn("auth: invalid session token",
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr),
					zap.Error(err),
				)
				writeError(w, http.StatusUnauthorized, "invalid or expired session token")
				return
			}

			if sessionID := chi.URLParam(r, "sessionId"); subject != sessionID {
				logger.Warn("auth: token subject mismatch",
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr),
				)
				writeError(w, http.StatusUnauthorized, "token does not match session")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}
