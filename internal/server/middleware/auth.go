package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/iudanet/ground/internal/server/handlers"
)

// AuthMiddleware создает middleware для проверки JWT токена
func AuthMiddleware(logger *slog.Logger, jwtConfig handlers.JWTConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Извлекаем токен из заголовка Authorization
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logger.WarnContext(r.Context(), "Missing Authorization header")
				handlers.SendError(w, logger, "missing token", http.StatusUnauthorized)
				return
			}

			// Ожидаем формат: "Bearer <token>"
			scheme, token, ok := strings.Cut(authHeader, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
				logger.WarnContext(r.Context(), "Invalid Authorization header format")
				handlers.SendError(w, logger, "invalid token format", http.StatusUnauthorized)
				return
			}

			claims, err := handlers.ValidateToken(jwtConfig, token)
			if err != nil {
				logger.WarnContext(r.Context(), "Invalid access token", "error", err)
				handlers.SendError(w, logger, "invalid token", http.StatusUnauthorized)
				return
			}

			user := claims.User()
			setLogUser(r.Context(), user.ID)
			logger.DebugContext(r.Context(), "User authenticated", "user_id", user.ID)

			next.ServeHTTP(w, r.WithContext(handlers.WithUser(r.Context(), user)))
		})
	}
}
