package handlers

import (
	"context"

	"github.com/iudanet/ground/internal/models"
)

// contextKey тип для ключей контекста
type contextKey string

// userKey ключ для хранения пользователя из токена в контексте
const userKey contextKey = "user"

// WithUser returns a context carrying the authenticated user.
func WithUser(ctx context.Context, user models.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// UserFromContext извлекает пользователя, установленного AuthMiddleware
func UserFromContext(ctx context.Context) (models.User, bool) {
	user, ok := ctx.Value(userKey).(models.User)
	return user, ok
}
