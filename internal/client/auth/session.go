// Package auth resolves the identity of the field worker from the access token
// issued by the document server.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/iudanet/ground/internal/models"
	"github.com/iudanet/ground/pkg/api"
)

var (
	// ErrNoToken indicates that no access token is configured
	ErrNoToken = errors.New("no access token configured")

	// ErrTokenExpired indicates that the access token is past its expiry
	ErrTokenExpired = errors.New("access token has expired")
)

// UserStore сохраняет пользователей в локальном хранилище
type UserStore interface {
	InsertOrUpdateUser(ctx context.Context, user *models.User) error
}

// Session is the identity carried by an access token.
type Session struct {
	ExpiresAt time.Time // нулевое значение: без срока действия
	User      models.User
	Token     string
}

// ParseToken reads the claims of an access token without verifying the signature.
// Only the server holds the signing key; the client uses the claims to know who it is.
func ParseToken(token string) (*Session, error) {
	if token == "" {
		return nil, ErrNoToken
	}

	claims := &api.Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("failed to parse access token: %w", err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("access token has no subject")
	}

	session := &Session{User: claims.User(), Token: token}
	if claims.ExpiresAt != nil {
		session.ExpiresAt = claims.ExpiresAt.Time
	}
	return session, nil
}

// Expired reports whether the token is past its expiry at now.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

// Login parses the token, rejects an expired one and records the user locally so
// queued mutations can be attributed to it.
func Login(ctx context.Context, store UserStore, token string) (*Session, error) {
	session, err := ParseToken(token)
	if err != nil {
		return nil, err
	}
	if session.Expired(time.Now()) {
		return nil, fmt.Errorf("%w at %s", ErrTokenExpired, session.ExpiresAt.Format(time.RFC3339))
	}

	if err := store.InsertOrUpdateUser(ctx, &session.User); err != nil {
		return nil, fmt.Errorf("failed to save user: %w", err)
	}
	return session, nil
}
