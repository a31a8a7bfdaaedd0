package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/ground/internal/models"
	"github.com/iudanet/ground/pkg/api"
)

type userStoreFunc func(ctx context.Context, user *models.User) error

func (f userStoreFunc) InsertOrUpdateUser(ctx context.Context, user *models.User) error {
	return f(ctx, user)
}

func signToken(t *testing.T, claims api.Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("server-secret"))
	require.NoError(t, err)
	return token
}

func TestParseToken(t *testing.T) {
	expires := time.Now().Add(time.Hour).Truncate(time.Second)
	token := signToken(t, api.Claims{
		Name:  "Field Worker",
		Email: "worker@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			Issuer:    api.Issuer,
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	})

	session, err := ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, models.User{ID: "user-1", DisplayName: "Field Worker", Email: "worker@example.com"}, session.User)
	assert.True(t, expires.Equal(session.ExpiresAt))
	assert.Equal(t, token, session.Token)
	assert.False(t, session.Expired(time.Now()))
	assert.True(t, session.Expired(expires.Add(time.Second)))
}

func TestParseToken_Errors(t *testing.T) {
	tests := []struct {
		name  string
		token string
	}{
		{name: "empty", token: ""},
		{name: "garbage", token: "not-a-token"},
		{name: "no subject", token: signToken(t, api.Claims{Name: "nobody"})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseToken(tt.token)
			assert.Error(t, err)
		})
	}

	_, err := ParseToken("")
	assert.ErrorIs(t, err, ErrNoToken)
}

func TestSession_WithoutExpiry(t *testing.T) {
	session, err := ParseToken(signToken(t, api.Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1"}}))
	require.NoError(t, err)
	assert.True(t, session.ExpiresAt.IsZero())
	assert.False(t, session.Expired(time.Now().Add(100*365*24*time.Hour)))
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	var saved []*models.User
	store := userStoreFunc(func(ctx context.Context, user *models.User) error {
		saved = append(saved, user)
		return nil
	})

	token := signToken(t, api.Claims{
		Name: "Field Worker",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	session, err := Login(ctx, store, token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", session.User.ID)
	require.Len(t, saved, 1)
	assert.Equal(t, "Field Worker", saved[0].DisplayName)
}

func TestLogin_ExpiredToken(t *testing.T) {
	store := userStoreFunc(func(ctx context.Context, user *models.User) error {
		t.Fatal("expired token must not register a user")
		return nil
	})

	token := signToken(t, api.Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "user-1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
	}})

	_, err := Login(context.Background(), store, token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestLogin_StoreError(t *testing.T) {
	store := userStoreFunc(func(ctx context.Context, user *models.User) error {
		return errors.New("disk full")
	})

	token := signToken(t, api.Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1"}})
	_, err := Login(context.Background(), store, token)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}
