package handlers

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/iudanet/ground/internal/models"
	"github.com/iudanet/ground/pkg/api"
)

// JWTConfig содержит конфигурацию для JWT
type JWTConfig struct {
	Secret []byte
	TTL    time.Duration // 0 выдает бессрочный токен
}

// IssueToken signs an access token for user. The token carries the user id as
// subject and the display name and email so the client knows who it is offline.
func IssueToken(cfg JWTConfig, user models.User) (string, error) {
	if len(cfg.Secret) == 0 {
		return "", errors.New("jwt secret is empty")
	}

	now := time.Now()
	claims := api.Claims{
		Name:  user.DisplayName,
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    api.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	if cfg.TTL > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(cfg.TTL))
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(cfg.Secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return token, nil
}

// ValidateToken валидирует подпись, издателя и срок действия токена
func ValidateToken(cfg JWTConfig, tokenString string) (*api.Claims, error) {
	claims := &api.Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(token *jwt.Token) (any, error) { return cfg.Secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(api.Issuer),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	if claims.Subject == "" {
		return nil, errors.New("token has no subject")
	}
	return claims, nil
}
