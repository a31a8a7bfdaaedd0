package api

import (
	"github.com/golang-jwt/jwt/v5"

	"github.com/iudanet/ground/internal/models"
)

// Issuer издатель токенов сервера документов
const Issuer = "ground"

// Claims JWT claims токена доступа; Subject содержит ID пользователя
type Claims struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// User returns the user the token was issued to.
func (c *Claims) User() models.User {
	return models.User{ID: c.Subject, DisplayName: c.Name, Email: c.Email}
}
