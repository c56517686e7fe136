package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/maintsys/mro-stock-service/internal/model"
)

type Claims struct {
	UserID   string         `json:"user_id"`
	Username string         `json:"username"`
	FullName string         `json:"full_name"`
	Role     model.UserRole `json:"role"`
	jwt.RegisteredClaims
}

func GenerateToken(secret string, ttl time.Duration, user *model.User) (string, error) {
	claims := &Claims{
		UserID:   user.ID,
		Username: user.Username,
		FullName: user.FullName,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}
