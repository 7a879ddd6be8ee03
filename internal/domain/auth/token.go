package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Identity is the already-authenticated caller as resolved from the external
// identity provider's token. The core performs no authentication itself.
type Identity struct {
	CallerID    string
	DisplayName string
	Level       Level
}

type Claims struct {
	UserID      string `json:"uid"`
	DisplayName string `json:"name"`
	Level       uint8  `json:"level"`
	SuperAdmin  bool   `json:"superAdmin,omitempty"`
	jwt.RegisteredClaims
}

func (c *Claims) Identity() Identity {
	level := LevelOf(c.Level)
	if c.SuperAdmin {
		level = SuperAdmin()
	}
	return Identity{CallerID: c.UserID, DisplayName: c.DisplayName, Level: level}
}

func GenerateToken(secret string, claims Claims, ttl time.Duration) (string, error) {
	claims.RegisteredClaims = jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func ParseToken(secret, tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}
