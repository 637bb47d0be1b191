package tokenutil

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/mediavault/content-repository/domain"
)

type JwtCustomClaims struct {
	Name string `json:"name"`
	ID   string `json:"id"`
	jwt.RegisteredClaims
}

// CreateAccessToken 签发 HS256 访问令牌
func CreateAccessToken(actor *domain.Actor, secret string, expiry time.Duration) (string, error) {
	if actor == nil || actor.UserID == "" {
		return "", errors.New("actor id is required")
	}
	claims := &JwtCustomClaims{
		Name: actor.Username,
		ID:   actor.UserID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   actor.UserID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiry)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ExtractActor 校验签名和过期时间，返回令牌中的用户
func ExtractActor(requestToken string, secret string) (*domain.Actor, error) {
	claims := &JwtCustomClaims{}
	token, err := jwt.ParseWithClaims(requestToken, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.ID == "" {
		return nil, errors.New("invalid token")
	}

	return &domain.Actor{UserID: claims.ID, Username: claims.Name}, nil
}
