package utils

import (
	"errors"
	"time"

	"coursetrack/backend/config"

	"github.com/golang-jwt/jwt/v4"
)

// ClientCookie carries the signed client-session token.
const ClientCookie = "coursetrack_client"

var ErrInvalidClientToken = errors.New("invalid client token")

// GenerateClientToken signs a token that binds a browser to its client storage.
func GenerateClientToken(clientID string, cfg *config.Config) (string, error) {
	claims := jwt.MapClaims{
		"client_id": clientID,
		"exp":       time.Now().Add(time.Duration(cfg.SessionTTLHours) * time.Hour).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.SessionSecret))
}

// ParseClientToken validates tokenString and returns the client id it carries.
func ParseClientToken(tokenString string, cfg *config.Config) (string, error) {
	if tokenString == "" {
		return "", ErrInvalidClientToken
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidClientToken
		}
		return []byte(cfg.SessionSecret), nil
	})
	if err != nil {
		return "", ErrInvalidClientToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", ErrInvalidClientToken
	}

	clientID, ok := claims["client_id"].(string)
	if !ok || clientID == "" {
		return "", ErrInvalidClientToken
	}

	return clientID, nil
}
