package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/harentsoaR/smart-health-api/internal/models"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

var (
	jwtSecret  []byte
	accessTTL  = 60 * time.Minute
	refreshTTL = 7 * 24 * time.Hour
)

type Claims struct {
	UserID    uint   `json:"user_id"`
	Role      string `json:"role"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// ConfigureJWT sets the signing secret and token lifetimes.
func ConfigureJWT(secret string, access, refresh time.Duration) {
	jwtSecret = []byte(secret)
	if access > 0 {
		accessTTL = access
	}
	if refresh > 0 {
		refreshTTL = refresh
	}
}

// GenerateTokenPair creates an access token and a refresh token for a user.
func GenerateTokenPair(userID uint, role string) (access, refresh string, err error) {
	if access, err = generate(userID, role, TokenTypeAccess, accessTTL); err != nil {
		return "", "", err
	}
	if refresh, err = generate(userID, role, TokenTypeRefresh, refreshTTL); err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

func generate(userID uint, role, tokenType string, ttl time.Duration) (string, error) {
	if len(jwtSecret) == 0 {
		return "", errors.New("JWT_SECRET is not configured")
	}
	now := time.Now()
	claims := &Claims{
		UserID:    userID,
		Role:      role,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   fmt.Sprint(userID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret)
}

// ValidateJWT parses tokenStr and checks it is of the expected type.
func ValidateJWT(tokenStr, tokenType string) (*Claims, error) {
	if len(jwtSecret) == 0 {
		return nil, errors.New("JWT_SECRET is not configured")
	}
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.TokenType != tokenType {
		return nil, fmt.Errorf("expected %s token", tokenType)
	}
	if !models.ValidRole(claims.Role) {
		return nil, fmt.Errorf("unknown role %q", claims.Role)
	}
	return claims, nil
}
