package utils

import (
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims represents JWT claims
type Claims struct {
	UserID    int64  `json:"userId"`
	ProfileID int64  `json:"profileId"`
	Email     string `json:"email"`
	jwt.RegisteredClaims
}

func jwtSecret() []byte {
	return []byte(os.Getenv("JWT_SECRET"))
}

func refreshSecret() []byte {
	if s := os.Getenv("JWT_REFRESH_SECRET"); s != "" {
		return []byte(s)
	}
	return jwtSecret()
}

func newToken(userID, profileID int64, email string, ttl time.Duration, secret []byte) (string, error) {
	claims := &Claims{
		UserID:    userID,
		ProfileID: profileID,
		Email:     email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// GenerateToken generates a short-lived access token for a user
func GenerateToken(userID, profileID int64, email string) (string, error) {
	return newToken(userID, profileID, email, 15*time.Minute, jwtSecret())
}

// GenerateRefreshToken generates a long-lived refresh token for a user
func GenerateRefreshToken(userID, profileID int64, email string) (string, error) {
	return newToken(userID, profileID, email, 7*24*time.Hour, refreshSecret())
}

func parseToken(tokenString string, secret []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return secret, nil
	})

	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, jwt.ErrSignatureInvalid
	}

	return claims, nil
}

// ValidateToken validates and parses an access token
func ValidateToken(tokenString string) (*Claims, error) {
	return parseToken(tokenString, jwtSecret())
}

// ValidateRefreshToken validates and parses a refresh token
func ValidateRefreshToken(tokenString string) (*Claims, error) {
	return parseToken(tokenString, refreshSecret())
}
