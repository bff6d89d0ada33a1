package utils

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenTTL matches the 30-day session lifetime of the web frontend.
const TokenTTL = 30 * 24 * time.Hour

func jwtSecret() ([]byte, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is not set")
	}
	return []byte(secret), nil
}

// GenerateToken issues an HMAC-signed JWT for an authenticated principal.
// The residence claim scopes every subsequent request; super admins carry
// no residence and see all tenants.
func GenerateToken(id, username, role string, residenceID *string) (string, error) {
	secret, err := jwtSecret()
	if err != nil {
		return "", err
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":      id,
		"username": username,
		"role":     role,
		"iat":      now.Unix(),
		"exp":      now.Add(TokenTTL).Unix(),
	}
	if residenceID != nil {
		claims["residence_id"] = *residenceID
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// VerifyToken parses and validates an HMAC-signed JWT and returns its claims.
func VerifyToken(tokenString string) (jwt.MapClaims, error) {
	secret, err := jwtSecret()
	if err != nil {
		return nil, err
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}

// ParseVisitTime converts a caller-supplied visit time into epoch
// seconds. Accepts raw epoch seconds, RFC 3339, or the datetime-local
// format browsers submit.
func ParseVisitTime(value string) (int64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("visit time is required")
	}

	if epoch, err := strconv.ParseInt(value, 10, 64); err == nil {
		if epoch <= 0 {
			return 0, fmt.Errorf("visit time must be a positive epoch timestamp")
		}
		return epoch, nil
	}

	layouts := []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02T15:04",
		"2006-01-02 15:04:05",
	}
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return t.Unix(), nil
		}
	}
	return 0, fmt.Errorf("unrecognized visit time format: %q", value)
}

// OptionalString returns nil for an empty string so optional columns stay
// NULL instead of storing "".
func OptionalString(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}
