package service

import (
	"errors"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var jwtSecret []byte

const (
	sessionTTL = 24 * time.Hour
	resetTTL   = 15 * time.Minute
)

func InitJWT() {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		panic("JWT_SECRET is not set")
	}
	jwtSecret = []byte(secret)
}

// GenerateToken issues a session token whose subject is the identity's
// scoping email.
func GenerateToken(email string) (string, error) {
	return signToken(email, "session", sessionTTL)
}

// GenerateResetToken issues a short-lived token redeemable only for a
// password reset.
func GenerateResetToken(email string) (string, error) {
	return signToken(email, "reset", resetTTL)
}

func signToken(email, purpose string, ttl time.Duration) (string, error) {
	now := time.Now().Unix()
	claims := jwt.MapClaims{
		"sub":     email,
		"purpose": purpose,
		"exp":     time.Now().Add(ttl).Unix(),
		"iat":     now,
		"nbf":     now,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret)
}

// ParseToken verifies a session token and returns the subject email.
func ParseToken(tokenString string) (string, error) {
	return parseToken(tokenString, "session")
}

// ParseResetToken verifies a password-reset token and returns the subject
// email.
func ParseResetToken(tokenString string) (string, error) {
	return parseToken(tokenString, "reset")
}

func parseToken(tokenString, purpose string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return jwtSecret, nil
	})

	if err != nil || !token.Valid {
		return "", errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("invalid claims")
	}

	now := time.Now().Unix()
	if exp, ok := claims["exp"].(float64); ok {
		if int64(exp) < now {
			return "", errors.New("token expired")
		}
	}
	if nbf, ok := claims["nbf"].(float64); ok {
		if int64(nbf) > now {
			return "", errors.New("token not valid yet")
		}
	}

	if p, _ := claims["purpose"].(string); p != purpose {
		return "", errors.New("wrong token purpose")
	}

	email, ok := claims["sub"].(string)
	if !ok || email == "" {
		return "", errors.New("subject not found")
	}
	return email, nil
}
