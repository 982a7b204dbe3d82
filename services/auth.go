package services

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const tokenTTL = 72 * time.Hour

// TokenAuth issues and checks planner tokens. The subject is the planner's
// owner name, which becomes created_by on plans they create.
type TokenAuth struct {
	secret []byte
	now    func() time.Time
}

func NewTokenAuth(secret string) *TokenAuth {
	if secret == "" {
		secret = "dev_jwt_secret_super_secure"
	}
	return &TokenAuth{secret: []byte(secret), now: time.Now}
}

// GenerateJWT generates a signed token for owner, valid for three days.
func (a *TokenAuth) GenerateJWT(owner string) (string, error) {
	owner = strings.TrimSpace(owner)
	if owner == "" {
		return "", errors.New("owner is required")
	}
	now := a.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   owner,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
	})
	return token.SignedString(a.secret)
}

// ValidateJWT parses the token and returns the owner if valid.
func (a *TokenAuth) ValidateJWT(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return a.secret, nil
	}, jwt.WithTimeFunc(a.now))
	if err != nil {
		return "", err
	}
	if !token.Valid || claims.Subject == "" {
		return "", errors.New("invalid token")
	}
	return claims.Subject, nil
}

// HashKey creates a bcrypt hash of a backend access key, so deployments can
// configure VANGUARD_API_KEY_HASH instead of the plain key.
func HashKey(key string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckKeyHash compares a presented key with a bcrypt hash.
func CheckKeyHash(key, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(key)) == nil
}
