package security

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMissingToken = errors.New("missing bearer token")
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

// SessionClaims are the claims the rental-mngt API puts in its session tokens.
type SessionClaims struct {
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// Identity returns the best available identity for audit records.
func (c *SessionClaims) Identity() string {
	if c.Email != "" {
		return c.Email
	}
	return c.Subject
}

type TokenInspector interface {
	// Inspect verifies the HMAC signature of a bearer token against the secret
	// shared with the API. An expired but otherwise valid token returns its
	// claims together with ErrExpiredToken.
	Inspect(tokenString string) (*SessionClaims, error)
}

type tokenInspector struct {
	secret []byte
	leeway time.Duration
	now    func() time.Time
}

func NewTokenInspector(secret string, leeway time.Duration) TokenInspector {
	return &tokenInspector{
		secret: []byte(secret),
		leeway: leeway,
		now:    time.Now,
	}
}

func (i *tokenInspector) Inspect(tokenString string) (*SessionClaims, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return nil, ErrMissingToken
	}
	if len(i.secret) == 0 {
		return nil, ErrInvalidToken
	}

	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return i.secret, nil
	}, jwt.WithLeeway(i.leeway), jwt.WithTimeFunc(i.now))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return claims, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, error) {
	const prefix = "bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", ErrMissingToken
	}
	token := strings.TrimSpace(header[len(prefix):])
	if token == "" {
		return "", ErrMissingToken
	}
	return token, nil
}
