package auth

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is the only failure Verify reports. Bad signatures,
// malformed tokens and expired tokens are deliberately not
// distinguished to the caller.
var ErrInvalidToken = errors.New("invalid token")

// TokenService issues and verifies stateless HS256 bearer tokens that
// bind a user ID to an expiry. It holds no per-token state; possession
// of a validly signed, unexpired token is the whole proof.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenService builds a service around the process-wide signing
// secret and validity window. The secret must stay constant for the
// process's life; changing it invalidates all outstanding tokens.
func NewTokenService(secret string, ttl time.Duration) *TokenService {
	return &TokenService{secret: []byte(secret), ttl: ttl}
}

// Issue produces a signed token whose subject is the user ID and whose
// expiry is the issue time plus the configured window.
func (s *TokenService) Issue(userID int) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.Itoa(userID),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify parses and validates the token and returns the embedded user
// ID, or ErrInvalidToken.
func (s *TokenService) Verify(tokenString string) (int, error) {
	claims := jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return 0, ErrInvalidToken
	}
	userID, err := strconv.Atoi(strings.TrimSpace(claims.Subject))
	if err != nil || userID < 1 {
		return 0, ErrInvalidToken
	}
	return userID, nil
}
