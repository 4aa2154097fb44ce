// Package auth issues and checks the bearer tokens of the HTTP API.
package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/erazemk/inventar/internal/model"
)

// ErrInvalidToken is returned for any token that fails validation.
var ErrInvalidToken = errors.New("invalid token")

// Claims identifies the acting user of a request.
type Claims struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// TokenExpiry is the default token lifetime.
const TokenExpiry = 7 * 24 * time.Hour

// issuer is the "iss" claim of every token.
const issuer = "inventar"

// GenerateToken signs a token for user that expires after ttl.
func GenerateToken(secret string, user *model.User, ttl time.Duration) (string, *Claims, error) {
	if secret == "" {
		return "", nil, errors.New("signing secret is empty")
	}
	jti, err := generateJTI()
	if err != nil {
		return "", nil, fmt.Errorf("generating JTI: %w", err)
	}

	issued := time.Now()
	claims := &Claims{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Issuer:    issuer,
			Subject:   user.Username,
			ExpiresAt: jwt.NewNumericDate(issued.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(issued),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", nil, fmt.Errorf("signing token: %w", err)
	}
	return signed, claims, nil
}

// ValidateToken parses tokenStr and returns its claims. Only HMAC-signed
// tokens from this issuer with a known role are accepted.
func ValidateToken(secret, tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithIssuer(issuer), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.ID == "" || !model.ValidRole(claims.Role) {
		return nil, fmt.Errorf("%w: incomplete claims", ErrInvalidToken)
	}
	return claims, nil
}

func generateJTI() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
