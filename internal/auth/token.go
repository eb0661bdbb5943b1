// Package auth verifies the identity tokens issued by the external authentication backend
package auth

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for tokens that fail verification
var ErrInvalidToken = errors.New("invalid or expired token")

// Claims is the payload of an access token
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// TokenVerifier validates the JWT access tokens issued by the authentication backend
type TokenVerifier struct {
	secret []byte
	issuer string
}

// NewTokenVerifier creates a new token verifier.
// An empty issuer disables the issuer check.
func NewTokenVerifier(secret, issuer string) *TokenVerifier {
	return &TokenVerifier{
		secret: []byte(secret),
		issuer: issuer,
	}
}

// ValidateAccessToken validates an access token and returns its claims
func (tv *TokenVerifier) ValidateAccessToken(tokenString string) (*Claims, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if tv.issuer != "" {
		options = append(options, jwt.WithIssuer(tv.issuer))
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		return tv.secret, nil
	}, options...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: subject not found in token", ErrInvalidToken)
	}
	if claims.ID == "" {
		return nil, fmt.Errorf("%w: token id not found in token", ErrInvalidToken)
	}

	return claims, nil
}
