package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/franciscosanchezn/gin-food-ordering-api/internal/models"
	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for every token that fails verification
var ErrInvalidToken = errors.New("invalid token")

// Claims carried by every access token, whether issued by login or by the OAuth2 token endpoint
type Claims struct {
	UserID       string `json:"uid"`
	Username     string `json:"username"`
	Role         string `json:"role"`
	RestaurantID string `json:"restaurantId,omitempty"`
	Scope        string `json:"scope,omitempty"`
	jwt.RegisteredClaims
}

// TokenManager signs and verifies HS256 access tokens
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// TTL is the lifetime of tokens issued by Issue
func (m *TokenManager) TTL() time.Duration {
	return m.ttl
}

// ClaimsFor builds the identity claims of a user. The user's Restaurant must be loaded.
func ClaimsFor(user *models.User) Claims {
	return Claims{
		UserID:       user.ID,
		Username:     user.Username,
		Role:         string(user.Role),
		RestaurantID: user.RestaurantID(),
	}
}

// Issue signs a token for user valid for the configured TTL
func (m *TokenManager) Issue(user *models.User) (string, time.Time, error) {
	issuedAt := m.now()
	expiresAt := issuedAt.Add(m.ttl)
	token, err := m.Sign(ClaimsFor(user), issuedAt, expiresAt)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

// Sign stamps the registered claims on c and signs it
func (m *TokenManager) Sign(c Claims, issuedAt, expiresAt time.Time) (string, error) {
	c.Subject = c.UserID
	c.IssuedAt = jwt.NewNumericDate(issuedAt)
	c.ExpiresAt = jwt.NewNumericDate(expiresAt)

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature, algorithm family and expiry. Revocation is not supported.
func (m *TokenManager) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	},
		jwt.WithTimeFunc(m.now),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.UserID == "" {
		return nil, fmt.Errorf("%w: missing uid claim", ErrInvalidToken)
	}
	if !models.Role(claims.Role).Valid() {
		return nil, fmt.Errorf("%w: invalid role %q", ErrInvalidToken, claims.Role)
	}
	return claims, nil
}
