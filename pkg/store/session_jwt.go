package store

import (
	"errors"
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

const (
	jwtIssuer   = "sakanka-api"
	jwtAudience = "sakanka-clients"
)

var jwtLeeway = 30 * time.Second

// TokenClaims is what a verified access token asserts about its holder.
type TokenClaims struct {
	UserID string
	Role   string
}

// JWTTokenManager issues and validates HS256 access tokens. The opaque
// session token (SessionStore) stays authoritative for revocation; the JWT
// only lets handlers skip a session lookup on read paths.
type JWTTokenManager struct {
	secret []byte
	ttl    time.Duration
}

// NewJWTTokenManager builds a token manager from a shared secret.
func NewJWTTokenManager(secret string, ttl time.Duration) (*JWTTokenManager, error) {
	if len(secret) < 16 {
		return nil, errors.New("jwt secret must be at least 16 bytes")
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &JWTTokenManager{secret: []byte(secret), ttl: ttl}, nil
}

// Issue signs an access token for the user.
func (m *JWTTokenManager) Issue(userID, role string) (string, error) {
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"iss":  jwtIssuer,
		"aud":  jwtAudience,
		"sub":  userID,
		"role": role,
		"iat":  now.Unix(),
		"exp":  now.Add(m.ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a token, returning its claims.
func (m *JWTTokenManager) Verify(tokenString string) (TokenClaims, error) {
	parsed, err := jwt.Parse(
		tokenString,
		func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return m.secret, nil
		},
		jwt.WithIssuer(jwtIssuer),
		jwt.WithAudience(jwtAudience),
		jwt.WithLeeway(jwtLeeway),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		return TokenClaims{}, fmt.Errorf("parse token: %w", err)
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return TokenClaims{}, errors.New("invalid token claims")
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return TokenClaims{}, errors.New("token missing subject")
	}
	role, _ := claims["role"].(string)
	return TokenClaims{UserID: sub, Role: role}, nil
}
