// Package auth issues and verifies the three token kinds (access, refresh,
// reset-password), hashes credentials, and tracks token liveness in the
// cache so signout and single-use reset links work across instances.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/pouyadh/chat-app-server/internal/config"
	"github.com/pouyadh/chat-app-server/internal/pkg/apperror"
)

// Identity is the public claim set embedded in every token.
type Identity struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
}

// TokenKind selects which secret and lifetime a token is bound to.
type TokenKind string

const (
	TokenAccess        TokenKind = "access"
	TokenRefresh       TokenKind = "refresh"
	TokenResetPassword TokenKind = "resetPassword"
)

type claims struct {
	Identity
	jwt.RegisteredClaims
}

// TokenIssuer signs and parses JWTs for all token kinds.
type TokenIssuer struct {
	access        config.TokenConfig
	refresh       config.TokenConfig
	resetPassword config.TokenConfig
}

func NewTokenIssuer(cfg config.Config) *TokenIssuer {
	return &TokenIssuer{
		access:        cfg.Token.Access,
		refresh:       cfg.Token.Refresh,
		resetPassword: cfg.Token.ResetPassword,
	}
}

func (t *TokenIssuer) kindConfig(kind TokenKind) (config.TokenConfig, error) {
	switch kind {
	case TokenAccess:
		return t.access, nil
	case TokenRefresh:
		return t.refresh, nil
	case TokenResetPassword:
		return t.resetPassword, nil
	default:
		return config.TokenConfig{}, fmt.Errorf("auth: unknown token kind %q", kind)
	}
}

// Sign mints a token of the given kind for the identity.
func (t *TokenIssuer) Sign(kind TokenKind, id Identity) (string, error) {
	cfg, err := t.kindConfig(kind)
	if err != nil {
		return "", err
	}
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Identity: id,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.ExpiresIn)),
		},
	})
	return token.SignedString([]byte(cfg.Secret))
}

// Parse verifies signature and expiry for the given kind and returns the
// embedded identity. Invalid or expired tokens map to Unauthorized.
func (t *TokenIssuer) Parse(kind TokenKind, tokenString string) (Identity, error) {
	cfg, err := t.kindConfig(kind)
	if err != nil {
		return Identity{}, err
	}
	var cl claims
	parsed, err := jwt.ParseWithClaims(tokenString, &cl, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("auth: unexpected signing method %v", token.Header["alg"])
		}
		return []byte(cfg.Secret), nil
	})
	if err != nil || !parsed.Valid {
		return Identity{}, apperror.Unauthorized("invalid token")
	}
	// cl.ID alone would be ambiguous: RegisteredClaims carries a jti ID too.
	if cl.Identity.ID == "" {
		return Identity{}, apperror.Unauthorized("invalid token")
	}
	return cl.Identity, nil
}

// TTL reports the configured lifetime of the kind, for cookie max-age and
// cache expirations.
func (t *TokenIssuer) TTL(kind TokenKind) time.Duration {
	cfg, err := t.kindConfig(kind)
	if err != nil {
		return 0
	}
	return cfg.ExpiresIn
}

// ErrNoBearer reports a missing or malformed Authorization value.
var ErrNoBearer = errors.New("auth: authorization is not a bearer token")

// StripBearer extracts the raw token from a "Bearer <token>" value.
func StripBearer(header string) (string, error) {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || header[:len(prefix)] != prefix {
		return "", ErrNoBearer
	}
	return header[len(prefix):], nil
}

// TrimBearer strips the Bearer schema when present. Cookies carry the raw
// token (cookie values cannot hold spaces) while Authorization headers and
// socket handshakes carry the schema; callers accept either.
func TrimBearer(value string) string {
	if raw, err := StripBearer(value); err == nil {
		return raw
	}
	return value
}
