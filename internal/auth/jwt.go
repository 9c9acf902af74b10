// Package auth issues and validates the bearer tokens that guard the editing API.
package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	DefaultTokenTTL = 12 * time.Hour
	Issuer          = "reelcut"
)

var (
	ErrNoSecret     = errors.New("jwt secret is required")
	ErrInvalidToken = errors.New("invalid token")
	ErrInvalidKey   = errors.New("invalid api key")
)

type Claims struct {
	// SessionID restricts the token to one editing session when set.
	SessionID string `json:"sid,omitempty"`
	jwt.RegisteredClaims
}

// Tokens signs HS256 tokens for API clients.
type Tokens struct {
	secret []byte
	apiKey string
	ttl    time.Duration
	now    func() time.Time
}

// New returns a token issuer. apiKey is the shared key clients exchange for
// a token; an empty apiKey disables the exchange.
func New(secret, apiKey string, ttl time.Duration) (*Tokens, error) {
	if secret == "" {
		return nil, ErrNoSecret
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &Tokens{secret: []byte(secret), apiKey: apiKey, ttl: ttl, now: time.Now}, nil
}

func (t *Tokens) TTL() time.Duration {
	return t.ttl
}

// Exchange trades the api key for a token.
func (t *Tokens) Exchange(apiKey, subject, sessionID string) (string, time.Time, error) {
	if t.apiKey == "" || subtle.ConstantTimeCompare([]byte(apiKey), []byte(t.apiKey)) != 1 {
		return "", time.Time{}, ErrInvalidKey
	}
	return t.Issue(subject, sessionID)
}

// Issue signs a token for subject, optionally scoped to one session.
func (t *Tokens) Issue(subject, sessionID string) (string, time.Time, error) {
	now := t.now()
	expires := now.Add(t.ttl)
	claims := &Claims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expires, nil
}

func (t *Tokens) Validate(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(tok *jwt.Token) (interface{}, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", tok.Header["alg"])
		}
		return t.secret, nil
	},
		jwt.WithIssuer(Issuer),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Allows reports whether the claims grant access to sessionID.
func (c *Claims) Allows(sessionID string) bool {
	return c.SessionID == "" || c.SessionID == sessionID
}

// GenerateSecret returns a random hex string suitable as a signing secret or api key.
func GenerateSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

type claimsKey struct{}

func WithClaims(ctx context.Context, c *Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, c)
}

func FromContext(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(claimsKey{}).(*Claims)
	return c, ok
}
