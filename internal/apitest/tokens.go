package apitest

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	errTokenInvalid = errors.New("token invalid")
	errTokenRevoked = errors.New("token revoked")
)

type claims struct {
	UserID string `json:"uid"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// tokenIssuer emite access tokens HS256 y lleva la lista de jti revocados
// por /auth/logout.
type tokenIssuer struct {
	secret []byte
	ttl    time.Duration
	issuer string

	mu      sync.Mutex
	revoked map[string]time.Time
}

func newTokenIssuer(secret string, ttl time.Duration) *tokenIssuer {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &tokenIssuer{
		secret:  []byte(secret),
		ttl:     ttl,
		issuer:  "tourism-api",
		revoked: make(map[string]time.Time),
	}
}

func (t *tokenIssuer) issue(userID, email string) (string, error) {
	now := time.Now().UTC()
	c := claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    t.issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(t.secret)
}

func (t *tokenIssuer) parse(token string) (claims, error) {
	if strings.TrimSpace(token) == "" {
		return claims{}, errTokenInvalid
	}
	var c claims
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(t.issuer),
	)
	if _, err := parser.ParseWithClaims(token, &c, func(_ *jwt.Token) (any, error) {
		return t.secret, nil
	}); err != nil {
		return claims{}, errTokenInvalid
	}
	if c.UserID == "" || c.Subject != c.UserID {
		return claims{}, errTokenInvalid
	}
	t.mu.Lock()
	_, revoked := t.revoked[c.ID]
	t.mu.Unlock()
	if revoked {
		return claims{}, errTokenRevoked
	}
	return c, nil
}

func (t *tokenIssuer) revoke(c claims) {
	if c.ID == "" {
		return
	}
	exp := time.Now().UTC().Add(t.ttl)
	if c.ExpiresAt != nil {
		exp = c.ExpiresAt.Time
	}
	t.mu.Lock()
	t.revoked[c.ID] = exp
	t.mu.Unlock()
}
