package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken covers every decode failure: bad signature, wrong algorithm,
// expiry, malformed payload. Callers must not surface the underlying reason.
var ErrInvalidToken = errors.New("invalid token")

// UserClaims is the identity summary embedded in every bearer token.
type UserClaims struct {
	Email  string `json:"email"`
	UserID string `json:"user_uid"`
}

// AccessClaims is the payload of both access and refresh tokens; the Refresh
// flag is what distinguishes the two kinds.
type AccessClaims struct {
	User    UserClaims `json:"user"`
	Refresh bool       `json:"refresh"`
	jwt.RegisteredClaims
}

// Codec issues and verifies HS256 bearer tokens. Issuing and decoding are
// stateless, so one Codec is safe for concurrent use.
type Codec struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewCodec(secret []byte, accessTTL, refreshTTL time.Duration) *Codec {
	if accessTTL <= 0 {
		accessTTL = time.Hour
	}
	if refreshTTL <= 0 {
		refreshTTL = 48 * time.Hour
	}
	return &Codec{secret: secret, accessTTL: accessTTL, refreshTTL: refreshTTL}
}

func (c *Codec) IssueAccess(user UserClaims) (string, error) {
	return c.Issue(user, c.accessTTL, false)
}

func (c *Codec) IssueRefresh(user UserClaims) (string, error) {
	return c.Issue(user, c.refreshTTL, true)
}

// Issue signs a token carrying the user summary, a fresh jti and the refresh
// flag. The jti is the unit of revocation.
func (c *Codec) Issue(user UserClaims, ttl time.Duration, refresh bool) (string, error) {
	now := time.Now()
	claims := AccessClaims{
		User:    user,
		Refresh: refresh,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	tkn := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tkn.SignedString(c.secret)
}

// Decode verifies signature and expiry. Only HS256 is accepted, so a token
// signed with another algorithm fails even if the key material matches.
func (c *Codec) Decode(raw string) (*AccessClaims, error) {
	var claims AccessClaims
	tkn, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return c.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !tkn.Valid {
		return nil, ErrInvalidToken
	}
	return &claims, nil
}

func (c *Codec) RefreshTTL() time.Duration { return c.refreshTTL }
