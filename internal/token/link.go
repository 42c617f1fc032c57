package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidLink covers tampered and expired link tokens alike.
var ErrInvalidLink = errors.New("invalid link token")

// LinkSalt keys the verification/reset link codec apart from bearer tokens.
const LinkSalt = "email-configuration"

type linkClaims struct {
	Data map[string]string `json:"data"`
	jwt.RegisteredClaims
}

// LinkCodec signs small payloads for click-through email links (verification,
// password reset). The signing key is derived from the server secret and a
// salt, so link tokens and bearer tokens are never interchangeable even
// though they share the secret. Expiry is a max-age window checked at decode
// time against the embedded issuance timestamp. Tokens are not single-use:
// a captured link stays valid for the whole window.
type LinkCodec struct {
	key []byte
	now func() time.Time
}

func NewLinkCodec(secret []byte, salt string) *LinkCodec {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(salt))
	return &LinkCodec{key: mac.Sum(nil), now: time.Now}
}

func (c *LinkCodec) Sign(data map[string]string) (string, error) {
	claims := linkClaims{
		Data: data,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(c.now()),
		},
	}
	tkn := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tkn.SignedString(c.key)
}

// Unsign verifies the signature and, when maxAge > 0, that the token was
// issued within the window.
func (c *LinkCodec) Unsign(raw string, maxAge time.Duration) (map[string]string, error) {
	var claims linkClaims
	tkn, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return c.key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLink, err)
	}
	if !tkn.Valid || claims.IssuedAt == nil {
		return nil, ErrInvalidLink
	}
	if maxAge > 0 && c.now().After(claims.IssuedAt.Add(maxAge)) {
		return nil, fmt.Errorf("%w: expired", ErrInvalidLink)
	}
	return claims.Data, nil
}
