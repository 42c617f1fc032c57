package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLinkRoundTrip(t *testing.T) {
	codec := NewLinkCodec(testSecret, LinkSalt)

	raw, err := codec.Sign(map[string]string{"email": "a@b.com"})
	require.NoError(t, err)

	data, err := codec.Unsign(raw, time.Hour)
	require.NoError(t, err)
	require.Equal(t, map[string]string{"email": "a@b.com"}, data)
}

func TestLinkMaxAge(t *testing.T) {
	codec := NewLinkCodec(testSecret, LinkSalt)

	raw, err := codec.Sign(map[string]string{"email": "a@b.com"})
	require.NoError(t, err)

	codec.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = codec.Unsign(raw, time.Hour)
	require.ErrorIs(t, err, ErrInvalidLink)
}

func TestLinkTampered(t *testing.T) {
	codec := NewLinkCodec(testSecret, LinkSalt)

	raw, err := codec.Sign(map[string]string{"email": "a@b.com"})
	require.NoError(t, err)

	_, err = codec.Unsign(raw+"x", time.Hour)
	require.ErrorIs(t, err, ErrInvalidLink)
}

func TestLinkDomainSeparation(t *testing.T) {
	links := NewLinkCodec(testSecret, LinkSalt)
	bearer := NewCodec(testSecret, time.Hour, 48*time.Hour)

	// A bearer token must not verify as a link token and vice versa, even
	// though both codecs share the server secret.
	raw, err := bearer.IssueAccess(UserClaims{Email: "a@b.com"})
	require.NoError(t, err)
	_, err = links.Unsign(raw, time.Hour)
	require.ErrorIs(t, err, ErrInvalidLink)

	link, err := links.Sign(map[string]string{"email": "a@b.com"})
	require.NoError(t, err)
	_, err = bearer.Decode(link)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestLinkDifferentSalts(t *testing.T) {
	verify := NewLinkCodec(testSecret, "verify")
	reset := NewLinkCodec(testSecret, "reset")

	raw, err := verify.Sign(map[string]string{"email": "a@b.com"})
	require.NoError(t, err)

	_, err = reset.Unsign(raw, time.Hour)
	require.ErrorIs(t, err, ErrInvalidLink)
}
