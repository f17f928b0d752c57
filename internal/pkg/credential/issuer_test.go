package credential

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestIssuer(t *testing.T, opts ...Option) (*Issuer, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)}
	opts = append([]Option{WithClock(clock.Now)}, opts...)
	iss, err := NewIssuer("access-secret", "refresh-secret", opts...)
	require.NoError(t, err)
	return iss, clock
}

var alice = Identity{Subject: "65f1c2d3e4f5a6b7c8d9e0af", Email: "alice@example.com", Role: "user"}

func TestIssuer_AccessRoundTrip(t *testing.T) {
	iss, _ := newTestIssuer(t)

	tok, err := iss.IssueAccess(alice)
	require.NoError(t, err)

	got, err := iss.VerifyAccess(tok.Value)
	require.NoError(t, err)
	assert.Equal(t, alice, got)
}

func TestIssuer_AccessExpires(t *testing.T) {
	iss, clock := newTestIssuer(t)

	tok, err := iss.IssueAccess(alice)
	require.NoError(t, err)
	assert.Equal(t, clock.Now().Add(DefaultAccessTTL), tok.ExpiresAt)

	clock.Advance(14 * time.Minute)
	_, err = iss.VerifyAccess(tok.Value)
	require.NoError(t, err)

	clock.Advance(2 * time.Minute)
	_, err = iss.VerifyAccess(tok.Value)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestIssuer_RefreshExpires(t *testing.T) {
	iss, clock := newTestIssuer(t)

	tok, err := iss.IssueRefresh(alice)
	require.NoError(t, err)

	clock.Advance(DefaultRefreshTTL - time.Minute)
	_, err = iss.VerifyRefresh(tok.Value)
	require.NoError(t, err)

	clock.Advance(2 * time.Minute)
	_, err = iss.VerifyRefresh(tok.Value)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestIssuer_KeysAreNotInterchangeable(t *testing.T) {
	iss, _ := newTestIssuer(t)

	pair, err := iss.IssuePair(alice)
	require.NoError(t, err)

	_, err = iss.VerifyRefresh(pair.Access.Value)
	assert.ErrorIs(t, err, ErrBadSignature)

	_, err = iss.VerifyAccess(pair.Refresh.Value)
	assert.ErrorIs(t, err, ErrBadSignature)
}

func TestIssuer_RefreshNonceIsUnique(t *testing.T) {
	iss, _ := newTestIssuer(t)

	a, err := iss.IssueRefresh(alice)
	require.NoError(t, err)
	b, err := iss.IssueRefresh(alice)
	require.NoError(t, err)

	assert.NotEqual(t, a.Value, b.Value, "same identity at the same instant must still yield distinct tokens")
}

func TestIssuer_PairAccessNeverOutlivesRefresh(t *testing.T) {
	iss, _ := newTestIssuer(t)

	pair, err := iss.IssuePair(alice)
	require.NoError(t, err)
	assert.True(t, pair.Access.ExpiresAt.Before(pair.Refresh.ExpiresAt))
}

func TestIssuer_Malformed(t *testing.T) {
	iss, _ := newTestIssuer(t)

	_, err := iss.VerifyAccess("not-a-token")
	assert.ErrorIs(t, err, ErrTokenMalformed)

	_, err = iss.VerifyAccess("")
	assert.ErrorIs(t, err, ErrTokenMalformed)
}

func TestIssuer_TamperedPayloadFailsSignature(t *testing.T) {
	iss, _ := newTestIssuer(t)

	tok, err := iss.IssueAccess(alice)
	require.NoError(t, err)

	parts := strings.Split(tok.Value, ".")
	require.Len(t, parts, 3)

	other, err := iss.IssueAccess(Identity{Subject: "someone-else", Role: "admin"})
	require.NoError(t, err)
	forged := parts[0] + "." + strings.Split(other.Value, ".")[1] + "." + parts[2]

	_, err = iss.VerifyAccess(forged)
	assert.ErrorIs(t, err, ErrBadSignature)
}

func TestIssuer_RejectsOtherAlgorithms(t *testing.T) {
	iss, _ := newTestIssuer(t)

	tok := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{
		"sub": "x",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := tok.SignedString([]byte("access-secret"))
	require.NoError(t, err)

	_, err = iss.VerifyAccess(signed)
	assert.ErrorIs(t, err, ErrBadSignature)
}

func TestNewIssuer_Validation(t *testing.T) {
	_, err := NewIssuer("", "refresh")
	assert.Error(t, err)

	_, err = NewIssuer("same", "same")
	assert.Error(t, err)

	_, err = NewIssuer("a", "b", WithTTL(time.Hour, time.Minute))
	assert.Error(t, err, "access ttl longer than refresh ttl must be rejected")

	iss, err := NewIssuer("a", "b", WithTTL(DefaultAccessTTL, AdminRefreshTTL))
	require.NoError(t, err)
	assert.Equal(t, AdminRefreshTTL, iss.RefreshTTL())
}

func TestRefreshHash(t *testing.T) {
	iss, _ := newTestIssuer(t)

	tok, err := iss.IssueRefresh(alice)
	require.NoError(t, err)
	require.Greater(t, len(tok.Value), 72, "jwt is longer than bcrypt's input limit")

	h1, err := HashRefresh(tok.Value)
	require.NoError(t, err)
	h2, err := HashRefresh(tok.Value)
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2, "salt must differ per call")
	assert.True(t, CompareRefresh(tok.Value, h1))
	assert.True(t, CompareRefresh(tok.Value, h2))

	other, err := iss.IssueRefresh(alice)
	require.NoError(t, err)
	assert.False(t, CompareRefresh(other.Value, h1))
	assert.False(t, CompareRefresh(tok.Value, ""))
}
