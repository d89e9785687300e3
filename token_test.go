package session_test

import (
	"testing"
	"time"

	"github.com/herdline/go-session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsWellFormed(t *testing.T) {
	assert.True(t, session.IsWellFormed(signedToken(time.Now().Add(time.Hour))))

	assert.False(t, session.IsWellFormed(""))
	assert.False(t, session.IsWellFormed("   "))
	assert.False(t, session.IsWellFormed("not-a-token"))
	assert.False(t, session.IsWellFormed("one.two"))
	assert.False(t, session.IsWellFormed("a.b.c.d"))
	assert.False(t, session.IsWellFormed("!!!.###.$$$"))
}

func TestDecodeUnverified(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	token := signedToken(exp)

	claims, err := session.DecodeUnverified(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID())
	assert.Equal(t, "admin", claims.UserRole)
	assert.WithinDuration(t, exp, claims.Expires(), time.Second)
}

func TestDecodeUnverifiedMalformed(t *testing.T) {
	_, err := session.DecodeUnverified("garbage")
	require.Error(t, err)
	assert.True(t, session.IsMalformedTokenError(err))
}

func TestExpired(t *testing.T) {
	now := time.Now()

	assert.False(t, session.Expired(signedToken(now.Add(time.Hour)), now))
	assert.True(t, session.Expired(signedToken(now.Add(-time.Minute)), now))

	// undecodable and claimless tokens count as expired
	assert.True(t, session.Expired("garbage", now))
	assert.True(t, session.Expired(signedToken(time.Time{}), now))
}

func TestTimeToExpiry(t *testing.T) {
	now := time.Now()

	remaining, err := session.TimeToExpiry(signedToken(now.Add(10*time.Minute)), now)
	require.NoError(t, err)
	assert.InDelta(t, (10 * time.Minute).Seconds(), remaining.Seconds(), 1)

	remaining, err = session.TimeToExpiry(signedToken(now.Add(-10*time.Minute)), now)
	require.NoError(t, err)
	assert.Negative(t, remaining)

	_, err = session.TimeToExpiry("garbage", now)
	assert.True(t, session.IsMalformedTokenError(err))

	_, err = session.TimeToExpiry(signedToken(time.Time{}), now)
	assert.True(t, session.IsTokenExpiredError(err))
}
