package ticket

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssuer(t *testing.T) {
	iss, err := NewIssuer("secret", time.Hour)
	require.NoError(t, err)

	raw, err := iss.Issue("session-a")
	require.NoError(t, err)

	t.Run("valid for its session", func(t *testing.T) {
		assert.NoError(t, iss.Verify(raw, "session-a"))
	})

	t.Run("rejected for another session", func(t *testing.T) {
		assert.ErrorIs(t, iss.Verify(raw, "session-b"), ErrInvalidTicket)
	})

	t.Run("rejected with another secret", func(t *testing.T) {
		other, err := NewIssuer("other", time.Hour)
		require.NoError(t, err)
		assert.ErrorIs(t, other.Verify(raw, "session-a"), ErrInvalidTicket)
	})

	t.Run("rejected when garbage", func(t *testing.T) {
		assert.ErrorIs(t, iss.Verify("not-a-token", "session-a"), ErrInvalidTicket)
	})
}

func TestIssuer_Expiry(t *testing.T) {
	iss, err := NewIssuer("secret", time.Minute)
	require.NoError(t, err)
	start := time.Now()
	iss.now = func() time.Time { return start }

	raw, err := iss.Issue("s")
	require.NoError(t, err)
	require.NoError(t, iss.Verify(raw, "s"))

	iss.now = func() time.Time { return start.Add(2 * time.Minute) }
	assert.ErrorIs(t, iss.Verify(raw, "s"), ErrInvalidTicket)
}

func TestNewIssuer_EmptySecret(t *testing.T) {
	_, err := NewIssuer("", time.Minute)
	assert.Error(t, err)
}
