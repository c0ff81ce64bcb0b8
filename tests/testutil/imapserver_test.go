package testutil

import (
	"testing"
	"time"

	"github.com/emersion/go-imap/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServerShutdownWithoutClients(t *testing.T) {
	// Cleanup runs at the end of the subtest, possibly before Serve has
	// started accepting.
	for i := 0; i < 5; i++ {
		passed := t.Run("unused", func(t *testing.T) {
			NewTestServer(t, "Archive")
		})
		assert.True(t, passed)
	}
}

func TestServerShutdownAfterSessions(t *testing.T) {
	passed := t.Run("used", func(t *testing.T) {
		srv := NewTestServer(t, "Archive")
		uid := srv.Append(t, "INBOX", time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC), imap.FlagSeen)

		msgs := srv.Messages(t, "INBOX")
		require.Len(t, msgs, 1)
		assert.Equal(t, uid, msgs[0].UID)
		assert.True(t, msgs[0].HasFlag(imap.FlagSeen))
		assert.Empty(t, srv.Messages(t, "Archive"))
	})
	assert.True(t, passed)
}
