package apiclient

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCache_InvalidatePrefix(t *testing.T) {
	c := NewCache(0, time.Minute)
	c.Set(Key{"rfps"}, 1)
	c.Set(Key{"rfps", "r1"}, 2)
	c.Set(Key{"rfps", "r1", "vendors"}, 3)
	c.Set(Key{"rfps", "r10"}, 4)
	c.Set(Key{"rfpsx"}, 5)
	c.Set(Key{"vendors"}, 6)

	c.Invalidate(Key{"rfps", "r1"})
	_, hit := c.Get(Key{"rfps", "r1"})
	require.False(t, hit)
	_, hit = c.Get(Key{"rfps", "r1", "vendors"})
	require.False(t, hit)
	_, hit = c.Get(Key{"rfps", "r10"})
	require.True(t, hit)
	_, hit = c.Get(Key{"rfps"})
	require.True(t, hit)

	c.Invalidate(Key{"rfps"})
	_, hit = c.Get(Key{"rfps"})
	require.False(t, hit)
	_, hit = c.Get(Key{"rfps", "r10"})
	require.False(t, hit)
	_, hit = c.Get(Key{"rfpsx"})
	require.True(t, hit)
	require.Equal(t, 2, c.Len())
}

func TestCache_MultiplePrefixes(t *testing.T) {
	c := NewCache(8, time.Minute)
	c.Set(Key{"unprocessedEmails", ""}, 1)
	c.Set(Key{"unprocessedEmails", "r1"}, 2)
	c.Set(Key{"proposals", "r1", "stats"}, 3)
	c.Set(Key{"vendors"}, 4)

	c.Invalidate(Key{"unprocessedEmails"}, Key{"proposals"})
	require.Equal(t, 1, c.Len())
	v, hit := c.Get(Key{"vendors"})
	require.True(t, hit)
	require.Equal(t, 4, v)
}

func TestCache_Expires(t *testing.T) {
	c := NewCache(8, 20*time.Millisecond)
	c.Set(Key{"rfps"}, 1)
	require.Eventually(t, func() bool {
		_, hit := c.Get(Key{"rfps"})
		return !hit
	}, time.Second, 10*time.Millisecond)
}

func TestCache_Purge(t *testing.T) {
	c := NewCache(8, time.Minute)
	c.Set(Key{"a"}, 1)
	c.Set(Key{"b"}, 2)
	c.Purge()
	require.Zero(t, c.Len())
}
