package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSetGet(t *testing.T) {
	c := New()
	c.Set("k", "v", time.Minute)

	got, ok := c.Get("k")
	assert.True(t, ok)
	assert.Equal(t, "v", got)

	_, ok = c.Get("missing")
	assert.False(t, ok)
}

func TestLastWriterWins(t *testing.T) {
	c := New()
	c.Set("k", "first", time.Minute)
	c.Set("k", "second", time.Minute)

	got, _ := c.Get("k")
	assert.Equal(t, "second", got)
	assert.Equal(t, 1, c.Len())
}

func TestExpiry(t *testing.T) {
	c := New()
	now := time.Now()
	c.now = func() time.Time { return now }

	c.Set("k", "v", time.Second)

	_, ok := c.Get("k")
	assert.True(t, ok)

	now = now.Add(2 * time.Second)
	_, ok = c.Get("k")
	assert.False(t, ok, "entry should expire")
	assert.Equal(t, 0, c.Len(), "expired entry should be dropped on read")
}

func TestSweepOnWrite(t *testing.T) {
	c := New()
	now := time.Now()
	c.now = func() time.Time { return now }

	c.Set("a", "1", time.Second)
	c.Set("b", "2", time.Hour)

	now = now.Add(2 * time.Second)
	c.Set("c", "3", time.Hour)

	assert.Equal(t, 2, c.Len(), "write should sweep the expired entry")
	_, ok := c.Get("b")
	assert.True(t, ok)
}

func TestDelete(t *testing.T) {
	c := New()
	c.Set("k", "v", time.Minute)
	c.Delete("k")

	_, ok := c.Get("k")
	assert.False(t, ok)

	c.Delete("never-existed") // no-op
}

func TestNonPositiveTTLIsNoop(t *testing.T) {
	c := New()
	c.Set("k", "v", 0)
	c.Set("k2", "v", -time.Second)
	assert.Equal(t, 0, c.Len())
}
