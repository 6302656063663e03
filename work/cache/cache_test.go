package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSetGet(t *testing.T) {
	c := New[int](10, time.Minute)

	_, ok := c.Get("a")
	assert.False(t, ok)

	c.Set("a", 1)
	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)
	assert.Equal(t, time.Minute, c.Duration())

	c.Clear()
	_, ok = c.Get("a")
	assert.False(t, ok)
}

func TestDisabled(t *testing.T) {
	c := New[string](10, 0)
	assert.Nil(t, c)

	c.Set("a", "x")
	_, ok := c.Get("a")
	assert.False(t, ok)
	assert.Zero(t, c.Duration())
	c.Clear()
}

func TestExpiry(t *testing.T) {
	c := New[string](10, 50*time.Millisecond)
	c.Set("a", "x")

	assert.Eventually(t, func() bool {
		_, ok := c.Get("a")
		return !ok
	}, 2*time.Second, 10*time.Millisecond)
}
