package cache

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheSetGet(t *testing.T) {
	c := New[string]()

	_, ok := c.Get("sysfs:sda")
	assert.False(t, ok)

	c.SetSlow("sysfs:sda", "ata")
	v, ok := c.Get("sysfs:sda")
	require.True(t, ok)
	assert.Equal(t, "ata", v)
}

func TestCacheExpiry(t *testing.T) {
	c := New[int]()
	c.Set("k", 1, -time.Second)

	_, ok := c.Get("k")
	assert.False(t, ok)
}

func TestCacheGetOrLoadReloadsExpired(t *testing.T) {
	c := New[string]()
	c.Set("driver:sda", "scsi", -time.Second)

	v, err := c.GetOrLoad("driver:sda", TTLSlow, func() (string, error) { return "ata", nil })
	require.NoError(t, err)
	assert.Equal(t, "ata", v)
}

func TestCacheGetOrLoad(t *testing.T) {
	c := New[string]()
	calls := 0
	load := func() (string, error) {
		calls++
		return "gpt", nil
	}

	for i := 0; i < 3; i++ {
		v, err := c.GetOrLoad("table:/dev/sda", TTLStatic, load)
		require.NoError(t, err)
		assert.Equal(t, "gpt", v)
	}
	assert.Equal(t, 1, calls)
}

func TestCacheGetOrLoadDoesNotCacheErrors(t *testing.T) {
	c := New[string]()
	boom := errors.New("read failed")

	_, err := c.GetOrLoad("k", TTLStatic, func() (string, error) { return "", boom })
	assert.ErrorIs(t, err, boom)

	_, ok := c.Get("k")
	assert.False(t, ok)
}
