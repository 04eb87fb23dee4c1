package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tempCache(t *testing.T) *Cache {
	c, e := OpenCache(filepath.Join(t.TempDir(), "cache.db"))
	require.Nil(t, e)
	t.Cleanup(func() { _ = c.Close() })

	return c
}

func TestCache_PutGet(t *testing.T) {
	c := tempCache(t)

	_, ok, e := c.Get(2018)
	require.Nil(t, e)
	assert.False(t, ok)

	require.Nil(t, c.Put(2018, []byte(`[["A"],["1"]]`)))

	payload, ok, e := c.Get(2018)
	require.Nil(t, e)
	assert.True(t, ok)
	assert.Equal(t, `[["A"],["1"]]`, string(payload))
}

func TestCache_Replace(t *testing.T) {
	c := tempCache(t)

	require.Nil(t, c.Put(2018, []byte("old")))
	require.Nil(t, c.Put(2018, []byte("new")))

	payload, ok, e := c.Get(2018)
	require.Nil(t, e)
	require.True(t, ok)
	assert.Equal(t, "new", string(payload))
}

func TestCache_YearsAndDrop(t *testing.T) {
	c := tempCache(t)

	require.Nil(t, c.Put(2019, []byte("b")))
	require.Nil(t, c.Put(2017, []byte("a")))

	years, e := c.Years()
	require.Nil(t, e)
	assert.Equal(t, []int{2017, 2019}, years)

	require.Nil(t, c.Drop(2017))

	years, e = c.Years()
	require.Nil(t, e)
	assert.Equal(t, []int{2019}, years)
}
