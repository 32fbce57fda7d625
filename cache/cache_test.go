package cache

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/domino14/schafkopf/config"
)

func TestLoadMemoizes(t *testing.T) {
	c := newCache()
	calls := 0
	load := func(_ *config.Config, key string) (string, error) {
		calls++
		return "loaded " + key, nil
	}
	for range 3 {
		v, err := get(c, nil, "a", load)
		require.NoError(t, err)
		assert.Equal(t, "loaded a", v)
	}
	assert.Equal(t, 1, calls)

	_, err := get(c, nil, "b", load)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestLoadError(t *testing.T) {
	c := newCache()
	boom := errors.New("boom")
	_, err := get(c, nil, "x", func(*config.Config, string) (int, error) { return 0, boom })
	assert.ErrorIs(t, err, boom)

	v, err := get(c, nil, "x", func(*config.Config, string) (int, error) { return 7, nil })
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}

func TestLoadWrongType(t *testing.T) {
	c := newCache()
	_, err := get(c, nil, "k", func(*config.Config, string) (int, error) { return 1, nil })
	require.NoError(t, err)
	_, err = get(c, nil, "k", func(*config.Config, string) (string, error) { return "", nil })
	assert.Error(t, err)
}

func TestForget(t *testing.T) {
	calls := 0
	load := func(*config.Config, string) (int, error) {
		calls++
		return calls, nil
	}
	v, err := Load(nil, "forget-me", load)
	require.NoError(t, err)
	assert.Equal(t, 1, v)
	Forget("forget-me")
	v, err = Load(nil, "forget-me", load)
	require.NoError(t, err)
	assert.Equal(t, 2, v)
}
