package bigcache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetSetDel(t *testing.T) {
	p, err := New(Config{})
	require.NoError(t, err)
	defer p.Close(context.Background())
	ctx := context.Background()

	_, ok, err := p.Get(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = p.Set(ctx, "a", []byte("payload"), 0, 0)
	require.NoError(t, err)
	require.True(t, ok)

	got, ok, err := p.Get(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("payload"), got)

	require.NoError(t, p.Del(ctx, "a"))
	require.NoError(t, p.Del(ctx, "a"))
	_, ok, _ = p.Get(ctx, "a")
	assert.False(t, ok)
}
