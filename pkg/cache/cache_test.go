package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type bundle struct {
	BaseName string   `json:"baseName"`
	Colors   []string `json:"colors"`
}

func TestMemory_SetGet(t *testing.T) {
	ctx := context.Background()
	c := NewMemory()

	require.NoError(t, c.Set(ctx, "variants:chair", bundle{BaseName: "Chair", Colors: []string{"red"}}, time.Minute))

	var got bundle
	assert.True(t, c.Get(ctx, "variants:chair", &got))
	assert.Equal(t, "Chair", got.BaseName)

	assert.False(t, c.Get(ctx, "variants:table", &got))
}

func TestMemory_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	c := NewMemory()
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, "k", 1, time.Second))
	var n int
	assert.True(t, c.Get(ctx, "k", &n))

	now = now.Add(2 * time.Second)
	assert.False(t, c.Get(ctx, "k", &n))
}

func TestMemory_DeletePrefix(t *testing.T) {
	ctx := context.Background()
	c := NewMemory()
	require.NoError(t, c.Set(ctx, "variants:chair", 1, 0))
	require.NoError(t, c.Set(ctx, "variants:table", 2, 0))
	require.NoError(t, c.Set(ctx, "other", 3, 0))

	require.NoError(t, c.DeletePrefix(ctx, "variants:"))

	var n int
	assert.False(t, c.Get(ctx, "variants:chair", &n))
	assert.False(t, c.Get(ctx, "variants:table", &n))
	assert.True(t, c.Get(ctx, "other", &n))
}

func TestMemory_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := NewMemory()
	assert.Error(t, c.Set(ctx, "k", 1, 0))
}
