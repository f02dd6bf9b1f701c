package cache

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/isdelr/userdir-be/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ services.Cache = (*RedisCache)(nil)

func newTestRedis(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := NewRedis(mr.Addr())
	t.Cleanup(func() { c.Close() })
	return c, mr
}

func TestRedisCache_SetGetDel(t *testing.T) {
	c, mr := newTestRedis(t)
	ctx := context.Background()

	_, ok, err := c.Get(ctx, "user:ACC1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "user:ACC1", `{"id":"1"}`))
	val, ok, err := c.Get(ctx, "user:ACC1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"id":"1"}`, val)
	assert.Zero(t, mr.TTL("user:ACC1"), "entries must not expire")

	require.NoError(t, c.Del(ctx, "user:ACC1"))
	assert.False(t, mr.Exists("user:ACC1"))
	require.NoError(t, c.Del(ctx, "user:ACC1"))

	require.NoError(t, c.Ping(ctx))
}

func TestRedisCache_ServerDown(t *testing.T) {
	c, mr := newTestRedis(t)
	mr.Close()

	_, _, err := c.Get(context.Background(), "user:ACC1")
	assert.Error(t, err)
	assert.Error(t, c.Set(context.Background(), "user:ACC1", "x"))
	assert.Error(t, c.Ping(context.Background()))
}

type countingRecorder struct {
	hits, misses int
	errors       []string
}

func (r *countingRecorder) RecordCacheHit()            { r.hits++ }
func (r *countingRecorder) RecordCacheMiss()           { r.misses++ }
func (r *countingRecorder) RecordCacheError(op string) { r.errors = append(r.errors, op) }

func TestInstrumented(t *testing.T) {
	c, mr := newTestRedis(t)
	rec := &countingRecorder{}
	ic := Instrumented(c, rec)
	ctx := context.Background()

	_, _, _ = ic.Get(ctx, "user:ACC1")
	require.NoError(t, ic.Set(ctx, "user:ACC1", "v"))
	_, _, _ = ic.Get(ctx, "user:ACC1")

	assert.Equal(t, 1, rec.hits)
	assert.Equal(t, 1, rec.misses)
	assert.Empty(t, rec.errors)

	mr.Close()
	_, _, _ = ic.Get(ctx, "user:ACC1")
	_ = ic.Set(ctx, "user:ACC1", "v")
	_ = ic.Del(ctx, "user:ACC1")
	assert.Equal(t, []string{"get", "set", "del"}, rec.errors)
}
