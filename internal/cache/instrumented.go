package cache

import (
	"context"

	"github.com/isdelr/userdir-be/internal/services"
)

// Recorder receives cache outcome counts.
type Recorder interface {
	RecordCacheHit()
	RecordCacheMiss()
	RecordCacheError(op string)
}

type instrumented struct {
	next services.Cache
	rec  Recorder
}

// Instrumented wraps next so that every lookup and failure is reported to rec.
func Instrumented(next services.Cache, rec Recorder) services.Cache {
	return &instrumented{next: next, rec: rec}
}

func (c *instrumented) Get(ctx context.Context, key string) (string, bool, error) {
	val, ok, err := c.next.Get(ctx, key)
	switch {
	case err != nil:
		c.rec.RecordCacheError("get")
	case ok:
		c.rec.RecordCacheHit()
	default:
		c.rec.RecordCacheMiss()
	}
	return val, ok, err
}

func (c *instrumented) Set(ctx context.Context, key, value string) error {
	err := c.next.Set(ctx, key, value)
	if err != nil {
		c.rec.RecordCacheError("set")
	}
	return err
}

func (c *instrumented) Del(ctx context.Context, key string) error {
	err := c.next.Del(ctx, key)
	if err != nil {
		c.rec.RecordCacheError("del")
	}
	return err
}

func (c *instrumented) Ping(ctx context.Context) error {
	return c.next.Ping(ctx)
}
