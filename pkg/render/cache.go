package render

import (
	"context"
	"fmt"
	"image"
	"sync"

	"github.com/dixieflatline76/halook/util/log"
	"golang.org/x/sync/singleflight"
)

// Loader produces the decoded image for key.
type Loader func(ctx context.Context, key string) (image.Image, error)

// BytesLoader adapts a function returning encoded bytes into a Loader that
// decodes them.
func BytesLoader(read func(ctx context.Context, key string) ([]byte, error)) Loader {
	return func(ctx context.Context, key string) (image.Image, error) {
		data, err := read(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", key, err)
		}
		img, _, err := Decode(ctx, data)
		return img, err
	}
}

// SourceCache keeps decoded source images by key. Misses are read through
// the loader; concurrent misses for one key share a single load. Entries
// stay until Invalidate.
type SourceCache struct {
	load    Loader
	mu      sync.RWMutex
	entries map[string]image.Image
	group   singleflight.Group
}

// NewSourceCache creates an empty cache backed by load.
func NewSourceCache(load Loader) *SourceCache {
	return &SourceCache{load: load, entries: make(map[string]image.Image)}
}

// Get returns the image for key, loading it on a miss. Failed loads are not
// cached.
func (c *SourceCache) Get(ctx context.Context, key string) (image.Image, error) {
	c.mu.RLock()
	img, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		return img, nil
	}

	ch := c.group.DoChan(key, func() (interface{}, error) {
		// The shared load must not die with whichever caller started it.
		img, err := c.load(context.WithoutCancel(ctx), key)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.entries[key] = img
		c.mu.Unlock()
		log.Debugf("SourceCache: loaded %s", key)
		return img, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(image.Image), nil
	}
}

// Put stores img under key, replacing any existing entry.
func (c *SourceCache) Put(key string, img image.Image) {
	c.mu.Lock()
	c.entries[key] = img
	c.mu.Unlock()
}

// Invalidate drops key so the next Get reloads it.
func (c *SourceCache) Invalidate(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	c.group.Forget(key)
}

// Len returns the number of cached images.
func (c *SourceCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
