// Package preset loads looks from preset files: the engine's JSON format,
// Lightroom XMP and loose "key = value" text. A Catalog caches the parsed
// presets of a Source.
package preset

import (
	"context"
	"sync"

	"github.com/dixieflatline76/halook/pkg/look"
	"github.com/dixieflatline76/halook/util/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// Scope is the distribution tier of a preset.
type Scope string

// Preset tiers.
const (
	ScopeFree  Scope = "free"
	ScopePro   Scope = "pro"
	ScopeElite Scope = "elite"
)

// Ref identifies a preset before its settings are loaded.
type Ref struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
	Scope    Scope  `json:"scope,omitempty"`
	// File locates the settings payload within the Source. Empty when the
	// preset carries its look inline or has none.
	File   string     `json:"file,omitempty"`
	Inline *look.Look `json:"look,omitempty"`
}

// Preset is a Ref with its look resolved.
type Preset struct {
	Ref
	Look look.Look `json:"look"`
}

// Source lists presets and reads their payloads.
type Source interface {
	List(ctx context.Context) ([]Ref, error)
	Payload(ctx context.Context, ref Ref) ([]byte, error)
}

// hydrateLimit bounds concurrent payload reads.
const hydrateLimit = 5

// Catalog caches the hydrated presets of a Source. Concurrent loads share
// one request and a failed load is never cached.
type Catalog struct {
	src   Source
	mu    sync.RWMutex
	cache []Preset
	group singleflight.Group
}

// NewCatalog creates an empty catalog over src.
func NewCatalog(src Source) *Catalog {
	return &Catalog{src: src}
}

// Presets returns the cached presets, loading them on first use or when
// force is set. A force request that arrives while a load is running joins
// that load.
func (c *Catalog) Presets(ctx context.Context, force bool) ([]Preset, error) {
	if !force {
		c.mu.RLock()
		cached := c.cache
		c.mu.RUnlock()
		if cached != nil {
			return cached, nil
		}
	}

	ch := c.group.DoChan("presets", func() (interface{}, error) {
		if !force {
			c.mu.RLock()
			cached := c.cache
			c.mu.RUnlock()
			if cached != nil {
				return cached, nil
			}
		}
		presets, err := c.load(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.cache = presets
		c.mu.Unlock()
		return presets, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]Preset), nil
	}
}

// Lookup finds a preset by ID, loading the catalog if needed.
func (c *Catalog) Lookup(ctx context.Context, id string) (Preset, bool, error) {
	presets, err := c.Presets(ctx, false)
	if err != nil {
		return Preset{}, false, err
	}
	for _, p := range presets {
		if p.ID == id {
			return p, true, nil
		}
	}
	return Preset{}, false, nil
}

func (c *Catalog) load(ctx context.Context) ([]Preset, error) {
	refs, err := c.src.List(ctx)
	if err != nil {
		return nil, err
	}

	presets := make([]Preset, len(refs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(hydrateLimit)
	for i, ref := range refs {
		i, ref := i, ref
		g.Go(func() error {
			presets[i] = Preset{Ref: ref, Look: c.hydrate(ctx, ref)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	log.Printf("Preset catalog loaded %d presets", len(presets))
	return presets, nil
}

// hydrate resolves the look of one preset. The payload file wins over an
// inline look; an unreadable payload falls back to the seed look.
func (c *Catalog) hydrate(ctx context.Context, ref Ref) look.Look {
	if ref.File != "" {
		payload, err := c.src.Payload(ctx, ref)
		if err != nil {
			log.Printf("Preset %s: reading %s: %v", ref.ID, ref.File, err)
			return FromSeed(ref.ID)
		}
		return ParsePayload(payload, ref.ID)
	}
	if ref.Inline != nil {
		return ref.Inline.Normalize()
	}
	return FromSeed(ref.ID)
}
