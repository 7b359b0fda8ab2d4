package measure

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/alnah/go-md2cv/internal/layout"
)

// Cache defaults.
const (
	DefaultCacheTTL     = 10 * time.Minute
	DefaultCacheCleanup = 5 * time.Minute
)

// Cached wraps a Measurer and remembers extents per surface and block
// markup. Only blocks never seen on the same surface reach the inner measurer.
type Cached struct {
	inner Measurer
	store *cache.Cache
	log   *zap.Logger
}

// NewCached wraps inner. A non-positive ttl uses DefaultCacheTTL.
func NewCached(inner Measurer, ttl time.Duration, log *zap.Logger) *Cached {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Cached{
		inner: inner,
		store: cache.New(ttl, DefaultCacheCleanup),
		log:   log.Named("measure-cache"),
	}
}

// Measure implements Measurer.
func (c *Cached) Measure(ctx context.Context, s Surface, blocks []layout.Block) ([]Extent, error) {
	surface := surfaceKey(s)
	extents := make([]Extent, len(blocks))
	keys := make([]string, len(blocks))

	var (
		missing []layout.Block
		slots   []int
	)
	for i, b := range blocks {
		keys[i] = blockKey(surface, b)
		if v, ok := c.store.Get(keys[i]); ok {
			extents[i] = v.(Extent)
			continue
		}
		missing = append(missing, b)
		slots = append(slots, i)
	}

	c.log.Debug("measure",
		zap.Int("blocks", len(blocks)),
		zap.Int("misses", len(missing)))
	if len(missing) == 0 {
		return extents, nil
	}

	measured, err := c.inner.Measure(ctx, s, missing)
	if err != nil {
		return nil, err
	}
	if len(measured) != len(missing) {
		return nil, fmt.Errorf("%w: %d blocks, %d extents", ErrExtentCount, len(missing), len(measured))
	}
	for j, e := range measured {
		i := slots[j]
		extents[i] = e
		c.store.SetDefault(keys[i], e)
	}
	return extents, nil
}

// Len returns the number of cached extents, expired ones included.
func (c *Cached) Len() int {
	return c.store.ItemCount()
}

// Flush drops every cached extent.
func (c *Cached) Flush() {
	c.store.Flush()
}

func surfaceKey(s Surface) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s\x00%+v\x00%+v", s.Sheet.CSS(), s.Config, s.Geometry)
	return hex.EncodeToString(h.Sum(nil))
}

func blockKey(surface string, b layout.Block) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s\x00%d\x00%s", surface, b.Kind, b.Markup)
	return hex.EncodeToString(h.Sum(nil))
}

// Compile-time interface check.
var _ Measurer = (*Cached)(nil)
