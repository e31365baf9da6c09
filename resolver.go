package texstore

import (
	"context"
	"fmt"
	"strconv"

	"golang.org/x/sync/singleflight"

	"github.com/gogpu/texstore/cache"
	"github.com/gogpu/texstore/texfmt"
)

// DefaultCacheBudget is the byte budget of a Resolver cache.
const DefaultCacheBudget = 64 << 20

// Loader produces the pixel data of reference images. desc is the layout
// recorded in the reference.
type Loader interface {
	Load(ctx context.Context, id uint32, desc texfmt.Desc) (*Image, error)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(ctx context.Context, id uint32, desc texfmt.Desc) (*Image, error)

// Load calls f.
func (f LoaderFunc) Load(ctx context.Context, id uint32, desc texfmt.Desc) (*Image, error) {
	return f(ctx, id, desc)
}

// ResolverOption configures a Resolver during creation.
type ResolverOption func(*resolverOptions)

type resolverOptions struct {
	budget int64
}

// WithCacheBudget sets the number of pixel bytes the resolver keeps cached.
// A budget of 0 disables caching.
func WithCacheBudget(bytes int64) ResolverOption {
	return func(o *resolverOptions) {
		o.budget = bytes
	}
}

// Resolver turns reference images into owned images.
//
// Loaded images are cached by reference ID under a byte budget. Callers
// always receive their own copy. Concurrent resolves of the same ID share a
// single load; a caller whose context ends stops waiting without cancelling
// the load for the others.
//
// Thread safety: All methods are safe for concurrent use.
type Resolver struct {
	loader Loader
	cache  *cache.ShardedCache[uint64, *Image]
	group  singleflight.Group
}

// NewResolver creates a resolver backed by loader.
func NewResolver(loader Loader, opts ...ResolverOption) *Resolver {
	o := resolverOptions{budget: DefaultCacheBudget}
	for _, opt := range opts {
		opt(&o)
	}

	r := &Resolver{loader: loader}
	if o.budget > 0 {
		r.cache = cache.NewSharded[uint64, *Image](o.budget, cache.Uint64Hasher, func(img *Image) int64 {
			return int64(img.DataSize())
		})
	}
	return r
}

// Resolve returns img itself when it owns its pixels. For a reference it
// returns a new owned image with the reference's format and size and at
// most its level count. Force-load references skip the cached copy.
func (r *Resolver) Resolve(ctx context.Context, img *Image) (*Image, error) {
	if !img.IsReference() {
		return img, nil
	}
	id := img.ReferenceID()

	if !img.IsForceLoad() && r.cache != nil {
		if cached, ok := r.cache.Get(uint64(id)); ok {
			Logger().Debug("resolve hit", "id", id)
			return cached.Clone(), nil
		}
	}

	if img.IsForceLoad() {
		loaded, err := r.load(ctx, img)
		if err != nil {
			return nil, err
		}
		r.store(id, loaded)
		return loaded.Clone(), nil
	}

	ch := r.group.DoChan(strconv.FormatUint(uint64(id), 10), func() (any, error) {
		loaded, err := r.load(context.WithoutCancel(ctx), img)
		if err != nil {
			return nil, err
		}
		r.store(id, loaded)
		return loaded, nil
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Image).Clone(), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (r *Resolver) load(ctx context.Context, ref *Image) (*Image, error) {
	id := ref.ReferenceID()
	Logger().Debug("resolve load", "id", id, "force", ref.IsForceLoad())

	img, err := r.loader.Load(ctx, id, ref.Desc())
	if err != nil {
		return nil, fmt.Errorf("texstore: load reference %d: %w", id, err)
	}
	if img == nil || img.IsReference() || img.IsVoid() {
		return nil, fmt.Errorf("%w: loader returned no pixels for reference %d", ErrReference, id)
	}
	if img.Format() != ref.Format() || img.Size() != ref.Size() {
		return nil, fmt.Errorf("%w: reference %d is %s, loaded %s", ErrDescMismatch, id, ref, img)
	}
	if img.LODCount() > ref.LODCount() {
		Logger().Warn("resolve trimmed lods", "id", id, "loaded", img.LODCount(), "want", ref.LODCount())
		img.ReduceLODsTo(ref.LODCount())
	}
	return img, nil
}

func (r *Resolver) store(id uint32, img *Image) {
	if r.cache != nil {
		r.cache.Set(uint64(id), img)
	}
}

// Invalidate drops the cached copy of reference id.
func (r *Resolver) Invalidate(id uint32) {
	if r.cache != nil {
		r.cache.Delete(uint64(id))
	}
}

// Stats returns the cache statistics. A resolver without cache returns the
// zero value.
func (r *Resolver) Stats() cache.Stats {
	if r.cache == nil {
		return cache.Stats{}
	}
	return r.cache.Stats()
}
