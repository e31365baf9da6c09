package texstore

import (
	"sync"

	"github.com/gogpu/texstore/texfmt"
)

// Pool is a thread-safe pool for reusing images.
//
// Pool groups images by descriptor so that temporaries of the same layout
// share storage. Reference images are never pooled.
//
// Thread safety: All methods are safe for concurrent use.
type Pool struct {
	mu      sync.Mutex
	buckets map[texfmt.Desc][]*Image
	maxSize int // max images per bucket
}

// NewPool creates a pool keeping at most maxPerBucket images per
// descriptor. A maxPerBucket of 0 means unlimited.
func NewPool(maxPerBucket int) *Pool {
	return &Pool{
		buckets: make(map[texfmt.Desc][]*Image),
		maxSize: maxPerBucket,
	}
}

// Get returns an image laid out by desc, reusing a pooled one when
// available. Reused images are cleared when mode is Black and always have
// their flags and relevancy reset. Void is not a valid mode for pooled
// images and is treated as NotInitialized.
func (p *Pool) Get(desc texfmt.Desc, mode InitType) (*Image, error) {
	p.mu.Lock()
	bucket := p.buckets[desc]
	if len(bucket) > 0 {
		img := bucket[len(bucket)-1]
		bucket[len(bucket)-1] = nil
		p.buckets[desc] = bucket[:len(bucket)-1]
		p.mu.Unlock()

		if mode == Black {
			img.InitToBlack()
		}
		img.flags = 0
		img.ClearRelevancy()
		return img, nil
	}
	p.mu.Unlock()

	if mode == Void {
		mode = NotInitialized
	}
	return NewFromDesc(desc, mode)
}

// Put returns an image to the pool. Nil images, references and images of a
// full bucket are discarded. The caller must not use img afterwards.
func (p *Pool) Put(img *Image) {
	if img == nil || img.IsReference() || img.IsVoid() {
		return
	}
	desc := img.Desc()

	p.mu.Lock()
	defer p.mu.Unlock()

	bucket := p.buckets[desc]
	if p.maxSize > 0 && len(bucket) >= p.maxSize {
		return
	}
	p.buckets[desc] = append(bucket, img)
}

// Len returns the number of pooled images.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, b := range p.buckets {
		n += len(b)
	}
	return n
}
