package texstore

import "github.com/gogpu/texstore/internal/parallel"

// Scheduler runs independent work items. ForEach calls fn for every index
// in [0, n) and returns when all calls have returned. Calls may run
// concurrently.
type Scheduler interface {
	ForEach(n int, fn func(i int))
}

// OperatorOption configures an Operator during creation.
//
// Example:
//
//	// Inline, single goroutine
//	op := texstore.NewOperator()
//
//	// Batches spread over 4 workers owned by the operator
//	op := texstore.NewOperator(texstore.WithWorkers(4))
//	defer op.Close()
type OperatorOption func(*operatorOptions)

// operatorOptions holds optional configuration for Operator creation.
type operatorOptions struct {
	scheduler Scheduler
	workers   int
	converter Converter
	resizer   Resizer
	pool      *Pool
	quality   int
}

// defaultOperatorOptions returns the default operator options.
func defaultOperatorOptions() operatorOptions {
	return operatorOptions{
		converter: CodecConverter{},
		resizer:   LinearResizer{},
	}
}

// WithScheduler runs fill batches and mip levels on s. The caller keeps
// ownership of s.
func WithScheduler(s Scheduler) OperatorOption {
	return func(o *operatorOptions) {
		o.scheduler = s
		o.workers = 0
	}
}

// WithWorkers makes the operator start its own worker pool of n goroutines.
// Zero or negative n uses GOMAXPROCS. Call Operator.Close to stop the pool.
func WithWorkers(n int) OperatorOption {
	return func(o *operatorOptions) {
		o.scheduler = nil
		o.workers = n
		if n <= 0 {
			o.workers = -1 // GOMAXPROCS
		}
	}
}

// WithConverter replaces the pixel format conversion service.
func WithConverter(c Converter) OperatorOption {
	return func(o *operatorOptions) {
		if c != nil {
			o.converter = c
		}
	}
}

// WithResizer replaces the resize service.
func WithResizer(r Resizer) OperatorOption {
	return func(o *operatorOptions) {
		if r != nil {
			o.resizer = r
		}
	}
}

// WithImagePool sets the pool used for temporary images.
func WithImagePool(p *Pool) OperatorOption {
	return func(o *operatorOptions) {
		o.pool = p
	}
}

// WithQuality sets the quality passed to the converter and resizer.
func WithQuality(q int) OperatorOption {
	return func(o *operatorOptions) {
		o.quality = q
	}
}

func (o *operatorOptions) newScheduler() (Scheduler, *parallel.WorkerPool) {
	if o.workers == 0 {
		return o.scheduler, nil
	}
	wp := parallel.NewWorkerPool(max(o.workers, 0))
	return wp, wp
}
