// Package batch splits a slice into fixed-size batches and processes them one
// after another, in input order, stopping at the first failing batch.
package batch

import (
	"context"
	"errors"
	"fmt"
)

const (
	// DefaultBatchSize is the number of images handled per remote call
	DefaultBatchSize = 10

	MinBatchSize = 1
	MaxBatchSize = 1000
)

var (
	ErrInvalidBatchSize = errors.New("batch size must be between 1 and 1000")
	ErrNilCallback      = errors.New("batch callback cannot be nil")
)

// Callback handles one batch. index is 0-based.
type Callback[T any] func(ctx context.Context, batch []T, index int) error

// ProgressFunc is called after every successful batch
type ProgressFunc func(done, total int)

// Processor runs callbacks over consecutive batches of a slice
type Processor[T any] struct {
	size       int
	onProgress ProgressFunc
}

// NewProcessor creates a processor with the given batch size
func NewProcessor[T any](size int) (*Processor[T], error) {
	if size < MinBatchSize || size > MaxBatchSize {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidBatchSize, size)
	}
	return &Processor[T]{size: size}, nil
}

// WithProgress sets the progress callback
func (p *Processor[T]) WithProgress(fn ProgressFunc) *Processor[T] {
	p.onProgress = fn
	return p
}

// Size returns the configured batch size
func (p *Processor[T]) Size() int {
	return p.size
}

// Process calls fn for every batch of items. An empty slice is a no-op.
func (p *Processor[T]) Process(ctx context.Context, items []T, fn Callback[T]) error {
	if fn == nil {
		return ErrNilCallback
	}

	done := 0
	for index, bounds := range p.Bounds(len(items)) {
		if err := ctx.Err(); err != nil {
			return err
		}

		chunk := items[bounds[0]:bounds[1]]
		if err := fn(ctx, chunk, index); err != nil {
			return fmt.Errorf("batch %d failed: %w", index, err)
		}

		done += len(chunk)
		if p.onProgress != nil {
			p.onProgress(done, len(items))
		}
	}

	return nil
}

// Bounds returns the [start, end) index pairs of every batch for n items
func (p *Processor[T]) Bounds(n int) [][2]int {
	count := n / p.size
	if n%p.size > 0 {
		count++
	}

	bounds := make([][2]int, count)
	for i := range count {
		start := i * p.size
		end := min(start+p.size, n)
		bounds[i] = [2]int{start, end}
	}
	return bounds
}
