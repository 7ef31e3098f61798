// Package bisect finds the block height at which an observed value of the
// chain state changed.
package bisect

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	klog "github.com/Klingon-tech/icon-cli/internal/log"
)

// Errors.
var (
	// ErrInvalidWindow means the window is empty or starts at height 0,
	// which the node reads as the latest block.
	ErrInvalidWindow = errors.New("invalid height window")
	// ErrNoTransition means both ends of the window observe the same value.
	ErrNoTransition = errors.New("no transition in window")
)

// CheckFunc observes a value at a block height.
type CheckFunc func(ctx context.Context, height uint64) (string, error)

// Window is an inclusive range of block heights.
type Window struct {
	Low  uint64
	High uint64
}

// Validate checks that the window can be searched.
func (w Window) Validate() error {
	if w.Low >= w.High {
		return fmt.Errorf("%w: start (%d) must be less than end (%d)", ErrInvalidWindow, w.Low, w.High)
	}
	if w.Low == 0 {
		return fmt.Errorf("%w: start must be at least 1", ErrInvalidWindow)
	}
	return nil
}

// Observation is a value seen at a height.
type Observation struct {
	Height uint64 `json:"height"`
	Value  string `json:"value"`
}

// Result is the outcome of a search.
type Result struct {
	// Height is the first height observing Value.
	Height uint64 `json:"height"`
	Value  string `json:"value"`
	// Previous is the value observed just before Height.
	Previous string `json:"previous"`
	// Intermediates are values seen inside the window that matched neither
	// end.
	Intermediates []Observation `json:"intermediates,omitempty"`
	// Probes counts distinct heights evaluated, cache hits included.
	Probes    int `json:"probes"`
	CacheHits int `json:"cacheHits,omitempty"`
}

type searcher struct {
	check CheckFunc
	cache *Cache
	log   zerolog.Logger

	seen   map[uint64]string
	result Result
}

// Option configures a search.
type Option func(*searcher)

// WithCache serves and stores observations through c.
func WithCache(c *Cache) Option {
	return func(s *searcher) { s.cache = c }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *searcher) { s.log = l }
}

// Search binary-searches w for the height where check first returns the
// value it returns at w.High. Values other than the two ends met on the way
// are recorded and become the new "old" value.
func Search(ctx context.Context, w Window, check CheckFunc, opts ...Option) (*Result, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	s := &searcher{check: check, log: klog.Bisect, seen: make(map[uint64]string)}
	for _, opt := range opts {
		opt(s)
	}

	old, err := s.probe(ctx, w.Low)
	if err != nil {
		return nil, err
	}
	target, err := s.probe(ctx, w.High)
	if err != nil {
		return nil, err
	}
	if old == target {
		return &s.result, fmt.Errorf("%w: both are same (%s)", ErrNoTransition, old)
	}
	s.log.Info().Uint64("low", w.Low).Uint64("high", w.High).Uint64("blocks", w.High-w.Low).
		Str("old", old).Str("new", target).Msg("Bisect started")

	low, high := w.Low, w.High
	for low < high {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		mid := low + (high-low)/2
		v, err := s.probe(ctx, mid)
		if err != nil {
			return nil, err
		}
		s.log.Debug().Uint64("mid", mid).Str("value", v).Msg("Probed")
		if v == target {
			high = mid - 1
			continue
		}
		low = mid + 1
		if v != old {
			s.log.Info().Uint64("height", mid).Str("value", v).Msg("Found other value")
			s.result.Intermediates = append(s.result.Intermediates, Observation{Height: mid, Value: v})
			old = v
		}
	}

	// high = mid-1 can step one below the transition, so the value at low
	// decides between low and low+1.
	v, err := s.probe(ctx, low)
	if err != nil {
		return nil, err
	}
	s.result.Value = target
	if v == target || low >= w.High {
		s.result.Height = low
		s.result.Previous = old
	} else {
		s.result.Height = low + 1
		s.result.Previous = v
	}
	s.log.Info().Uint64("height", s.result.Height).Str("value", target).Int("probes", s.result.Probes).Msg("Bisect finished")
	return &s.result, nil
}

func (s *searcher) probe(ctx context.Context, height uint64) (string, error) {
	if v, ok := s.seen[height]; ok {
		return v, nil
	}
	s.result.Probes++
	if s.cache != nil {
		if v, ok := s.cache.Get(height); ok {
			s.result.CacheHits++
			s.seen[height] = v
			return v, nil
		}
	}
	v, err := s.check(ctx, height)
	if err != nil {
		return "", fmt.Errorf("check at height %d: %w", height, err)
	}
	s.seen[height] = v
	if s.cache != nil {
		s.cache.Put(height, v)
	}
	return v, nil
}
