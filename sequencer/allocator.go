package sequencer

import (
	"context"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/atomic"

	"github.com/pg-sharding/spqr-sequencer/pkg/models/spqrerror"
	"github.com/pg-sharding/spqr-sequencer/pkg/spqrlog"
	"github.com/pg-sharding/spqr-sequencer/pkg/statistics"
)

const batchPrealloc = 1024

// Allocator serves values of one sequence from its current segment and
// refills it from the store when drained.
type Allocator struct {
	name  string
	store SegmentStore

	mu      sync.Mutex
	segment atomic.Pointer[Segment]

	// set under mu before the first segment is published
	issued prometheus.Counter
}

func NewAllocator(name string, store SegmentStore) *Allocator {
	return &Allocator{
		name:  name,
		store: store,
	}
}

func (a *Allocator) Name() string {
	return a.name
}

// Next returns the next value of the sequence.
func (a *Allocator) Next(ctx context.Context) (int64, error) {
	if seg := a.segment.Load(); seg != nil && !seg.Exhausted() {
		if v, ok := seg.Take(); ok {
			return a.issue(v)
		}
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	for {
		seg := a.segment.Load()
		if seg == nil || seg.Exhausted() {
			next, err := a.store.NextRange(ctx, a.name)
			if err != nil {
				return 0, err
			}
			spqrlog.Zero.Debug().
				Str("sequence", a.name).
				Stringer("segment", next).
				Msg("allocator: install segment")
			if a.issued == nil {
				a.issued = statistics.IssuedCounter(a.name)
			}
			a.segment.Store(next)
			seg = next
		}
		if v, ok := seg.Take(); ok {
			return a.issue(v)
		}
	}
}

// NextBatch calls Next count times. The values are distinct and ordered by
// call, but need not be contiguous when other callers share the sequence.
func (a *Allocator) NextBatch(ctx context.Context, count int) ([]int64, error) {
	if count <= 0 {
		return nil, spqrerror.Newf(spqrerror.SPQR_INVALID_REQUEST, "count must be positive, got %d", count)
	}
	ret := make([]int64, 0, min(count, batchPrealloc))
	for i := 0; i < count; i++ {
		v, err := a.Next(ctx)
		if err != nil {
			return nil, err
		}
		ret = append(ret, v)
	}
	return ret, nil
}

func (a *Allocator) issue(v int64) (int64, error) {
	if v < 0 {
		return 0, spqrerror.Newf(spqrerror.SPQR_SEQUENCE_OVERFLOW, "sequence %q produced negative value %d", a.name, v)
	}
	a.issued.Inc()
	return v, nil
}
