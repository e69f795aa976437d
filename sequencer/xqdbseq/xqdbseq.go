package xqdbseq

import (
	"context"
	"errors"
	"math"
	"time"

	retry "github.com/sethvargo/go-retry"

	"github.com/pg-sharding/spqr-sequencer/pkg/models/spqrerror"
	"github.com/pg-sharding/spqr-sequencer/pkg/spqrlog"
	"github.com/pg-sharding/spqr-sequencer/pkg/statistics"
	"github.com/pg-sharding/spqr-sequencer/qdb"
	"github.com/pg-sharding/spqr-sequencer/sequencer"
)

// OverflowMargin is the headroom kept below math.MaxInt64. A row whose value
// is above math.MaxInt64-OverflowMargin is not advanced any more.
const OverflowMargin = 100_000_000

var errContention = errors.New("sequence row was advanced concurrently")

// RangeStore claims segments by advancing the persisted row with a
// compare-and-swap, retrying a bounded number of times on contention.
type RangeStore struct {
	db          qdb.XQDB
	maxAttempts int
	backoff     time.Duration
}

var _ sequencer.SegmentStore = &RangeStore{}

func NewRangeStore(db qdb.XQDB, maxAttempts int, backoff time.Duration) *RangeStore {
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	if backoff <= 0 {
		backoff = time.Millisecond
	}
	return &RangeStore{
		db:          db,
		maxAttempts: maxAttempts,
		backoff:     backoff,
	}
}

// NextRange implements sequencer.SegmentStore.
func (s *RangeStore) NextRange(ctx context.Context, name string) (*sequencer.Segment, error) {
	var seg *sequencer.Segment
	attempts := 0
	t := time.Now()

	policy := retry.WithMaxRetries(uint64(s.maxAttempts-1), retry.NewConstant(s.backoff))
	err := retry.Do(ctx, policy, func(ctx context.Context) error {
		attempts++
		var err error
		seg, err = s.tryAdvance(ctx, name)
		if errors.Is(err, errContention) {
			statistics.RecordConflict(name)
			spqrlog.Zero.Debug().
				Str("sequence", name).
				Int("attempt", attempts).
				Msg("xqdbseq: compare and swap lost, retrying")
			return retry.RetryableError(err)
		}
		return err
	})

	switch {
	case err == nil:
	case errors.Is(err, errContention):
		statistics.RecordRetriesExhausted(name)
		spqrlog.Zero.Error().
			Str("sequence", name).
			Int("attempts", attempts).
			Msg("xqdbseq: retries exhausted")
		return nil, spqrerror.Newf(spqrerror.SPQR_SEQUENCE_RETRIES, "failed to advance sequence %q after %d attempts", name, attempts)
	default:
		var se *spqrerror.SpqrError
		if errors.As(err, &se) {
			return nil, err
		}
		return nil, spqrerror.Wrap(spqrerror.SPQR_STORAGE_ERROR, err, "failed to advance sequence")
	}

	d := time.Since(t)
	statistics.RecordRefill(name, d)
	spqrlog.Zero.Info().
		Str("sequence", name).
		Stringer("segment", seg).
		Int("attempts", attempts).
		Dur("took", d).
		Msg("xqdbseq: claimed segment")
	return seg, nil
}

func (s *RangeStore) tryAdvance(ctx context.Context, name string) (*sequencer.Segment, error) {
	row, err := s.db.GetSequenceRow(ctx, name)
	if errors.Is(err, qdb.ErrSequenceNotFound) {
		return nil, spqrerror.Newf(spqrerror.SPQR_SEQUENCE_NOT_FOUND, "sequence %q not found", name)
	}
	if err != nil {
		return nil, spqrerror.Wrap(spqrerror.SPQR_STORAGE_ERROR, err, "failed to read sequence row")
	}

	if row.Value < 0 {
		return nil, spqrerror.Newf(spqrerror.SPQR_SEQUENCE_CORRUPT, "sequence %q has negative value %d", name, row.Value)
	}
	if row.Step <= 0 {
		return nil, spqrerror.Newf(spqrerror.SPQR_SEQUENCE_CORRUPT, "sequence %q has non-positive step %d", name, row.Step)
	}
	if row.Value > math.MaxInt64-OverflowMargin || row.Step > math.MaxInt64-row.Value {
		return nil, spqrerror.Newf(spqrerror.SPQR_SEQUENCE_OVERFLOW, "sequence %q value %d overflows", name, row.Value)
	}

	newValue := row.Value + row.Step
	ok, err := s.db.CompareAndSwapSequence(ctx, name, row.Value, newValue, time.Now())
	if err != nil {
		return nil, spqrerror.Wrap(spqrerror.SPQR_STORAGE_ERROR, err, "failed to update sequence row")
	}
	if !ok {
		return nil, errContention
	}
	return sequencer.NewSegment(row.Value+1, newValue), nil
}
