package sequencer

import "context"

// SegmentStore claims fresh segments from the persisted counter of a sequence.
//
//go:generate mockgen -source=sequencer/store.go -destination=pkg/mock/sequencer/store_mock.go -package=mock_sequencer
type SegmentStore interface {
	NextRange(ctx context.Context, name string) (*Segment, error)
}
