package sequencer

import (
	"fmt"

	"go.uber.org/atomic"
)

// Segment is a claimed block [min, max] of one sequence. Values are handed
// out by an atomic cursor, each exactly once and in increasing order.
type Segment struct {
	min, max int64

	cursor    atomic.Int64
	exhausted atomic.Bool
}

func NewSegment(min, max int64) *Segment {
	s := &Segment{
		min: min,
		max: max,
	}
	s.cursor.Store(min)
	return s
}

// Take returns the next value of the segment. ok is false once the
// segment is drained; after that Take keeps returning false.
func (s *Segment) Take() (int64, bool) {
	v := s.cursor.Inc() - 1
	if v > s.max || v < s.min {
		s.exhausted.Store(true)
		return 0, false
	}
	return v, true
}

func (s *Segment) Exhausted() bool {
	return s.exhausted.Load()
}

func (s *Segment) Min() int64 {
	return s.min
}

func (s *Segment) Max() int64 {
	return s.max
}

func (s *Segment) String() string {
	return fmt.Sprintf("[%d, %d]", s.min, s.max)
}
