package qdb

import "time"

// SequenceRow is the durable counter of one sequence. Value is the
// high-water mark: the greatest value any process has claimed so far.
type SequenceRow struct {
	Name     string    `json:"name" db:"seq_name"`
	Value    int64     `json:"value" db:"seq_value"`
	Step     int64     `json:"step" db:"seq_step"`
	Modified time.Time `json:"modified" db:"seq_modified"`
}

func NewSequenceRow(name string, value, step int64, modified time.Time) *SequenceRow {
	return &SequenceRow{
		Name:     name,
		Value:    value,
		Step:     step,
		Modified: modified,
	}
}

func (r *SequenceRow) copy() *SequenceRow {
	c := *r
	return &c
}
