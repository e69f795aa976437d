package sequences

import (
	"time"

	"github.com/pg-sharding/spqr-sequencer/qdb"
)

type Sequence struct {
	Name     string    `json:"name"`
	Value    int64     `json:"value"`
	Step     int64     `json:"step"`
	Modified time.Time `json:"modified"`
}

func SequenceFromDB(row *qdb.SequenceRow) *Sequence {
	return &Sequence{
		Name:     row.Name,
		Value:    row.Value,
		Step:     row.Step,
		Modified: row.Modified,
	}
}
