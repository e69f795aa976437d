package qdb

import (
	"context"
	"encoding/json"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/pg-sharding/spqr-sequencer/pkg/spqrlog"
)

// MemQDB keeps counter rows in process memory, optionally mirrored to a
// JSON backup file. It is meant for development and tests: rows are only
// shared between allocators of the same process.
type MemQDB struct {
	mu sync.RWMutex

	Sequences map[string]*SequenceRow `json:"sequences"`

	backupPath string
}

var _ XQDB = &MemQDB{}

func NewMemQDB(backupPath string) (*MemQDB, error) {
	return &MemQDB{
		Sequences: map[string]*SequenceRow{},

		backupPath: backupPath,
	}, nil
}

func RestoreQDB(backupPath string) (*MemQDB, error) {
	qdb, err := NewMemQDB(backupPath)
	if err != nil {
		return nil, err
	}
	if backupPath == "" {
		return qdb, nil
	}
	if _, err := os.Stat(backupPath); err != nil {
		spqrlog.Zero.Info().Err(err).Msg("memqdb backup file not exists. Creating new one.")
		f, err := os.Create(backupPath)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return qdb, nil
	}
	data, err := os.ReadFile(backupPath)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return qdb, nil
	}
	if err := json.Unmarshal(data, qdb); err != nil {
		return nil, err
	}
	if qdb.Sequences == nil {
		qdb.Sequences = map[string]*SequenceRow{}
	}
	return qdb, nil
}

// DumpState writes the current rows to the backup file. Callers hold mu.
func (q *MemQDB) DumpState() error {
	if q.backupPath == "" {
		return nil
	}
	tmpPath := q.backupPath + ".tmp"

	state, err := json.MarshalIndent(q, "", "	")
	if err != nil {
		return err
	}

	if err := os.WriteFile(tmpPath, state, 0644); err != nil {
		return err
	}
	return os.Rename(tmpPath, q.backupPath)
}

func (q *MemQDB) GetSequenceRow(_ context.Context, name string) (*SequenceRow, error) {
	spqrlog.Zero.Debug().Str("sequence", name).Msg("memqdb: get sequence row")
	q.mu.RLock()
	defer q.mu.RUnlock()

	row, ok := q.Sequences[name]
	if !ok {
		return nil, ErrSequenceNotFound
	}
	return row.copy(), nil
}

func (q *MemQDB) CompareAndSwapSequence(_ context.Context, name string, oldValue, newValue int64, modified time.Time) (bool, error) {
	spqrlog.Zero.Debug().
		Str("sequence", name).
		Int64("old", oldValue).
		Int64("new", newValue).
		Msg("memqdb: compare and swap sequence")
	q.mu.Lock()
	defer q.mu.Unlock()

	row, ok := q.Sequences[name]
	if !ok || row.Value != oldValue {
		return false, nil
	}

	updated := row.copy()
	updated.Value = newValue
	updated.Modified = modified
	if err := ExecuteCommands(q.DumpState, NewUpdateCommand(q.Sequences, name, updated)); err != nil {
		return false, err
	}
	return true, nil
}

func (q *MemQDB) CreateSequence(_ context.Context, row *SequenceRow) error {
	spqrlog.Zero.Debug().Interface("sequence", row).Msg("memqdb: create sequence")
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, ok := q.Sequences[row.Name]; ok {
		return ErrSequenceExists
	}
	return ExecuteCommands(q.DumpState, NewUpdateCommand(q.Sequences, row.Name, row.copy()))
}

func (q *MemQDB) ListSequences(_ context.Context) ([]*SequenceRow, error) {
	spqrlog.Zero.Debug().Msg("memqdb: list sequences")
	q.mu.RLock()
	defer q.mu.RUnlock()

	ret := make([]*SequenceRow, 0, len(q.Sequences))
	for _, row := range q.Sequences {
		ret = append(ret, row.copy())
	}

	sort.Slice(ret, func(i, j int) bool {
		return ret[i].Name < ret[j].Name
	})
	return ret, nil
}

func (q *MemQDB) InitSchema(_ context.Context) error {
	return nil
}

func (q *MemQDB) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.DumpState()
}
