package sequencer

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/pg-sharding/spqr-sequencer/pkg/models/sequences"
	"github.com/pg-sharding/spqr-sequencer/pkg/models/spqrerror"
	"github.com/pg-sharding/spqr-sequencer/pkg/spqrlog"
	"github.com/pg-sharding/spqr-sequencer/qdb"
)

// Manager serves sequence operations of one process: value allocation
// goes through the registry, provisioning goes straight to storage.
type Manager struct {
	db       qdb.XQDB
	registry *Registry
	maxBatch int
}

var _ sequences.SequenceMgr = &Manager{}

// NewManager builds a manager over db. maxBatch bounds NextValList; a
// non-positive value means no bound.
func NewManager(db qdb.XQDB, store SegmentStore, stripes int, maxBatch int) *Manager {
	return &Manager{
		db:       db,
		registry: NewRegistry(store, stripes),
		maxBatch: maxBatch,
	}
}

func checkName(seqName string) (string, error) {
	name := strings.TrimSpace(seqName)
	if name == "" {
		return "", spqrerror.New(spqrerror.SPQR_INVALID_REQUEST, "sequence name is empty")
	}
	return name, nil
}

// NextVal implements sequences.SequenceMgr.
func (m *Manager) NextVal(ctx context.Context, seqName string) (int64, error) {
	name, err := checkName(seqName)
	if err != nil {
		return 0, err
	}
	return m.registry.Resolve(name).Next(ctx)
}

// NextValList implements sequences.SequenceMgr.
func (m *Manager) NextValList(ctx context.Context, seqName string, count int) ([]int64, error) {
	name, err := checkName(seqName)
	if err != nil {
		return nil, err
	}
	if m.maxBatch > 0 && count > m.maxBatch {
		return nil, spqrerror.Newf(spqrerror.SPQR_INVALID_REQUEST, "count %d exceeds max batch %d", count, m.maxBatch)
	}
	return m.registry.Resolve(name).NextBatch(ctx, count)
}

// CurrVal returns the persisted high-water mark of the sequence.
func (m *Manager) CurrVal(ctx context.Context, seqName string) (int64, error) {
	name, err := checkName(seqName)
	if err != nil {
		return 0, err
	}
	row, err := m.db.GetSequenceRow(ctx, name)
	if errors.Is(err, qdb.ErrSequenceNotFound) {
		return 0, spqrerror.Newf(spqrerror.SPQR_SEQUENCE_NOT_FOUND, "sequence %q not found", name)
	}
	if err != nil {
		return 0, spqrerror.Wrap(spqrerror.SPQR_STORAGE_ERROR, err, "failed to read sequence row")
	}
	return row.Value, nil
}

// CreateSequence provisions a row whose first issued value is start+1.
func (m *Manager) CreateSequence(ctx context.Context, seqName string, start, step int64) error {
	name, err := checkName(seqName)
	if err != nil {
		return err
	}
	if start < 0 {
		return spqrerror.Newf(spqrerror.SPQR_INVALID_REQUEST, "start must not be negative, got %d", start)
	}
	if step <= 0 {
		return spqrerror.Newf(spqrerror.SPQR_INVALID_REQUEST, "step must be positive, got %d", step)
	}
	if step > math.MaxInt64-start {
		return spqrerror.Newf(spqrerror.SPQR_SEQUENCE_OVERFLOW, "start %d with step %d overflows", start, step)
	}

	spqrlog.Zero.Info().
		Str("sequence", name).
		Int64("start", start).
		Int64("step", step).
		Msg("creating sequence")

	err = m.db.CreateSequence(ctx, qdb.NewSequenceRow(name, start, step, time.Now()))
	if errors.Is(err, qdb.ErrSequenceExists) {
		return spqrerror.Newf(spqrerror.SPQR_SEQUENCE_EXISTS, "sequence %q already exists", name)
	}
	if err != nil {
		return spqrerror.Wrap(spqrerror.SPQR_STORAGE_ERROR, err, "failed to create sequence")
	}
	return nil
}

// ListSequences implements sequences.SequenceMgr.
func (m *Manager) ListSequences(ctx context.Context) ([]*sequences.Sequence, error) {
	rows, err := m.db.ListSequences(ctx)
	if err != nil {
		return nil, spqrerror.Wrap(spqrerror.SPQR_STORAGE_ERROR, err, "failed to list sequences")
	}
	ret := make([]*sequences.Sequence, 0, len(rows))
	for _, row := range rows {
		ret = append(ret, sequences.SequenceFromDB(row))
	}
	return ret, nil
}
