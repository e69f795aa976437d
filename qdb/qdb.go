package qdb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pg-sharding/spqr-sequencer/pkg/config"
)

var (
	ErrSequenceNotFound = errors.New("sequence not found")
	ErrSequenceExists   = errors.New("sequence already exists")
)

// XQDB is the persisted counter store. GetSequenceRow and
// CompareAndSwapSequence are the only two operations used on the hot
// refill path; the rest is provisioning.
//
//go:generate mockgen -source=qdb/qdb.go -destination=pkg/mock/qdb/xqdb_mock.go -package=mock_qdb
type XQDB interface {
	// GetSequenceRow is a plain point lookup by name, no lock is taken.
	// Returns ErrSequenceNotFound if there is no row.
	GetSequenceRow(ctx context.Context, name string) (*SequenceRow, error)
	// CompareAndSwapSequence sets value to newValue iff the row still holds
	// oldValue. The boolean reports whether exactly one row was updated.
	CompareAndSwapSequence(ctx context.Context, name string, oldValue, newValue int64, modified time.Time) (bool, error)

	CreateSequence(ctx context.Context, row *SequenceRow) error
	ListSequences(ctx context.Context) ([]*SequenceRow, error)
	InitSchema(ctx context.Context) error

	Close() error
}

func NewXQDB(ctx context.Context, cfg *config.Sequencer) (XQDB, error) {
	switch cfg.StorageType {
	case config.StoragePostgres:
		return NewPgQDB(ctx, cfg.StorageConnString, cfg.StorageMaxConns, cfg.Structure, cfg.StorageTimeoutDuration(), cfg.LogLevel)
	case config.StorageSQL:
		return NewSqlQDB(cfg.StorageDriver, cfg.StorageConnString, int(cfg.StorageMaxConns), cfg.Structure, cfg.StorageTimeoutDuration())
	case config.StorageEtcd:
		return NewEtcdQDB(cfg.QdbAddr, cfg.StorageTimeoutDuration())
	case config.StorageMem:
		return RestoreQDB(cfg.MemBackupPath)
	default:
		return nil, fmt.Errorf("qdb implementation %s is invalid", cfg.StorageType)
	}
}
