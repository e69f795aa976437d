package qdb

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/tracelog"
	"github.com/jmoiron/sqlx"

	"github.com/pg-sharding/spqr-sequencer/pkg/config"
	"github.com/pg-sharding/spqr-sequencer/pkg/spqrlog"
)

const pgUniqueViolation = "23505"

type pgxPool interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Close()
}

// PgQDB keeps counter rows in a PostgreSQL table through a pgx pool.
type PgQDB struct {
	pool    pgxPool
	stmts   *SequenceStatements
	timeout time.Duration
}

var _ XQDB = &PgQDB{}

func NewPgQDB(ctx context.Context, connString string, maxConns int32, structure config.TableStructure, timeout time.Duration, logLevel string) (*PgQDB, error) {
	pcfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, err
	}
	if maxConns > 0 {
		pcfg.MaxConns = maxConns
	}
	pcfg.ConnConfig.Tracer = &tracelog.TraceLog{
		Logger:   &spqrlog.ZeroTraceLogger{},
		LogLevel: spqrlog.TraceLevel(logLevel),
	}

	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, err
	}

	spqrlog.Zero.Debug().
		Str("host", pcfg.ConnConfig.Host).
		Str("table", structure.Table).
		Msg("pgqdb: NewPgQDB")

	return newPgQDB(pool, structure, timeout), nil
}

func newPgQDB(pool pgxPool, structure config.TableStructure, timeout time.Duration) *PgQDB {
	return &PgQDB{
		pool:    pool,
		stmts:   NewSequenceStatements(structure, sqlx.DOLLAR),
		timeout: timeout,
	}
}

func (q *PgQDB) GetSequenceRow(ctx context.Context, name string) (*SequenceRow, error) {
	spqrlog.Zero.Debug().Str("sequence", name).Msg("pgqdb: get sequence row")

	ctx, cancel := withTimeout(ctx, q.timeout)
	defer cancel()

	row := &SequenceRow{Name: name}
	t := time.Now()
	err := q.pool.QueryRow(ctx, q.stmts.Select, name).Scan(&row.Value, &row.Step)
	spqrlog.SLogger.ReportStatement(spqrlog.StmtTypeSelect, q.stmts.Select, time.Since(t))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrSequenceNotFound
	}
	if err != nil {
		return nil, err
	}
	return row, nil
}

func (q *PgQDB) CompareAndSwapSequence(ctx context.Context, name string, oldValue, newValue int64, modified time.Time) (bool, error) {
	spqrlog.Zero.Debug().
		Str("sequence", name).
		Int64("old", oldValue).
		Int64("new", newValue).
		Msg("pgqdb: compare and swap sequence")

	ctx, cancel := withTimeout(ctx, q.timeout)
	defer cancel()

	t := time.Now()
	tag, err := q.pool.Exec(ctx, q.stmts.Update, newValue, modified, name, oldValue)
	spqrlog.SLogger.ReportStatement(spqrlog.StmtTypeUpdate, q.stmts.Update, time.Since(t))
	if err != nil {
		return false, err
	}
	return affectedOne(name, tag.RowsAffected())
}

func (q *PgQDB) CreateSequence(ctx context.Context, row *SequenceRow) error {
	spqrlog.Zero.Debug().Interface("sequence", row).Msg("pgqdb: create sequence")

	ctx, cancel := withTimeout(ctx, q.timeout)
	defer cancel()

	t := time.Now()
	_, err := q.pool.Exec(ctx, q.stmts.Insert, row.Name, row.Value, row.Step, row.Modified)
	spqrlog.SLogger.ReportStatement(spqrlog.StmtTypeInsert, q.stmts.Insert, time.Since(t))

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return ErrSequenceExists
	}
	return err
}

func (q *PgQDB) ListSequences(ctx context.Context) ([]*SequenceRow, error) {
	spqrlog.Zero.Debug().Msg("pgqdb: list sequences")

	ctx, cancel := withTimeout(ctx, q.timeout)
	defer cancel()

	rows, err := q.pool.Query(ctx, q.stmts.List)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ret []*SequenceRow
	for rows.Next() {
		row := &SequenceRow{}
		if err := rows.Scan(&row.Name, &row.Value, &row.Step, &row.Modified); err != nil {
			return nil, err
		}
		ret = append(ret, row)
	}
	return ret, rows.Err()
}

func (q *PgQDB) InitSchema(ctx context.Context) error {
	spqrlog.Zero.Info().Str("stmt", q.stmts.CreateTable).Msg("pgqdb: init schema")

	ctx, cancel := withTimeout(ctx, q.timeout)
	defer cancel()

	t := time.Now()
	_, err := q.pool.Exec(ctx, q.stmts.CreateTable)
	spqrlog.SLogger.ReportStatement(spqrlog.StmtTypeDDL, q.stmts.CreateTable, time.Since(t))
	return err
}

func (q *PgQDB) Close() error {
	q.pool.Close()
	return nil
}
