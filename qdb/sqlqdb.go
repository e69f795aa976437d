package qdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/pg-sharding/spqr-sequencer/pkg/config"
	"github.com/pg-sharding/spqr-sequencer/pkg/spqrlog"
)

const mysqlDuplicateEntry = 1062

// SqlQDB keeps counter rows in any database/sql backend supported by the
// registered drivers: "postgres" (lib/pq) and "mysql".
type SqlQDB struct {
	db      *sqlx.DB
	stmts   *SequenceStatements
	timeout time.Duration
}

var _ XQDB = &SqlQDB{}

func NewSqlQDB(driver, dsn string, maxConns int, structure config.TableStructure, timeout time.Duration) (*SqlQDB, error) {
	if driver == "mysql" {
		var err error
		if dsn, err = mysqlDSN(dsn); err != nil {
			return nil, err
		}
	}
	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	if maxConns > 0 {
		db.SetMaxOpenConns(maxConns)
		db.SetMaxIdleConns(maxConns)
	}

	spqrlog.Zero.Debug().
		Str("driver", driver).
		Str("table", structure.Table).
		Msg("sqlqdb: NewSqlQDB")

	return newSqlQDB(db, structure, timeout), nil
}

// mysqlDSN turns on parseTime so that timestamp columns scan into
// time.Time instead of raw bytes.
func mysqlDSN(dsn string) (string, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", err
	}
	cfg.ParseTime = true
	return cfg.FormatDSN(), nil
}

func newSqlQDB(db *sqlx.DB, structure config.TableStructure, timeout time.Duration) *SqlQDB {
	return &SqlQDB{
		db:      db,
		stmts:   NewSequenceStatements(structure, sqlx.BindType(db.DriverName())),
		timeout: timeout,
	}
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pgUniqueViolation
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlDuplicateEntry
	}
	return false
}

func (q *SqlQDB) GetSequenceRow(ctx context.Context, name string) (*SequenceRow, error) {
	spqrlog.Zero.Debug().Str("sequence", name).Msg("sqlqdb: get sequence row")

	ctx, cancel := withTimeout(ctx, q.timeout)
	defer cancel()

	row := &SequenceRow{}
	t := time.Now()
	err := q.db.GetContext(ctx, row, q.stmts.Select, name)
	spqrlog.SLogger.ReportStatement(spqrlog.StmtTypeSelect, q.stmts.Select, time.Since(t))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSequenceNotFound
	}
	if err != nil {
		return nil, err
	}
	row.Name = name
	return row, nil
}

func (q *SqlQDB) CompareAndSwapSequence(ctx context.Context, name string, oldValue, newValue int64, modified time.Time) (bool, error) {
	spqrlog.Zero.Debug().
		Str("sequence", name).
		Int64("old", oldValue).
		Int64("new", newValue).
		Msg("sqlqdb: compare and swap sequence")

	ctx, cancel := withTimeout(ctx, q.timeout)
	defer cancel()

	t := time.Now()
	res, err := q.db.ExecContext(ctx, q.stmts.Update, newValue, modified, name, oldValue)
	spqrlog.SLogger.ReportStatement(spqrlog.StmtTypeUpdate, q.stmts.Update, time.Since(t))
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affectedOne(name, affected)
}

func (q *SqlQDB) CreateSequence(ctx context.Context, row *SequenceRow) error {
	spqrlog.Zero.Debug().Interface("sequence", row).Msg("sqlqdb: create sequence")

	ctx, cancel := withTimeout(ctx, q.timeout)
	defer cancel()

	t := time.Now()
	_, err := q.db.ExecContext(ctx, q.stmts.Insert, row.Name, row.Value, row.Step, row.Modified)
	spqrlog.SLogger.ReportStatement(spqrlog.StmtTypeInsert, q.stmts.Insert, time.Since(t))
	if isUniqueViolation(err) {
		return ErrSequenceExists
	}
	return err
}

func (q *SqlQDB) ListSequences(ctx context.Context) ([]*SequenceRow, error) {
	spqrlog.Zero.Debug().Msg("sqlqdb: list sequences")

	ctx, cancel := withTimeout(ctx, q.timeout)
	defer cancel()

	var ret []*SequenceRow
	if err := q.db.SelectContext(ctx, &ret, q.stmts.List); err != nil {
		return nil, err
	}
	return ret, nil
}

func (q *SqlQDB) InitSchema(ctx context.Context) error {
	spqrlog.Zero.Info().Str("stmt", q.stmts.CreateTable).Msg("sqlqdb: init schema")

	ctx, cancel := withTimeout(ctx, q.timeout)
	defer cancel()

	t := time.Now()
	_, err := q.db.ExecContext(ctx, q.stmts.CreateTable)
	spqrlog.SLogger.ReportStatement(spqrlog.StmtTypeDDL, q.stmts.CreateTable, time.Since(t))
	return err
}

func (q *SqlQDB) Close() error {
	return q.db.Close()
}

// affectedOne turns the affected-row count of the conditional update into
// the swap result. The name column is unique, so more than one row means
// the table is broken.
func affectedOne(name string, affected int64) (bool, error) {
	switch affected {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, fmt.Errorf("conditional update of sequence %q affected %d rows", name, affected)
	}
}
