package qdb

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/pg-sharding/spqr-sequencer/pkg/config"
)

// SequenceStatements holds the SQL text for one table structure. Result
// columns are aliased to the SequenceRow db tags so that column names
// stay configurable. Select is on the refill path and reads only value
// and step.
type SequenceStatements struct {
	Select      string
	Update      string
	Insert      string
	List        string
	CreateTable string
}

// NewSequenceStatements builds statements with placeholders for the given
// sqlx bind type (sqlx.DOLLAR for postgres, sqlx.QUESTION for mysql).
// Identifiers must be validated by config.TableStructure beforehand.
func NewSequenceStatements(st config.TableStructure, bindType int) *SequenceStatements {
	bind := func(q string) string {
		return sqlx.Rebind(bindType, q)
	}
	return &SequenceStatements{
		Select: bind(fmt.Sprintf(
			"select %s as seq_value, %s as seq_step from %s where %s = ? limit 1",
			st.Value, st.Step, st.Table, st.Name)),
		Update: bind(fmt.Sprintf(
			"update %s set %s = ?, %s = ? where %s = ? and %s = ?",
			st.Table, st.Value, st.Modified, st.Name, st.Value)),
		Insert: bind(fmt.Sprintf(
			"insert into %s (%s, %s, %s, %s) values (?, ?, ?, ?)",
			st.Table, st.Name, st.Value, st.Step, st.Modified)),
		List: fmt.Sprintf(
			"select %s as seq_name, %s as seq_value, %s as seq_step, %s as seq_modified from %s order by %s",
			st.Name, st.Value, st.Step, st.Modified, st.Table, st.Name),
		CreateTable: fmt.Sprintf(
			"create table if not exists %s (%s varchar(128) not null primary key, %s bigint not null, %s bigint not null, %s timestamp not null)",
			st.Table, st.Name, st.Value, st.Step, st.Modified),
	}
}
