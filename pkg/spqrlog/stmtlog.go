package spqrlog

import "time"

type StmtType string

const (
	StmtTypeSelect = StmtType("SELECT")
	StmtTypeUpdate = StmtType("UPDATE")
	StmtTypeInsert = StmtType("INSERT")
	StmtTypeDDL    = StmtType("DDL")
)

// SLogger reports counter store statements slower than the configured
// threshold. A negative threshold disables it.
var SLogger = NewStmtLogger(-1)

type StmtLogger struct {
	logMinDurationStatement time.Duration
}

func NewStmtLogger(logMinDurationStatement time.Duration) *StmtLogger {
	return &StmtLogger{
		logMinDurationStatement: logMinDurationStatement,
	}
}

func ReloadSLogger(logMinDurationStatement time.Duration) {
	SLogger = NewStmtLogger(logMinDurationStatement)
}

func (s *StmtLogger) shouldLogStatement(t time.Duration) bool {
	return s.logMinDurationStatement >= 0 && t > s.logMinDurationStatement
}

func (s *StmtLogger) ReportStatement(typ StmtType, stmt string, t time.Duration) {
	if s.shouldLogStatement(t) {
		Zero.Info().Str("stmt", stmt).Str("stmt_type", string(typ)).Dur("duration", t).Msg("log statement")
	}
}
