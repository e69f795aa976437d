package spqrlog

import (
	"bytes"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestStmtLoggerShouldLogStatement(t *testing.T) {
	tests := []struct {
		name         string
		minDuration  time.Duration
		stmtDuration time.Duration
		want         bool
	}{
		{
			name:         "logging is disabled",
			minDuration:  -1,
			stmtDuration: time.Hour,
			want:         false,
		},
		{
			name:         "zero threshold logs every statement",
			minDuration:  0,
			stmtDuration: time.Microsecond,
			want:         true,
		},
		{
			name:         "zero threshold skips instant statement",
			minDuration:  0,
			stmtDuration: 0,
			want:         false,
		},
		{
			name:         "duration equals threshold",
			minDuration:  time.Second,
			stmtDuration: time.Second,
			want:         false,
		},
		{
			name:         "duration exceeds threshold",
			minDuration:  time.Second,
			stmtDuration: time.Second + time.Millisecond,
			want:         true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			logger := NewStmtLogger(tc.minDuration)
			assert.Equal(t, tc.want, logger.shouldLogStatement(tc.stmtDuration))
		})
	}
}

func TestReloadSLoggerReportsSlowStatement(t *testing.T) {
	assert := assert.New(t)

	prevZero, prevS := Zero, SLogger
	t.Cleanup(func() {
		Zero, SLogger = prevZero, prevS
	})

	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	Zero = &logger

	ReloadSLogger(0)
	SLogger.ReportStatement(StmtTypeSelect, "select value from sequence", time.Millisecond)
	assert.Contains(buf.String(), `"stmt":"select value from sequence"`)
	assert.Contains(buf.String(), `"stmt_type":"SELECT"`)

	buf.Reset()
	ReloadSLogger(-1)
	SLogger.ReportStatement(StmtTypeSelect, "select value from sequence", time.Hour)
	assert.Empty(buf.String())
}
