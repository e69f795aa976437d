package spqrlog

import (
	"os"
	"sync"
)

var (
	logFileMu sync.Mutex
	logFile   *os.File
)

// ReloadLogger reopens the log file (used after log rotation) and
// rebuilds Zero with the given level and format.
func ReloadLogger(filepath string, logLevel string, pretty bool) error {
	logFileMu.Lock()
	defer logFileMu.Unlock()

	file, writer, err := newWriter(filepath)
	if err != nil {
		return err
	}

	oldFile := logFile
	logFile = file
	Zero = newLogger(writer, logLevel, pretty)

	if oldFile != nil {
		return oldFile.Close()
	}
	return nil
}
