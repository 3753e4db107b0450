package cache

import "strings"

const maxLogs = 100 // Max number of log entries to keep in Redis

// LogWriter is an io.Writer that mirrors log output into Redis so the last
// hundred lines survive the process and can be pulled off-box.
type LogWriter struct {
	db Cache
}

// NewLogWriter creates a new LogWriter.
func NewLogWriter(db Cache) *LogWriter {
	return &LogWriter{db: db}
}

// Write implements the io.Writer interface. Failures are swallowed: the
// console logger already has the line.
func (lw *LogWriter) Write(p []byte) (int, error) {
	line := strings.TrimRight(string(p), "\n")
	_ = lw.db.AppendLogLine(line)
	return len(p), nil
}
