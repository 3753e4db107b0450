// acloudcenter/livekit-alien-curator-demo/log/log.go
package log

import (
	"fmt"
	"io"
	"log"
	"os"
	"runtime"
	"strings"
	"sync"
)

// Logger is the logging interface used across the service.
type Logger interface {
	Info(msg string)
	Infof(format string, args ...any)
	Error(context string, err error)
	Fatal(context string, err error)
}

type serviceLogger struct {
	mu     sync.Mutex
	mirror io.Writer
}

// NewLogger returns a logger writing to stderr. If mirror is non-nil every
// line is also copied there (the cache package provides a Redis-backed one).
func NewLogger(mirror io.Writer) Logger {
	log.SetFlags(log.LstdFlags)
	return &serviceLogger{mirror: mirror}
}

func (l *serviceLogger) write(line string) {
	log.Print(line)
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.mirror != nil {
		// Mirror failures must never take down the caller.
		_, _ = l.mirror.Write([]byte(line))
	}
}

func (l *serviceLogger) Info(msg string) {
	l.write(msg)
}

func (l *serviceLogger) Infof(format string, args ...any) {
	l.write(fmt.Sprintf(format, args...))
}

// Error logs an error with the caller's file:line for context.
func (l *serviceLogger) Error(context string, err error) {
	l.write(fmt.Sprintf("[ERROR] in %s: %s: %v", callerInfo(2), context, err))
}

// Fatal logs an error and then exits the program.
func (l *serviceLogger) Fatal(context string, err error) {
	l.write(fmt.Sprintf("[FATAL] in %s: %s: %v", callerInfo(2), context, err))
	os.Exit(1)
}

func callerInfo(skip int) string {
	_, file, line, ok := runtime.Caller(skip)
	if !ok {
		return "unknown"
	}
	parts := strings.Split(file, "/")
	if len(parts) > 2 {
		file = strings.Join(parts[len(parts)-2:], "/")
	}
	return fmt.Sprintf("%s:%d", file, line)
}
