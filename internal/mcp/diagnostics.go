package mcp

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// DiagnosticLogger records server lifecycle, failed tool calls and
// recovered panics. Stdio carries JSON-RPC frames, so the server logs to
// a file instead.
type DiagnosticLogger struct {
	mu     sync.Mutex
	file   *os.File
	logger *log.Logger
	path   string
}

// NewDiagnosticLogger opens a timestamped log in braces-mcp-logs under the
// temp directory, or under $HOME when the temp directory is unwritable.
// With isMCP false it writes to stderr.
func NewDiagnosticLogger(isMCP bool) *DiagnosticLogger {
	if !isMCP {
		return &DiagnosticLogger{logger: log.New(os.Stderr, "[braces-mcp] ", log.LstdFlags)}
	}
	dirs := []string{filepath.Join(os.TempDir(), "braces-mcp-logs")}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, ".braces-mcp-logs"))
	}
	for _, dir := range dirs {
		if dl, err := newFileLogger(dir); err == nil {
			return dl
		}
	}
	// a server without a log still answers requests
	return &DiagnosticLogger{logger: log.New(io.Discard, "", 0)}
}

func newFileLogger(dir string) (*DiagnosticLogger, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	path := filepath.Join(dir, fmt.Sprintf("mcp-%s-%d.log", time.Now().Format("2006-01-02T150405"), os.Getpid()))
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}
	return &DiagnosticLogger{
		file:   file,
		path:   path,
		logger: log.New(file, "[braces-mcp] ", log.LstdFlags|log.Lmicroseconds),
	}, nil
}

func (dl *DiagnosticLogger) Printf(format string, v ...interface{}) {
	if dl == nil || dl.logger == nil {
		return
	}
	dl.mu.Lock()
	defer dl.mu.Unlock()
	dl.logger.Printf(format, v...)
}

// Path is the log file, or "" when logging to stderr or nowhere.
func (dl *DiagnosticLogger) Path() string {
	if dl == nil {
		return ""
	}
	return dl.path
}

// Close is safe to call more than once.
func (dl *DiagnosticLogger) Close() error {
	if dl == nil {
		return nil
	}
	dl.mu.Lock()
	defer dl.mu.Unlock()
	if dl.file == nil {
		return nil
	}
	err := dl.file.Close()
	dl.file = nil
	dl.logger = log.New(io.Discard, "", 0)
	return err
}
