// Package debug writes component-tagged diagnostics for brace scans,
// lexing, batch checks, the watcher and the MCP server. Output is off
// unless enabled by build flag, the DEBUG environment variable or the
// CLI's --debug/--debug-log flags, and never reaches stdio in MCP mode.
package debug

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// EnableDebug can be set at build time:
// go build -ldflags "-X github.com/standardbeagle/braces/internal/debug.EnableDebug=true"
var EnableDebug = "false"

// MCPMode is set while the MCP server owns stdin/stdout.
var MCPMode = false

var (
	debugMutex  sync.Mutex
	debugOutput io.Writer // nil means no output
	debugFile   *os.File  // set when output goes to a log file
)

func SetMCPMode(enabled bool) {
	MCPMode = enabled
}

// SetDebugOutput sets the writer for debug output. nil disables output.
func SetDebugOutput(w io.Writer) {
	debugMutex.Lock()
	defer debugMutex.Unlock()
	debugOutput = w
}

// InitDebugLogFile sends debug output to path, appending. An empty path
// creates a timestamped file under braces-debug-logs in the temp directory.
// It returns the path in use; call CloseDebugLog when done.
func InitDebugLogFile(path string) (string, error) {
	debugMutex.Lock()
	defer debugMutex.Unlock()

	if path == "" {
		logDir := filepath.Join(os.TempDir(), "braces-debug-logs")
		if err := os.MkdirAll(logDir, 0755); err != nil {
			return "", fmt.Errorf("failed to create debug log directory: %w", err)
		}
		path = filepath.Join(logDir, fmt.Sprintf("debug-%s.log", time.Now().Format("2006-01-02T150405")))
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return "", fmt.Errorf("failed to open debug log file: %w", err)
	}
	if debugFile != nil {
		debugFile.Close()
	}
	debugFile = file
	debugOutput = file
	return path, nil
}

// CloseDebugLog closes the debug log file, if one is open, and disables output.
func CloseDebugLog() error {
	debugMutex.Lock()
	defer debugMutex.Unlock()

	if debugFile == nil {
		return nil
	}
	err := debugFile.Close()
	debugFile = nil
	debugOutput = nil
	return err
}

// IsDebugEnabled reports whether debug output is on. It is always off in MCP mode.
func IsDebugEnabled() bool {
	if MCPMode {
		return false
	}
	if EnableDebug == "true" {
		return true
	}
	return os.Getenv("DEBUG") == "1" || os.Getenv("DEBUG") == "true"
}

func getDebugWriter() io.Writer {
	debugMutex.Lock()
	defer debugMutex.Unlock()
	return debugOutput
}

// Log writes one line tagged with component.
func Log(component, format string, args ...interface{}) {
	if !IsDebugEnabled() {
		return
	}
	w := getDebugWriter()
	if w == nil {
		return
	}
	if !strings.HasSuffix(format, "\n") {
		format += "\n"
	}
	fmt.Fprintf(w, "[DEBUG:%s] "+format, append([]interface{}{component}, args...)...)
}

// LogMatch logs brace scans and context queries
func LogMatch(format string, args ...interface{}) {
	Log("MATCH", format, args...)
}

// LogLex logs tokenizer activity, including recovered tree-sitter panics
func LogLex(format string, args ...interface{}) {
	Log("LEX", format, args...)
}

func LogCheck(format string, args ...interface{}) {
	Log("CHECK", format, args...)
}

func LogWatch(format string, args ...interface{}) {
	Log("WATCH", format, args...)
}

func LogMCP(format string, args ...interface{}) {
	Log("MCP", format, args...)
}

// Fatal records msg in the debug log (outside MCP mode) and returns it as
// an error for the caller to propagate.
func Fatal(format string, args ...interface{}) error {
	msg := fmt.Sprintf(format, args...)
	if !MCPMode {
		if w := getDebugWriter(); w != nil {
			fmt.Fprintf(w, "[FATAL] %s", msg)
		}
	}
	return fmt.Errorf("fatal error: %s", msg)
}
