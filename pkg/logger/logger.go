// Package logger provides the file-backed run log shared by the CLI,
// the runner, and the script engine's console bindings.
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"
)

var (
	globalLogger *log.Logger
	logFile      *os.File
	verbose      bool
	mu           sync.Mutex
)

// Init initializes the global logger with the specified log file path.
// When verboseMode is set, entries are echoed to stderr as well.
func Init(logPath string, verboseMode bool) error {
	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		logFile.Close()
	}

	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644) //#nosec G304 -- caller-provided log path
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}

	logFile = f
	verbose = verboseMode
	var w io.Writer = f
	if verbose {
		w = io.MultiWriter(f, os.Stderr)
	}
	globalLogger = log.New(w, "", log.Ltime|log.Lmicroseconds)
	return nil
}

// Close closes the log file.
func Close() {
	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		logFile.Close()
		logFile = nil
		globalLogger = nil
	}
}

// Info logs an info message.
func Info(format string, v ...interface{}) {
	write("[INFO] ", format, v...)
}

// Debug logs a debug message. Debug entries only land in the file when
// verbose mode is on.
func Debug(format string, v ...interface{}) {
	mu.Lock()
	defer mu.Unlock()
	if globalLogger != nil && verbose {
		globalLogger.Printf("[DEBUG] "+format, v...)
	}
}

// Warn logs a warning message.
func Warn(format string, v ...interface{}) {
	write("[WARN] ", format, v...)
}

// Error logs an error message.
func Error(format string, v ...interface{}) {
	write("[ERROR] ", format, v...)
}

// Script logs console output emitted by a scenario script.
func Script(scenario, level, msg string) {
	write("[SCRIPT] ", "%s %s: %s", scenario, level, msg)
}

func write(prefix, format string, v ...interface{}) {
	mu.Lock()
	defer mu.Unlock()
	if globalLogger != nil {
		globalLogger.Printf(prefix+format, v...)
	}
}

// GetWriter returns the underlying writer for components that stream
// their own output into the run log.
func GetWriter() io.Writer {
	mu.Lock()
	defer mu.Unlock()
	if logFile != nil {
		return logFile
	}
	return io.Discard
}
