// Package logging provides categorized file-based logging for mathcourt.
// Logs are written to <data-dir>/logs/ with separate files per category.
// Nothing is written unless debug mode is enabled, so the interactive UI
// stays quiet on stdout/stderr.
package logging

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Category represents a log category/system
type Category string

const (
	CategoryBoot      Category = "boot"      // Startup and shutdown
	CategoryUI        Category = "ui"        // Screen transitions, key handling
	CategoryAuth      Category = "auth"      // Sign-up, login, session resume
	CategoryCase      Category = "case"      // Case generation and repair
	CategoryDialogue  Category = "dialogue"  // Prosecutor/co-counsel/judge turns
	CategoryVerdict   Category = "verdict"   // Ruling classification
	CategoryTrial     Category = "trial"     // Trial session state machine, countdown
	CategoryStore     Category = "store"     // SQLite key/value operations
	CategoryLLM       Category = "llm"       // Gemini API calls
	CategoryEmbedding Category = "embedding" // Learnings embedding engine
	CategoryConfig    Category = "config"    // Config load and reload
)

// Log levels
const (
	LevelDebug = 0
	LevelInfo  = 1
	LevelWarn  = 2
	LevelError = 3
)

// Logger wraps a standard logger with category and file output
type Logger struct {
	category Category
	logger   *log.Logger
	file     *os.File
}

var (
	loggers   = make(map[Category]*Logger)
	loggersMu sync.RWMutex
	logsDir   string
	stateMu   sync.RWMutex
	debugMode bool
	logLevel  int
)

// Initialize sets up the logging directory. Should be called once at startup
// with the data directory path. A no-op when debug is false.
func Initialize(dataDir string, debug bool, level string) error {
	if dataDir == "" {
		return fmt.Errorf("data directory required")
	}

	stateMu.Lock()
	debugMode = debug
	logLevel = parseLevel(level)
	stateMu.Unlock()

	if !debug {
		return nil
	}

	logsDir = filepath.Join(dataDir, "logs")
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return fmt.Errorf("failed to create logs directory: %w", err)
	}

	boot := Get(CategoryBoot)
	boot.Info("=== mathcourt logging initialized ===")
	boot.Info("Logs directory: %s", logsDir)
	boot.Info("Log level: %s", level)
	return nil
}

func parseLevel(level string) int {
	switch level {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// SetDebugMode toggles logging at runtime (used by the config watcher).
func SetDebugMode(debug bool) {
	stateMu.Lock()
	debugMode = debug
	stateMu.Unlock()
}

// IsDebugMode returns whether debug logging is enabled
func IsDebugMode() bool {
	stateMu.RLock()
	defer stateMu.RUnlock()
	return debugMode
}

// Get returns (or creates) a logger for the given category.
// Returns a no-op logger when debug mode is disabled.
func Get(category Category) *Logger {
	if !IsDebugMode() || logsDir == "" {
		return &Logger{category: category}
	}

	loggersMu.RLock()
	if l, ok := loggers[category]; ok {
		loggersMu.RUnlock()
		return l
	}
	loggersMu.RUnlock()

	loggersMu.Lock()
	defer loggersMu.Unlock()

	// Double-check after acquiring write lock
	if l, ok := loggers[category]; ok {
		return l
	}

	// Date prefix keeps rotation trivial
	date := time.Now().Format("2006-01-02")
	logPath := filepath.Join(logsDir, fmt.Sprintf("%s_%s.log", date, category))

	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[logging] Warning: could not open log file %s: %v\n", logPath, err)
		return &Logger{category: category}
	}

	l := &Logger{
		category: category,
		file:     file,
		logger:   log.New(file, "", log.Ldate|log.Ltime|log.Lmicroseconds),
	}
	loggers[category] = l
	return l
}

// Debug logs a debug message (only if level <= debug)
func (l *Logger) Debug(format string, args ...interface{}) {
	if l.logger == nil || logLevel > LevelDebug {
		return
	}
	l.logger.Printf("[DEBUG] %s", fmt.Sprintf(format, args...))
}

// Info logs an informational message (only if level <= info)
func (l *Logger) Info(format string, args ...interface{}) {
	if l.logger == nil || logLevel > LevelInfo {
		return
	}
	l.logger.Printf("[INFO] %s", fmt.Sprintf(format, args...))
}

// Warn logs a warning message (only if level <= warn)
func (l *Logger) Warn(format string, args ...interface{}) {
	if l.logger == nil || logLevel > LevelWarn {
		return
	}
	l.logger.Printf("[WARN] %s", fmt.Sprintf(format, args...))
}

// Error logs an error message (always logged if logger exists)
func (l *Logger) Error(format string, args ...interface{}) {
	if l.logger == nil {
		return
	}
	l.logger.Printf("[ERROR] %s", fmt.Sprintf(format, args...))
}

// CloseAll closes all open log files (call at shutdown)
func CloseAll() {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	for _, l := range loggers {
		if l.file != nil {
			l.file.Close()
		}
	}
	loggers = make(map[Category]*Logger)
}

// =============================================================================
// CONVENIENCE FUNCTIONS - Quick logging without getting a logger first
// =============================================================================

// UI logs to the ui category
func UI(format string, args ...interface{}) {
	Get(CategoryUI).Info(format, args...)
}

// UIDebug logs debug to the ui category
func UIDebug(format string, args ...interface{}) {
	Get(CategoryUI).Debug(format, args...)
}

// Auth logs to the auth category
func Auth(format string, args ...interface{}) {
	Get(CategoryAuth).Info(format, args...)
}

// AuthDebug logs debug to the auth category
func AuthDebug(format string, args ...interface{}) {
	Get(CategoryAuth).Debug(format, args...)
}

// Case logs to the case category
func Case(format string, args ...interface{}) {
	Get(CategoryCase).Info(format, args...)
}

// CaseDebug logs debug to the case category
func CaseDebug(format string, args ...interface{}) {
	Get(CategoryCase).Debug(format, args...)
}

// CaseError logs error to the case category
func CaseError(format string, args ...interface{}) {
	Get(CategoryCase).Error(format, args...)
}

// Dialogue logs to the dialogue category
func Dialogue(format string, args ...interface{}) {
	Get(CategoryDialogue).Info(format, args...)
}

// DialogueDebug logs debug to the dialogue category
func DialogueDebug(format string, args ...interface{}) {
	Get(CategoryDialogue).Debug(format, args...)
}

// DialogueWarn logs warning to the dialogue category
func DialogueWarn(format string, args ...interface{}) {
	Get(CategoryDialogue).Warn(format, args...)
}

// Verdict logs to the verdict category
func Verdict(format string, args ...interface{}) {
	Get(CategoryVerdict).Info(format, args...)
}

// VerdictDebug logs debug to the verdict category
func VerdictDebug(format string, args ...interface{}) {
	Get(CategoryVerdict).Debug(format, args...)
}

// Trial logs to the trial category
func Trial(format string, args ...interface{}) {
	Get(CategoryTrial).Info(format, args...)
}

// TrialDebug logs debug to the trial category
func TrialDebug(format string, args ...interface{}) {
	Get(CategoryTrial).Debug(format, args...)
}

// Store logs to the store category
func Store(format string, args ...interface{}) {
	Get(CategoryStore).Info(format, args...)
}

// StoreDebug logs debug to the store category
func StoreDebug(format string, args ...interface{}) {
	Get(CategoryStore).Debug(format, args...)
}

// LLM logs to the llm category
func LLM(format string, args ...interface{}) {
	Get(CategoryLLM).Info(format, args...)
}

// LLMDebug logs debug to the llm category
func LLMDebug(format string, args ...interface{}) {
	Get(CategoryLLM).Debug(format, args...)
}

// LLMError logs error to the llm category
func LLMError(format string, args ...interface{}) {
	Get(CategoryLLM).Error(format, args...)
}

// Embedding logs to the embedding category
func Embedding(format string, args ...interface{}) {
	Get(CategoryEmbedding).Info(format, args...)
}

// EmbeddingDebug logs debug to the embedding category
func EmbeddingDebug(format string, args ...interface{}) {
	Get(CategoryEmbedding).Debug(format, args...)
}

// Config logs to the config category
func Config(format string, args ...interface{}) {
	Get(CategoryConfig).Info(format, args...)
}

// ConfigDebug logs debug to the config category
func ConfigDebug(format string, args ...interface{}) {
	Get(CategoryConfig).Debug(format, args...)
}

// =============================================================================
// TIMING HELPERS - For performance logging
// =============================================================================

// Timer helps measure operation duration
type Timer struct {
	category Category
	op       string
	start    time.Time
}

// StartTimer begins timing an operation
func StartTimer(category Category, operation string) *Timer {
	return &Timer{
		category: category,
		op:       operation,
		start:    time.Now(),
	}
}

// Stop ends the timer and logs the duration
func (t *Timer) Stop() time.Duration {
	elapsed := time.Since(t.start)
	Get(t.category).Debug("%s completed in %v", t.op, elapsed)
	return elapsed
}

// StopWithInfo ends the timer and logs at info level
func (t *Timer) StopWithInfo() time.Duration {
	elapsed := time.Since(t.start)
	Get(t.category).Info("%s completed in %v", t.op, elapsed)
	return elapsed
}
