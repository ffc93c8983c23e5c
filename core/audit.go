package core

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/carelearn/phicore-go/utils"
)

// AuditLogLevel defines the verbosity of audit logging
type AuditLogLevel string

const (
	// AuditLogLevelMinimal logs only essential events with content removed
	AuditLogLevelMinimal AuditLogLevel = "minimal"

	// AuditLogLevelStandard logs events with truncated content
	AuditLogLevelStandard AuditLogLevel = "standard"

	// AuditLogLevelVerbose logs all details including full content
	AuditLogLevelVerbose AuditLogLevel = "verbose"
)

// AuditLogSeverity defines the severity of audit log events
type AuditLogSeverity string

const (
	// SeverityInfo for normal operations
	SeverityInfo AuditLogSeverity = "info"

	// SeverityWarning for potential compliance issues
	SeverityWarning AuditLogSeverity = "warning"

	// SeverityError for failures
	SeverityError AuditLogSeverity = "error"
)

// AuditEvent represents one entry in the compliance audit trail
type AuditEvent struct {
	// Core fields for traceability
	RequestID string           `json:"request_id"`
	Timestamp string           `json:"timestamp"`
	EventType string           `json:"event_type"` // e.g. "phi_scan", "mapping_suggested", "task_transition"
	Source    string           `json:"source"`     // e.g. "scanner", "suggester", "runner"
	Severity  AuditLogSeverity `json:"severity"`

	// Scanned content; truncated or removed depending on log level since
	// the text itself may contain PHI
	Document string `json:"document,omitempty"`

	// Scan output
	Findings []utils.Finding `json:"findings,omitempty"`

	// Mapping output
	Suggestions []Suggestion `json:"suggestions,omitempty"`

	// Free-form context
	Metadata map[string]string `json:"metadata,omitempty"`
}

// AuditLogger writes JSONL audit events with size-based rotation
type AuditLogger struct {
	mu           sync.Mutex
	logPath      string
	level        AuditLogLevel
	writer       io.Writer
	rotationSize int64
	currentSize  int64
	logRetention int // days
	initialized  bool
}

// Global default logger
var defaultLogger *AuditLogger
var loggerOnce sync.Once

// GetAuditLogger returns the singleton audit logger instance
func GetAuditLogger() *AuditLogger {
	loggerOnce.Do(func() {
		defaultLogger = NewAuditLogger("audit.log", AuditLogLevelStandard)
	})

	return defaultLogger
}

// NewAuditLogger creates an independent audit logger instance. Callers
// that need isolation (tests, multiple tenants) should prefer this over
// the singleton.
func NewAuditLogger(path string, level AuditLogLevel) *AuditLogger {
	return &AuditLogger{
		logPath:      path,
		level:        level,
		rotationSize: 100 * 1024 * 1024,
		logRetention: 90,
	}
}

// Configure updates the logger settings and re-initializes the sink
func (l *AuditLogger) Configure(path string, level AuditLogLevel, rotationSize int64, retention int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.logPath = path
	l.level = level
	l.rotationSize = rotationSize
	l.logRetention = retention

	return l.initialize()
}

// initialize the logger with current settings
func (l *AuditLogger) initialize() error {
	dir := filepath.Dir(l.logPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
	}

	f, err := os.OpenFile(l.logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return fmt.Errorf("failed to get log file info: %w", err)
	}

	l.currentSize = info.Size()
	l.writer = f
	l.initialized = true
	return nil
}

// maybeRotateLog checks if log rotation is needed and performs it if so
func (l *AuditLogger) maybeRotateLog() error {
	if l.currentSize < l.rotationSize {
		return nil
	}

	if closer, ok := l.writer.(io.Closer); ok {
		closer.Close()
	}

	timestamp := time.Now().Format("20060102-150405")
	rotatedPath := fmt.Sprintf("%s.%s", l.logPath, timestamp)

	if err := os.Rename(l.logPath, rotatedPath); err != nil {
		return fmt.Errorf("failed to rotate log file: %w", err)
	}

	l.cleanupOldLogs()

	return l.initialize()
}

// cleanupOldLogs removes rotated log files older than the retention period
func (l *AuditLogger) cleanupOldLogs() {
	dir := filepath.Dir(l.logPath)
	base := filepath.Base(l.logPath)

	cutoffTime := time.Now().AddDate(0, 0, -l.logRetention)

	files, err := filepath.Glob(filepath.Join(dir, base+".*"))
	if err != nil {
		return
	}

	for _, file := range files {
		info, err := os.Stat(file)
		if err != nil {
			continue
		}

		if info.ModTime().Before(cutoffTime) {
			os.Remove(file)
		}
	}
}

// LogEvent appends an audit event in JSONL format
func (l *AuditLogger) LogEvent(event AuditEvent) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.initialized {
		if err := l.initialize(); err != nil {
			return err
		}
	}

	if err := l.maybeRotateLog(); err != nil {
		return err
	}

	if event.Timestamp == "" {
		event.Timestamp = time.Now().Format(time.RFC3339Nano)
	}
	if event.RequestID == "" {
		event.RequestID = uuid.NewString()
	}
	if event.Severity == "" {
		event.Severity = SeverityInfo
	}

	// Skip routine events entirely in minimal mode
	if l.level == AuditLogLevelMinimal && event.Severity == SeverityInfo {
		return nil
	}

	// The document text is the PHI-bearing part of the event; keep only a
	// truncated excerpt outside verbose mode
	if l.level == AuditLogLevelStandard && len(event.Document) > 100 {
		event.Document = event.Document[:100] + "... [truncated]"
	}
	if l.level == AuditLogLevelMinimal {
		event.Document = "[redacted]"
	}

	entry, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal audit event: %w", err)
	}

	n, err := fmt.Fprintln(l.writer, string(entry))
	if err != nil {
		return fmt.Errorf("failed to write to log: %w", err)
	}

	l.currentSize += int64(n)

	return nil
}

// LogScanEvent records the outcome of a PHI scan
func (l *AuditLogger) LogScanEvent(requestID, document string, result Result) error {
	return l.LogEvent(AuditEvent{
		RequestID: requestID,
		EventType: "phi_scan",
		Source:    "scanner",
		Severity:  scanSeverity(result),
		Document:  document,
		Findings:  result.Findings,
		Metadata: map[string]string{
			"finding_count": fmt.Sprintf("%d", len(result.Findings)),
			"has_phi":       fmt.Sprintf("%t", result.HasPHI),
		},
	})
}

// LogMappingEvent records the outcome of a mapping suggestion pass
func (l *AuditLogger) LogMappingEvent(requestID, document string, suggestions []Suggestion) error {
	return l.LogEvent(AuditEvent{
		RequestID:   requestID,
		EventType:   "mapping_suggested",
		Source:      "suggester",
		Severity:    SeverityInfo,
		Document:    document,
		Suggestions: suggestions,
		Metadata: map[string]string{
			"suggestion_count": fmt.Sprintf("%d", len(suggestions)),
		},
	})
}

// LogTaskTransition records a job status transition
func (l *AuditLogger) LogTaskTransition(taskID, taskType, from, to, errMsg string) error {
	severity := SeverityInfo
	metadata := map[string]string{
		"task_id":   taskID,
		"task_type": taskType,
		"from":      from,
		"to":        to,
	}
	if errMsg != "" {
		severity = SeverityError
		metadata["error"] = errMsg
	}

	return l.LogEvent(AuditEvent{
		EventType: "task_transition",
		Source:    "runner",
		Severity:  severity,
		Metadata:  metadata,
	})
}

func scanSeverity(result Result) AuditLogSeverity {
	if result.HasPHI {
		return SeverityWarning
	}
	return SeverityInfo
}
