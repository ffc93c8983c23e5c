package core

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readAuditEvents(t *testing.T, path string) []AuditEvent {
	t.Helper()

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var events []AuditEvent
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var event AuditEvent
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &event))
		events = append(events, event)
	}
	require.NoError(t, scanner.Err())
	return events
}

func TestAuditLogScanEvent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.log")
	logger := NewAuditLogger(path, AuditLogLevelVerbose)

	document := "SSN 123-45-6789 in the admission form"
	result := ScanText(document)
	require.NoError(t, logger.LogScanEvent("req-1", document, result))

	events := readAuditEvents(t, path)
	require.Len(t, events, 1)

	assert.Equal(t, "req-1", events[0].RequestID)
	assert.Equal(t, "phi_scan", events[0].EventType)
	assert.Equal(t, SeverityWarning, events[0].Severity)
	assert.Equal(t, document, events[0].Document)
	assert.Len(t, events[0].Findings, 1)
	assert.Equal(t, "1", events[0].Metadata["finding_count"])
}

func TestAuditStandardLevelTruncatesDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.log")
	logger := NewAuditLogger(path, AuditLogLevelStandard)

	document := strings.Repeat("policy text ", 20)
	require.NoError(t, logger.LogScanEvent("", document, ScanText(document)))

	events := readAuditEvents(t, path)
	require.Len(t, events, 1)
	assert.True(t, strings.HasSuffix(events[0].Document, "... [truncated]"))
	assert.NotEmpty(t, events[0].RequestID)
}

func TestAuditMinimalLevelSkipsInfoEvents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.log")
	logger := NewAuditLogger(path, AuditLogLevelMinimal)

	// Info severity: a clean scan
	require.NoError(t, logger.LogScanEvent("", "nothing here", ScanText("nothing here")))

	// Error severity: a failed task transition
	require.NoError(t, logger.LogTaskTransition("task-1", "GENERATE_DRAFT", "processing", "failed", "boom"))

	events := readAuditEvents(t, path)
	require.Len(t, events, 1)
	assert.Equal(t, "task_transition", events[0].EventType)
	assert.Equal(t, SeverityError, events[0].Severity)
	assert.Equal(t, "boom", events[0].Metadata["error"])
}

func TestAuditTaskTransition(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.log")
	logger := NewAuditLogger(path, AuditLogLevelStandard)

	require.NoError(t, logger.LogTaskTransition("task-1", "GENERATE_DRAFT", "queued", "processing", ""))

	events := readAuditEvents(t, path)
	require.Len(t, events, 1)
	assert.Equal(t, SeverityInfo, events[0].Severity)
	assert.Equal(t, "queued", events[0].Metadata["from"])
	assert.Equal(t, "processing", events[0].Metadata["to"])
}
