package phicore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carelearn/phicore-go/core"
	"github.com/carelearn/phicore-go/utils"
)

const intakeNote = "Patient reachable at 555-123-4567 or jane@example.com, SSN 123-45-6789. Annual safety review pending."

func TestScanText(t *testing.T) {
	result := ScanText(intakeNote)

	require.True(t, result.HasPHI)
	kinds := map[utils.FindingKind]bool{}
	for _, f := range result.Findings {
		kinds[f.Kind] = true
		assert.Equal(t, f.Value, intakeNote[f.Offset:f.Offset+len(f.Value)])
	}
	assert.True(t, kinds[utils.KindPhone])
	assert.True(t, kinds[utils.KindEmail])
	assert.True(t, kinds[utils.KindSSN])
}

func TestRedactText(t *testing.T) {
	redacted := RedactText(intakeNote)

	assert.NotContains(t, redacted, "jane@example.com")
	assert.NotContains(t, redacted, "123-45-6789")
	assert.Contains(t, redacted, "[EMAIL]")
	assert.Contains(t, redacted, "[SSN]")
}

func TestSuggestMappings(t *testing.T) {
	suggestions := SuggestMappings(intakeNote)

	require.NotEmpty(t, suggestions)
	ids := make([]string, 0, len(suggestions))
	for _, s := range suggestions {
		ids = append(ids, s.StandardID)
	}
	assert.Contains(t, ids, "1.A.1")
	assert.Contains(t, ids, "1.B.2")
}

func TestSuggestMappingsWithCatalog(t *testing.T) {
	catalog := core.NewCatalogBuilder().
		AddStandard("7.X.1", "Bloodborne Pathogen Handling").
		AddStandard("0.0.0", "General Compliance Documentation").
		AddTrigger("pathogen", "7.X.1", 0.9).
		WithFallback("0.0.0", 0.1).
		Build()

	suggestions := SuggestMappingsWithCatalog("pathogen exposure procedure", catalog)

	require.Len(t, suggestions, 1)
	assert.Equal(t, "7.X.1", suggestions[0].StandardID)
}

func TestAuditDocument(t *testing.T) {
	// Point the shared logger at a throwaway sink for the test run
	path := filepath.Join(t.TempDir(), "audit.log")
	require.NoError(t, core.GetAuditLogger().Configure(path, core.AuditLogLevelStandard, 100*1024*1024, 90))

	audit := AuditDocument(intakeNote)

	assert.True(t, audit.Scan.HasPHI)
	assert.Equal(t, audit.Scan.Findings, audit.Findings)
	assert.NotEmpty(t, audit.Suggestions)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestAuditDocumentWithCatalogFile(t *testing.T) {
	audit, err := AuditDocumentWithCatalogFile(intakeNote, "config/default_catalog.yaml")
	require.NoError(t, err)

	assert.True(t, audit.Scan.HasPHI)
	assert.NotEmpty(t, audit.Suggestions)

	_, err = AuditDocumentWithCatalogFile(intakeNote, "config/does_not_exist.yaml")
	assert.Error(t, err)
}
