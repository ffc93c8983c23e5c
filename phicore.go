// Package phicore is the PHI detection and compliance-mapping core of a
// healthcare-compliance learning platform. It scans free text for
// PHI-shaped tokens, suggests links to compliance standards, and tracks
// asynchronous course-generation jobs. Persistence, UI, auth, mail and
// file storage are external collaborators.
package phicore

import (
	"fmt"

	"github.com/carelearn/phicore-go/core"
	"github.com/carelearn/phicore-go/utils"
)

// ScanText runs the built-in PHI patterns over text and returns every
// finding with its byte offset
func ScanText(text string) core.Result {
	return core.ScanText(text)
}

// SuggestMappings scores text against the default standards catalog and
// always returns at least one suggestion
func SuggestMappings(text string) []core.Suggestion {
	return core.SuggestMappings(text)
}

// SuggestMappingsWithCatalog scores text against a caller-supplied catalog
func SuggestMappingsWithCatalog(text string, catalog *core.Catalog) []core.Suggestion {
	return core.NewSuggester(catalog).Suggest(text)
}

// RedactText replaces every PHI finding in text with its kind placeholder
func RedactText(text string) string {
	scanner := core.NewScanner()
	result := scanner.Scan(text)
	return scanner.Redact(text, result.Findings)
}

// DocumentAudit bundles the scan and mapping outcome for one document.
// The caller owns persistence: findings become PHI evidence, suggestions
// may be elevated to mapping-evidence records.
type DocumentAudit struct {
	Scan        core.Result
	Findings    []utils.Finding
	Suggestions []core.Suggestion
}

// AuditDocument runs both analyses over a document with the default
// catalog and records them in the audit trail
func AuditDocument(text string) DocumentAudit {
	scan := core.ScanText(text)
	suggestions := core.SuggestMappings(text)

	// Audit failures never block analysis; the results still go back to
	// the caller
	audit := core.GetAuditLogger()
	_ = audit.LogScanEvent("", text, scan)
	_ = audit.LogMappingEvent("", text, suggestions)

	return DocumentAudit{
		Scan:        scan,
		Findings:    scan.Findings,
		Suggestions: suggestions,
	}
}

// AuditDocumentWithCatalogFile runs both analyses using a catalog loaded
// from a YAML file
func AuditDocumentWithCatalogFile(text, catalogPath string) (DocumentAudit, error) {
	catalog, err := core.LoadCatalog(catalogPath)
	if err != nil {
		return DocumentAudit{}, fmt.Errorf("failed to load catalog: %w", err)
	}

	scan := core.ScanText(text)
	suggestions := core.NewSuggester(catalog).Suggest(text)

	return DocumentAudit{
		Scan:        scan,
		Findings:    scan.Findings,
		Suggestions: suggestions,
	}, nil
}
