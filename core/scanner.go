package core

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/carelearn/phicore-go/utils"
)

// PatternInfo stores metadata about a single PHI pattern
type PatternInfo struct {
	Kind        utils.FindingKind
	Regex       *regexp.Regexp
	Description string
	Redaction   string
}

// phiPatterns lists the built-in PHI patterns. This is a slice, not a map:
// findings are reported grouped by pattern in this declaration order, so
// enumeration stays deterministic across scans.
var phiPatterns = []PatternInfo{
	{
		Kind:        utils.KindDate,
		Regex:       regexp.MustCompile(`\b\d{1,2}/\d{1,2}/\d{2,4}\b`),
		Description: "Slash-delimited date",
		Redaction:   "[DATE]",
	},
	{
		Kind:        utils.KindEmail,
		Regex:       regexp.MustCompile(`(?i)[a-z0-9_.+-]+@[a-z0-9-]+\.[a-z0-9-.]+`),
		Description: "Email address",
		Redaction:   "[EMAIL]",
	},
	{
		Kind:        utils.KindPhone,
		Regex:       regexp.MustCompile(`(?:\+1[-.\s]?)?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`),
		Description: "US Phone Number",
		Redaction:   "[PHONE]",
	},
	{
		Kind:        utils.KindSSN,
		Regex:       regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`),
		Description: "US Social Security Number",
		Redaction:   "[SSN]",
	},
	{
		Kind:        utils.KindZip,
		Regex:       regexp.MustCompile(`\b\d{5}(?:-\d{4})?\b`),
		Description: "US ZIP Code",
		Redaction:   "[ZIP]",
	},
}

// Result aggregates the outcome of a single PHI scan
type Result struct {
	// Whether any finding was produced; HasPHI == (len(Findings) > 0)
	HasPHI bool

	// Findings in detection order: all matches for one pattern before
	// the next, patterns in declaration order
	Findings []utils.Finding
}

// Scanner detects PHI-shaped tokens in free text. The zero value is not
// usable; construct with NewScanner.
type Scanner struct {
	patterns []PatternInfo
}

// NewScanner creates a scanner with the built-in PHI patterns
func NewScanner() *Scanner {
	patterns := make([]PatternInfo, len(phiPatterns))
	copy(patterns, phiPatterns)
	return &Scanner{patterns: patterns}
}

// AddPattern registers a custom pattern scanned after the built-ins, in
// registration order. New PHI kinds are additive; the built-in table is
// never mutated.
func (s *Scanner) AddPattern(kind utils.FindingKind, pattern, description, redaction string) error {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return fmt.Errorf("invalid custom pattern '%s': %w", kind, err)
	}

	if redaction == "" {
		redaction = fmt.Sprintf("[%s]", kind)
	}

	s.patterns = append(s.patterns, PatternInfo{
		Kind:        kind,
		Regex:       re,
		Description: description,
		Redaction:   redaction,
	})
	return nil
}

// Scan returns every substring of text matching one of the registered
// patterns. It is a pure function: any string input, including empty,
// yields a valid Result and identical inputs yield identical results.
func (s *Scanner) Scan(text string) Result {
	result := Result{Findings: []utils.Finding{}}

	for _, info := range s.patterns {
		locs := info.Regex.FindAllStringIndex(text, -1)
		for _, loc := range locs {
			result.Findings = append(result.Findings, utils.Finding{
				Kind:        info.Kind,
				Value:       text[loc[0]:loc[1]],
				Offset:      loc[0],
				Description: info.Description,
			})
		}
	}

	result.HasPHI = len(result.Findings) > 0
	return result
}

// ScanText scans text with the built-in patterns only
func ScanText(text string) Result {
	return NewScanner().Scan(text)
}

// Redact replaces each finding in text with the redaction placeholder for
// its kind. Findings from different patterns may overlap; when they do,
// the earlier-starting finding wins and the overlapped one is skipped.
func (s *Scanner) Redact(text string, findings []utils.Finding) string {
	sorted := make([]utils.Finding, len(findings))
	copy(sorted, findings)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Offset < sorted[j].Offset
	})

	placeholders := make(map[utils.FindingKind]string, len(s.patterns))
	for _, info := range s.patterns {
		placeholders[info.Kind] = info.Redaction
	}

	var builder strings.Builder
	lastIndex := 0

	for _, f := range sorted {
		if f.Offset < lastIndex {
			continue
		}
		end := f.Offset + len(f.Value)
		if end > len(text) || text[f.Offset:end] != f.Value {
			continue
		}

		builder.WriteString(text[lastIndex:f.Offset])
		if ph, ok := placeholders[f.Kind]; ok {
			builder.WriteString(ph)
		} else {
			builder.WriteString(fmt.Sprintf("[%s]", f.Kind))
		}
		lastIndex = end
	}

	if lastIndex < len(text) {
		builder.WriteString(text[lastIndex:])
	}

	return builder.String()
}
