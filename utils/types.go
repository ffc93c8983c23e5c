package utils

// FindingKind identifies which PHI pattern produced a finding
type FindingKind string

const (
	// KindDate is a slash-delimited date such as 01/02/2020
	KindDate FindingKind = "DATE"

	// KindEmail is an email address
	KindEmail FindingKind = "EMAIL"

	// KindPhone is a North-American-style 10-digit phone number
	KindPhone FindingKind = "PHONE"

	// KindSSN is a US Social Security Number (DDD-DD-DDDD)
	KindSSN FindingKind = "SSN"

	// KindZip is a US ZIP code (5 digits, optional +4)
	KindZip FindingKind = "ZIP"
)

// Finding represents a single detected PHI occurrence in scanned text
type Finding struct {
	// Classification of the match
	Kind FindingKind

	// The exact matched substring
	Value string

	// Byte offset of the match into the scanned text; the invariant
	// text[Offset:Offset+len(Value)] == Value always holds
	Offset int

	// Human-readable description of the pattern that matched
	Description string
}
