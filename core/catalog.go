package core

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// CatalogMetadata contains information about the standards catalog
type CatalogMetadata struct {
	// Version of the catalog
	Version string `yaml:"version"`

	// When the catalog was created
	CreatedAt time.Time `yaml:"created_at"`

	// Last modification time
	UpdatedAt time.Time `yaml:"updated_at"`

	// Description of the catalog
	Description string `yaml:"description"`

	// Author of the catalog
	Author string `yaml:"author"`

	// Hash of the catalog content for integrity verification
	Hash string `yaml:"hash,omitempty"`
}

// Standard is one entry in the compliance-standards catalog
type Standard struct {
	// Unique identifier, e.g. "1.A.1"
	ID string `yaml:"id"`

	// Human-readable description, e.g. "Written Policy for Health and Safety"
	Description string `yaml:"description"`
}

// Trigger maps a keyword to a standard with a fixed confidence. Triggers
// fire on a case-insensitive substring test against the scanned text.
type Trigger struct {
	// Keyword that activates this trigger
	Keyword string `yaml:"keyword"`

	// ID of the standard this trigger suggests
	StandardID string `yaml:"standard_id"`

	// Heuristic confidence in (0,1]; not a calibrated probability
	Confidence float64 `yaml:"confidence"`

	// Canned snippet emitted with the suggestion; when empty a snippet is
	// derived from the keyword
	Snippet string `yaml:"snippet,omitempty"`
}

// Fallback is the suggestion emitted when no trigger fires
type Fallback struct {
	// ID of the default standard
	StandardID string `yaml:"standard_id"`

	// Low confidence assigned to fallback suggestions; must be below
	// every trigger confidence
	Confidence float64 `yaml:"confidence"`
}

// Catalog defines a complete compliance-standards catalog
type Catalog struct {
	// Metadata about the catalog
	Metadata CatalogMetadata `yaml:"metadata"`

	// Standards contained in the catalog
	Standards []Standard `yaml:"standards"`

	// Triggers in declaration order; suggestion order follows this order
	Triggers []Trigger `yaml:"triggers"`

	// Fallback rule applied when no trigger fires
	Fallback Fallback `yaml:"fallback"`
}

// Standard retrieves a catalog standard by id
func (c *Catalog) Standard(id string) (Standard, bool) {
	for _, s := range c.Standards {
		if s.ID == id {
			return s, true
		}
	}
	return Standard{}, false
}

// LoadCatalog reads a YAML catalog file and unmarshals it into a Catalog
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	var catalog Catalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	if err := validateCatalog(&catalog); err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}

	// Generate hash for integrity checking
	catalog.Metadata.Hash = calculateCatalogHash(data)

	return &catalog, nil
}

// SaveCatalog saves a catalog to disk with an updated integrity hash
func SaveCatalog(catalog *Catalog, path string) error {
	if err := validateCatalog(catalog); err != nil {
		return fmt.Errorf("invalid catalog: %w", err)
	}

	catalog.Metadata.UpdatedAt = time.Now()

	data, err := yaml.Marshal(catalog)
	if err != nil {
		return fmt.Errorf("failed to serialize catalog: %w", err)
	}

	catalog.Metadata.Hash = calculateCatalogHash(data)

	// Re-serialize with updated hash
	data, err = yaml.Marshal(catalog)
	if err != nil {
		return fmt.Errorf("failed to re-serialize catalog with hash: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write catalog file: %w", err)
	}

	return nil
}

// validateCatalog checks that every trigger references a declared standard,
// confidences are sane, and the fallback stays below all trigger confidences
func validateCatalog(catalog *Catalog) error {
	if len(catalog.Standards) == 0 {
		return fmt.Errorf("catalog has no standards")
	}

	ids := make(map[string]bool, len(catalog.Standards))
	for i, s := range catalog.Standards {
		if s.ID == "" {
			return fmt.Errorf("standard %d has no id", i)
		}
		if ids[s.ID] {
			return fmt.Errorf("duplicate standard id %q", s.ID)
		}
		ids[s.ID] = true
	}

	for i, t := range catalog.Triggers {
		if t.Keyword == "" {
			return fmt.Errorf("trigger %d has no keyword", i)
		}
		if !ids[t.StandardID] {
			return fmt.Errorf("trigger %q references unknown standard %q", t.Keyword, t.StandardID)
		}
		if t.Confidence <= 0 || t.Confidence > 1 {
			return fmt.Errorf("trigger %q has confidence %v outside (0,1]", t.Keyword, t.Confidence)
		}
		if t.Confidence <= catalog.Fallback.Confidence {
			return fmt.Errorf("trigger %q confidence %v does not exceed fallback confidence %v",
				t.Keyword, t.Confidence, catalog.Fallback.Confidence)
		}
	}

	if !ids[catalog.Fallback.StandardID] {
		return fmt.Errorf("fallback references unknown standard %q", catalog.Fallback.StandardID)
	}
	if catalog.Fallback.Confidence <= 0 || catalog.Fallback.Confidence >= 1 {
		return fmt.Errorf("fallback confidence %v outside (0,1)", catalog.Fallback.Confidence)
	}

	return nil
}

// calculateCatalogHash generates a hash of the catalog content for integrity checking
func calculateCatalogHash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// DefaultCatalog creates the built-in standards catalog shipped with the
// library. It mirrors config/default_catalog.yaml.
func DefaultCatalog() *Catalog {
	return &Catalog{
		Metadata: CatalogMetadata{
			Version:     "1.0.0",
			CreatedAt:   time.Now(),
			UpdatedAt:   time.Now(),
			Description: "Default healthcare compliance standards catalog",
			Author:      "phicore",
		},
		Standards: []Standard{
			{ID: "1.A.1", Description: "Written Policy for Health and Safety"},
			{ID: "1.B.2", Description: "Periodic Review of Policies and Procedures"},
			{ID: "2.C.1", Description: "Staff Training and Competency Requirements"},
			{ID: "3.A.4", Description: "Privacy and Confidentiality of Health Information"},
			{ID: "4.D.1", Description: "Incident Reporting and Documentation"},
			{ID: "0.0.0", Description: "General Compliance Documentation"},
		},
		Triggers: []Trigger{
			{Keyword: "safety", StandardID: "1.A.1", Confidence: 0.8, Snippet: "Mentions safety obligations"},
			{Keyword: "review", StandardID: "1.B.2", Confidence: 0.7, Snippet: "Mentions a review process"},
			{Keyword: "training", StandardID: "2.C.1", Confidence: 0.75, Snippet: "Mentions staff training"},
			{Keyword: "privacy", StandardID: "3.A.4", Confidence: 0.8, Snippet: "Mentions privacy of health information"},
			{Keyword: "confidential", StandardID: "3.A.4", Confidence: 0.7, Snippet: "Mentions confidentiality requirements"},
			{Keyword: "incident", StandardID: "4.D.1", Confidence: 0.75, Snippet: "Mentions incident handling"},
		},
		Fallback: Fallback{StandardID: "0.0.0", Confidence: 0.1},
	}
}
