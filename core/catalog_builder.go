package core

import (
	"time"
)

// CatalogBuilder provides a fluent interface for creating standards catalogs
type CatalogBuilder struct {
	catalog *Catalog
}

// NewCatalogBuilder creates a new catalog builder
func NewCatalogBuilder() *CatalogBuilder {
	return &CatalogBuilder{
		catalog: &Catalog{
			Metadata: CatalogMetadata{
				CreatedAt: time.Now(),
				UpdatedAt: time.Now(),
			},
			Standards: []Standard{},
			Triggers:  []Trigger{},
		},
	}
}

// WithMetadata sets the catalog metadata
func (b *CatalogBuilder) WithMetadata(version, description, author string) *CatalogBuilder {
	b.catalog.Metadata.Version = version
	b.catalog.Metadata.Description = description
	b.catalog.Metadata.Author = author
	return b
}

// AddStandard adds a standard to the catalog
func (b *CatalogBuilder) AddStandard(id, description string) *CatalogBuilder {
	b.catalog.Standards = append(b.catalog.Standards, Standard{
		ID:          id,
		Description: description,
	})
	return b
}

// AddTrigger adds a keyword trigger for a previously added standard
func (b *CatalogBuilder) AddTrigger(keyword, standardID string, confidence float64) *CatalogBuilder {
	b.catalog.Triggers = append(b.catalog.Triggers, Trigger{
		Keyword:    keyword,
		StandardID: standardID,
		Confidence: confidence,
	})
	return b
}

// ConfigureLastTrigger configures additional properties for the last added trigger
func (b *CatalogBuilder) ConfigureLastTrigger() *TriggerConfigurator {
	if len(b.catalog.Triggers) == 0 {
		b.catalog.Triggers = append(b.catalog.Triggers, Trigger{})
	}

	return &TriggerConfigurator{
		builder: b,
		trigger: &b.catalog.Triggers[len(b.catalog.Triggers)-1],
	}
}

// WithFallback sets the fallback rule applied when no trigger fires
func (b *CatalogBuilder) WithFallback(standardID string, confidence float64) *CatalogBuilder {
	b.catalog.Fallback = Fallback{
		StandardID: standardID,
		Confidence: confidence,
	}
	return b
}

// Build constructs and returns the final catalog
func (b *CatalogBuilder) Build() *Catalog {
	b.catalog.Metadata.UpdatedAt = time.Now()
	return b.catalog
}

// TriggerConfigurator provides methods to configure a trigger
type TriggerConfigurator struct {
	builder *CatalogBuilder
	trigger *Trigger
}

// WithSnippet sets the canned snippet emitted with the trigger's suggestions
func (c *TriggerConfigurator) WithSnippet(snippet string) *TriggerConfigurator {
	c.trigger.Snippet = snippet
	return c
}

// WithConfidence sets the trigger confidence
func (c *TriggerConfigurator) WithConfidence(confidence float64) *TriggerConfigurator {
	c.trigger.Confidence = confidence
	return c
}

// Done returns to the catalog builder
func (c *TriggerConfigurator) Done() *CatalogBuilder {
	return c.builder
}
