// pkg/catalog/schema.go
package catalog

import "headline-generator/internal/models"

// Catalog is the on-disk template collection.
type Catalog struct {
	Version     string            `json:"version,omitempty" yaml:"version,omitempty"`
	LastUpdated string            `json:"lastUpdated,omitempty" yaml:"lastUpdated,omitempty"`
	Templates   []models.Template `json:"templates" yaml:"templates"`
}

// documentSchema is checked before decoding so that a typo'd field name is
// reported instead of silently producing an empty template.
const documentSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["templates"],
	"properties": {
		"version":     {"type": "string"},
		"lastUpdated": {"type": "string"},
		"templates": {
			"type": "array",
			"minItems": 1,
			"items": {
				"type": "object",
				"required": ["template", "category"],
				"additionalProperties": false,
				"properties": {
					"template": {"type": "string", "minLength": 1},
					"category": {"type": "string", "minLength": 1}
				}
			}
		}
	}
}`
