// pkg/catalog/catalog.go
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	apperrors "headline-generator/internal/common/errors"
	"headline-generator/internal/models"
)

var schemaLoader = gojsonschema.NewStringLoader(documentSchema)

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// Load reads a JSON or YAML catalog. A bare list of templates is accepted as
// shorthand for {"templates": [...]}.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data, isYAML(path))
}

// Parse decodes and validates a catalog document.
func Parse(data []byte, asYAML bool) (*Catalog, error) {
	var doc interface{}
	if asYAML {
		err := yaml.Unmarshal(data, &doc)
		if err != nil {
			return nil, fmt.Errorf("parse yaml catalog: %w", err)
		}
	} else if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse json catalog: %w", err)
	}

	if list, ok := doc.([]interface{}); ok {
		doc = map[string]interface{}{"templates": list}
	}

	if err := validateDocument(doc); err != nil {
		return nil, err
	}

	// round-trip through JSON so both formats share one decoder
	normalized, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var cat Catalog
	if err := json.Unmarshal(normalized, &cat); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	for i, t := range cat.Templates {
		if err := t.Validate(); err != nil {
			return nil, apperrors.NewInvalidTemplateError(i, err)
		}
	}
	return &cat, nil
}

func validateDocument(doc interface{}) error {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewGoLoader(doc))
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}
	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return fmt.Errorf("catalog validation failed: %v", errs)
	}
	return nil
}

// Save writes templates to path, choosing the format by extension.
func Save(path string, templates []models.Template) error {
	if len(templates) == 0 {
		return apperrors.NewEmptyInputError("templates")
	}

	cat := Catalog{
		Version:     "1",
		LastUpdated: time.Now().UTC().Format(time.RFC3339),
		Templates:   templates,
	}

	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(cat)
	} else {
		data, err = json.MarshalIndent(cat, "", "  ")
	}
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
