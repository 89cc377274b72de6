package models

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Template is a headline pattern such as "[人物]宣布[動作]" tagged with its news category.
type Template struct {
	Text     string `json:"template" yaml:"template" db:"template"`
	Category string `json:"category" yaml:"category" db:"category"`
}

// Validate checks that the template is usable by the substitutor.
func (t Template) Validate() error {
	return validation.ValidateStruct(&t,
		validation.Field(&t.Text, validation.Required, validation.By(checkPlaceholders)),
		validation.Field(&t.Category, validation.Required),
	)
}

// checkPlaceholders requires every bracket pair to be balanced, unnested and
// to enclose a non-blank name.
func checkPlaceholders(value interface{}) error {
	s, _ := value.(string)
	open := -1
	for i, r := range s {
		switch r {
		case '[':
			if open >= 0 {
				return validation.NewError("validation_nested_placeholder", "must not nest placeholders")
			}
			open = i
		case ']':
			if open < 0 {
				return validation.NewError("validation_unbalanced_placeholder", "must not contain an unmatched ]")
			}
			if strings.TrimSpace(s[open+1:i]) == "" {
				return validation.NewError("validation_empty_placeholder", "must not contain an empty placeholder")
			}
			open = -1
		}
	}
	if open >= 0 {
		return validation.NewError("validation_unbalanced_placeholder", "must not contain an unmatched [")
	}
	return nil
}
