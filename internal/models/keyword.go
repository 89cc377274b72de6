package models

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// KeywordCategory is the word list a placeholder name resolves against.
type KeywordCategory struct {
	Name  string   `json:"category" db:"category"`
	Words []string `json:"words" db:"words"`
}

// KeywordRule rejects words that would read as placeholders once inserted.
var KeywordRule = validation.By(func(value interface{}) error {
	s, _ := value.(string)
	if strings.ContainsAny(s, "[]") {
		return validation.NewError("validation_keyword_brackets", "must not contain [ or ]")
	}
	return nil
})
