package models

import "time"

// Headline is one generated item. ID is assigned by the persistence layer.
type Headline struct {
	ID           string            `json:"id,omitempty" db:"id"`
	Text         string            `json:"headline" db:"headline"`
	Category     string            `json:"category" db:"category"`
	CreatedAt    time.Time         `json:"created_at" db:"created_at"`
	KeywordsUsed map[string]string `json:"keywords_used,omitempty" db:"keywords_used"`
	Enhanced     bool              `json:"enhanced" db:"enhanced"`
}
