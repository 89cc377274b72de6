// Package substitute fills template placeholders with keywords.
package substitute

import (
	"context"
	"regexp"
	"strings"
)

// DefaultFallbackPrefix is prepended to a placeholder name that could not be
// resolved, so "[人物]" becomes "某人物".
const DefaultFallbackPrefix = "某"

var placeholderPattern = regexp.MustCompile(`\[([^\[\]]+)\]`)

// Resolver supplies a keyword for a placeholder name, skipping words already
// used in the same headline.
type Resolver interface {
	Keyword(ctx context.Context, category string, exclude map[string]struct{}) (string, bool)
}

type Substitutor struct {
	resolver       Resolver
	fallbackPrefix string
}

func New(resolver Resolver, fallbackPrefix string) *Substitutor {
	if fallbackPrefix == "" {
		fallbackPrefix = DefaultFallbackPrefix
	}
	return &Substitutor{resolver: resolver, fallbackPrefix: fallbackPrefix}
}

// ExtractPlaceholders lists placeholder names left to right, duplicates kept.
func ExtractPlaceholders(text string) []string {
	matches := placeholderPattern.FindAllStringSubmatch(text, -1)
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, m[1])
	}
	return names
}

// Fill replaces every placeholder in order. Each occurrence is resolved
// separately and no keyword repeats within one headline unless the
// resolver falls back. used maps each name to the last keyword placed for it.
// The output is assembled from the template's own match positions, so text
// inside an inserted keyword is never scanned as a placeholder.
func (s *Substitutor) Fill(ctx context.Context, text string) (string, map[string]string) {
	matches := placeholderPattern.FindAllStringSubmatchIndex(text, -1)
	used := make(map[string]string, len(matches))
	exclude := make(map[string]struct{}, len(matches))

	var b strings.Builder
	last := 0
	for _, m := range matches {
		name := text[m[2]:m[3]]
		kw, ok := s.resolver.Keyword(ctx, name, exclude)
		if !ok {
			kw = s.fallbackPrefix + name
		}

		b.WriteString(text[last:m[0]])
		b.WriteString(kw)
		last = m[1]

		used[name] = kw
		exclude[kw] = struct{}{}
	}
	b.WriteString(text[last:])

	return b.String(), used
}
