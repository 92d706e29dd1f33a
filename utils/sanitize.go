package utils

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Sanitizer cleans user-generated comment text to prevent stored XSS.
// Titles lose all markup; bodies keep the UGC-safe subset. Text that carries no
// markup is stored exactly as written, without HTML entity escaping.
type Sanitizer struct {
	title *bluemonday.Policy
	body  *bluemonday.Policy
}

func NewSanitizer() *Sanitizer {
	return &Sanitizer{
		title: bluemonday.StrictPolicy(),
		body:  bluemonday.UGCPolicy(),
	}
}

// Title strips every tag and returns the remaining plain text unescaped.
func (s *Sanitizer) Title(input string) string {
	return strings.TrimSpace(html.UnescapeString(s.title.Sanitize(input)))
}

// Body keeps input unchanged when the policy only escaped it; otherwise the
// sanitized markup is stored.
func (s *Sanitizer) Body(input string) string {
	clean := s.body.Sanitize(input)
	if html.UnescapeString(clean) == input {
		return input
	}
	return clean
}
