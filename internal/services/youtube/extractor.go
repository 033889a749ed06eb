package youtube

import (
	"regexp"

	"github.com/amaumene/dono/internal/apperrors"
)

// DefaultPattern matches the youtu.be short form, the youtube.com path forms
// (/embed/, /v/, /shorts/, /live/) and /watch?...v=. The id must not be
// followed by another id character.
const DefaultPattern = `^https?://(?:youtu\.be/|(?:www\.|m\.|music\.)?youtube\.com/(?:(?:embed|v|shorts|live)/|watch\?(?:[^#]*&)?v=))(?P<id>[A-Za-z0-9_-]{11})(?:[^A-Za-z0-9_-]|$)`

// Extractor pulls the canonical video id out of a link
type Extractor struct {
	pattern *regexp.Regexp
	idIndex int
}

// NewExtractor creates an extractor around a compiled pattern. The pattern
// must have a named group "id".
func NewExtractor(pattern *regexp.Regexp) *Extractor {
	return &Extractor{
		pattern: pattern,
		idIndex: pattern.SubexpIndex("id"),
	}
}

// NewDefaultExtractor compiles DefaultPattern
func NewDefaultExtractor() *Extractor {
	return NewExtractor(regexp.MustCompile(DefaultPattern))
}

// Extract returns the video id embedded in link
func (e *Extractor) Extract(link string) (string, error) {
	if e.idIndex < 0 {
		return "", &apperrors.InvalidSourceError{Source: link, Reason: "pattern has no id group"}
	}
	matches := e.pattern.FindStringSubmatch(link)
	if matches == nil || matches[e.idIndex] == "" {
		return "", &apperrors.InvalidSourceError{Source: link}
	}
	return matches[e.idIndex], nil
}
