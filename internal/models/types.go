package models

import "fmt"

// MediaKind identifies which history log an item belongs to
type MediaKind string

const (
	KindLocal   MediaKind = "local"
	KindYoutube MediaKind = "youtube"
)

// Kinds lists every supported media kind in display order
var Kinds = []MediaKind{KindYoutube, KindLocal}

// ParseKind validates a kind name coming from a route or a flag
func ParseKind(s string) (MediaKind, error) {
	switch MediaKind(s) {
	case KindLocal, KindYoutube:
		return MediaKind(s), nil
	default:
		return "", fmt.Errorf("unknown media kind %q", s)
	}
}

func (k MediaKind) String() string {
	return string(k)
}

// Item is a play event submitted for ingestion. Source is a file path for
// local items and a raw link for youtube items.
type Item struct {
	Kind      MediaKind `json:"kind"`
	Source    string    `json:"source"`
	Timestamp int64     `json:"ts"`
}

// Metadata is what a resolver learns about an item before it is stored
type Metadata struct {
	ExternalID string
	Title      string
	Duration   int64 // seconds
}
