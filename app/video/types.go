package video

import (
	"fmt"
	"sort"
)

// Record is the canonical metadata unit for one talk video, in the layout the
// pyvideo repository expects. Struct fields are declared in sorted key order
// so the indented JSON encoding is byte-stable and matches the historical
// sort_keys output; keep it that way when adding fields.
//
// Tags and Description only exist on fully scraped records; minimal downloads
// omit the description entirely and carry the event's shared tags.
type Record struct {
	CopyrightText string       `json:"copyright_text"`
	Description   *string      `json:"description,omitempty"`
	Duration      int          `json:"duration"` // seconds
	Language      string       `json:"language"`
	Recorded      string       `json:"recorded"` // ISO date
	RelatedURLs   []RelatedURL `json:"related_urls"`
	Speakers      []string     `json:"speakers"`
	Tags          []string     `json:"tags,omitempty"`
	ThumbnailURL  string       `json:"thumbnail_url"`
	Title         string       `json:"title"`
	Videos        []Location   `json:"videos"`

	// Identifier is the filesystem-stable slug used as persistence key. It is
	// derived from the title at creation and only ever replaced when
	// reconciliation adopts the identifier of a matching prior record.
	Identifier string `json:"-"`
}

// Location is one playback location. The first entry's URL is the record's
// identity across scrapes.
type Location struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

// RelatedURL is one labelled related-URL entry.
type RelatedURL struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// PlaybackURL returns the identity URL of the record, or "" for a record
// without playback locations (which should not exist past normalization).
func (r Record) PlaybackURL() string {
	if len(r.Videos) == 0 {
		return ""
	}
	return r.Videos[0].URL
}

// Set maps identifier to record. Identifiers are unique within a set;
// colliding slugs are resolved with numeric suffixes at persistence time,
// before records enter a set loaded back from disk.
type Set map[string]Record

// SortedIdentifiers returns the set's identifiers in lexical order for
// reproducible iteration.
func (s Set) SortedIdentifiers() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// FieldNames lists the record fields that may appear in an overwrite_fields
// policy, keyed by their serialized name.
var FieldNames = map[string]bool{
	"copyright_text": true,
	"description":    true,
	"duration":       true,
	"language":       true,
	"recorded":       true,
	"related_urls":   true,
	"speakers":       true,
	"tags":           true,
	"thumbnail_url":  true,
	"title":          true,
	"videos":         true,
}

// overwriteField copies one named field from src into dst. Field names are
// validated at configuration load, so an unknown name here is a programming
// error.
func overwriteField(dst *Record, src Record, field string) error {
	switch field {
	case "copyright_text":
		dst.CopyrightText = src.CopyrightText
	case "description":
		dst.Description = src.Description
	case "duration":
		dst.Duration = src.Duration
	case "language":
		dst.Language = src.Language
	case "recorded":
		dst.Recorded = src.Recorded
	case "related_urls":
		dst.RelatedURLs = src.RelatedURLs
	case "speakers":
		dst.Speakers = src.Speakers
	case "tags":
		dst.Tags = src.Tags
	case "thumbnail_url":
		dst.ThumbnailURL = src.ThumbnailURL
	case "title":
		dst.Title = src.Title
	case "videos":
		dst.Videos = src.Videos
	default:
		return fmt.Errorf("unknown record field: %s", field)
	}
	return nil
}
