package video

import (
	"cmp"
	"fmt"
	"regexp"
	"sort"
	"time"

	"golang.org/x/text/language"

	"github.com/pyvideo/pyvideo-scrape/app/extractor"
)

// Best-effort URL scan over free-text descriptions: scheme http/https,
// terminated at whitespace or a closing bracket/parenthesis/quote. Lossy on
// trailing punctuation, intentionally; the upstream descriptions are prose,
// not a URL grammar.
var urlPattern = regexp.MustCompile(`https?://[^ \t\n\\()\[\]'"<>]+`)

// EventContext is the slice of event configuration the normalizer needs to
// turn one raw entry into a record.
type EventContext struct {
	DefaultLanguage string
	Tags            []string
	RelatedURLs     []RelatedURL

	KnowDates   bool
	DateBegin   time.Time
	DateEnd     time.Time
	DateDefault time.Time

	MinimalDownload bool
}

// Normalizer converts raw extracted entries into canonical records for one
// event.
type Normalizer struct {
	event EventContext
}

func NewNormalizer(event EventContext) *Normalizer {
	return &Normalizer{event: event}
}

// Run produces exactly one record from a raw entry or fails. A failure means
// the entry is malformed (required fields missing) and must be skipped by the
// caller; it never aborts the batch.
func (n *Normalizer) Run(raw *extractor.RawVideo) (Record, error) {
	if raw.Thumbnail == "" {
		return Record{}, fmt.Errorf("missing thumbnail")
	}
	if raw.WebpageURL == "" {
		return Record{}, fmt.Errorf("missing webpage_url")
	}
	if raw.Duration == nil {
		return Record{}, fmt.Errorf("missing duration")
	}

	title := cmp.Or(raw.Fulltitle, raw.Title, raw.Filename, "Unknown")

	recorded, err := n.dateRecorded(raw.UploadDate)
	if err != nil {
		return Record{}, err
	}

	record := Record{
		CopyrightText: raw.License,
		Duration:      int(*raw.Duration),
		Language:      n.language(raw),
		Recorded:      recorded,
		RelatedURLs:   n.relatedURLs(raw),
		Speakers:      []string{"TODO"}, // Needs human intervention later
		ThumbnailURL:  raw.Thumbnail,
		Title:         title,
		Videos:        []Location{{Type: "youtube", URL: raw.WebpageURL}},
		Identifier:    DeriveIdentifier(title),
	}

	if n.event.MinimalDownload {
		record.Speakers = []string{}
		record.Tags = sortedStrings(n.event.Tags)
	} else {
		record.Tags = tagUnion(raw.Tags, n.event.Tags)
		description := raw.Description
		record.Description = &description
	}

	return record, nil
}

// dateRecorded parses the 8-digit upload date and clamps it to the event's
// declared range: anything outside [begin, end] becomes the configured
// default date.
func (n *Normalizer) dateRecorded(uploadDate string) (string, error) {
	parsed, err := time.Parse("20060102", uploadDate)
	if err != nil {
		return "", fmt.Errorf("invalid upload_date %q: %w", uploadDate, err)
	}

	if n.event.KnowDates {
		if parsed.Before(n.event.DateBegin) || parsed.After(n.event.DateEnd) {
			return n.event.DateDefault.Format("2006-01-02"), nil
		}
	}

	return parsed.Format("2006-01-02"), nil
}

// language takes the first format's declared language, falling back to the
// event default, and canonicalizes recognizable BCP 47 codes.
func (n *Normalizer) language(raw *extractor.RawVideo) string {
	code := ""
	if len(raw.Formats) > 0 {
		code = raw.Formats[0].Language
	}
	if code == "" {
		code = n.event.DefaultLanguage
	}
	if code == "" {
		return ""
	}

	tag, err := language.Parse(code)
	if err != nil {
		return code
	}
	return tag.String()
}

// relatedURLs copies the event's shared list and, outside minimal-download
// mode, appends URLs scanned from the description, deduplicated and sorted so
// serialization stays stable between runs.
func (n *Normalizer) relatedURLs(raw *extractor.RawVideo) []RelatedURL {
	urls := make([]RelatedURL, len(n.event.RelatedURLs))
	copy(urls, n.event.RelatedURLs)

	if n.event.MinimalDownload {
		return urls
	}

	seen := make(map[string]bool)
	var found []string
	for _, match := range urlPattern.FindAllString(raw.Description, -1) {
		if !seen[match] {
			seen[match] = true
			found = append(found, match)
		}
	}
	sort.Strings(found)

	for _, url := range found {
		urls = append(urls, RelatedURL{Label: url, URL: url})
	}

	return urls
}

func tagUnion(videoTags, eventTags []string) []string {
	set := make(map[string]bool, len(videoTags)+len(eventTags))
	for _, t := range videoTags {
		set[t] = true
	}
	for _, t := range eventTags {
		set[t] = true
	}

	tags := make([]string, 0, len(set))
	for t := range set {
		tags = append(tags, t)
	}
	sort.Strings(tags)
	return tags
}

func sortedStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	sort.Strings(out)
	return out
}
