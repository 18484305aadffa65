package extractor

// RawVideo is one entry as emitted by yt-dlp's JSON dump. Only the fields the
// normalizer consumes are decoded; everything else in the payload is ignored.
type RawVideo struct {
	ID          string      `json:"id"`
	Fulltitle   string      `json:"fulltitle"`
	Title       string      `json:"title"`
	Filename    string      `json:"_filename"`
	Thumbnail   string      `json:"thumbnail"`
	WebpageURL  string      `json:"webpage_url"`
	UploadDate  string      `json:"upload_date"` // YYYYMMDD
	License     string      `json:"license"`
	Duration    *float64    `json:"duration"` // seconds
	Formats     []RawFormat `json:"formats"`
	Tags        []string    `json:"tags"`
	Description string      `json:"description"`
}

// RawFormat carries the per-format fields we care about.
type RawFormat struct {
	Language string `json:"language"`
}

// result is the top-level shape of a yt-dlp dump: playlists carry entries,
// single videos are the entry itself.
type result struct {
	Entries []*RawVideo `json:"entries"`
}
