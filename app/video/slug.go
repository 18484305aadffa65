package video

import (
	"github.com/gosimple/slug"
)

// DeriveIdentifier turns a title into the filesystem-stable identifier used
// as the record's persistence key: lowercase, non-alphanumeric runs collapsed
// to single hyphens, no leading or trailing separators. Deterministic, so the
// same title always maps to the same identifier; numeric-suffix collision
// handling happens at persistence time, not here.
func DeriveIdentifier(title string) string {
	s := slug.Make(title)
	if s == "" {
		return "unknown"
	}
	return s
}
