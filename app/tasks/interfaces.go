package tasks

import "context"

// Extractor fetches the raw metadata payload for one source list. Satisfied
// by extractor.Extractor; injected so tests can feed canned payloads.
type Extractor interface {
	FetchRaw(ctx context.Context, url string) ([]byte, error)
}
