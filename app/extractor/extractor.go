// Package extractor wraps the external yt-dlp binary. It is the only
// component that talks to the network, and it does so exclusively through
// yt-dlp's JSON dump mode; no video data is ever downloaded.
package extractor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
)

type Extractor struct {
	binary string
}

func New(binary string) *Extractor {
	return &Extractor{binary: binary}
}

// FetchRaw runs yt-dlp against a single source list (playlist URL or video
// URL) and returns the raw JSON payload. Private and unavailable videos are
// skipped by yt-dlp itself (--ignore-errors) and show up as null entries.
func (e *Extractor) FetchRaw(ctx context.Context, url string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, e.binary, "--dump-single-json", "--ignore-errors", url)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	slog.Debug("Running extractor", "binary", e.binary, "url", url)

	if err := cmd.Run(); err != nil {
		// yt-dlp exits non-zero when any entry of a list failed, even with
		// --ignore-errors; a usable payload on stdout still counts as success.
		if stdout.Len() == 0 {
			return nil, fmt.Errorf("failed to run %s: %w: %s", e.binary, err, strings.TrimSpace(stderr.String()))
		}
		slog.Warn("Extractor exited non-zero, using partial payload", "url", url, "error", err)
	}

	return stdout.Bytes(), nil
}

// ParseResult decodes a yt-dlp JSON dump into its entries. A playlist payload
// yields its entry list, nil entries included (skipped videos); a bare video
// payload yields a single-entry slice.
func ParseResult(data []byte) ([]*RawVideo, error) {
	var res result
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, fmt.Errorf("failed to parse extractor payload: %w", err)
	}

	if res.Entries != nil {
		return res.Entries, nil
	}

	var single RawVideo
	if err := json.Unmarshal(data, &single); err != nil {
		return nil, fmt.Errorf("failed to parse extractor payload: %w", err)
	}
	return []*RawVideo{&single}, nil
}
