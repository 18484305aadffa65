// Package storage owns the on-disk layout of one event inside the pyvideo
// repository: the event directory, its category.json and one JSON file per
// video record under videos/. Output is byte-stable (sorted keys, two-space
// indent, trailing newline, no HTML escaping) so re-runs produce meaningful
// version-control diffs.
package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/renameio/v2"

	"github.com/pyvideo/pyvideo-scrape/app/video"
)

const recordExt = ".json"

type Store struct {
	eventDir string
	videoDir string
}

func NewStore(repoDir, eventDir string) *Store {
	dir := filepath.Join(repoDir, eventDir)
	return &Store{
		eventDir: dir,
		videoDir: filepath.Join(dir, "videos"),
	}
}

// EnsureLayout creates the event directory and its videos subdirectory.
// Returns false when the layout already existed, which callers treat as "this
// event was scraped before".
func (s *Store) EnsureLayout() (bool, error) {
	err := os.Mkdir(s.eventDir, 0755)
	if os.IsExist(err) {
		if mkErr := os.MkdirAll(s.videoDir, 0755); mkErr != nil {
			return false, fmt.Errorf("failed to create video directory: %w", mkErr)
		}
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to create event directory: %w", err)
	}
	if err := os.Mkdir(s.videoDir, 0755); err != nil {
		return false, fmt.Errorf("failed to create video directory: %w", err)
	}
	slog.Debug("Dir created", "path", s.videoDir)
	return true, nil
}

// WriteCategory writes the event's category.json.
func (s *Store) WriteCategory(title string) error {
	path := filepath.Join(s.eventDir, "category.json")
	if err := writeJSON(path, map[string]string{"title": title}); err != nil {
		return err
	}
	slog.Debug("File created", "path", path)
	return nil
}

// LoadRecords reads the previously persisted record set. The identifier of
// each record is its filename stem. A missing videos directory yields an
// empty set.
func (s *Store) LoadRecords() (video.Set, error) {
	files, err := filepath.Glob(filepath.Join(s.videoDir, "*"+recordExt))
	if err != nil {
		return nil, fmt.Errorf("failed to list record files: %w", err)
	}

	set := make(video.Set, len(files))
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read record %s: %w", file, err)
		}
		var record video.Record
		if err := json.Unmarshal(data, &record); err != nil {
			return nil, fmt.Errorf("failed to parse record %s: %w", file, err)
		}
		record.Identifier = strings.TrimSuffix(filepath.Base(file), recordExt)
		set[record.Identifier] = record
	}

	return set, nil
}

// Wipe deletes every persisted record file, so stale records cannot survive a
// replace-all run.
func (s *Store) Wipe() error {
	files, err := filepath.Glob(filepath.Join(s.videoDir, "*"+recordExt))
	if err != nil {
		return fmt.Errorf("failed to list record files: %w", err)
	}
	for _, file := range files {
		if err := os.Remove(file); err != nil {
			return fmt.Errorf("failed to remove %s: %w", file, err)
		}
	}
	if len(files) > 0 {
		slog.Debug("Wiped stored records", "count", len(files))
	}
	return nil
}

// WriteRecords persists the final record set, one file per record, in slice
// order, and returns the identifiers actually written. owned names
// identifiers whose existing files legitimately belong to the record being
// written (records that adopted their identifier from the stored set) and may
// be overwritten in place; any other existing path is a collision and gets a
// numeric suffix (-2, -3, ...) until a free path is found.
//
// Writes are individually atomic (write-to-temp plus rename) but there is no
// transaction across the set: a failure leaves already-written records in
// place.
func (s *Store) WriteRecords(records []video.Record, owned map[string]bool) (map[string]bool, error) {
	written := make(map[string]bool, len(records))

	for _, record := range records {
		identifier := s.resolveCollision(record.Identifier, owned, written)
		written[identifier] = true

		path := filepath.Join(s.videoDir, identifier+recordExt)
		if err := writeJSON(path, record); err != nil {
			return nil, fmt.Errorf("failed to write record %s: %w", identifier, err)
		}
		slog.Debug("File created", "path", path)
	}

	return written, nil
}

// Prune removes persisted record files whose identifier is not in keep, so a
// replace run discards stored records that are absent from the final set.
func (s *Store) Prune(keep map[string]bool) error {
	files, err := filepath.Glob(filepath.Join(s.videoDir, "*"+recordExt))
	if err != nil {
		return fmt.Errorf("failed to list record files: %w", err)
	}
	for _, file := range files {
		identifier := strings.TrimSuffix(filepath.Base(file), recordExt)
		if keep[identifier] {
			continue
		}
		if err := os.Remove(file); err != nil {
			return fmt.Errorf("failed to remove %s: %w", file, err)
		}
		slog.Debug("Removed stale record", "path", file)
	}
	return nil
}

func (s *Store) resolveCollision(identifier string, owned, written map[string]bool) string {
	candidate := identifier
	for n := 2; ; n++ {
		if !written[candidate] {
			if owned[candidate] && candidate == identifier {
				break
			}
			if _, err := os.Stat(filepath.Join(s.videoDir, candidate+recordExt)); os.IsNotExist(err) {
				break
			}
		}
		candidate = fmt.Sprintf("%s-%d", identifier, n)
	}
	return candidate
}

// EventDir returns the event directory path inside the repository.
func (s *Store) EventDir() string {
	return s.eventDir
}

func writeJSON(path string, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return renameio.WriteFile(path, buf.Bytes(), 0644)
}
