package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/pyvideo/pyvideo-scrape/app/video"
)

// Load reads and validates the events document. A structurally broken file is
// fatal; an individually invalid event definition is logged and dropped so
// the remaining events still run.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read events file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse events file: %w", err)
	}

	if config.RepoDir == "" {
		return nil, fmt.Errorf("repo_dir is required")
	}
	config.RepoDir, err = expandUser(config.RepoDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve repo_dir: %w", err)
	}

	valid := make([]Event, 0, len(config.Events))
	for i := range config.Events {
		event := config.Events[i]
		setDefaults(&event)
		if err := validate(&event); err != nil {
			slog.Error("Skipping invalid event definition", "title", event.Title, "dir", event.Dir, "error", err)
			continue
		}
		valid = append(valid, event)
	}
	config.Events = valid

	return &config, nil
}

func setDefaults(event *Event) {
	if event.Dates != nil {
		if event.Dates.End.IsZero() {
			event.Dates.End = event.Dates.Begin
		}
		if event.Dates.Default.IsZero() {
			event.Dates.Default = event.Dates.Begin
		}
	}
}

func validate(event *Event) error {
	if event.Title == "" {
		return fmt.Errorf("title can't be null")
	}
	if event.Dir == "" {
		return fmt.Errorf("dir can't be null")
	}
	if event.Issue == 0 {
		return fmt.Errorf("issue can't be null")
	}
	if len(event.YoutubeLists) == 0 {
		return fmt.Errorf("youtube_list can't be null")
	}

	if event.Dates != nil && event.Dates.Begin.IsZero() {
		return fmt.Errorf("dates.begin is required when dates are set")
	}

	if event.Overwrite != nil {
		if _, err := video.ParsePolicyMode(event.Overwrite.Policy); err != nil {
			return err
		}
		for _, field := range event.Overwrite.OverwriteFields {
			if !video.FieldNames[field] {
				return fmt.Errorf("unknown overwrite field: %q", field)
			}
		}
	}

	return nil
}

// expandUser resolves a leading ~ the way the shell would, then makes the
// path absolute.
func expandUser(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return filepath.Abs(path)
}
