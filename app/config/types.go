package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/pyvideo/pyvideo-scrape/app/video"
)

// Config is the whole events.yml document: one target repository and the
// events to scrape into it.
type Config struct {
	RepoDir string  `yaml:"repo_dir"`
	Events  []Event `yaml:"events"`
}

// Event is one conference/run definition.
type Event struct {
	Title           string             `yaml:"title"`
	Dir             string             `yaml:"dir"`
	Issue           int                `yaml:"issue"`
	YoutubeLists    StringList         `yaml:"youtube_list"`
	RelatedURLs     []video.RelatedURL `yaml:"related_urls,omitempty"`
	Language        string             `yaml:"language,omitempty"`
	Tags            []string           `yaml:"tags,omitempty"`
	Dates           *EventDates        `yaml:"dates,omitempty"`
	MinimalDownload bool               `yaml:"minimal_download,omitempty"`
	Overwrite       *OverwriteConfig   `yaml:"overwrite,omitempty"`
}

// EventDates is the event's known date range. End and Default fall back to
// Begin when omitted.
type EventDates struct {
	Begin   time.Time `yaml:"begin"`
	End     time.Time `yaml:"end"`
	Default time.Time `yaml:"default"`
}

// OverwriteConfig configures what happens to previously persisted records.
type OverwriteConfig struct {
	Policy          string   `yaml:"policy"`
	AddNewFiles     bool     `yaml:"add_new_files,omitempty"`
	OverwriteFields []string `yaml:"overwrite_fields,omitempty"`
}

// StringList accepts either a single YAML scalar or a sequence of scalars.
type StringList []string

func (s *StringList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		var single string
		if err := value.Decode(&single); err != nil {
			return err
		}
		*s = StringList{single}
		return nil
	case yaml.SequenceNode:
		var list []string
		if err := value.Decode(&list); err != nil {
			return err
		}
		*s = StringList(list)
		return nil
	default:
		return fmt.Errorf("youtube_list must be a string or a list of strings")
	}
}

// Branch returns the git branch name for the event; minimal downloads carry a
// suffix marker so reviewers can tell them apart at a glance.
func (e *Event) Branch() string {
	if e.MinimalDownload {
		return e.Dir + "-minimal"
	}
	return e.Dir
}

// HasExplicitPolicy reports whether an overwrite policy was configured. An
// existing branch is only re-entered (and reconciled) for such events;
// otherwise it means the event was already scraped and is skipped.
func (e *Event) HasExplicitPolicy() bool {
	return e.Overwrite != nil
}

// Policy maps the configuration to the reconciliation policy. Absent
// configuration means replace-new-only.
func (e *Event) Policy() video.Policy {
	if e.Overwrite == nil {
		return video.Policy{Mode: video.PolicyReplaceNewOnly}
	}
	mode, err := video.ParsePolicyMode(e.Overwrite.Policy)
	if err != nil {
		// Validated at load time; an invalid mode here falls back to default.
		return video.Policy{Mode: video.PolicyReplaceNewOnly}
	}
	return video.Policy{
		Mode:            mode,
		AddNewFiles:     e.Overwrite.AddNewFiles,
		OverwriteFields: e.Overwrite.OverwriteFields,
	}
}

// Context builds the normalizer's view of the event.
func (e *Event) Context() video.EventContext {
	ctx := video.EventContext{
		DefaultLanguage: e.Language,
		Tags:            append([]string{}, e.Tags...),
		RelatedURLs:     append([]video.RelatedURL{}, e.RelatedURLs...),
		MinimalDownload: e.MinimalDownload,
	}
	if e.Dates != nil {
		ctx.KnowDates = true
		ctx.DateBegin = e.Dates.Begin
		ctx.DateEnd = e.Dates.End
		ctx.DateDefault = e.Dates.Default
	}
	return ctx
}

// Snippet renders the event definition back to YAML for embedding in the
// commit message.
func (e *Event) Snippet() string {
	data, err := yaml.Marshal(e)
	if err != nil {
		return ""
	}
	return string(data)
}
