package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pyvideo/pyvideo-scrape/app/video"
)

func writeEventsFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "events.yml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadValidConfig(t *testing.T) {
	path := writeEventsFile(t, `
repo_dir: /tmp/pyvideo-data

events:
  - title: "Test Conf 2020"
    dir: test-conf-2020
    issue: 123
    youtube_list:
      - https://www.youtube.com/playlist?list=PL1
      - https://www.youtube.com/playlist?list=PL2
    language: en
    tags:
      - python
    related_urls:
      - label: Conference site
        url: https://conf.example.org
    dates:
      begin: 2020-10-02
      end: 2020-10-04
      default: 2020-10-02
`)

	config, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if config.RepoDir != "/tmp/pyvideo-data" {
		t.Errorf("Expected repo_dir '/tmp/pyvideo-data', got '%s'", config.RepoDir)
	}
	if len(config.Events) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(config.Events))
	}

	event := config.Events[0]
	if event.Title != "Test Conf 2020" {
		t.Errorf("Expected title 'Test Conf 2020', got '%s'", event.Title)
	}
	if event.Issue != 123 {
		t.Errorf("Expected issue 123, got %d", event.Issue)
	}
	if len(event.YoutubeLists) != 2 {
		t.Errorf("Expected 2 youtube lists, got %d", len(event.YoutubeLists))
	}
	if event.Dates == nil || event.Dates.End.Format("2006-01-02") != "2020-10-04" {
		t.Errorf("Expected dates.end 2020-10-04, got %+v", event.Dates)
	}
	if event.Branch() != "test-conf-2020" {
		t.Errorf("Expected branch 'test-conf-2020', got '%s'", event.Branch())
	}
	if event.Policy().Mode != video.PolicyReplaceNewOnly {
		t.Errorf("Expected default policy replace_new_only, got '%s'", event.Policy().Mode)
	}
}

func TestLoadScalarYoutubeList(t *testing.T) {
	path := writeEventsFile(t, `
repo_dir: /tmp/pyvideo-data
events:
  - title: "Single List"
    dir: single-list
    issue: 7
    youtube_list: https://www.youtube.com/playlist?list=PL1
`)

	config, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(config.Events) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(config.Events))
	}
	lists := config.Events[0].YoutubeLists
	if len(lists) != 1 || lists[0] != "https://www.youtube.com/playlist?list=PL1" {
		t.Errorf("Expected scalar youtube_list to become a one-element list, got %v", lists)
	}
}

func TestLoadDatesDefaults(t *testing.T) {
	path := writeEventsFile(t, `
repo_dir: /tmp/pyvideo-data
events:
  - title: "Dates"
    dir: dates
    issue: 1
    youtube_list: https://example.org/list
    dates:
      begin: 2019-05-01
`)

	config, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	dates := config.Events[0].Dates
	if dates.End != dates.Begin {
		t.Errorf("Expected dates.end to default to begin, got %v", dates.End)
	}
	if dates.Default != dates.Begin {
		t.Errorf("Expected dates.default to default to begin, got %v", dates.Default)
	}
}

func TestLoadSkipsInvalidEvent(t *testing.T) {
	path := writeEventsFile(t, `
repo_dir: /tmp/pyvideo-data
events:
  - title: "Missing Issue"
    dir: missing-issue
    youtube_list: https://example.org/list
  - title: "Valid"
    dir: valid
    issue: 2
    youtube_list: https://example.org/list
`)

	config, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(config.Events) != 1 {
		t.Fatalf("Expected invalid event to be dropped, got %d events", len(config.Events))
	}
	if config.Events[0].Dir != "valid" {
		t.Errorf("Expected remaining event 'valid', got '%s'", config.Events[0].Dir)
	}
}

func TestLoadOverwritePolicy(t *testing.T) {
	path := writeEventsFile(t, `
repo_dir: /tmp/pyvideo-data
events:
  - title: "Merge"
    dir: merge-event
    issue: 3
    youtube_list: https://example.org/list
    overwrite:
      policy: merge
      add_new_files: true
      overwrite_fields:
        - title
        - recorded
`)

	config, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	event := config.Events[0]
	if !event.HasExplicitPolicy() {
		t.Error("Expected explicit policy")
	}
	policy := event.Policy()
	if policy.Mode != video.PolicyMerge {
		t.Errorf("Expected policy merge, got '%s'", policy.Mode)
	}
	if !policy.AddNewFiles {
		t.Error("Expected add_new_files true")
	}
	if len(policy.OverwriteFields) != 2 {
		t.Errorf("Expected 2 overwrite fields, got %d", len(policy.OverwriteFields))
	}
}

func TestLoadRejectsUnknownPolicyAndField(t *testing.T) {
	path := writeEventsFile(t, `
repo_dir: /tmp/pyvideo-data
events:
  - title: "Bad Policy"
    dir: bad-policy
    issue: 4
    youtube_list: https://example.org/list
    overwrite:
      policy: upsert
  - title: "Bad Field"
    dir: bad-field
    issue: 5
    youtube_list: https://example.org/list
    overwrite:
      policy: merge
      overwrite_fields:
        - slug
`)

	config, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(config.Events) != 0 {
		t.Errorf("Expected both invalid events dropped, got %d", len(config.Events))
	}
}

func TestLoadMissingRepoDir(t *testing.T) {
	path := writeEventsFile(t, `
events:
  - title: "No Repo"
    dir: no-repo
    issue: 6
    youtube_list: https://example.org/list
`)

	if _, err := Load(path); err == nil {
		t.Error("Expected error for missing repo_dir")
	}
}

func TestMinimalDownloadBranchSuffix(t *testing.T) {
	event := Event{Dir: "conf-2020", MinimalDownload: true}
	if event.Branch() != "conf-2020-minimal" {
		t.Errorf("Expected branch 'conf-2020-minimal', got '%s'", event.Branch())
	}
}
