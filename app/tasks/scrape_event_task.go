package tasks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pyvideo/pyvideo-scrape/app/config"
	"github.com/pyvideo/pyvideo-scrape/app/database"
	"github.com/pyvideo/pyvideo-scrape/app/extractor"
	"github.com/pyvideo/pyvideo-scrape/app/gitrepo"
	"github.com/pyvideo/pyvideo-scrape/app/storage"
	"github.com/pyvideo/pyvideo-scrape/app/video"
)

// ErrAlreadyScraped marks an event whose branch or directory already exists
// and that has no overwrite policy: nothing to do, not a failure.
var ErrAlreadyScraped = errors.New("event already scraped")

// ScrapeEventTask runs one event end to end: branch, extract, normalize,
// reconcile against the stored record set, persist, commit.
type ScrapeEventTask struct {
	Task
	Event config.Event

	repo      *gitrepo.Repo
	store     *storage.Store
	extractor Extractor
	cache     database.ScrapeCacheRepository

	baseBranch string
	refresh    bool
	pushAll    bool
}

func NewScrapeEventTask(event config.Event, repo *gitrepo.Repo, store *storage.Store,
	ext Extractor, cache database.ScrapeCacheRepository, baseBranch string, refresh, pushAll bool) *ScrapeEventTask {
	return &ScrapeEventTask{
		Task:       NewTask(TaskTypeScrapeEvent, event.Dir),
		Event:      event,
		repo:       repo,
		store:      store,
		extractor:  ext,
		cache:      cache,
		baseBranch: baseBranch,
		refresh:    refresh,
		pushAll:    pushAll,
	}
}

func (t *ScrapeEventTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	branch := t.Event.Branch()

	exists, err := t.repo.BranchExists(branch)
	if err != nil {
		return err
	}
	if exists && !t.Event.HasExplicitPolicy() {
		return fmt.Errorf("branch %s exists: %w", branch, ErrAlreadyScraped)
	}

	if exists {
		if err := t.repo.Checkout(branch); err != nil {
			return err
		}
	} else {
		if err := t.repo.Checkout(t.baseBranch); err != nil {
			return err
		}
		if err := t.repo.CreateBranch(branch); err != nil {
			return err
		}
	}

	created, err := t.store.EnsureLayout()
	if err != nil {
		return err
	}
	if !created && !t.Event.HasExplicitPolicy() {
		return fmt.Errorf("directory %s exists: %w", t.Event.Dir, ErrAlreadyScraped)
	}

	if err := t.store.WriteCategory(t.Event.Title); err != nil {
		return err
	}

	fresh, skipped, err := t.downloadVideoData(ctx)
	if err != nil {
		return err
	}

	old, err := t.store.LoadRecords()
	if err != nil {
		return err
	}

	policy := t.Event.Policy()
	final := video.Reconcile(policy, old, fresh)

	if policy.Mode == video.PolicyReplaceAll {
		if err := t.store.Wipe(); err != nil {
			return err
		}
	}

	// A record that adopted its identifier from the stored set owns that
	// path and overwrites it in place, whatever the policy.
	owned := make(map[string]bool, len(old))
	for id := range old {
		owned[id] = true
	}

	written, err := t.store.WriteRecords(final, owned)
	if err != nil {
		return err
	}

	if policy.Mode == video.PolicyReplaceNewOnly {
		if err := t.store.Prune(written); err != nil {
			return err
		}
	}

	if err := t.commit(branch); err != nil {
		return err
	}

	slog.Info("Task completed",
		"type", "ScrapedEvent",
		"event", t.EventName,
		"branch", branch,
		"duration", t.GetDuration(),
		"stored", len(old),
		"scraped", len(fresh),
		"skipped", skipped,
		"written", len(final))

	return nil
}

// downloadVideoData extracts every configured source list and normalizes the
// entries. Malformed or unavailable videos are warnings, never fatal; a
// failed list extraction is fatal for the event.
func (t *ScrapeEventTask) downloadVideoData(ctx context.Context) ([]video.Record, int, error) {
	normalizer := video.NewNormalizer(t.Event.Context())

	var records []video.Record
	skipped := 0

	for _, url := range t.Event.YoutubeLists {
		entries, err := t.extractEntries(ctx, url)
		if err != nil {
			return nil, 0, err
		}

		for _, raw := range entries {
			if raw == nil {
				slog.Warn("Null video entry", "event", t.EventName, "url", url)
				skipped++
				continue
			}
			record, err := normalizer.Run(raw)
			if err != nil {
				slog.Warn("Skipping malformed video", "event", t.EventName, "video", raw.WebpageURL, "error", err)
				skipped++
				continue
			}
			records = append(records, record)
		}
		slog.Debug("Url scraped", "url", url)
	}

	return records, skipped, nil
}

func (t *ScrapeEventTask) extractEntries(ctx context.Context, url string) ([]*extractor.RawVideo, error) {
	if t.cache != nil && !t.refresh {
		payload, hit, err := t.cache.GetPayload(url)
		if err != nil {
			return nil, err
		}
		if hit {
			slog.Debug("Using cached payload", "url", url)
			return extractor.ParseResult(payload)
		}
	}

	payload, err := t.extractor.FetchRaw(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to extract %s: %w", url, err)
	}

	if t.cache != nil {
		if err := t.cache.StorePayload(url, payload); err != nil {
			slog.Warn("Failed to cache payload", "url", url, "error", err)
		}
	}

	return extractor.ParseResult(payload)
}

func (t *ScrapeEventTask) commit(branch string) error {
	if err := t.repo.Add(t.Event.Dir); err != nil {
		return err
	}
	if err := t.repo.Commit(t.commitMessage(branch)); err != nil {
		return err
	}

	if t.Event.MinimalDownload || t.pushAll {
		if err := t.repo.Push(branch); err != nil {
			return err
		}
	}

	if err := t.repo.Checkout(t.baseBranch); err != nil {
		return err
	}

	slog.Debug("Event committed", "branch", branch)
	return nil
}

// commitMessage embeds the event's configuration snippet plus the
// machine-readable issue marker: "Fixes #N" for full scrapes, the minimal
// download marker otherwise.
func (t *ScrapeEventTask) commitMessage(branch string) string {
	marker := fmt.Sprintf("Fixes #%d", t.Event.Issue)
	if t.Event.MinimalDownload {
		marker = fmt.Sprintf("minimal download executed for #%d", t.Event.Issue)
	}
	return fmt.Sprintf("Scraped %s\n\n%s\n%s\n", branch, t.Event.Snippet(), marker)
}
