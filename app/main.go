// Scrapes conference talk metadata into a pyvideo repository: one branch and
// one commit per configured event, one JSON record per video.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofrs/flock"

	"github.com/pyvideo/pyvideo-scrape/app/cfg"
	"github.com/pyvideo/pyvideo-scrape/app/config"
	"github.com/pyvideo/pyvideo-scrape/app/database"
	"github.com/pyvideo/pyvideo-scrape/app/extractor"
	"github.com/pyvideo/pyvideo-scrape/app/gitrepo"
	"github.com/pyvideo/pyvideo-scrape/app/logger"
	"github.com/pyvideo/pyvideo-scrape/app/storage"
	"github.com/pyvideo/pyvideo-scrape/app/tasks"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	logger.Setup(appCfg.Debug)

	timeInit := time.Now()
	slog.Debug("Time init", "time", timeInit.Format(time.RFC3339))
	slog.Info("Starting pyvideo-scrape", "version", appCfg.Version)

	events, err := config.Load(appCfg.EventsFile)
	if err != nil {
		slog.Error("Failed to load events file", "path", appCfg.EventsFile, "error", err)
		os.Exit(1)
	}
	slog.Info("Loaded events configuration", "repo", events.RepoDir, "events", len(events.Events))

	repo, err := gitrepo.Open(events.RepoDir)
	if err != nil {
		slog.Error("Failed to open target repository", "path", events.RepoDir, "error", err)
		os.Exit(1)
	}

	// Single-writer assumption: refuse to run next to another scrape process
	// touching the same repository.
	runLock := flock.New(repo.LockPath())
	locked, err := runLock.TryLock()
	if err != nil {
		slog.Error("Failed to acquire repository lock", "path", repo.LockPath(), "error", err)
		os.Exit(1)
	}
	if !locked {
		slog.Error("Another scrape is already running against this repository", "path", repo.LockPath())
		os.Exit(1)
	}
	defer runLock.Unlock()

	var cache database.ScrapeCacheRepository
	if appCfg.CacheDB != "" {
		db, err := database.NewConnection(appCfg.CacheDB)
		if err != nil {
			slog.Error("Failed to open cache database", "path", appCfg.CacheDB, "error", err)
			os.Exit(1)
		}
		defer db.Close()

		version, dirty, err := database.RunMigrations(db)
		if err != nil {
			slog.Error("Failed to migrate cache database", "error", err)
			os.Exit(1)
		}
		slog.Debug("Cache database ready", "version", version, "dirty", dirty)

		cache = database.NewScrapeCacheRepository(db)
	}

	ext := extractor.New(appCfg.YtDlpPath)

	taskList := make([]tasks.TaskInterface, 0, len(events.Events))
	for _, event := range events.Events {
		store := storage.NewStore(events.RepoDir, event.Dir)
		taskList = append(taskList, tasks.NewScrapeEventTask(
			event, repo, store, ext, cache,
			appCfg.BaseBranch, appCfg.Refresh, appCfg.PushAll))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	failed := tasks.NewRunner(taskList).Run(ctx)

	timeEnd := time.Now()
	slog.Debug("Time end", "time", timeEnd.Format(time.RFC3339))
	slog.Info("Run finished", "duration", timeEnd.Sub(timeInit).Round(time.Millisecond), "failed", failed)

	if failed > 0 {
		runLock.Unlock()
		os.Exit(1)
	}
}
