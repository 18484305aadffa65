package database

import (
	"database/sql"
	"fmt"
	"time"
)

type scrapeCacheRepository struct {
	db *DB
}

func NewScrapeCacheRepository(db *DB) ScrapeCacheRepository {
	return &scrapeCacheRepository{db: db}
}

// GetPayload returns the cached raw payload for a source list, if any.
func (r *scrapeCacheRepository) GetPayload(sourceURL string) ([]byte, bool, error) {
	var payload []byte
	err := r.db.QueryRow(`
		SELECT payload FROM scrape_cache WHERE source_url = ?
	`, sourceURL).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cached payload: %w", err)
	}
	return payload, true, nil
}

// StorePayload caches the raw payload for a source list, replacing any prior
// payload for the same URL.
func (r *scrapeCacheRepository) StorePayload(sourceURL string, payload []byte) error {
	_, err := r.db.Exec(`
		INSERT INTO scrape_cache (source_url, payload, fetched_at)
		VALUES (?, ?, ?)
		ON CONFLICT (source_url) DO UPDATE SET
			payload = excluded.payload,
			fetched_at = excluded.fetched_at
	`, sourceURL, payload, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to store payload: %w", err)
	}
	return nil
}
