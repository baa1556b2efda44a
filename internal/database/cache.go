package database

import "fmt"

// ClaimActivity records that detail-level processing for the activity has
// been attempted. It is committed immediately, before any detail fetch,
// so cache membership bounds the set of attempted-but-incomplete
// activities.
func (db *DB) ClaimActivity(activityID int64) error {
	_, err := db.conn.Exec("INSERT OR REPLACE INTO cache (id) VALUES (?)", activityID)
	if err != nil {
		return fmt.Errorf("failed to claim activity %d: %w", activityID, err)
	}
	return nil
}

// CachedIDs returns every activity id present in the cache table.
func (db *DB) CachedIDs() ([]int64, error) {
	return db.queryIDs("SELECT id FROM cache")
}

// ClearCache deletes all cache rows. Manual maintenance only: clearing
// the cache makes every listed activity novel again on the next run.
func (db *DB) ClearCache() error {
	_, err := db.conn.Exec("DELETE FROM cache")
	if err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	return nil
}
