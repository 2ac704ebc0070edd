package overpass

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// Cache stores raw API responses keyed by request hash so repeated runs for
// the same city do not hammer the public Overpass and Nominatim instances.
type Cache struct {
	db  *sql.DB
	ttl time.Duration
}

const cacheMigration = `
CREATE TABLE IF NOT EXISTS api_cache (
	request_hash TEXT PRIMARY KEY,
	response     BLOB NOT NULL,
	fetched_at   DATETIME NOT NULL DEFAULT (datetime('now')),
	expires_at   DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_api_cache_expires_at ON api_cache(expires_at);
`

// OpenCache opens (or creates) the response cache at the given path and
// configures WAL mode.
func OpenCache(path string, ttl time.Duration) (*Cache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, eris.Wrap(err, "overpass: open cache")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "overpass: exec %s", pragma)
		}
	}
	if _, err := db.Exec(cacheMigration); err != nil {
		db.Close()
		return nil, eris.Wrap(err, "overpass: migrate cache")
	}
	c := &Cache{db: db, ttl: ttl}
	if n, err := c.Prune(context.Background()); err != nil {
		zap.L().Warn("pruning api cache failed", zap.Error(err))
	} else if n > 0 {
		zap.L().Debug("pruned expired api cache entries", zap.Int64("removed", n))
	}
	return c, nil
}

// Close closes the cache database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// cacheKey returns SHA-256 hex of the request payload.
func cacheKey(payload string) string {
	h := sha256.Sum256([]byte(payload))
	return fmt.Sprintf("%x", h)
}

// Get returns the cached response for the request payload, or nil on a miss
// or an expired entry.
func (c *Cache) Get(ctx context.Context, payload string) []byte {
	key := cacheKey(payload)
	var body []byte
	err := c.db.QueryRowContext(ctx,
		"SELECT response FROM api_cache WHERE request_hash = ? AND expires_at > datetime('now')",
		key,
	).Scan(&body)
	if err != nil {
		return nil
	}
	zap.L().Debug("api cache hit", zap.String("key", key[:12]))
	return body
}

// Put stores a response for the request payload, replacing any prior entry.
// The expiry is computed inside SQLite so it compares cleanly with
// datetime('now') on lookup.
func (c *Cache) Put(ctx context.Context, payload string, body []byte) error {
	ttlModifier := fmt.Sprintf("%+d seconds", int64(c.ttl.Seconds()))
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO api_cache (request_hash, response, fetched_at, expires_at)
		VALUES (?, ?, datetime('now'), datetime('now', ?))
		ON CONFLICT (request_hash) DO UPDATE SET
			response = excluded.response,
			fetched_at = excluded.fetched_at,
			expires_at = excluded.expires_at`,
		cacheKey(payload), body, ttlModifier,
	)
	if err != nil {
		return eris.Wrap(err, "overpass: store cache")
	}
	return nil
}

// Prune deletes expired entries. Returns the number removed.
func (c *Cache) Prune(ctx context.Context) (int64, error) {
	res, err := c.db.ExecContext(ctx, "DELETE FROM api_cache WHERE expires_at <= datetime('now')")
	if err != nil {
		return 0, eris.Wrap(err, "overpass: prune cache")
	}
	n, _ := res.RowsAffected()
	return n, nil
}
