// Package wordcache keeps the last word tree fetched from the server on disk so
// it can be shown while offline.
package wordcache

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/peterbourgon/diskv/v3"

	"github.com/mrlokans/zeeguu/internal/entities"
)

const defaultKey = "words"

// snapshot is the on-disk format of a cached tree.
type snapshot struct {
	Version int                 `json:"version"`
	Days    []entities.DayGroup `json:"days"`
}

const snapshotVersion = 1

// Cache stores one tree snapshot per account under the base path. Keys are
// derived from the account email, so switching accounts never shows another
// user's words.
type Cache struct {
	d *diskv.Diskv
}

// New creates a cache rooted at basePath.
func New(basePath string) *Cache {
	return &Cache{
		d: diskv.New(diskv.Options{
			BasePath:     basePath,
			Transform:    func(string) []string { return []string{} },
			CacheSizeMax: 1024 * 1024, // 1MB
		}),
	}
}

func cacheKey(email string) string {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return defaultKey
	}
	sum := sha1.Sum([]byte(email))
	return defaultKey + "-" + hex.EncodeToString(sum[:8])
}

// LoadWords returns the cached tree for email. A missing snapshot yields a
// nil tree and no error.
func (c *Cache) LoadWords(email string) ([]entities.DayGroup, error) {
	val, err := c.d.Read(cacheKey(email))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read word cache: %w", err)
	}

	var snap snapshot
	if err := json.Unmarshal(val, &snap); err != nil {
		return nil, fmt.Errorf("decode word cache: %w", err)
	}
	if snap.Version != snapshotVersion {
		return nil, nil
	}
	return snap.Days, nil
}

// SaveWords replaces the cached tree for email.
func (c *Cache) SaveWords(email string, tree []entities.DayGroup) error {
	data, err := json.Marshal(snapshot{Version: snapshotVersion, Days: tree})
	if err != nil {
		return fmt.Errorf("encode word cache: %w", err)
	}
	if err := c.d.Write(cacheKey(email), data); err != nil {
		return fmt.Errorf("write word cache: %w", err)
	}
	return nil
}

// Clear removes the cached tree for email.
func (c *Cache) Clear(email string) error {
	key := cacheKey(email)
	if !c.d.Has(key) {
		return nil
	}
	return c.d.Erase(key)
}
