// Package cache keeps short-lived JSON copies of API listings on disk.
//
// Files are scoped per resource, server and account. Entries expire after
// DefaultTTL. Set ELASTICINBOX_NO_CACHE to any value to bypass the cache.
package cache

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const DefaultTTL = 5 * time.Minute

const (
	envDir     = "ELASTICINBOX_CACHE_DIR"
	envDisable = "ELASTICINBOX_NO_CACHE"
)

type entry struct {
	CachedAt time.Time       `json:"cached_at"`
	Items    json.RawMessage `json:"items"`
}

// Store reads and writes a single cache key (resource+server+account).
type Store struct {
	path string
	ttl  time.Duration
}

// NewStore creates a Store with the default TTL.
// key is the resource type (e.g. "labels"), server identifies the
// ElasticInbox endpoint and account is the mailbox as user@domain.
func NewStore(dir, key, server, account string) *Store {
	return NewStoreWithTTL(dir, key, server, account, DefaultTTL)
}

// NewStoreWithTTL creates a Store with a custom TTL.
func NewStoreWithTTL(dir, key, server, account string, ttl time.Duration) *Store {
	return &Store{
		path: filepath.Join(dir, sanitizeKey(key)+"_"+digest(server)+"_"+digest(strings.ToLower(account))+".json"),
		ttl:  ttl,
	}
}

func digest(s string) string {
	sum := sha1.Sum([]byte(s))
	return hex.EncodeToString(sum[:6])
}

// Get loads cached items into dst. Returns false on miss (no file, expired, disabled).
func (s *Store) Get(dst any) bool {
	if disabled() {
		return false
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return false
	}
	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		return false
	}
	if time.Since(e.CachedAt) > s.ttl {
		return false
	}
	return json.Unmarshal(e.Items, dst) == nil
}

// Put writes items to the cache. Silently no-ops on error or when disabled.
func (s *Store) Put(items any) {
	if disabled() {
		return
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return
	}
	data, err := json.Marshal(entry{CachedAt: time.Now(), Items: raw})
	if err != nil {
		return
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		_ = os.Remove(tmp)
		return
	}
	_ = os.Rename(tmp, s.path)
}

// Clear removes this cache file.
func (s *Store) Clear() {
	_ = os.Remove(s.path)
}

// ClearAll removes every cache file from dir and returns how many were
// removed. Files not following the cache naming scheme are left alone. A
// missing dir is not an error.
func ClearAll(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}
	removed := 0
	for _, e := range entries {
		if e.IsDir() || !isCacheFilename(e.Name()) {
			continue
		}
		if err := os.Remove(filepath.Join(dir, e.Name())); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

// DefaultDir returns ELASTICINBOX_CACHE_DIR when set, otherwise
// "$XDG_CACHE_HOME/elasticinbox" or the platform equivalent.
func DefaultDir() (string, error) {
	if dir := strings.TrimSpace(os.Getenv(envDir)); dir != "" {
		return dir, nil
	}
	base, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "elasticinbox"), nil
}

func disabled() bool {
	return os.Getenv(envDisable) != ""
}

func sanitizeKey(key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return "cache"
	}
	return strings.NewReplacer("/", "-", "\\", "-", "_", "-").Replace(key)
}

// isCacheFilename reports whether name looks like "<key>_<12hex>_<12hex>.json".
func isCacheFilename(name string) bool {
	if filepath.Ext(name) != ".json" {
		return false
	}
	parts := strings.Split(strings.TrimSuffix(name, ".json"), "_")
	if len(parts) != 3 || parts[0] == "" {
		return false
	}
	return isDigest(parts[1]) && isDigest(parts[2])
}

func isDigest(s string) bool {
	if len(s) != 12 {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}
