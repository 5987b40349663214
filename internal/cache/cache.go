// Package cache implements a file-backed, content-addressed key/value
// store: values are small and stable (manifests, referrer indices,
// migration scripts), so a last-writer-wins policy on concurrent writes of
// the same key is safe.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
)

const (
	defaultShardPrefixLen = 2
	defaultDirPerm        = 0o700
)

// Cache is a directory-sharded, content-addressed disk cache keyed by
// arbitrary strings (the registry facade's "manifest-<ns>-<repo>-<digest>"
// style keys). Safe for concurrent use.
type Cache struct {
	dir            string
	shardPrefixLen int
	dirPerm        os.FileMode
}

// Option configures a Cache.
type Option func(*Cache)

// WithShardPrefixLen sets the number of hex characters used for sharding.
// Use 0 to disable sharding. Defaults to 2.
func WithShardPrefixLen(n int) Option {
	return func(c *Cache) { c.shardPrefixLen = n }
}

// WithDirPerm sets the directory permissions used for cache directories.
func WithDirPerm(mode os.FileMode) Option {
	return func(c *Cache) { c.dirPerm = mode }
}

// New creates a disk-backed cache rooted at dir, creating it if absent.
func New(dir string, opts ...Option) (*Cache, error) {
	if dir == "" {
		return nil, errors.New("cache: dir is empty")
	}
	c := &Cache{
		dir:            dir,
		shardPrefixLen: defaultShardPrefixLen,
		dirPerm:        defaultDirPerm,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.shardPrefixLen < 0 {
		return nil, errors.New("cache: shard prefix length must be >= 0")
	}
	if err := os.MkdirAll(dir, c.dirPerm); err != nil {
		return nil, err
	}
	return c, nil
}

// Get returns the cached value for key, and whether it was present.
func (c *Cache) Get(key string) ([]byte, bool) {
	path := c.path(key)
	data, err := os.ReadFile(path) //nolint:gosec // path is derived from a hash, not user input
	if err != nil {
		return nil, false
	}
	return data, true
}

// Set stores value under key. Writes are atomic (temp file + rename) so
// concurrent readers never observe a partial write.
func (c *Cache) Set(key string, value []byte) error {
	path := c.path(key)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, c.dirPerm); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "cache-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	return nil
}

// GetOrSet returns the cached value for key if present, otherwise calls
// fetch, stores its result, and returns it.
func (c *Cache) GetOrSet(key string, fetch func() ([]byte, error)) ([]byte, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}
	v, err := fetch()
	if err != nil {
		return nil, err
	}
	if err := c.Set(key, v); err != nil {
		return nil, err
	}
	return v, nil
}

func (c *Cache) path(key string) string {
	sum := sha256.Sum256([]byte(key))
	hexHash := hex.EncodeToString(sum[:])
	if c.shardPrefixLen <= 0 {
		return filepath.Join(c.dir, hexHash)
	}
	prefixLen := c.shardPrefixLen
	if prefixLen > len(hexHash) {
		prefixLen = len(hexHash)
	}
	return filepath.Join(c.dir, hexHash[:prefixLen], hexHash)
}
