// buildcache.go
//
// Cache is the interface for the cross-run build cache. BrownClusters and
// Gazetteers parse can be expensive on large cluster/gazetteer files;
// the cache lets a rebuild skip re-reading a file whose path, size, and
// modification time have not changed since it was last parsed, while
// still producing byte-identical feature-id assignments either way.
//
// Two implementations are provided:
//   - memoryBuildCache — in-memory only, used in tests and when no path
//     is configured.
//   - bboltBuildCache  — embedded key-value store (bbolt), used for
//     production builds that persist across process restarts.
package features

import (
	"fmt"
	"log"
	"os"
	"sync"

	bolt "go.etcd.io/bbolt"

	"nerfeatures/internal/metrics"
)

// CacheKey identifies one parsed source file by the attributes cheap
// enough to check without re-reading its content.
type CacheKey struct {
	Path    string
	Size    int64
	ModTime int64 // unix nanoseconds
}

func (k CacheKey) string() string {
	return fmt.Sprintf("%s|%d|%d", k.Path, k.Size, k.ModTime)
}

// Cache is the build cache interface. All implementations must be safe
// for concurrent use. Values are the raw encoded bytes a processor chose
// to cache for a given source file; the cache itself is agnostic to
// their structure.
type Cache interface {
	// Get returns the cached bytes for key, if present.
	Get(key CacheKey) (data []byte, ok bool)

	// Set stores key -> data. Overwrites any existing entry silently.
	Set(key CacheKey, data []byte)

	// Close releases any resources held by the cache (e.g. file handles).
	Close() error
}

// StatKey builds a CacheKey from a file's current path, size, and
// modification time. A cache miss is never a failure: callers fall back
// to parsing the file directly.
func StatKey(path string) (CacheKey, error) {
	info, err := os.Stat(path)
	if err != nil {
		return CacheKey{}, err
	}
	return CacheKey{Path: path, Size: info.Size(), ModTime: info.ModTime().UnixNano()}, nil
}

// readFileCached returns path's bytes, consulting cache first by
// (path, size, mtime). A hit skips the real read entirely; a miss reads
// the file and populates the cache for next time. cache may be nil, in
// which case this is a plain os.ReadFile and no hit/miss is recorded.
// Either path yields identical bytes, so the parse logic built on top of
// them allocates identical feature ids regardless of cache hit or miss.
// m may be nil, in which case hit/miss counting is skipped.
func readFileCached(cache Cache, m *metrics.Metrics, path string) ([]byte, error) {
	if cache == nil {
		return os.ReadFile(path) //nolint:gosec // G703: path is operator-supplied training configuration, not user input
	}
	key, err := StatKey(path)
	if err != nil {
		return nil, err
	}
	if data, ok := cache.Get(key); ok {
		if m != nil {
			m.BuildCacheHits.Add(1)
		}
		return data, nil
	}
	data, err := os.ReadFile(path) //nolint:gosec // G703: see above
	if err != nil {
		return nil, err
	}
	cache.Set(key, data)
	if m != nil {
		m.BuildCacheMisses.Add(1)
	}
	return data, nil
}

// CacheAware is an additive capability: processors whose parse reads a
// large source file (BrownClusters, Gazetteers) implement it so Model can
// wire in a shared build cache without widening the sealed Processor
// contract itself.
type CacheAware interface {
	SetCache(c Cache)
}

// MetricsAware is an additive capability mirroring CacheAware: the same
// processors that accept a build cache also accept a metrics sink so
// their cache hit/miss counts reach the introspection API.
type MetricsAware interface {
	SetMetrics(m *metrics.Metrics)
}

// --- memoryBuildCache ------------------------------------------------------

type memoryBuildCache struct {
	mu    sync.RWMutex
	store map[string][]byte
}

// NewMemoryCache returns a thread-safe in-memory Cache. Used in tests and
// as a fallback when no bbolt path is configured.
func NewMemoryCache() Cache {
	return &memoryBuildCache{store: make(map[string][]byte)}
}

func (c *memoryBuildCache) Get(key CacheKey) ([]byte, bool) {
	c.mu.RLock()
	v, ok := c.store[key.string()]
	c.mu.RUnlock()
	return v, ok
}

func (c *memoryBuildCache) Set(key CacheKey, data []byte) {
	c.mu.Lock()
	c.store[key.string()] = data
	c.mu.Unlock()
}

func (c *memoryBuildCache) Close() error { return nil }

// --- bboltBuildCache ---------------------------------------------------

const buildCacheBucket = "build_cache"

// bboltBuildCache is a Cache backed by an embedded bbolt database.
// Entries survive process restarts. The database file is created at the
// given path if it does not exist.
type bboltBuildCache struct {
	db *bolt.DB
}

// NewBboltCache opens (or creates) the bbolt database at path and
// ensures the bucket exists.
func NewBboltCache(path string) (Cache, error) {
	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("open bbolt build cache %q: %w", path, err)
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(buildCacheBucket))
		return err
	}); err != nil {
		db.Close() //nolint:errcheck // best-effort close on init failure
		return nil, fmt.Errorf("create build cache bucket: %w", err)
	}

	log.Printf("[BUILDCACHE] opened at %s", path)
	return &bboltBuildCache{db: db}, nil
}

func (c *bboltBuildCache) Get(key CacheKey) ([]byte, bool) {
	var data []byte
	err := c.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(buildCacheBucket))
		if b == nil {
			return nil
		}
		if v := b.Get([]byte(key.string())); v != nil {
			data = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		log.Printf("[BUILDCACHE] Get error: %v", err)
		return nil, false
	}
	return data, data != nil
}

func (c *bboltBuildCache) Set(key CacheKey, data []byte) {
	if err := c.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(buildCacheBucket))
		if b == nil {
			return fmt.Errorf("bucket %q not found", buildCacheBucket)
		}
		return b.Put([]byte(key.string()), data)
	}); err != nil {
		log.Printf("[BUILDCACHE] Set error: %v", err)
	}
}

func (c *bboltBuildCache) Close() error {
	return c.db.Close()
}
