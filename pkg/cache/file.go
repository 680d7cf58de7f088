package cache

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	tgerrors "github.com/matzehuels/timegrid/pkg/errors"
)

// FileCache stores entries as JSON files under a directory, fanned out into
// 256 subdirectories by key hash. Writes go through a temp file and rename,
// so concurrent readers never see a partial entry.
type FileCache struct {
	dir string
}

// DefaultDir returns ~/.cache/timegrid, or the XDG cache directory when set.
func DefaultDir() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", tgerrors.Wrap(tgerrors.ErrCodeStorage, err, "locate cache directory")
	}
	return filepath.Join(base, "timegrid"), nil
}

// NewFileCache creates a file cache in dir, creating it if needed. An empty
// dir means [DefaultDir].
func NewFileCache(dir string) (*FileCache, error) {
	if dir == "" {
		d, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, tgerrors.Wrap(tgerrors.ErrCodeStorage, err, "create cache directory %s", dir)
	}
	return &FileCache{dir: dir}, nil
}

// Dir returns the cache directory.
func (c *FileCache) Dir() string { return c.dir }

type fileEntry struct {
	Data      []byte    `json:"data"`
	ExpiresAt time.Time `json:"expires_at,omitzero"`
}

func (c *FileCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	path := c.path(key)
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, tgerrors.Wrap(tgerrors.ErrCodeStorage, err, "read cache entry")
	}

	var e fileEntry
	if err := json.Unmarshal(raw, &e); err != nil {
		_ = os.Remove(path)
		return nil, false, nil
	}
	if !e.ExpiresAt.IsZero() && time.Now().After(e.ExpiresAt) {
		_ = os.Remove(path)
		return nil, false, nil
	}
	return e.Data, true, nil
}

func (c *FileCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	e := fileEntry{Data: data}
	if ttl > 0 {
		e.ExpiresAt = time.Now().Add(ttl)
	}
	raw, err := json.Marshal(e)
	if err != nil {
		return err
	}

	path := c.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return tgerrors.Wrap(tgerrors.ErrCodeStorage, err, "create cache shard")
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return tgerrors.Wrap(tgerrors.ErrCodeStorage, err, "write cache entry")
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return tgerrors.Wrap(tgerrors.ErrCodeStorage, err, "write cache entry")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return tgerrors.Wrap(tgerrors.ErrCodeStorage, err, "write cache entry")
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return tgerrors.Wrap(tgerrors.ErrCodeStorage, err, "write cache entry")
	}
	return nil
}

func (c *FileCache) Delete(ctx context.Context, key string) error {
	err := os.Remove(c.path(key))
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return tgerrors.Wrap(tgerrors.ErrCodeStorage, err, "delete cache entry")
}

// Clear removes every entry and returns how many were removed. It stops
// between shards when ctx ends.
func (c *FileCache) Clear(ctx context.Context) (int, error) {
	shards, err := os.ReadDir(c.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, nil
		}
		return 0, tgerrors.Wrap(tgerrors.ErrCodeStorage, err, "list cache directory")
	}
	removed := 0
	for _, s := range shards {
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		if !s.IsDir() {
			continue
		}
		entries, _ := os.ReadDir(filepath.Join(c.dir, s.Name()))
		for _, e := range entries {
			if filepath.Ext(e.Name()) == ".json" {
				removed++
			}
		}
		if err := os.RemoveAll(filepath.Join(c.dir, s.Name())); err != nil {
			return removed, tgerrors.Wrap(tgerrors.ErrCodeStorage, err, "clear cache")
		}
	}
	return removed, nil
}

func (c *FileCache) Close() error { return nil }

func (c *FileCache) path(key string) string {
	h := Hash([]byte(key))
	return filepath.Join(c.dir, h[:2], h[2:]+".json")
}

var (
	_ Cache   = (*FileCache)(nil)
	_ Clearer = (*FileCache)(nil)
)
