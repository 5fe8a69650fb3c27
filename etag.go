package wasmstatic

import (
	"encoding/hex"
	"io"
	"io/fs"
	"strings"
	"sync"
	"time"

	"github.com/zeebo/blake3"
)

type etagEntry struct {
	size    int64
	modTime time.Time
	tag     string
}

// ETagCache memoises content-hash ETags. An entry is reused while the
// file keeps the same size and modification time.
type ETagCache struct {
	mu      sync.RWMutex
	entries map[string]etagEntry
}

func NewETagCache() *ETagCache {
	return &ETagCache{entries: map[string]etagEntry{}}
}

// Tag returns the strong ETag for name. On a miss the content is hashed
// from r and read reports that r has been consumed.
func (c *ETagCache) Tag(name string, info fs.FileInfo, r io.Reader) (tag string, read bool, err error) {
	c.mu.RLock()
	ent, ok := c.entries[name]
	c.mu.RUnlock()
	if ok && ent.size == info.Size() && ent.modTime.Equal(info.ModTime()) {
		return ent.tag, false, nil
	}

	if tag, err = hashReader(r); err != nil {
		return "", true, err
	}
	c.mu.Lock()
	c.entries[name] = etagEntry{size: info.Size(), modTime: info.ModTime(), tag: tag}
	c.mu.Unlock()
	return tag, true, nil
}

// Invalidate drops name and anything below it.
func (c *ETagCache) Invalidate(name string) {
	prefix := name + "/"
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, name)
	for k := range c.entries {
		if strings.HasPrefix(k, prefix) {
			delete(c.entries, k)
		}
	}
}

func (c *ETagCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func hashReader(r io.Reader) (string, error) {
	h := blake3.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return `"` + hex.EncodeToString(h.Sum(nil)[:16]) + `"`, nil
}

// etagMatch implements the weak comparison of If-None-Match.
func etagMatch(header, tag string) bool {
	for _, v := range strings.Split(header, ",") {
		v = strings.TrimSpace(v)
		if v == "*" {
			return true
		}
		if strings.TrimPrefix(v, "W/") == strings.TrimPrefix(tag, "W/") {
			return true
		}
	}
	return false
}
