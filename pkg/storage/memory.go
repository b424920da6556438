package storage

import (
	"context"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
)

type memoryEntry struct {
	raw       []byte
	expiresAt time.Time
}

// MemoryClient keeps state in the process. Zero expiration means the key never expires.
type MemoryClient struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryClient() *MemoryClient {
	return &MemoryClient{
		entries: map[string]memoryEntry{},
		now:     time.Now,
	}
}

func (c *MemoryClient) lookup(key string) (memoryEntry, bool) {
	entry, ok := c.entries[key]
	if !ok {
		return memoryEntry{}, false
	}

	if !entry.expiresAt.IsZero() && !c.now().Before(entry.expiresAt) {
		delete(c.entries, key)
		return memoryEntry{}, false
	}

	return entry, true
}

func (c *MemoryClient) Read(_ context.Context, key string) (raw []byte, found bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.lookup(key)
	if !ok {
		return nil, false, nil
	}

	return append([]byte(nil), entry.raw...), true, nil
}

func (c *MemoryClient) Write(_ context.Context, key string, raw []byte, exp time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry := memoryEntry{raw: append([]byte(nil), raw...)}
	if exp > 0 {
		entry.expiresAt = c.now().Add(exp)
	}
	c.entries[key] = entry

	return nil
}

func (c *MemoryClient) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)

	return nil
}

func (c *MemoryClient) Load(ctx context.Context, key string, target interface{}) (found bool, err error) {
	raw, found, err := c.Read(ctx, key)
	if err != nil || !found {
		return false, err
	}

	return true, decode(raw, target)
}

func (c *MemoryClient) Save(ctx context.Context, key string, data interface{}, validity time.Duration) error {
	raw, err := encode(data)
	if err != nil {
		return err
	}

	return c.Write(ctx, key, raw, validity)
}

// FindKeys supports the redis glob subset used by the bot: * and ?.
func (c *MemoryClient) FindKeys(_ context.Context, pattern string) (keys []string, err error) {
	rx, err := globToRegexp(pattern)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for key := range c.entries {
		if _, ok := c.lookup(key); !ok {
			continue
		}
		if rx.MatchString(key) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	return keys, nil
}

func globToRegexp(pattern string) (*regexp.Regexp, error) {
	quoted := regexp.QuoteMeta(pattern)
	quoted = strings.ReplaceAll(quoted, `\*`, `.*`)
	quoted = strings.ReplaceAll(quoted, `\?`, `.`)

	rx, err := regexp.Compile("^" + quoted + "$")
	if err != nil {
		return nil, errors.Wrapf(err, "invalid key pattern %q", pattern)
	}

	return rx, nil
}

// Close drops every entry.
func (c *MemoryClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = map[string]memoryEntry{}

	return nil
}
