package model

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aretw0/brownian/pkg/domain"
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize is the number of models a Cache keeps when asked for a non-positive size.
const DefaultCacheSize = 64

type cacheKey struct {
	path          string
	modTime       time.Time
	size          int64
	allowWarnings bool
}

// Cache shares parsed models between processes that load the same file.
// An entry is reused only while the file's size and modification time are unchanged.
// Cached models are shared and must be treated as read-only.
type Cache struct {
	models *lru.Cache[cacheKey, *Model]
}

// NewCache creates a Cache holding at most size models.
func NewCache(size int) (*Cache, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	models, err := lru.New[cacheKey, *Model](size)
	if err != nil {
		return nil, fmt.Errorf("create model cache: %w", err)
	}
	return &Cache{models: models}, nil
}

// Load returns the cached model for path, parsing it on a miss.
// Failed loads are never cached.
func (c *Cache) Load(path string, opts ...Option) (*Model, error) {
	o := loadOptions{}
	for _, opt := range opts {
		opt(&o)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, &domain.ConfigurationError{Field: "model_path", Reason: err.Error()}
	}
	info, err := os.Stat(abs)
	if err != nil {
		return Load(path, opts...)
	}
	key := cacheKey{path: abs, modTime: info.ModTime(), size: info.Size(), allowWarnings: o.allowWarnings}

	if m, ok := c.models.Get(key); ok {
		return m, nil
	}
	m, err := Load(path, opts...)
	if err != nil {
		return nil, err
	}
	c.models.Add(key, m)
	return m, nil
}

// Len returns the number of cached models.
func (c *Cache) Len() int { return c.models.Len() }

// Purge drops every cached model.
func (c *Cache) Purge() { c.models.Purge() }
