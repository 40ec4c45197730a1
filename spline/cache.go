package spline

import (
	"io"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"
)

// CacheOptions configures a Cache.
type CacheOptions struct {
	// Logger receives a debug record per loaded table. Nil discards.
	Logger *slog.Logger
}

// Cache memoizes tables by identifier. It is safe for concurrent use; at most
// one load per identifier is in flight at a time. Failed loads are not cached.
type Cache struct {
	backend Backend
	log     *slog.Logger

	mu     sync.RWMutex
	tables map[string]Table
	group  singleflight.Group
}

// NewCache returns an empty cache loading from backend.
func NewCache(backend Backend, opts CacheOptions) *Cache {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Cache{backend: backend, log: log, tables: make(map[string]Table)}
}

func (c *Cache) lookup(id string) (Table, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.tables[id]
	return t, ok
}

// Get returns the table for id, loading it on first use.
func (c *Cache) Get(id string) (Table, error) {
	if t, ok := c.lookup(id); ok {
		return t, nil
	}
	v, err, _ := c.group.Do(id, func() (any, error) {
		if t, ok := c.lookup(id); ok {
			return t, nil
		}
		t, err := c.backend.Load(id)
		if err != nil {
			return nil, &Error{Table: id, Op: OpLoad, Err: err}
		}
		c.mu.Lock()
		c.tables[id] = t
		c.mu.Unlock()
		c.log.Debug("spline table loaded", "table", id, "dims", t.Dims())
		return t, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(Table), nil
}

// Evaluate loads id and evaluates it at every row.
func (c *Cache) Evaluate(id string, rows [][]float64, derivatives uint32) ([]float64, error) {
	t, err := c.Get(id)
	if err != nil {
		return nil, err
	}
	out, err := EvaluateRows(t, rows, derivatives)
	if err != nil {
		return nil, &Error{Table: id, Op: OpEvaluate, Err: err}
	}
	return out, nil
}

// Len returns the number of loaded tables.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.tables)
}
