// Package cache keeps prepared statements for generated SQL.
//
// Generators emit the same text for the same table and column shape, so a
// process writing the same tables repeatedly can reuse one prepared statement
// per shape instead of preparing on every call.
package cache

import (
	"container/list"
	"context"
	"database/sql"
	"sync"
	"sync/atomic"
)

// DefaultCapacity is the number of statements kept when no capacity is given.
const DefaultCapacity = 256

// Preparer prepares statements. *sql.DB and *sql.Conn satisfy it.
type Preparer interface {
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
}

// StmtCache holds prepared statements keyed by SQL text with LRU eviction.
// A statement handed out by Acquire is not closed until it is released, even
// when it is evicted in the meantime.
type StmtCache struct {
	mu       sync.Mutex
	capacity int
	items    map[string]*list.Element
	lru      *list.List
	closed   bool

	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

type entry struct {
	key     string
	stmt    *sql.Stmt
	refs    int
	evicted bool
}

// NewStmtCache returns a cache holding at most capacity statements.
// A non-positive capacity means DefaultCapacity.
func NewStmtCache(capacity int) *StmtCache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &StmtCache{
		capacity: capacity,
		items:    make(map[string]*list.Element, capacity),
		lru:      list.New(),
	}
}

// Acquire returns the prepared statement for query, preparing it through p on
// a miss. The release func must be called once the statement and any rows it
// produced are no longer used.
func (c *StmtCache) Acquire(ctx context.Context, p Preparer, query string) (*sql.Stmt, func(), error) {
	if e, ok := c.lookup(query); ok {
		c.hits.Add(1)
		return e.stmt, c.releaser(e), nil
	}
	c.misses.Add(1)

	stmt, err := p.PrepareContext(ctx, query)
	if err != nil {
		return nil, nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		// Not cached; the caller owns the statement.
		return stmt, func() { _ = stmt.Close() }, nil
	}

	// Another caller may have prepared the same text meanwhile.
	if elem, ok := c.items[query]; ok {
		_ = stmt.Close()
		e := elem.Value.(*entry)
		e.refs++
		c.lru.MoveToFront(elem)
		return e.stmt, c.releaser(e), nil
	}

	if c.lru.Len() >= c.capacity {
		c.evictOldest()
	}
	e := &entry{key: query, stmt: stmt, refs: 1}
	c.items[query] = c.lru.PushFront(e)
	return stmt, c.releaser(e), nil
}

func (c *StmtCache) lookup(query string) (*entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[query]
	if !ok {
		return nil, false
	}
	c.lru.MoveToFront(elem)
	e := elem.Value.(*entry)
	e.refs++
	return e, true
}

func (c *StmtCache) releaser(e *entry) func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			e.refs--
			if e.evicted && e.refs == 0 {
				_ = e.stmt.Close()
			}
		})
	}
}

// evictOldest must be called with mu held.
func (c *StmtCache) evictOldest() {
	elem := c.lru.Back()
	if elem == nil {
		return
	}
	c.remove(elem)
	c.evictions.Add(1)
}

func (c *StmtCache) remove(elem *list.Element) {
	c.lru.Remove(elem)
	e := elem.Value.(*entry)
	delete(c.items, e.key)
	e.evicted = true
	if e.refs == 0 {
		_ = e.stmt.Close()
	}
}

// Clear drops every cached statement. Statements still in use are closed on release.
func (c *StmtCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for elem := c.lru.Front(); elem != nil; {
		next := elem.Next()
		c.remove(elem)
		elem = next
	}
}

// Close clears the cache and stops caching. Later Acquire calls prepare a
// fresh statement each time.
func (c *StmtCache) Close() {
	c.Clear()
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
}

// Stats holds cache counters.
type Stats struct {
	Size      int
	Capacity  int
	Hits      uint64
	Misses    uint64
	Evictions uint64
	HitRate   float64
}

// Stats returns a snapshot of the cache counters.
func (c *StmtCache) Stats() Stats {
	c.mu.Lock()
	size := c.lru.Len()
	c.mu.Unlock()

	hits, misses := c.hits.Load(), c.misses.Load()
	var rate float64
	if total := hits + misses; total > 0 {
		rate = float64(hits) / float64(total)
	}
	return Stats{
		Size:      size,
		Capacity:  c.capacity,
		Hits:      hits,
		Misses:    misses,
		Evictions: c.evictions.Load(),
		HitRate:   rate,
	}
}
