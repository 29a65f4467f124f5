package ygggo_peardb

import (
	"container/list"
	"context"
	"hash/fnv"
	"sync"
	"sync/atomic"
)

// stmtCache is an LRU cache of frozen, shared Statements keyed by a content
// hash of the query text.
type stmtCache struct {
	cap int
	mu  sync.Mutex
	ll  *list.List // front = most recently used
	m   map[uint64]*list.Element

	hits   uint64
	misses uint64
}

type stmtCacheEntry struct {
	key  uint64
	stmt *Statement
}

func newStmtCache(capacity int) *stmtCache {
	if capacity < 0 {
		capacity = 0
	}
	return &stmtCache{cap: capacity, ll: list.New(), m: make(map[uint64]*list.Element)}
}

func hashQuery(query string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(query))
	return h.Sum64()
}

// getOrPrepare returns the shared frozen Statement for query, preparing and
// freezing it on first use. With capacity 0 every call prepares fresh.
func (c *stmtCache) getOrPrepare(ctx context.Context, db *DB, query string, typeHints ...ParamType) (*Statement, error) {
	prepare := func() (*Statement, error) {
		st := &Statement{db: db}
		if err := st.Prepare(ctx, query, typeHints...); err != nil {
			return nil, err
		}
		return st, nil
	}
	if c == nil || c.cap == 0 {
		return prepare()
	}
	key := hashQuery(query)
	c.mu.Lock()
	if ele, ok := c.m[key]; ok {
		c.ll.MoveToFront(ele)
		atomic.AddUint64(&c.hits, 1)
		st := ele.Value.(*stmtCacheEntry).stmt
		c.mu.Unlock()
		return st, nil
	}
	c.mu.Unlock()
	// prepare outside the lock to avoid blocking
	st, err := prepare()
	if err != nil {
		return nil, err
	}
	st.Freeze()
	c.mu.Lock()
	defer c.mu.Unlock()
	if ele, ok := c.m[key]; ok {
		// lost the race, use the existing one
		_ = st.Close()
		c.ll.MoveToFront(ele)
		atomic.AddUint64(&c.hits, 1)
		return ele.Value.(*stmtCacheEntry).stmt, nil
	}
	atomic.AddUint64(&c.misses, 1)
	ele := c.ll.PushFront(&stmtCacheEntry{key: key, stmt: st})
	c.m[key] = ele
	if c.ll.Len() > c.cap {
		c.evictLRU()
	}
	return st, nil
}

func (c *stmtCache) evictLRU() {
	back := c.ll.Back()
	if back == nil {
		return
	}
	c.ll.Remove(back)
	e := back.Value.(*stmtCacheEntry)
	delete(c.m, e.key)
	_ = e.stmt.Close()
}

func (c *stmtCache) closeAll() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for e := c.ll.Front(); e != nil; e = e.Next() {
		_ = e.Value.(*stmtCacheEntry).stmt.Close()
	}
	c.ll.Init()
	for k := range c.m {
		delete(c.m, k)
	}
}

func (c *stmtCache) stats() (hits, misses uint64, size int) {
	if c == nil {
		return 0, 0, 0
	}
	hits = atomic.LoadUint64(&c.hits)
	misses = atomic.LoadUint64(&c.misses)
	c.mu.Lock()
	size = c.ll.Len()
	c.mu.Unlock()
	return
}

// StmtCacheStats reports statement cache hit/miss counters and size.
type StmtCacheStats struct {
	Hits   uint64
	Misses uint64
	Size   int
}

// StmtCacheStats returns the connection's statement cache counters.
func (db *DB) StmtCacheStats() StmtCacheStats {
	h, m, s := db.cache.stats()
	return StmtCacheStats{Hits: h, Misses: m, Size: s}
}
