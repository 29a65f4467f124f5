package ygggo_peardb

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// DB wraps a single MySQL connection handle behind a PEAR-style call
// surface. It connects lazily, executes immediate queries into buffered
// cursors, delegates parameterized queries to prepared statements, enforces
// the read-only policy and injects trace comments before dispatch.
//
// A DB and the Statements and cursors hanging off it are not meant for
// concurrent use; the statement cache and the process-wide query log are
// the only cross-call shared state and carry their own locks.
type DB struct {
	cfg Config
	dsn string

	db   *sql.DB
	conn *sql.Conn

	mu       sync.Mutex
	connAnn  map[string]string
	queryAnn map[string]string

	cache *stmtCache

	// affected-row bookkeeping: a single last-handle reference updated by
	// both the immediate and the prepared code path
	direct directResult
	last   rowCounter

	// compat default fetch mode (compat.go)
	defaultMode FetchMode

	// memoized probes
	engines     map[string]bool
	repProbed   bool
	repRealtime bool
	repDelay    int64
	repKnown    bool

	logger             *slog.Logger
	loggingEnabled     bool
	telemetryEnabled   bool
	slowQueryThreshold time.Duration
}

type rowCounter interface{ GetAffectedRows() int64 }

type directResult struct{ n int64 }

func (d *directResult) GetAffectedRows() int64 { return d.n }

// New builds a DB from cfg. No connection is made until an operation needs
// one; use Connect to fail fast.
func New(ctx context.Context, cfg Config) (*DB, error) {
	if cfg.Driver == "" {
		cfg.Driver = "mysql"
	}
	cacheSize := cfg.StmtCacheSize
	if cacheSize <= 0 {
		cacheSize = 64
	}
	dsn := dsnFromConfig(cfg)
	sqlDB, err := sql.Open(cfg.Driver, dsn)
	if err != nil {
		return nil, newErrorCause(ErrConnectFailed, err, "open %s: %v", cfg.Driver, err)
	}
	db := &DB{
		cfg:                cfg,
		dsn:                dsn,
		db:                 sqlDB,
		cache:              newStmtCache(cacheSize),
		defaultMode:        FetchOrdered,
		slowQueryThreshold: cfg.SlowQueryThreshold,
	}
	db.last = &db.direct
	return db, nil
}

func newErrorCause(kind ErrorKind, cause error, format string, args ...any) *Error {
	e := newError(kind, format, args...)
	e.cause = cause
	return e
}

// Connect establishes the driver handle now. Fails with ConnectFailed on
// handshake failure.
func (db *DB) Connect(ctx context.Context) error {
	start := time.Now()
	conn, err := db.db.Conn(ctx)
	if err == nil {
		err = conn.PingContext(ctx)
		if err != nil {
			_ = conn.Close()
		}
	}
	db.logConnection(ctx, "connect", time.Since(start), err)
	if err != nil {
		return newErrorCause(ErrConnectFailed, err, "connect: %v", err)
	}
	if db.conn != nil {
		_ = db.conn.Close()
	}
	db.conn = conn
	return nil
}

// handle returns a live driver handle, lazily connecting or reconnecting
// when the liveness probe fails.
func (db *DB) handle(ctx context.Context) (*sql.Conn, error) {
	if db.conn != nil {
		if err := db.conn.PingContext(ctx); err == nil {
			return db.conn, nil
		}
		_ = db.conn.Close()
		db.conn = nil
	}
	if err := db.Connect(ctx); err != nil {
		return nil, err
	}
	return db.conn, nil
}

// Connected reports whether a driver handle is currently held.
func (db *DB) Connected() bool { return db.conn != nil }

// Ping probes the live connection. A missing or dead connection maps to
// false rather than an error.
func (db *DB) Ping(ctx context.Context) bool {
	if db.conn == nil {
		return false
	}
	return db.conn.PingContext(ctx) == nil
}

// Query runs query. With params it goes through prepare+execute (shared
// frozen statements when the statement cache is enabled); without, it is
// issued directly and the buffered result is wrapped in a Cursor. Non-result
// statements return a nil cursor and record their affected-row count.
func (db *DB) Query(ctx context.Context, query string, params ...any) (*Cursor, error) {
	if db.cfg.Readonly {
		if err := checkReadonly(query); err != nil {
			return nil, err
		}
	}
	full := db.annotated(query)

	if len(params) > 0 {
		var st *Statement
		var err error
		if db.cfg.StmtCache {
			st, err = db.cache.getOrPrepare(ctx, db, full)
		} else {
			st = &Statement{db: db}
			err = st.Prepare(ctx, full)
		}
		if err != nil {
			return nil, err
		}
		cur, err := st.Execute(ctx, params...)
		if !db.cfg.StmtCache {
			// the cursor is fully buffered, the server handle can go now
			_ = st.Close()
		}
		if err != nil {
			return nil, err
		}
		if cur == nil {
			return nil, nil
		}
		return &cur.Cursor, nil
	}

	conn, err := db.handle(ctx)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	if returnsRows(full) {
		rows, err := db.doQuery(ctx, conn, full)
		db.observe(ctx, "query", full, nil, time.Since(start), err)
		if err != nil {
			return nil, wrapDriver(err)
		}
		return newCursor(rows)
	}
	res, err := db.doExec(ctx, conn, full)
	db.observe(ctx, "query", full, nil, time.Since(start), err)
	if err != nil {
		return nil, wrapDriver(err)
	}
	if n, aerr := res.RowsAffected(); aerr == nil {
		db.direct.n = n
	}
	db.last = &db.direct
	return nil, nil
}

// Prepare allocates a new Statement bound to a fresh driver statement
// handle.
func (db *DB) Prepare(ctx context.Context, query string, typeHints ...ParamType) (*Statement, error) {
	st := &Statement{db: db}
	if err := st.Prepare(ctx, query, typeHints...); err != nil {
		return nil, err
	}
	return st, nil
}

// PrepareCached returns a frozen shared Statement keyed by a content hash
// of query. The first call prepares and freezes it; later calls with the
// same text reuse it. Callers must not re-prepare the returned statement,
// and should not hold it across unrelated queries: an LRU eviction closes
// the underlying handle, after which Execute fails with NotPrepared.
// Re-fetch by text instead of keeping long-lived references.
func (db *DB) PrepareCached(ctx context.Context, query string, typeHints ...ParamType) (*Statement, error) {
	return db.cache.getOrPrepare(ctx, db, query, typeHints...)
}

func (db *DB) noteLast(s *Statement) { db.last = s }

// GetAffectedRows returns the affected-row count of the most recent
// operation that set one, whether it came from an immediate query or a
// statement execute.
func (db *DB) GetAffectedRows() int64 { return db.last.GetAffectedRows() }

// Begin starts a transaction as a plain pass-through statement.
func (db *DB) Begin(ctx context.Context) error { return db.execSimple(ctx, "BEGIN") }

// Commit commits the current transaction.
func (db *DB) Commit(ctx context.Context) error { return db.execSimple(ctx, "COMMIT") }

// Rollback rolls back the current transaction.
func (db *DB) Rollback(ctx context.Context) error { return db.execSimple(ctx, "ROLLBACK") }

func (db *DB) execSimple(ctx context.Context, query string) error {
	conn, err := db.handle(ctx)
	if err != nil {
		return err
	}
	start := time.Now()
	_, err = db.doExec(ctx, conn, query)
	db.observe(ctx, "query", query, nil, time.Since(start), err)
	return wrapDriver(err)
}

// KillQuery asks the server to abort the query running on connectionID.
// The kill travels over a side connection, not the wrapped handle.
func (db *DB) KillQuery(ctx context.Context, connectionID uint64) error {
	_, err := db.db.ExecContext(ctx, fmt.Sprintf("KILL QUERY %d", connectionID))
	return wrapDriver(err)
}

// observe feeds structured logging and, when enabled, the process-wide
// query log.
func (db *DB) observe(ctx context.Context, op string, query string, params []any, d time.Duration, err error) {
	db.logQuery(ctx, op, query, params, d, err)
	if db.cfg.QueryLog {
		Log(LogCommand(op), query, params, d)
	}
}

// Close releases cached statements and the driver handle.
func (db *DB) Close() error {
	db.cache.closeAll()
	if db.conn != nil {
		_ = db.conn.Close()
		db.conn = nil
	}
	if db.db != nil {
		return db.db.Close()
	}
	return nil
}
