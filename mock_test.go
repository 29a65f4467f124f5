package ygggo_peardb

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

// newMockDB wires a DB directly to a sqlmock backend, bypassing DSN
// registration. Pings are not monitored, so the lazy-connect liveness
// probe is a no-op.
func newMockDB(t *testing.T, cfg Config) (*DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	size := cfg.StmtCacheSize
	if size <= 0 {
		size = 64
	}
	db := &DB{
		cfg:         cfg,
		dsn:         "sqlmock",
		db:          sqlDB,
		cache:       newStmtCache(size),
		defaultMode: FetchOrdered,
	}
	db.last = &db.direct
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func expectMet(t *testing.T, mock sqlmock.Sqlmock) {
	t.Helper()
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
