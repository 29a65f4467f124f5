package ygggo_peardb

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func captureLogs(t *testing.T, db *DB) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	db.SetLogger(slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	db.EnableLogging(true)
	return &buf
}

// decodeLogLine decodes the most recent entry. The lazy connect emits a
// debug-level connection event before the first query line, so the last
// line is the one under test.
func decodeLogLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	var entry map[string]any
	if err := json.Unmarshal(lines[len(lines)-1], &entry); err != nil {
		t.Fatalf("decode log line: %v (raw %q)", err, buf.String())
	}
	return entry
}

func TestLogQuery_StructuredFields(t *testing.T) {
	db, mock := newMockDB(t, Config{})
	buf := captureLogs(t, db)
	mock.ExpectQuery(`SELECT 1`).
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(int64(1)))

	if _, err := db.Query(context.Background(), "SELECT 1"); err != nil {
		t.Fatal(err)
	}

	entry := decodeLogLine(t, buf)
	if entry["operation"] != "query" {
		t.Fatalf("operation = %v", entry["operation"])
	}
	if entry["query"] != "SELECT 1" {
		t.Fatalf("query = %v", entry["query"])
	}
	if entry["status"] != "success" {
		t.Fatalf("status = %v", entry["status"])
	}
	if entry["level"] != "INFO" {
		t.Fatalf("level = %v", entry["level"])
	}
	expectMet(t, mock)
}

func TestLogQuery_ErrorLevel(t *testing.T) {
	db, mock := newMockDB(t, Config{})
	buf := captureLogs(t, db)
	mock.ExpectExec(`DELETE FROM t`).WillReturnError(errProbe)

	if _, err := db.Query(context.Background(), "DELETE FROM t"); err == nil {
		t.Fatal("expected error")
	}

	entry := decodeLogLine(t, buf)
	if entry["level"] != "ERROR" || entry["status"] != "error" {
		t.Fatalf("entry = %v", entry)
	}
	if entry["error"] != "probe failed" {
		t.Fatalf("error = %v", entry["error"])
	}
	expectMet(t, mock)
}

func TestLogQuery_SlowQueryWarns(t *testing.T) {
	db, _ := newMockDB(t, Config{})
	buf := captureLogs(t, db)
	db.SetSlowQueryThreshold(time.Millisecond)

	db.logQuery(context.Background(), "query", "SELECT SLEEP(1)", nil, 5*time.Millisecond, nil)

	entry := decodeLogLine(t, buf)
	if entry["level"] != "WARN" {
		t.Fatalf("level = %v", entry["level"])
	}
	if entry["msg"] != "slow query detected" {
		t.Fatalf("msg = %v", entry["msg"])
	}
}

func TestLogQuery_DisabledWritesNothing(t *testing.T) {
	db, _ := newMockDB(t, Config{})
	var buf bytes.Buffer
	db.SetLogger(slog.New(slog.NewJSONHandler(&buf, nil)))

	db.logQuery(context.Background(), "query", "SELECT 1", nil, time.Millisecond, nil)
	if buf.Len() != 0 {
		t.Fatalf("logging disabled but wrote %q", buf.String())
	}
}
