package ygggo_peardb

import (
	"context"
	"reflect"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func testCursor(rows ...[]any) *Cursor {
	return &Cursor{mode: FetchOrdered, col: 0, cols: []string{"id", "name"}, rows: rows}
}

func threeRows() *Cursor {
	return testCursor(
		[]any{int64(1), "alice"},
		[]any{int64(2), "bob"},
		[]any{int64(3), "carol"},
	)
}

func TestCursor_NextExhaustsAllModes(t *testing.T) {
	for _, mode := range []FetchMode{FetchOrdered, FetchAssoc, FetchObject, FetchColumn} {
		c := threeRows()
		if _, err := c.SetFetchMode(mode); err != nil {
			t.Fatalf("SetFetchMode(%v): %v", mode, err)
		}
		for i := 0; i < 3; i++ {
			row, err := c.Next()
			if err != nil {
				t.Fatalf("mode %v row %d: %v", mode, i, err)
			}
			if row == nil {
				t.Fatalf("mode %v: nil row at %d", mode, i)
			}
			if c.RowCount() != 3 {
				t.Fatalf("mode %v: RowCount changed to %d", mode, c.RowCount())
			}
		}
		row, err := c.Next()
		if err != nil {
			t.Fatalf("mode %v past end: %v", mode, err)
		}
		if row != nil {
			t.Fatalf("mode %v: expected nil past last row, got %v", mode, row)
		}
	}
}

func TestCursor_RowShapes(t *testing.T) {
	c := threeRows()

	row, err := c.Next(FetchOrdered)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(row, []any{int64(1), "alice"}) {
		t.Fatalf("ordered row = %v", row)
	}

	row, err = c.Next(FetchAssoc)
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]any{"id": int64(2), "name": "bob"}
	if !reflect.DeepEqual(row, want) {
		t.Fatalf("assoc row = %v", row)
	}

	row, err = c.Next(FetchObject)
	if err != nil {
		t.Fatal(err)
	}
	if rec, ok := row.(Record); !ok || rec["name"] != "carol" {
		t.Fatalf("object row = %v", row)
	}
}

func TestCursor_ObjectStructPrototype(t *testing.T) {
	type user struct {
		ID   int64  `db:"id"`
		Name string `db:"name"`
	}
	c := threeRows()
	if _, err := c.SetFetchMode(FetchObject, &user{}); err != nil {
		t.Fatal(err)
	}
	row, err := c.Next()
	if err != nil {
		t.Fatal(err)
	}
	u, ok := row.(*user)
	if !ok {
		t.Fatalf("expected *user, got %T", row)
	}
	if u.ID != 1 || u.Name != "alice" {
		t.Fatalf("filled struct = %+v", u)
	}
}

func TestCursor_CurrentDoesNotConsume(t *testing.T) {
	c := threeRows()
	peeked, err := c.Current()
	if err != nil {
		t.Fatal(err)
	}
	next, err := c.Next()
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(peeked, next) {
		t.Fatalf("peek %v != next %v", peeked, next)
	}
}

func TestCursor_SeekBounds(t *testing.T) {
	c := threeRows()
	if err := c.Seek(-1); KindOf(err) != ErrOutOfRange {
		t.Fatalf("Seek(-1) = %v", err)
	}
	if err := c.Seek(c.RowCount()); KindOf(err) != ErrOutOfRange {
		t.Fatalf("Seek(rowCount) = %v", err)
	}
	if err := c.Seek(2); err != nil {
		t.Fatal(err)
	}
	row, err := c.Next()
	if err != nil {
		t.Fatal(err)
	}
	if row.([]any)[1] != "carol" {
		t.Fatalf("row after Seek(2) = %v", row)
	}
}

func TestCursor_SeekOnEmptyResult(t *testing.T) {
	c := testCursor()
	if err := c.Seek(0); KindOf(err) != ErrOutOfRange {
		t.Fatalf("Seek(0) on empty = %v", err)
	}
}

func TestCursor_FetchAllFromPosition(t *testing.T) {
	c := threeRows()
	if _, err := c.Next(); err != nil {
		t.Fatal(err)
	}
	rest, err := c.FetchAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rest) != 2 {
		t.Fatalf("expected 2 remaining rows, got %d", len(rest))
	}
	// drained unless rewound
	again, err := c.FetchAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(again) != 0 {
		t.Fatalf("drained cursor yielded %d rows", len(again))
	}
	if err := c.Seek(0); err != nil {
		t.Fatal(err)
	}
	all, err := c.FetchAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Fatalf("after Seek(0) expected 3 rows, got %d", len(all))
	}
}

func TestCursor_FetchColumn(t *testing.T) {
	c := threeRows()
	v, err := c.FetchColumn(1)
	if err != nil {
		t.Fatal(err)
	}
	if v != "alice" {
		t.Fatalf("FetchColumn(1) = %v", v)
	}
	v, err = c.FetchColumn("name")
	if err != nil {
		t.Fatal(err)
	}
	if v != "bob" {
		t.Fatalf("FetchColumn(name) = %v", v)
	}
	if _, err := c.FetchColumn(9); KindOf(err) != ErrOutOfRange {
		t.Fatalf("absent index = %v", err)
	}
	if _, err := c.FetchColumn("missing"); KindOf(err) != ErrOutOfRange {
		t.Fatalf("absent name = %v", err)
	}
	if _, err := c.FetchColumn(3.5); KindOf(err) != ErrInvalidArgument {
		t.Fatalf("bad selector = %v", err)
	}
	// the failed extractions above must not have consumed the third row
	v, err = c.FetchColumn(0)
	if err != nil {
		t.Fatal(err)
	}
	if v != int64(3) {
		t.Fatalf("failed extraction consumed a row, got %v", v)
	}
	v, err = c.FetchColumn(0)
	if err != nil {
		t.Fatal(err)
	}
	if v != nil {
		t.Fatalf("expected nil past last row, got %v", v)
	}
}

func TestCursor_SetFetchModeInvalid(t *testing.T) {
	c := threeRows()
	if _, err := c.SetFetchMode(FetchMode(42)); KindOf(err) != ErrInvalidMode {
		t.Fatalf("invalid mode = %v", err)
	}
	if _, err := c.SetFetchMode(FetchObject, "not a struct"); KindOf(err) != ErrInvalidArgument {
		t.Fatalf("bad object target = %v", err)
	}
	if _, err := c.SetFetchMode(FetchColumn, 3.14); KindOf(err) != ErrInvalidArgument {
		t.Fatalf("bad column selector = %v", err)
	}
}

func TestCursor_AssocDuplicateNamesCollapse(t *testing.T) {
	c := &Cursor{mode: FetchOrdered, col: 0, cols: []string{"v", "v"}, rows: [][]any{{int64(1), int64(2)}}}
	row, err := c.Next(FetchAssoc)
	if err != nil {
		t.Fatal(err)
	}
	m := row.(map[string]any)
	if len(m) != 1 || m["v"] != int64(2) {
		t.Fatalf("duplicate columns = %v", m)
	}
}

func TestCursor_FromDriverQuery(t *testing.T) {
	db, mock := newMockDB(t, Config{})
	mock.ExpectQuery(`SELECT id, name FROM users`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).
			AddRow(int64(1), "alice").
			AddRow(int64(2), []byte("bob")))

	cur, err := db.Query(context.Background(), "SELECT id, name FROM users")
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if cur.RowCount() != 2 || cur.FieldCount() != 2 {
		t.Fatalf("RowCount=%d FieldCount=%d", cur.RowCount(), cur.FieldCount())
	}
	row, err := cur.Next(FetchAssoc)
	if err != nil {
		t.Fatal(err)
	}
	if row.(map[string]any)["name"] != "alice" {
		t.Fatalf("row = %v", row)
	}
	// []byte payloads normalize to string
	row, err = cur.Next(FetchAssoc)
	if err != nil {
		t.Fatal(err)
	}
	if row.(map[string]any)["name"] != "bob" {
		t.Fatalf("normalized row = %v", row)
	}
	expectMet(t, mock)
}
