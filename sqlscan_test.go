package ygggo_peardb

import "testing"

func TestCountPlaceholders(t *testing.T) {
	cases := []struct {
		query string
		want  int
	}{
		{"SELECT 1", 0},
		{"SELECT * FROM t WHERE a = ? AND b = ?", 2},
		{"SELECT '?' FROM t WHERE a = ?", 1},
		{`SELECT "?" FROM t`, 0},
		{"SELECT `odd?col` FROM t WHERE a = ?", 1},
		{`SELECT 'it\'s ?' FROM t WHERE a = ?`, 1},
		{"INSERT INTO t VALUES (?, ?, ?)", 3},
		{"SELECT a FROM t WHERE id = ? /* is it ok? */", 1},
		{"SELECT a FROM t WHERE id = ? -- trailing?", 1},
		{"SELECT a -- first?\nFROM t WHERE id = ?", 1},
		{"/* leading? */ SELECT ?", 1},
	}
	for _, c := range cases {
		if got := countPlaceholders(c.query); got != c.want {
			t.Errorf("countPlaceholders(%q) = %d, want %d", c.query, got, c.want)
		}
	}
}

func TestSubstituteParams(t *testing.T) {
	got := substituteParams("SELECT * FROM t WHERE a = ? AND b = ?", []any{int64(3), "x"})
	want := "SELECT * FROM t WHERE a = 3 AND b = 'x'"
	if got != want {
		t.Fatalf("substituteParams = %q, want %q", got, want)
	}
}

func TestSubstituteParams_TooFewParamsKeepsMarker(t *testing.T) {
	got := substituteParams("a = ? AND b = ?", []any{1})
	if got != "a = 1 AND b = ?" {
		t.Fatalf("substituteParams = %q", got)
	}
}

func TestSubstituteParams_SkipsCommentMarkers(t *testing.T) {
	got := substituteParams("SELECT ? /* really? */ -- sure?", []any{int64(1)})
	if got != "SELECT 1 /* really? */ -- sure?" {
		t.Fatalf("substituteParams = %q", got)
	}
}

func TestSubstituteParams_NoParamsPassthrough(t *testing.T) {
	q := "SELECT * FROM t WHERE a = ?"
	if got := substituteParams(q, nil); got != q {
		t.Fatalf("substituteParams = %q", got)
	}
}

func TestLeadingVerb(t *testing.T) {
	cases := []struct {
		query string
		want  string
	}{
		{"SELECT 1", "select"},
		{"  \n\tUPDATE t SET a=1", "update"},
		{"(SELECT 1) UNION (SELECT 2)", "select"},
		{"/* hint */ DELETE FROM t", "delete"},
		{"-- note\nINSERT INTO t VALUES (1)", "insert"},
		{"/* unterminated", ""},
	}
	for _, c := range cases {
		if got := leadingVerb(c.query); got != c.want {
			t.Errorf("leadingVerb(%q) = %q, want %q", c.query, got, c.want)
		}
	}
}

func TestReturnsRows(t *testing.T) {
	yes := []string{
		"SELECT 1",
		"SHOW ENGINES",
		"DESCRIBE t",
		"EXPLAIN SELECT 1",
		"WITH x AS (SELECT 1) SELECT * FROM x",
	}
	no := []string{
		"INSERT INTO t VALUES (1)",
		"UPDATE t SET a=1",
		"DELETE FROM t",
		"CREATE TABLE t (id INT)",
		"BEGIN",
	}
	for _, q := range yes {
		if !returnsRows(q) {
			t.Errorf("returnsRows(%q) = false", q)
		}
	}
	for _, q := range no {
		if returnsRows(q) {
			t.Errorf("returnsRows(%q) = true", q)
		}
	}
}
