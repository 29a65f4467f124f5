package ygggo_peardb

import "testing"

func TestCheckReadonly(t *testing.T) {
	cases := []struct {
		name    string
		query   string
		blocked bool
	}{
		{"select passes", "SELECT * FROM users", false},
		{"show passes", "SHOW ENGINES", false},
		{"insert blocked", "INSERT INTO users (name) VALUES ('a')", true},
		{"update blocked", "UPDATE users SET name = 'b'", true},
		{"delete blocked", "DELETE FROM users WHERE id = 1", true},
		{"replace blocked", "REPLACE INTO users VALUES (1, 'a')", true},
		{"create blocked", "CREATE TABLE t (id INT)", true},
		{"leading whitespace still blocked", "  \n\tUPDATE users SET name = 'b'", true},
		{"case insensitive", "insert into users values (1)", true},
		{"norepli insert exempt", "INSERT INTO norepli_scratch VALUES (1)", false},
		{"norepli insert ignore exempt", "INSERT IGNORE INTO norepli_scratch VALUES (1)", false},
		{"norepli backticked exempt", "UPDATE `norepli_scratch` SET a = 1", false},
		{"norepli delete exempt", "DELETE FROM norepli_scratch", false},
		{"norepli create table exempt", "CREATE TABLE norepli_tmp (id INT)", false},
		{"norepli mid-name not exempt", "INSERT INTO users_norepli_x VALUES (1)", true},
		{"create temporary exempt", "CREATE TEMPORARY TABLE scratch (id INT)", false},
		{"selectable verb prefix not a write", "SELECTED_COL", false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := checkReadonly(c.query)
			if c.blocked && KindOf(err) != ErrReadOnlyViolation {
				t.Fatalf("expected ReadOnlyViolation for %q, got %v", c.query, err)
			}
			if !c.blocked && err != nil {
				t.Fatalf("unexpected block for %q: %v", c.query, err)
			}
		})
	}
}
