package ygggo_peardb

import (
	"context"
	"strings"
)

// HasEngine reports whether the server supports the named storage engine,
// case-insensitively. The engine set is enumerated once per connection and
// memoized; engines count as supported when their support field is YES or
// DEFAULT.
func (db *DB) HasEngine(ctx context.Context, name string) (bool, error) {
	if db.engines == nil {
		cur, err := db.Query(ctx, "SHOW ENGINES")
		if err != nil {
			return false, err
		}
		engines := make(map[string]bool)
		if cur != nil {
			for {
				row, err := cur.Next(FetchAssoc)
				if err != nil {
					return false, err
				}
				if row == nil {
					break
				}
				m := row.(map[string]any)
				engine, _ := m["Engine"].(string)
				support, _ := m["Support"].(string)
				switch strings.ToUpper(support) {
				case "YES", "DEFAULT":
					engines[strings.ToLower(engine)] = true
				}
			}
		}
		db.engines = engines
	}
	return db.engines[strings.ToLower(name)], nil
}
