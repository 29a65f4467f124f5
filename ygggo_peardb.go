// Package ygggo_peardb is a convenience wrapper around the native MySQL
// driver with a PEAR::Db-style call surface.
//
// # Overview
//
// ygggo_peardb adds on top of the raw driver:
//   - Multi-mode result cursors (ordered, assoc, object, column) with
//     seeking over buffered results
//   - Prepared statements with type hints, first-execute type inference and
//     a single reusable bound-buffer cursor per statement
//   - A frozen-statement cache shared across parameterized queries
//   - Read-only enforcement with exemptions for norepli_ tables and
//     temporary tables
//   - Trace-comment annotations injected into outgoing SQL
//   - A process-wide query log with timing, caller traces and aggregate
//     statistics
//   - Legacy getAssoc/getCol/getOne/getRow/getAll compatibility methods
//
// # Quick Start
//
//	import gpd "github.com/yggai/ygggo_peardb"
//
//	cfg := gpd.Config{
//		Host:     "localhost",
//		Port:     3306,
//		Username: "user",
//		Password: "password",
//		Database: "mydb",
//	}
//
//	ctx := context.Background()
//	db, err := gpd.New(ctx, cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer db.Close()
//
//	cur, err := db.Query(ctx, "SELECT id, name FROM users WHERE age > ?", 30)
//	if err != nil {
//		log.Fatal(err)
//	}
//	for {
//		row, err := cur.Next(gpd.FetchAssoc)
//		if err != nil || row == nil {
//			break
//		}
//		// row is a map[string]any keyed by column name
//	}
//
// There is no protocol implementation, pooling across processes, query
// planning or transaction coordination here; all of that is the driver's
// business. The connection is established lazily on first use.
//
// # Configuration
//
// The library supports programmatic configuration, the fluent DSNBuilder,
// and environment variables with the prefix YGGGO_PEARDB_* (e.g.
// YGGGO_PEARDB_HOST), optionally loaded from a .env file.
package ygggo_peardb

// Version returns the current library version.
func Version() string { return "v0.0.0-dev" }
