package ygggo_peardb

import (
	"context"
	"log/slog"
	"os"
	"time"

	mysql "github.com/go-sql-driver/mysql"
)

var defaultLogger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
	Level: slog.LevelInfo,
}))

// EnableLogging enables or disables structured logging for this connection.
func (db *DB) EnableLogging(enabled bool) {
	if db == nil {
		return
	}
	db.loggingEnabled = enabled
	if enabled && db.logger == nil {
		db.logger = defaultLogger
	}
}

// SetLogger sets a custom logger for this connection.
func (db *DB) SetLogger(logger *slog.Logger) {
	if db == nil {
		return
	}
	db.logger = logger
}

// SetSlowQueryThreshold raises queries slower than threshold to warn level.
func (db *DB) SetSlowQueryThreshold(threshold time.Duration) {
	db.slowQueryThreshold = threshold
}

// logQuery logs command execution with structured fields.
func (db *DB) logQuery(ctx context.Context, operation, query string, args []any, duration time.Duration, err error) {
	if db == nil || !db.loggingEnabled || db.logger == nil {
		return
	}
	attrs := []slog.Attr{
		slog.String("operation", operation),
		slog.String("query", query),
		slog.Float64("duration_ms", float64(duration.Nanoseconds())/1e6),
	}
	if len(args) > 0 {
		attrs = append(attrs, slog.Int("arg_count", len(args)))
	}
	if err != nil {
		attrs = append(attrs,
			slog.String("status", "error"),
			slog.String("error", err.Error()),
		)
		if mysqlErr, ok := err.(*mysql.MySQLError); ok {
			attrs = append(attrs, slog.Int("error_code", int(mysqlErr.Number)))
		}
	} else {
		attrs = append(attrs, slog.String("status", "success"))
	}

	if db.slowQueryThreshold > 0 && duration > db.slowQueryThreshold {
		db.logger.LogAttrs(ctx, slog.LevelWarn, "slow query detected", attrs...)
		return
	}
	level := slog.LevelInfo
	if err != nil {
		level = slog.LevelError
	}
	db.logger.LogAttrs(ctx, level, "database query executed", attrs...)
}

// logConnection logs connection lifecycle events.
func (db *DB) logConnection(ctx context.Context, event string, duration time.Duration, err error) {
	if db == nil || !db.loggingEnabled || db.logger == nil {
		return
	}
	attrs := []slog.Attr{
		slog.String("event", event),
		slog.Float64("duration_ms", float64(duration.Nanoseconds())/1e6),
	}
	if err != nil {
		attrs = append(attrs,
			slog.String("status", "error"),
			slog.String("error", err.Error()),
		)
		db.logger.LogAttrs(ctx, slog.LevelError, "database connection event", attrs...)
		return
	}
	attrs = append(attrs, slog.String("status", "success"))
	db.logger.LogAttrs(ctx, slog.LevelDebug, "database connection event", attrs...)
}
