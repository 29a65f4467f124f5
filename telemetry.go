package ygggo_peardb

import (
	"context"
	"database/sql"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	instrumentationName    = "github.com/yggai/ygggo_peardb"
	instrumentationVersion = "v0.1.0"
)

// tracer resolves against the current global provider on every call: a
// tracer captured at package init would stick to whichever provider was
// installed first.
func tracer() trace.Tracer {
	return otel.Tracer(instrumentationName, trace.WithInstrumentationVersion(instrumentationVersion))
}

// EnableTelemetry enables or disables OpenTelemetry tracing for this
// connection.
func (db *DB) EnableTelemetry(enabled bool) {
	if db == nil {
		return
	}
	db.telemetryEnabled = enabled
}

func (db *DB) startSpan(ctx context.Context, operation, query string) (context.Context, trace.Span) {
	if !db.telemetryEnabled {
		return ctx, trace.SpanFromContext(ctx)
	}
	ctx, span := tracer().Start(ctx, "ygggo_peardb."+operation)
	span.SetAttributes(
		attribute.String("db.system", "mysql"),
		attribute.String("db.operation", operation),
	)
	if query != "" {
		span.SetAttributes(attribute.String("db.statement", query))
	}
	return ctx, span
}

func (db *DB) finishSpan(span trace.Span, err error) {
	if !db.telemetryEnabled {
		return
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// doQuery runs a result-producing statement, traced when telemetry is on.
func (db *DB) doQuery(ctx context.Context, conn *sql.Conn, query string, args ...any) (*sql.Rows, error) {
	if !db.telemetryEnabled {
		return conn.QueryContext(ctx, query, args...)
	}
	spanCtx, span := db.startSpan(ctx, "query", query)
	rows, err := conn.QueryContext(spanCtx, query, args...)
	db.finishSpan(span, err)
	return rows, err
}

// doPrepare prepares a statement on conn, traced when telemetry is on.
func (db *DB) doPrepare(ctx context.Context, conn *sql.Conn, query string) (*sql.Stmt, error) {
	if !db.telemetryEnabled {
		return conn.PrepareContext(ctx, query)
	}
	spanCtx, span := db.startSpan(ctx, "prepare", query)
	stmt, err := conn.PrepareContext(spanCtx, query)
	db.finishSpan(span, err)
	return stmt, err
}

// doExec runs a non-result statement, traced when telemetry is on.
func (db *DB) doExec(ctx context.Context, conn *sql.Conn, query string, args ...any) (sql.Result, error) {
	if !db.telemetryEnabled {
		return conn.ExecContext(ctx, query, args...)
	}
	spanCtx, span := db.startSpan(ctx, "exec", query)
	res, err := conn.ExecContext(spanCtx, query, args...)
	db.finishSpan(span, err)
	return res, err
}
