package ygggo_peardb

import (
	"context"
	"database/sql"
	"fmt"
	"reflect"
	"strconv"
	"time"
)

// ParamType tags a statement parameter's wire representation.
type ParamType int

const (
	ParamString ParamType = iota
	ParamInt
	ParamDouble
)

// Statement owns one prepared query. Parameter types come either from
// explicit hints at prepare time or from inference on the first execute;
// once fixed they never change, and later arguments are coerced to the
// original tag's representation.
type Statement struct {
	db     *DB
	text   string
	frozen bool

	hints    []ParamType
	inferred bool
	nParams  int

	stmt     *sql.Stmt
	cursor   *PreparedCursor
	affected int64
}

// Prepare stores and prepares the query text. Fails with FrozenStatement
// once Freeze has been called, and with TypeMismatch when the hint count
// disagrees with the number of placeholder markers.
func (s *Statement) Prepare(ctx context.Context, query string, typeHints ...ParamType) error {
	if s.frozen {
		return newError(ErrFrozenStatement, "statement is frozen, prepare refused")
	}
	n := countPlaceholders(query)
	if len(typeHints) > 0 && len(typeHints) != n {
		return newError(ErrTypeMismatch, "%d type hints for %d placeholders", len(typeHints), n)
	}
	conn, err := s.db.handle(ctx)
	if err != nil {
		return err
	}
	start := time.Now()
	stmt, err := s.db.doPrepare(ctx, conn, query)
	s.db.observe(ctx, "prepare", query, nil, time.Since(start), err)
	if err != nil {
		return wrapDriver(err)
	}
	if s.stmt != nil {
		_ = s.stmt.Close()
	}
	s.stmt = stmt
	s.text = query
	s.nParams = n
	s.hints = typeHints
	s.inferred = len(typeHints) > 0
	return nil
}

// Freeze marks the statement immutable so it is safe to share from a cache.
func (s *Statement) Freeze() { s.frozen = true }

// Frozen reports whether the statement text may still change.
func (s *Statement) Frozen() bool { return s.frozen }

// Text returns the prepared query text.
func (s *Statement) Text() string { return s.text }

// Execute binds params and runs the statement. For result-producing
// statements it returns the statement's single prepared cursor, reset and
// refilled; for others it returns nil and records the affected-row count.
func (s *Statement) Execute(ctx context.Context, params ...any) (*PreparedCursor, error) {
	if s.stmt == nil {
		return nil, newError(ErrNotPrepared, "execute before prepare")
	}
	if len(params) != s.nParams {
		return nil, newError(ErrParamMismatch, "%d parameters for %d placeholders", len(params), s.nParams)
	}
	if !s.inferred {
		s.hints = inferTypes(params)
		s.inferred = true
	}
	args := make([]any, len(params))
	for i, p := range params {
		args[i] = coerceParam(s.hints[i], p)
	}
	s.db.noteLast(s)

	start := time.Now()
	if returnsRows(s.text) {
		rows, err := s.stmt.QueryContext(ctx, args...)
		s.db.observe(ctx, "execute", s.text, params, time.Since(start), err)
		if err != nil {
			return nil, wrapDriver(err)
		}
		if s.cursor == nil {
			s.cursor = newPreparedCursor()
		} else {
			s.cursor.Reset()
		}
		if err := s.cursor.fill(rows); err != nil {
			return nil, err
		}
		return s.cursor, nil
	}
	res, err := s.stmt.ExecContext(ctx, args...)
	s.db.observe(ctx, "execute", s.text, params, time.Since(start), err)
	if err != nil {
		return nil, wrapDriver(err)
	}
	if n, err := res.RowsAffected(); err == nil {
		s.affected = n
	}
	return nil, nil
}

// GetAffectedRows returns the row count of the last execute. Before any
// execute it returns the last value the driver reported, which may be
// stale.
func (s *Statement) GetAffectedRows() int64 { return s.affected }

// Close releases the prepared statement handle.
func (s *Statement) Close() error {
	if s.stmt == nil {
		return nil
	}
	err := s.stmt.Close()
	s.stmt = nil
	return err
}

// inferTypes decides parameter tags from the first execute's argument
// types: integers tag ParamInt, floats ParamDouble, everything else
// ParamString.
func inferTypes(params []any) []ParamType {
	tags := make([]ParamType, len(params))
	for i, p := range params {
		switch reflect.ValueOf(p).Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
			reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			tags[i] = ParamInt
		case reflect.Float32, reflect.Float64:
			tags[i] = ParamDouble
		default:
			tags[i] = ParamString
		}
	}
	return tags
}

// coerceParam converts v to the wire representation of its fixed tag.
func coerceParam(tag ParamType, v any) any {
	if v == nil {
		return nil
	}
	switch tag {
	case ParamInt:
		return asInt64(v)
	case ParamDouble:
		return asFloat64(v)
	default:
		return asString(v)
	}
}

func asInt64(v any) int64 {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int64(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return int64(rv.Float())
	case reflect.String:
		n, _ := strconv.ParseInt(rv.String(), 10, 64)
		return n
	case reflect.Bool:
		if rv.Bool() {
			return 1
		}
		return 0
	default:
		return 0
	}
}

func asFloat64(v any) float64 {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		return rv.Float()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint())
	case reflect.String:
		f, _ := strconv.ParseFloat(rv.String(), 64)
		return f
	default:
		return 0
	}
}

func asString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case []byte:
		return string(x)
	default:
		return fmt.Sprint(x)
	}
}
