package ygggo_peardb

import (
	"database/sql"
	"reflect"
	"strings"
)

// FetchMode selects the shape a row is materialized in.
type FetchMode int

const (
	// FetchDefault resolves to the connection's default mode (compat.go).
	FetchDefault FetchMode = iota - 1

	FetchOrdered // []any in column order
	FetchAssoc   // map[string]any keyed by column name
	FetchObject  // Record, or a filled copy of the registered prototype
	FetchColumn  // single scalar picked by the column selector
)

func (m FetchMode) String() string {
	switch m {
	case FetchOrdered:
		return "ordered"
	case FetchAssoc:
		return "assoc"
	case FetchObject:
		return "object"
	case FetchColumn:
		return "column"
	case FetchDefault:
		return "default"
	default:
		return "invalid"
	}
}

// Record is the default materialization for FetchObject when no struct
// prototype has been registered.
type Record map[string]any

// Cursor is a forward-seekable view over one query's buffered result rows.
// Immediate queries buffer the full result, so RowCount and Seek are exact.
type Cursor struct {
	mode   FetchMode
	target any // object-mode prototype, nil means Record
	col    any // column-mode selector, int index or string name

	cols []string
	rows [][]any
	pos  int
}

// newCursor drains rows into a buffered cursor and closes them.
func newCursor(rows *sql.Rows) (*Cursor, error) {
	defer rows.Close()
	cols, err := rows.Columns()
	if err != nil {
		return nil, wrapDriver(err)
	}
	c := &Cursor{mode: FetchOrdered, col: 0, cols: cols}
	buf := make([]any, len(cols))
	scan := make([]any, len(cols))
	for i := range buf {
		scan[i] = &buf[i]
	}
	for rows.Next() {
		if err := rows.Scan(scan...); err != nil {
			return nil, wrapDriver(err)
		}
		row := make([]any, len(cols))
		for i, v := range buf {
			row[i] = normalizeValue(v)
		}
		c.rows = append(c.rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDriver(err)
	}
	return c, nil
}

// normalizeValue turns driver []byte payloads into strings, matching the
// text shape callers index maps and compare keys with.
func normalizeValue(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}

// SetFetchMode configures the cursor's fetch mode. For FetchObject, arg is
// an optional struct prototype (value or pointer); for FetchColumn, arg is
// the column index or name (default 0). Returns the cursor for chaining.
func (c *Cursor) SetFetchMode(mode FetchMode, arg ...any) (*Cursor, error) {
	switch mode {
	case FetchOrdered, FetchAssoc:
	case FetchObject:
		if len(arg) > 0 && arg[0] != nil {
			rv := reflect.ValueOf(arg[0])
			if rv.Kind() == reflect.Pointer {
				rv = rv.Elem()
			}
			if rv.Kind() != reflect.Struct {
				return nil, newError(ErrInvalidArgument, "object target must be a struct, got %T", arg[0])
			}
			c.target = arg[0]
		} else {
			c.target = nil
		}
	case FetchColumn:
		sel := any(0)
		if len(arg) > 0 {
			sel = arg[0]
		}
		switch sel.(type) {
		case int, string:
		default:
			return nil, newError(ErrInvalidArgument, "column selector must be int or string, got %T", sel)
		}
		c.col = sel
	default:
		return nil, newError(ErrInvalidMode, "invalid fetch mode %d", mode)
	}
	c.mode = mode
	return c, nil
}

// FieldCount returns the number of columns in the result.
func (c *Cursor) FieldCount() int { return len(c.cols) }

// RowCount returns the number of rows in the result.
func (c *Cursor) RowCount() int { return len(c.rows) }

// Fields returns the column names in result order.
func (c *Cursor) Fields() []string { return c.cols }

// Next fetches the next row, shaped by the configured mode unless an
// override is given. Past the last row it returns nil, nil.
func (c *Cursor) Next(mode ...FetchMode) (any, error) {
	m := c.mode
	if len(mode) > 0 {
		m = mode[0]
	}
	if c.pos >= len(c.rows) {
		return nil, nil
	}
	row := c.rows[c.pos]
	c.pos++
	return c.project(m, row)
}

// Current peeks at the row the cursor stands on without consuming it.
func (c *Cursor) Current() (any, error) {
	row, err := c.Next()
	if err != nil || row == nil {
		return row, err
	}
	c.pos--
	return row, nil
}

// Seek repositions the cursor to an absolute row index.
func (c *Cursor) Seek(pos int) error {
	if pos < 0 || pos > len(c.rows)-1 {
		return newError(ErrOutOfRange, "seek position %d outside 0..%d", pos, len(c.rows)-1)
	}
	c.pos = pos
	return nil
}

// FetchAll drains the cursor from its current position to the end using the
// configured fetch mode.
func (c *Cursor) FetchAll() ([]any, error) {
	var out []any
	for {
		row, err := c.Next()
		if err != nil {
			return nil, err
		}
		if row == nil {
			return out, nil
		}
		out = append(out, row)
	}
}

// FetchColumn fetches the next row and extracts a single field. col may be
// a column index or a column name; it defaults to the configured selector.
// Returns nil, nil when no rows remain; a failed extraction leaves the
// position unchanged.
func (c *Cursor) FetchColumn(col ...any) (any, error) {
	sel := c.col
	if len(col) > 0 {
		sel = col[0]
	}
	if c.pos >= len(c.rows) {
		return nil, nil
	}
	v, err := c.pick(sel, c.rows[c.pos])
	if err != nil {
		return nil, err
	}
	c.pos++
	return v, nil
}

func (c *Cursor) pick(sel any, row []any) (any, error) {
	switch s := sel.(type) {
	case int:
		if s < 0 || s >= len(row) {
			return nil, newError(ErrOutOfRange, "column %d outside 0..%d", s, len(row)-1)
		}
		return row[s], nil
	case string:
		for i, name := range c.cols {
			if name == s {
				return row[i], nil
			}
		}
		return nil, newError(ErrOutOfRange, "no column named %q in result", s)
	default:
		return nil, newError(ErrInvalidArgument, "column selector must be int or string, got %T", sel)
	}
}

func (c *Cursor) project(mode FetchMode, row []any) (any, error) {
	switch mode {
	case FetchOrdered:
		out := make([]any, len(row))
		copy(out, row)
		return out, nil
	case FetchAssoc:
		return c.assocRow(row), nil
	case FetchObject:
		return c.objectRow(row)
	case FetchColumn:
		return c.pick(c.col, row)
	default:
		return nil, newError(ErrInvalidMode, "invalid fetch mode %d", mode)
	}
}

// assocRow maps column names to values; duplicate names collapse to the
// last occurrence.
func (c *Cursor) assocRow(row []any) map[string]any {
	out := make(map[string]any, len(c.cols))
	for i, name := range c.cols {
		out[name] = row[i]
	}
	return out
}

func (c *Cursor) objectRow(row []any) (any, error) {
	if c.target == nil {
		out := make(Record, len(c.cols))
		for i, name := range c.cols {
			out[name] = row[i]
		}
		return out, nil
	}
	return fillStruct(c.target, c.cols, row)
}

// fillStruct materializes a row as a fresh instance of the prototype's
// type. Fields match columns via the `db` tag, falling back to the
// lowercased field name. Returns a pointer when the prototype was one.
func fillStruct(proto any, cols []string, row []any) (any, error) {
	pt := reflect.TypeOf(proto)
	wantPtr := pt.Kind() == reflect.Pointer
	st := pt
	if wantPtr {
		st = pt.Elem()
	}
	if st.Kind() != reflect.Struct {
		return nil, newError(ErrInvalidArgument, "object target must be a struct, got %T", proto)
	}
	ptr := reflect.New(st)
	elem := ptr.Elem()
	byName := make(map[string]int, st.NumField())
	for i := 0; i < st.NumField(); i++ {
		f := st.Field(i)
		if f.PkgPath != "" { // unexported
			continue
		}
		name := f.Tag.Get("db")
		if name == "-" {
			continue
		}
		if name == "" {
			name = strings.ToLower(f.Name)
		}
		byName[name] = i
	}
	for i, col := range cols {
		idx, ok := byName[strings.ToLower(col)]
		if !ok {
			continue
		}
		fv := elem.Field(idx)
		if err := assignValue(fv, row[i]); err != nil {
			return nil, err
		}
	}
	if wantPtr {
		return ptr.Interface(), nil
	}
	return elem.Interface(), nil
}

func assignValue(fv reflect.Value, v any) error {
	if v == nil {
		fv.Set(reflect.Zero(fv.Type()))
		return nil
	}
	rv := reflect.ValueOf(v)
	if rv.Type().AssignableTo(fv.Type()) {
		fv.Set(rv)
		return nil
	}
	if rv.Type().ConvertibleTo(fv.Type()) {
		fv.Set(rv.Convert(fv.Type()))
		return nil
	}
	return newError(ErrInvalidArgument, "cannot assign %T to field of type %s", v, fv.Type())
}
