package ygggo_peardb

import "context"

// Legacy call conventions from the older PEAR-style API, expressed as
// explicit named methods instead of dynamic call forwarding. The older
// API's "default" fetch mode resolves to a per-connection override when one
// was set, and to ordered otherwise.

// SetFetchMode sets the connection-wide default fetch mode used wherever a
// legacy operation is handed FetchDefault.
func (db *DB) SetFetchMode(mode FetchMode) error {
	switch mode {
	case FetchOrdered, FetchAssoc, FetchObject:
		db.defaultMode = mode
		return nil
	default:
		return newError(ErrInvalidMode, "invalid default fetch mode %d", mode)
	}
}

func (db *DB) resolveMode(mode FetchMode) FetchMode {
	if mode == FetchDefault {
		return db.defaultMode
	}
	return mode
}

// GetAssoc runs query and shapes the result as a mapping keyed by the first
// column. Two-column results map key to the bare second value unless
// forceArray is set; wider results map key to the remaining columns shaped
// per mode. With group, values sharing a key collect into a list; without,
// later duplicates overwrite earlier ones. Results with fewer than two
// columns fail with TruncatedResult.
func (db *DB) GetAssoc(ctx context.Context, query string, forceArray bool, params []any, mode FetchMode, group bool) (map[string]any, error) {
	cur, err := db.Query(ctx, query, params...)
	if err != nil {
		return nil, err
	}
	if cur == nil {
		return nil, newError(ErrInvalidArgument, "query produced no result set")
	}
	if cur.FieldCount() < 2 {
		return nil, newError(ErrTruncatedResult, "getAssoc needs at least 2 columns, result has %d", cur.FieldCount())
	}
	mode = db.resolveMode(mode)
	scalar := cur.FieldCount() == 2 && !forceArray
	out := make(map[string]any)
	for {
		raw, err := cur.Next(FetchOrdered)
		if err != nil {
			return nil, err
		}
		if raw == nil {
			return out, nil
		}
		row := raw.([]any)
		key := keyString(row[0])
		var val any
		if scalar {
			val = row[1]
		} else {
			val = shapeRest(mode, cur.Fields(), row)
		}
		if group {
			list, _ := out[key].([]any)
			out[key] = append(list, val)
		} else {
			out[key] = val
		}
	}
}

// shapeRest shapes a row minus its leading key column: assoc mode strips
// the key from the map, object mode from the record, ordered mode shifts
// the first element off.
func shapeRest(mode FetchMode, cols []string, row []any) any {
	switch mode {
	case FetchAssoc:
		m := make(map[string]any, len(cols)-1)
		for i := 1; i < len(cols); i++ {
			m[cols[i]] = row[i]
		}
		return m
	case FetchObject:
		r := make(Record, len(cols)-1)
		for i := 1; i < len(cols); i++ {
			r[cols[i]] = row[i]
		}
		return r
	default:
		rest := make([]any, len(row)-1)
		copy(rest, row[1:])
		return rest
	}
}

// GetCol runs query and returns one column from every row. col may be an
// index or a name; it must be present in the first row or the call fails
// with NoSuchField.
func (db *DB) GetCol(ctx context.Context, query string, col any, params ...any) ([]any, error) {
	cur, err := db.Query(ctx, query, params...)
	if err != nil {
		return nil, err
	}
	if cur == nil {
		return nil, newError(ErrInvalidArgument, "query produced no result set")
	}
	if cur.RowCount() == 0 {
		return []any{}, nil
	}
	switch s := col.(type) {
	case int:
		if s < 0 || s >= cur.FieldCount() {
			return nil, newError(ErrNoSuchField, "no column %d in first row", s)
		}
	case string:
		found := false
		for _, name := range cur.Fields() {
			if name == s {
				found = true
				break
			}
		}
		if !found {
			return nil, newError(ErrNoSuchField, "no column %q in first row", s)
		}
	default:
		return nil, newError(ErrInvalidArgument, "column selector must be int or string, got %T", col)
	}
	out := make([]any, 0, cur.RowCount())
	for {
		raw, err := cur.Next(FetchOrdered)
		if err != nil {
			return nil, err
		}
		if raw == nil {
			return out, nil
		}
		v, err := cur.pick(col, raw.([]any))
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
}

// GetOne runs query and returns the first column of the first row, or nil
// when the result is empty.
func (db *DB) GetOne(ctx context.Context, query string, params ...any) (any, error) {
	cur, err := db.Query(ctx, query, params...)
	if err != nil {
		return nil, err
	}
	if cur == nil {
		return nil, newError(ErrInvalidArgument, "query produced no result set")
	}
	return cur.FetchColumn(0)
}

// GetRow runs query and returns its first row shaped per mode, or nil when
// the result is empty.
func (db *DB) GetRow(ctx context.Context, query string, params []any, mode FetchMode) (any, error) {
	cur, err := db.Query(ctx, query, params...)
	if err != nil {
		return nil, err
	}
	if cur == nil {
		return nil, newError(ErrInvalidArgument, "query produced no result set")
	}
	return cur.Next(db.resolveMode(mode))
}

// GetAll runs query and returns every row shaped per mode.
func (db *DB) GetAll(ctx context.Context, query string, params []any, mode FetchMode) ([]any, error) {
	cur, err := db.Query(ctx, query, params...)
	if err != nil {
		return nil, err
	}
	if cur == nil {
		return nil, newError(ErrInvalidArgument, "query produced no result set")
	}
	if _, err := cur.SetFetchMode(db.resolveMode(mode)); err != nil {
		return nil, err
	}
	return cur.FetchAll()
}

func keyString(v any) string {
	if v == nil {
		return ""
	}
	return asString(v)
}
