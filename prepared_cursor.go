package ygggo_peardb

import "database/sql"

// PreparedCursor sources rows through a fixed bound buffer: every physical
// fetch overwrites the buffer in place before the row is projected into the
// requested shape. A Statement owns at most one PreparedCursor; the driver
// allows a single set of output bindings per statement handle, so
// re-execution reuses and resets this object instead of allocating a
// second one.
type PreparedCursor struct {
	Cursor
	buf  []any // bound output slots, one per result column
	scan []any // scan destinations aliasing buf
}

func newPreparedCursor() *PreparedCursor {
	return &PreparedCursor{Cursor: Cursor{mode: FetchOrdered, col: 0}}
}

// fill consumes one execution's rows through the bound buffer. Field names
// resolve from metadata exactly once; the row store is reused across
// executions.
func (c *PreparedCursor) fill(rows *sql.Rows) error {
	defer rows.Close()
	cols, err := rows.Columns()
	if err != nil {
		return wrapDriver(err)
	}
	if c.cols == nil {
		c.cols = cols
		c.buf = make([]any, len(cols))
		c.scan = make([]any, len(cols))
		for i := range c.buf {
			c.scan[i] = &c.buf[i]
		}
	}
	if len(cols) != len(c.buf) {
		return newError(ErrOutOfRange, "result has %d columns, bound buffer has %d", len(cols), len(c.buf))
	}
	c.rows = c.rows[:0]
	for rows.Next() {
		if err := rows.Scan(c.scan...); err != nil {
			return wrapDriver(err)
		}
		row := make([]any, len(c.buf))
		for i, v := range c.buf {
			row[i] = normalizeValue(v)
		}
		c.rows = append(c.rows, row)
	}
	if err := rows.Err(); err != nil {
		return wrapDriver(err)
	}
	return nil
}

// Reset rewinds to row 0 and restores the default fetch mode and object
// target. Called on re-execution; field names are not requeried.
func (c *PreparedCursor) Reset() *PreparedCursor {
	c.pos = 0
	c.mode = FetchOrdered
	c.target = nil
	c.col = 0
	return c
}
