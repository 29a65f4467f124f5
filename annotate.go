package ygggo_peardb

import (
	"sort"
	"strings"
)

// Trace annotations are appended to outgoing SQL as a trailing comment so
// they show up in the server's process list and slow log. Connection-level
// annotations persist; query-level ones are consumed by the next dispatch.

// Annotate sets a persistent connection-level annotation.
func (db *DB) Annotate(key, value string) {
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.connAnn == nil {
		db.connAnn = make(map[string]string)
	}
	db.connAnn[key] = sanitizeAnnotation(value)
}

// AnnotateQuery sets an annotation consumed by the next query only.
func (db *DB) AnnotateQuery(key, value string) {
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.queryAnn == nil {
		db.queryAnn = make(map[string]string)
	}
	db.queryAnn[key] = sanitizeAnnotation(value)
}

// annotated appends the trace comment to query and consumes the one-shot
// annotations. Keys are emitted in sorted order for determinism.
func (db *DB) annotated(query string) string {
	db.mu.Lock()
	merged := make(map[string]string, len(db.connAnn)+len(db.queryAnn))
	for k, v := range db.connAnn {
		merged[k] = v
	}
	for k, v := range db.queryAnn {
		merged[k] = v
	}
	db.queryAnn = nil
	db.mu.Unlock()

	if len(merged) == 0 {
		return query
	}
	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	b.Grow(len(query) + 16*len(keys))
	b.WriteString(query)
	b.WriteString(" /* ")
	for i, k := range keys {
		if i > 0 {
			b.WriteString(" ")
		}
		b.WriteString(sanitizeAnnotation(k))
		b.WriteString("=")
		b.WriteString(merged[k])
	}
	b.WriteString(" */")
	return b.String()
}

// sanitizeAnnotation strips comment delimiters and control characters so an
// annotation value cannot terminate the comment it rides in. Whitespace runs
// left behind by the stripping collapse to a single space.
func sanitizeAnnotation(s string) string {
	s = strings.ReplaceAll(s, "*/", "")
	s = strings.ReplaceAll(s, "/*", "")
	s = strings.Map(func(r rune) rune {
		if r < ' ' {
			return -1
		}
		return r
	}, s)
	return strings.Join(strings.Fields(s), " ")
}
