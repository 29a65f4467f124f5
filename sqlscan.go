package ygggo_peardb

import (
	"fmt"
	"strings"
)

// countPlaceholders counts unescaped ? markers outside quoted regions and
// comments. Whether a marker sits at a legal value position is the server's
// call.
func countPlaceholders(query string) int {
	n := 0
	scanPlaceholders(query, func(*strings.Builder) { n++ })
	return n
}

// substituteParams renders query with params spliced into its ? markers for
// display purposes. The result is never executed.
func substituteParams(query string, params []any) string {
	if len(params) == 0 {
		return query
	}
	i := 0
	var b strings.Builder
	b.Grow(len(query) + 16*len(params))
	consumed := scanPlaceholdersInto(query, &b, func(b *strings.Builder) {
		if i < len(params) {
			b.WriteString(displayLiteral(params[i]))
			i++
		} else {
			b.WriteByte('?')
		}
	})
	if !consumed {
		return query
	}
	return b.String()
}

// scanPlaceholders walks query and calls onMarker for every ? outside
// single quotes, double quotes, backticks and comments, honoring backslash
// escapes. The server treats ? inside a comment as plain text, so the
// scanner must too, or an injected trace comment would shift the binding
// count.
func scanPlaceholders(query string, onMarker func(*strings.Builder)) {
	scanPlaceholdersInto(query, nil, onMarker)
}

func scanPlaceholdersInto(query string, out *strings.Builder, onMarker func(*strings.Builder)) bool {
	var quote byte
	found := false
	for i := 0; i < len(query); i++ {
		ch := query[i]
		if quote != 0 {
			if ch == '\\' && quote != '`' && i+1 < len(query) {
				if out != nil {
					out.WriteByte(ch)
					out.WriteByte(query[i+1])
				}
				i++
				continue
			}
			if ch == quote {
				quote = 0
			}
			if out != nil {
				out.WriteByte(ch)
			}
			continue
		}
		switch ch {
		case '\'', '"', '`':
			quote = ch
			if out != nil {
				out.WriteByte(ch)
			}
		case '?':
			found = true
			onMarker(out)
		case '/':
			if i+1 < len(query) && query[i+1] == '*' {
				j := len(query)
				if end := strings.Index(query[i+2:], "*/"); end >= 0 {
					j = i + 2 + end + 2
				}
				if out != nil {
					out.WriteString(query[i:j])
				}
				i = j - 1
				break
			}
			if out != nil {
				out.WriteByte(ch)
			}
		case '-':
			if i+1 < len(query) && query[i+1] == '-' {
				j := len(query)
				if end := strings.IndexByte(query[i:], '\n'); end >= 0 {
					j = i + end
				}
				if out != nil {
					out.WriteString(query[i:j])
				}
				i = j - 1
				break
			}
			if out != nil {
				out.WriteByte(ch)
			}
		default:
			if out != nil {
				out.WriteByte(ch)
			}
		}
	}
	return found
}

func displayLiteral(v any) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case string:
		return "'" + strings.ReplaceAll(x, "'", "''") + "'"
	case []byte:
		return "'" + strings.ReplaceAll(string(x), "'", "''") + "'"
	case bool:
		if x {
			return "1"
		}
		return "0"
	default:
		return fmt.Sprint(x)
	}
}

// returnsRows reports whether the statement produces a result set, deciding
// between the query and exec driver entry points.
func returnsRows(query string) bool {
	switch leadingVerb(query) {
	case "select", "show", "describe", "desc", "explain", "analyze", "with":
		return true
	}
	return false
}

// leadingVerb returns the first SQL keyword, lowercased, with leading
// whitespace, parenthesis and comments skipped.
func leadingVerb(query string) string {
	s := strings.TrimSpace(query)
	for {
		switch {
		case strings.HasPrefix(s, "("):
			s = strings.TrimSpace(s[1:])
		case strings.HasPrefix(s, "/*"):
			end := strings.Index(s, "*/")
			if end < 0 {
				return ""
			}
			s = strings.TrimSpace(s[end+2:])
		case strings.HasPrefix(s, "--"):
			end := strings.IndexByte(s, '\n')
			if end < 0 {
				return ""
			}
			s = strings.TrimSpace(s[end+1:])
		default:
			end := 0
			for end < len(s) {
				c := s[end]
				if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_' {
					end++
					continue
				}
				break
			}
			return strings.ToLower(s[:end])
		}
	}
}
