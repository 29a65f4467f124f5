package ygggo_peardb

import "regexp"

// Write-verb classification for read-only connections. A statement is
// exempt when it targets a norepli_-prefixed table or creates a temporary
// table.
var (
	writeVerbRe     = regexp.MustCompile(`(?is)^\s*(insert|delete|update|replace|create)\b`)
	norepliTableRe  = regexp.MustCompile("(?is)^\\s*(?:insert\\s+(?:ignore\\s+)?into|delete\\s+from|update|replace\\s+into|create\\s+(?:table|index)(?:\\s+if\\s+not\\s+exists)?)\\s+`?norepli_")
	createTempRe    = regexp.MustCompile(`(?is)^\s*create\s+temporary\b`)
)

// checkReadonly returns a ReadOnlyViolation error when query is a write
// statement that may not run on a read-only connection.
func checkReadonly(query string) error {
	if !writeVerbRe.MatchString(query) {
		return nil
	}
	if createTempRe.MatchString(query) {
		return nil
	}
	if norepliTableRe.MatchString(query) {
		return nil
	}
	return newError(ErrReadOnlyViolation, "write statement on read-only connection: %s", leadingVerb(query))
}
