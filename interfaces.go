package ygggo_peardb

import "context"

// Querier is the primary query surface shared by code that does not care
// about the legacy shim.
type Querier interface {
	Query(ctx context.Context, query string, params ...any) (*Cursor, error)
	Prepare(ctx context.Context, query string, typeHints ...ParamType) (*Statement, error)
	PrepareCached(ctx context.Context, query string, typeHints ...ParamType) (*Statement, error)
	GetAffectedRows() int64
}

// LegacyQuerier is the older API's call surface, one named method per
// operation.
type LegacyQuerier interface {
	SetFetchMode(mode FetchMode) error
	GetAssoc(ctx context.Context, query string, forceArray bool, params []any, mode FetchMode, group bool) (map[string]any, error)
	GetCol(ctx context.Context, query string, col any, params ...any) ([]any, error)
	GetOne(ctx context.Context, query string, params ...any) (any, error)
	GetRow(ctx context.Context, query string, params []any, mode FetchMode) (any, error)
	GetAll(ctx context.Context, query string, params []any, mode FetchMode) ([]any, error)
}

// Ensure the concrete type implements the interfaces at compile time
var (
	_ Querier       = (*DB)(nil)
	_ LegacyQuerier = (*DB)(nil)
)
