package ygggo_peardb

import (
	"errors"
	"fmt"

	mysql "github.com/go-sql-driver/mysql"
)

// ErrorKind classifies errors raised by this library or mapped from the
// MySQL server.
type ErrorKind int

const (
	ErrUnknown ErrorKind = iota
	ErrConnectFailed
	ErrNotConnected
	ErrReadOnlyViolation
	ErrFrozenStatement
	ErrParamMismatch
	ErrTypeMismatch
	ErrNotPrepared
	ErrTruncatedResult
	ErrNoSuchField
	ErrOutOfRange
	ErrInvalidArgument
	ErrInvalidMode

	// Kinds mapped from server error numbers.
	ErrAlreadyExists
	ErrNoSuchTable
	ErrNoSuchDatabase
	ErrSyntaxError
	ErrNotLocked
	ErrAccessDenied
)

func (k ErrorKind) String() string {
	switch k {
	case ErrConnectFailed:
		return "ConnectFailed"
	case ErrNotConnected:
		return "NotConnected"
	case ErrReadOnlyViolation:
		return "ReadOnlyViolation"
	case ErrFrozenStatement:
		return "FrozenStatement"
	case ErrParamMismatch:
		return "ParamMismatch"
	case ErrTypeMismatch:
		return "TypeMismatch"
	case ErrNotPrepared:
		return "NotPrepared"
	case ErrTruncatedResult:
		return "TruncatedResult"
	case ErrNoSuchField:
		return "NoSuchField"
	case ErrOutOfRange:
		return "OutOfRange"
	case ErrInvalidArgument:
		return "InvalidArgument"
	case ErrInvalidMode:
		return "InvalidMode"
	case ErrAlreadyExists:
		return "AlreadyExists"
	case ErrNoSuchTable:
		return "NoSuchTable"
	case ErrNoSuchDatabase:
		return "NoSuchDatabase"
	case ErrSyntaxError:
		return "SyntaxError"
	case ErrNotLocked:
		return "NotLocked"
	case ErrAccessDenied:
		return "AccessDenied"
	default:
		return "Unknown"
	}
}

// Error is the error type surfaced by this library. Code and SQLState are
// populated when the error originated at the server.
type Error struct {
	Kind     ErrorKind
	Code     uint16
	SQLState string
	Message  string
	cause    error
}

func (e *Error) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("%s (%d): %s", e.Kind, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

func newError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// serverKind maps MySQL server error numbers to error kinds. Unmapped
// numbers stay ErrUnknown and carry the raw code/message/sqlstate.
func serverKind(number uint16) ErrorKind {
	switch number {
	case 1062, 1007, 1050: // duplicate entry, db exists, table exists
		return ErrAlreadyExists
	case 1051, 1146:
		return ErrNoSuchTable
	case 1049, 1008:
		return ErrNoSuchDatabase
	case 1064, 1149:
		return ErrSyntaxError
	case 1205, 1100: // lock wait timeout, table not locked
		return ErrNotLocked
	case 1044, 1045, 1142:
		return ErrAccessDenied
	case 2002, 2003, 2006, 2013: // connection loss reported by the server side
		return ErrNotConnected
	default:
		return ErrUnknown
	}
}

// wrapDriver converts a driver error into an *Error with a mapped kind.
// Errors that are not MySQL server errors pass through unchanged.
func wrapDriver(err error) error {
	if err == nil {
		return nil
	}
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return &Error{
			Kind:     serverKind(me.Number),
			Code:     me.Number,
			SQLState: string(me.SQLState[:]),
			Message:  me.Message,
			cause:    err,
		}
	}
	return err
}

// KindOf extracts the ErrorKind from err, or ErrUnknown when err did not
// come from this library.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ErrUnknown
}
