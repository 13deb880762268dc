// Package recordstore is a table-oriented interface over the document store.
// Tables map to collections, filters are field equality, and every failure
// comes back as an *Error carrying one of the classification codes.
package recordstore

import (
	"context"
	"errors"
	"fmt"
)

const (
	CodeRowNotFound     = "ROW_NOT_FOUND"
	CodeRelationMissing = "RELATION_MISSING"
	CodeDuplicateKey    = "DUPLICATE_KEY"
	CodeTransient       = "TRANSIENT"
	CodeAborted         = "ABORTED"
	CodeUnknown         = "UNKNOWN"
)

// Filter matches documents whose fields equal every value in the map.
type Filter map[string]any

// Patch lists the fields to overwrite.
type Patch map[string]any

type Order struct {
	Field string
	Desc  bool
}

// Range selects a window of results. Limit 0 means no limit.
type Range struct {
	Offset int64
	Limit  int
}

type Store interface {
	Select(ctx context.Context, table string, filter Filter, order []Order, rng Range, out any) error
	FindOne(ctx context.Context, table string, filter Filter, out any) error
	Count(ctx context.Context, table string, filter Filter) (int64, error)
	// Insert returns the ids of the rows that were written. Rows without an
	// _id get a generated one. Bulk inserts are unordered: on DUPLICATE_KEY
	// the returned ids still list the rows that succeeded.
	Insert(ctx context.Context, table string, rows ...any) ([]string, error)
	Update(ctx context.Context, table string, patch Patch, filter Filter) (int64, error)
	Delete(ctx context.Context, table string, filter Filter) (int64, error)
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
	Ping(ctx context.Context) error
}

type Error struct {
	Code    string
	Table   string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Code + ": " + e.Message
	if e.Table != "" {
		msg = fmt.Sprintf("%s (table %s)", msg, e.Table)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(code, table, message string, err error) *Error {
	return &Error{Code: code, Table: table, Message: message, Err: err}
}

// NewError builds a classified error. Used by alternative Store implementations.
func NewError(code, table, message string, err error) *Error {
	return newError(code, table, message, err)
}

func IsCode(err error, code string) bool {
	var storeErr *Error
	if errors.As(err, &storeErr) {
		return storeErr.Code == code
	}
	return false
}

func IsNotFound(err error) bool {
	return IsCode(err, CodeRowNotFound)
}

func IsDuplicateKey(err error) bool {
	return IsCode(err, CodeDuplicateKey)
}
