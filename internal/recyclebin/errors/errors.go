package errors

import "errors"

var (
	ErrNotFound = errors.New("deleted item not found")

	ErrOriginalExists = errors.New("original record still exists")

	ErrUnknownTable = errors.New("deleted item refers to an unknown table")
)
