package errors

import "errors"

var ErrRequestNotFound = errors.New("request not found")
