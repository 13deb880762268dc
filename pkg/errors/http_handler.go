package errors

import "net/http"

// Response is the body sent to clients; the wrapped cause is never exposed.
func (e *AppError) Response() ErrorResponse {
	return ErrorResponse{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	}
}

// HTTPStatus resolves the status for any error, falling back to 500.
func HTTPStatus(err error) int {
	appErr := AsAppError(err)
	if appErr.HTTPStatus == 0 {
		return http.StatusInternalServerError
	}
	return appErr.HTTPStatus
}

// ShouldWrite is false for aborted requests: the client is gone and nothing is shown.
func ShouldWrite(err error) bool {
	return !IsAborted(err)
}
