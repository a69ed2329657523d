package query

import "fmt"

// Response status codes
const (
	StatusOK            = 200
	StatusBadRequest    = 400
	StatusNoSuchTable   = 404
	StatusNoSuchColumn  = 450
	StatusInvalidFilter = 452
	StatusInternal      = 500
)

// RequestError is a terminal failure of one request. Message is sent to the
// client as the response body.
type RequestError struct {
	Status  int
	Message string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func errNoSuchTable(name string) *RequestError {
	return &RequestError{
		Status:  StatusNoSuchTable,
		Message: fmt.Sprintf("Invalid GET request, no such table '%s'", name),
	}
}

func errNoSuchColumn(name string) *RequestError {
	return &RequestError{
		Status:  StatusNoSuchColumn,
		Message: fmt.Sprintf("Invalid GET request, no such column '%s'", name),
	}
}

func errInvalidFilter() *RequestError {
	return &RequestError{
		Status:  StatusInvalidFilter,
		Message: "Completely invalid GET request 'invalid Filter header'",
	}
}

func errBadMethod() *RequestError {
	return &RequestError{Status: StatusBadRequest, Message: "Invalid request method"}
}
