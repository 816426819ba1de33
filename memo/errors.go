package memo

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotFound means the plan or spot no longer exists.
	ErrNotFound = errors.New("plan or spot not found")
	// ErrTransport covers network failures and unexpected statuses.
	ErrTransport = errors.New("request to the trip API failed")
)

// Operation names a mutation performed by the controller.
type Operation string

const (
	OpCreateMemo Operation = "create_memo"
	OpDeleteMemo Operation = "delete_memo"
	OpDeleteSpot Operation = "delete_spot"
)

// OperationError is reported to the Reporter when a mutation fails for any
// reason other than a rejected password.
type OperationError struct {
	Op   Operation
	Kind error
	Err  error
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
}

func (e *OperationError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

// IsNotFound reports whether err is classified as a missing plan or spot.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// httpStatuser is implemented by errors carrying a response status.
type httpStatuser interface {
	HTTPStatus() int
}

// classify maps a request error to the escalated error. Only the delete
// operations distinguish a missing resource.
func classify(op Operation, err error) *OperationError {
	kind := ErrTransport
	var se httpStatuser
	if op != OpCreateMemo && errors.As(err, &se) && se.HTTPStatus() == http.StatusNotFound {
		kind = ErrNotFound
	}
	return &OperationError{Op: op, Kind: kind, Err: err}
}
