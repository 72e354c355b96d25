package errs

import (
	"fmt"
	"net/http"
)

// Kind classifies a ResponseError.
type Kind string

const (
	// KindNotFound means the requested record does not exist. It is not a fault.
	KindNotFound Kind = "not_found"

	// KindStorageFault is any failure reported by the persistence layer.
	KindStorageFault Kind = "storage_fault"
)

// ResponseError carries an endpoint-specific JSON body to the global error
// handler, which writes Body with Status verbatim.
type ResponseError struct {
	Kind   Kind
	Status int
	Body   any
	Err    error
}

func (e *ResponseError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s (%d)", e.Kind, e.Status)
}

func (e *ResponseError) Unwrap() error {
	return e.Err
}

// NotFound builds a 404 ResponseError with the given envelope.
func NotFound(body any) *ResponseError {
	return &ResponseError{
		Kind:   KindNotFound,
		Status: http.StatusNotFound,
		Body:   body,
	}
}

// StorageFault builds a 500 ResponseError wrapping the storage error.
func StorageFault(err error, body any) *ResponseError {
	return &ResponseError{
		Kind:   KindStorageFault,
		Status: http.StatusInternalServerError,
		Body:   body,
		Err:    err,
	}
}
