package foliator

import "fmt"

// StatusError is a non-200 answer from the service
type StatusError struct {
	Op         string
	StatusCode int
	// Message is the plain-text body, or "Error <code>" when the body was empty
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("Error %d", e.StatusCode)
}

// NetworkError means the request never produced a response
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: network error: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}
