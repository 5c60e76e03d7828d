package kinesis

import (
	"errors"
	"fmt"
)

// ErrUnavailable reports that no price data could be obtained from the
// service: the request never got a response, or the response was not a
// success.
var ErrUnavailable = errors.New("kinesis: pricing unavailable")

// ErrBadResponse reports a success response whose body could not be decoded.
var ErrBadResponse = errors.New("kinesis: malformed response")

// StatusError is a non-success HTTP response, returned as is.
//
// It matches ErrUnavailable with errors.Is.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Status     string
	Body       []byte
}

func (e *StatusError) Error() string {
	body := string(e.Body)
	if len(body) > 200 {
		body = body[:200] + "..."
	}
	return fmt.Sprintf("kinesis: %s %s: %s: %s", e.Method, e.Path, e.Status, body)
}

// Is makes a StatusError match ErrUnavailable.
func (e *StatusError) Is(target error) bool { return target == ErrUnavailable }
