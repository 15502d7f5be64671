package webclient

import (
	"context"
	"errors"
)

// WebClient issues a single request and returns the complete response.
// A non-2xx status is not an error; errors mean no response was obtained.
type WebClient interface {
	Do(ctx context.Context, req *Request) (*Response, error)

	Close() error
}

// ErrDispatch marks failures that happen before a request leaves the
// client (nil request, malformed URL, unsupported method). Transport
// failures are returned unwrapped by it.
var ErrDispatch = errors.New("webclient: request dispatch failed")

// IsDispatchError reports whether err was raised while building the request.
func IsDispatchError(err error) bool {
	return errors.Is(err, ErrDispatch)
}
