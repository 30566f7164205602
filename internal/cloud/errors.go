package cloud

import "errors"

// Domain-specific errors for cloud REST operations.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrNoSession is returned when an authenticated call is attempted
	// before a successful login.
	ErrNoSession = errors.New("cloud: no active session")

	// ErrAuthFailed is returned when the login endpoint rejects the
	// credentials or returns no token.
	ErrAuthFailed = errors.New("cloud: authentication failed")

	// ErrSessionExpired is returned by the session probe when the server
	// no longer recognises the token.
	ErrSessionExpired = errors.New("cloud: session expired")

	// ErrBadStatus is returned when the server responds with a non-200 status.
	ErrBadStatus = errors.New("cloud: unexpected response status")

	// ErrMalformedResponse is returned when a response body cannot be
	// decoded or is missing a required field.
	ErrMalformedResponse = errors.New("cloud: malformed response")
)
