package realtime

import "errors"

// Domain-specific errors for realtime channel operations.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrNotConnected is returned when attempting operations on a
	// disconnected channel.
	ErrNotConnected = errors.New("realtime: channel not connected")

	// ErrAlreadyConnected is returned when Connect is called on a channel
	// that is not in the Disconnected state.
	ErrAlreadyConnected = errors.New("realtime: channel already connected")

	// ErrMissingToken is returned when connecting without a session token.
	ErrMissingToken = errors.New("realtime: session token required")

	// ErrConnectionFailed is returned when a connection attempt fails.
	ErrConnectionFailed = errors.New("realtime: connection failed")

	// ErrPublishFailed is returned when a publish is not acknowledged.
	ErrPublishFailed = errors.New("realtime: publish failed")

	// ErrSubscribeFailed is returned when a subscribe request is rejected.
	ErrSubscribeFailed = errors.New("realtime: subscribe failed")

	// ErrInvalidTopic is returned when an empty topic is provided.
	ErrInvalidTopic = errors.New("realtime: topic cannot be empty")
)
