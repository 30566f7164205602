package client

import "errors"

// Sentinel errors for client operations.
var (
	// ErrPairingCancelled indicates a pairing scan was cancelled before
	// it finished iterating the directory.
	ErrPairingCancelled = errors.New("client: pairing cancelled")

	// ErrClosed indicates the client has been shut down.
	ErrClosed = errors.New("client: closed")
)
