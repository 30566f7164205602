// Package cloud implements the REST side of the Sengled cloud API.
//
// This package manages:
//   - Account login and session token lifecycle (AuthenCross)
//   - Idempotent session validity probing (isSessionTimeout)
//   - Realtime endpoint discovery (getServerInfo / inceptionAddr)
//   - Device list retrieval (device/list)
//
// # Architecture
//
// Sengled splits its REST API across two backends: ucenter hosts the
// authentication endpoints, life2 hosts the device endpoints. Every call
// after a successful login carries the session token as a JSESSIONID
// cookie plus a sid header; the same token later authenticates the
// realtime channel.
//
//	bridge → ucenter (login, probe)
//	bridge → life2   (server info, device list)
//
// # Failure policy
//
// REST failures degrade locally. A failed endpoint discovery keeps the
// last known-good endpoint; a failed device fetch leaves the directory
// untouched. Only login surfaces an error to the caller, and it is never
// retried internally.
package cloud
