package server

import "errors"

var (
	// ErrSessionClosed is returned when an operation is attempted on a closed session.
	ErrSessionClosed = errors.New("server: session closed")

	// ErrMaxSessionsReached is returned when the maximum number of sessions is reached.
	ErrMaxSessionsReached = errors.New("server: max sessions reached")

	// ErrOutboxFull is returned when a client does not read its messages fast enough.
	ErrOutboxFull = errors.New("server: outbound queue full")
)
