package transportcore

import (
	"errors"
)

// Sentinel errors for transport operations.
// Per-request authentication failures use internal/errors instead.
var (
	// ErrServerClosed indicates the server has been closed and cannot accept requests.
	ErrServerClosed = errors.New("server closed")
)
