package platform

import "errors"

// Sentinel errors for platform operations.
var (
	// ErrClosed is returned when operating on a closed channel, stream or host.
	ErrClosed = errors.New("platform: channel closed")

	// ErrNotConnected is returned when the platform bridge is not connected.
	ErrNotConnected = errors.New("platform: not connected")
)

func isClosed(err error) bool {
	return errors.Is(err, ErrClosed)
}
