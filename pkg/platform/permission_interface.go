package platform

import "context"

// PermissionStatus represents the current state of a permission.
// This is an alias for PermissionResult for naming consistency.
type PermissionStatus = PermissionResult

// Permission provides access to a runtime permission owned by the host.
// Use Status to check current state, Request to prompt the user, and Listen
// to observe changes.
//
// Request is the only blocking operation and the only one that honors ctx.
type Permission interface {
	// Status returns the current permission status.
	Status(ctx context.Context) (PermissionStatus, error)

	// Request prompts the user for permission and blocks until they respond
	// or the context is canceled/times out. If already in a terminal state,
	// returns immediately without prompting.
	Request(ctx context.Context) (PermissionStatus, error)

	// IsGranted returns true if permission is granted (or provisional).
	// Best-effort convenience: returns false on any error.
	IsGranted(ctx context.Context) bool

	// IsDenied returns true if permission is denied or permanently denied.
	// Best-effort convenience: returns false on any error.
	IsDenied(ctx context.Context) bool

	// Listen subscribes to permission status changes.
	// Returns an unsubscribe function. Multiple listeners receive all events.
	Listen(handler func(PermissionStatus)) (unsubscribe func())
}
