package platform

import "context"

// NotificationPermission extends Permission with notification-specific options.
type NotificationPermission interface {
	Permission

	// RequestWithOptions prompts for notification permission with explicit capabilities.
	// Uses the provided values verbatim - zero values mean that capability is NOT requested.
	// For default behavior (Alert, Sound, Badge all enabled), use Request() instead.
	RequestWithOptions(ctx context.Context, opts NotificationPermissionOptions) (PermissionStatus, error)
}

// NotificationPermissionOptions configures notification capabilities.
// Zero values mean the capability is NOT requested. Use Request() for defaults.
type NotificationPermissionOptions struct {
	Alert       bool // Visible notifications (banners, alerts).
	Sound       bool // Notification sounds.
	Badge       bool // Badge count on app icon.
	Provisional bool // Quiet delivery without alerting.
}

// StandardNotificationOptions is the capability set the demo requests:
// alert, sound and badge.
var StandardNotificationOptions = NotificationPermissionOptions{
	Alert: true,
	Sound: true,
	Badge: true,
}
