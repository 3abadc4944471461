package platform

import (
	"context"
	"sync"

	"github.com/go-drift/pushnotification/pkg/errors"
)

// PermissionResult represents the status of a permission.
type PermissionResult string

// Permission status constants.
const (
	// PermissionGranted indicates full access has been granted.
	PermissionGranted PermissionResult = "granted"

	// PermissionDenied indicates the user denied the permission.
	PermissionDenied PermissionResult = "denied"

	// PermissionPermanentlyDenied indicates the host will not ask again;
	// the user has to change the decision in system settings.
	PermissionPermanentlyDenied PermissionResult = "permanently_denied"

	// PermissionRestricted indicates a system policy prevents granting (parental controls,
	// MDM, enterprise policy). No prompt will be shown.
	PermissionRestricted PermissionResult = "restricted"

	// PermissionNotDetermined indicates the user has not yet been asked. Calling Request()
	// will show the host's permission prompt.
	PermissionNotDetermined PermissionResult = "not_determined"

	// PermissionProvisional indicates provisional notification permission.
	// Notifications are delivered quietly without alerting the user.
	PermissionProvisional PermissionResult = "provisional"

	// PermissionResultUnknown indicates the status could not be determined.
	PermissionResultUnknown PermissionResult = "unknown"
)

// NotificationOptions configures which notification capabilities to request.
type NotificationOptions struct {
	// Alert enables visible notifications (banners, alerts).
	Alert bool
	// Sound enables notification sounds.
	Sound bool
	// Badge enables badge count updates on the app icon.
	Badge bool
	// Provisional requests provisional authorization.
	Provisional bool
}

const permissionChangesChannel = "drift/permissions/changes"

// isTerminalStatus returns true if the status won't change by showing a prompt.
func isTerminalStatus(status PermissionResult) bool {
	switch status {
	case PermissionGranted, PermissionPermanentlyDenied, PermissionRestricted,
		PermissionProvisional:
		return true
	default:
		return false
	}
}

var (
	permissionChangesOnce sync.Once
	permissionChanges     *EventChannel
)

func getPermissionChangesChannel() *EventChannel {
	permissionChangesOnce.Do(func() {
		permissionChanges = NewEventChannel(permissionChangesChannel)
	})
	return permissionChanges
}

// permissionType provides methods for checking and requesting a single permission.
type permissionType struct {
	name    string
	channel *MethodChannel
	changes *EventChannel

	// Serializes requests; the host shows at most one prompt at a time.
	requestMu sync.Mutex
}

func newPermission(name string) *permissionType {
	return &permissionType{
		name:    name,
		channel: NewMethodChannel("drift/permissions"),
		changes: getPermissionChangesChannel(),
	}
}

// Status returns the current status of the permission.
func (p *permissionType) Status() (PermissionResult, error) {
	result, err := p.channel.Invoke("check", map[string]any{
		"permission": p.name,
	})
	if err != nil {
		return PermissionResultUnknown, err
	}
	return parsePermissionResult(result), nil
}

// IsGranted returns true if the permission is currently granted.
func (p *permissionType) IsGranted() bool {
	status, err := p.Status()
	if err != nil {
		return false
	}
	return status == PermissionGranted || status == PermissionProvisional
}

// IsDenied returns true if the permission is denied or permanently denied.
func (p *permissionType) IsDenied() bool {
	status, err := p.Status()
	if err != nil {
		return false
	}
	return status == PermissionDenied || status == PermissionPermanentlyDenied
}

// listenChanges subscribes to status changes of this permission.
func (p *permissionType) listenChanges(op string, handler func(PermissionResult)) *Subscription {
	return p.changes.Listen(EventHandler{
		OnEvent: func(data any) {
			change, ok := parsePermissionChange(data)
			if !ok {
				errors.Report(&errors.AppError{
					Op:      op,
					Kind:    errors.KindParsing,
					Channel: permissionChangesChannel,
					Err: &errors.ParseError{
						Channel:  permissionChangesChannel,
						DataType: "PermissionChange",
						Got:      data,
					},
				})
				return
			}
			if change.Permission == p.name {
				handler(change.Result)
			}
		},
		OnError: func(err error) {
			errors.Report(&errors.AppError{
				Op:      op,
				Kind:    errors.KindPlatform,
				Channel: permissionChangesChannel,
				Err:     err,
			})
		},
	})
}

// notificationPermissionType extends permissionType with notification-specific options.
type notificationPermissionType struct {
	*permissionType
}

func newNotificationPermission() *notificationPermissionType {
	return &notificationPermissionType{
		permissionType: newPermission("notifications"),
	}
}

// RequestWithContext requests notification permission and blocks until the
// host reports a decision or ctx is done. With no options, alert, sound and
// badge are requested.
func (n *notificationPermissionType) RequestWithContext(ctx context.Context, opts ...NotificationOptions) (PermissionResult, error) {
	n.requestMu.Lock()
	defer n.requestMu.Unlock()

	options := NotificationOptions{Alert: true, Sound: true, Badge: true}
	if len(opts) > 0 {
		options = opts[0]
	}

	currentStatus, err := n.Status()
	if err != nil {
		return PermissionResultUnknown, err
	}
	if isTerminalStatus(currentStatus) {
		return currentStatus, nil
	}

	// Subscribe BEFORE triggering the host request so the decision can't be missed.
	resultChan := make(chan PermissionResult, 1)
	sub := n.listenChanges("permissions.requestNotification", func(result PermissionResult) {
		select {
		case resultChan <- result:
		default:
		}
	})
	defer sub.Cancel()

	_, err = n.channel.Invoke("request", map[string]any{
		"permission":  n.name,
		"alert":       options.Alert,
		"sound":       options.Sound,
		"badge":       options.Badge,
		"provisional": options.Provisional,
	})
	if err != nil {
		return PermissionResultUnknown, err
	}

	select {
	case result := <-resultChan:
		return result, nil
	case <-ctx.Done():
		// Re-check status in case we missed the event
		if finalStatus, err := n.Status(); err == nil && isTerminalStatus(finalStatus) {
			return finalStatus, nil
		}
		if ctx.Err() == context.DeadlineExceeded {
			return PermissionResultUnknown, ErrTimeout
		}
		return PermissionResultUnknown, ErrCanceled
	}
}

// permissionChange represents a permission status change event.
type permissionChange struct {
	Permission string
	Result     PermissionResult
}

func parsePermissionResult(result any) PermissionResult {
	if m, ok := result.(map[string]any); ok {
		if status := parseString(m["status"]); status != "" {
			return PermissionResult(status)
		}
	}
	return PermissionResultUnknown
}

func parsePermissionChange(data any) (permissionChange, bool) {
	m, ok := data.(map[string]any)
	if !ok {
		return permissionChange{}, false
	}
	return permissionChange{
		Permission: parseString(m["permission"]),
		Result:     PermissionResult(parseString(m["status"])),
	}, true
}

// notificationPermissionImpl implements NotificationPermission.
type notificationPermissionImpl struct {
	inner *notificationPermissionType
}

func (p *notificationPermissionImpl) Status(ctx context.Context) (PermissionStatus, error) {
	return p.inner.Status()
}

func (p *notificationPermissionImpl) Request(ctx context.Context) (PermissionStatus, error) {
	return p.inner.RequestWithContext(ctx)
}

func (p *notificationPermissionImpl) RequestWithOptions(ctx context.Context, opts NotificationPermissionOptions) (PermissionStatus, error) {
	return p.inner.RequestWithContext(ctx, NotificationOptions{
		Alert:       opts.Alert,
		Sound:       opts.Sound,
		Badge:       opts.Badge,
		Provisional: opts.Provisional,
	})
}

func (p *notificationPermissionImpl) IsGranted(ctx context.Context) bool {
	return p.inner.IsGranted()
}

func (p *notificationPermissionImpl) IsDenied(ctx context.Context) bool {
	return p.inner.IsDenied()
}

func (p *notificationPermissionImpl) Listen(handler func(PermissionStatus)) (unsubscribe func()) {
	return p.inner.listenChanges("permissions.streamError", handler).Cancel
}
