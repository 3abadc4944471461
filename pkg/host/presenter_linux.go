//go:build linux

package host

import (
	"context"
	"fmt"
	"sync"

	"github.com/godbus/dbus/v5"
)

const (
	notificationsDest = "org.freedesktop.Notifications"
	notificationsPath = dbus.ObjectPath("/org/freedesktop/Notifications")
	notifyMethod      = "org.freedesktop.Notifications.Notify"

	soundName = "message-new-instant"
)

// notifyFunc sends one Notify call and returns the server-side ID.
type notifyFunc func(ctx context.Context, args []any) (uint32, error)

// dbusPresenter talks to org.freedesktop.Notifications on the session bus.
// It remembers the server-side ID per notification identifier so a replaced
// request also replaces the bubble on screen.
type dbusPresenter struct {
	notify notifyFunc

	mu       sync.Mutex
	replaces map[string]uint32
}

// NewSystemPresenter returns the presenter for this operating system.
func NewSystemPresenter() Presenter {
	return newDBusPresenter(sessionNotify)
}

func newDBusPresenter(notify notifyFunc) *dbusPresenter {
	return &dbusPresenter{notify: notify, replaces: make(map[string]uint32)}
}

func (p *dbusPresenter) Present(ctx context.Context, n Notification) error {
	p.mu.Lock()
	replacesID := p.replaces[n.ID]
	p.mu.Unlock()

	serverID, err := p.notify(ctx, notifyArgs(n, replacesID))
	if err != nil {
		return err
	}
	p.mu.Lock()
	p.replaces[n.ID] = serverID
	p.mu.Unlock()
	return nil
}

// notifyArgs is the Notify argument list: app name, replaces id, icon,
// summary, body, actions, hints and expire timeout.
func notifyArgs(n Notification, replacesID uint32) []any {
	return []any{
		n.AppName,
		replacesID,
		n.Icon,
		n.Title,
		n.Body,
		[]string{},
		notifyHints(n),
		int32(-1),
	}
}

func notifyHints(n Notification) map[string]dbus.Variant {
	hints := map[string]dbus.Variant{
		"desktop-entry": dbus.MakeVariant(n.AppID),
	}
	if n.Sound {
		hints["sound-name"] = dbus.MakeVariant(soundName)
	} else {
		hints["suppress-sound"] = dbus.MakeVariant(true)
	}
	return hints
}

func sessionNotify(ctx context.Context, args []any) (uint32, error) {
	conn, err := dbus.ConnectSessionBus(dbus.WithContext(ctx))
	if err != nil {
		return 0, fmt.Errorf("connecting to session bus: %w", err)
	}
	defer conn.Close()

	call := conn.Object(notificationsDest, notificationsPath).CallWithContext(ctx, notifyMethod, 0, args...)
	if call.Err != nil {
		return 0, fmt.Errorf("notify: %w", call.Err)
	}
	var serverID uint32
	if err := call.Store(&serverID); err != nil {
		return 0, fmt.Errorf("notify reply: %w", err)
	}
	return serverID, nil
}
