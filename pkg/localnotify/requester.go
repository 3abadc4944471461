package localnotify

import (
	"context"
	"fmt"
	"log"

	"github.com/go-drift/pushnotification/pkg/errors"
	"github.com/go-drift/pushnotification/pkg/platform"
)

// Requester asks the host for permission to show alerts, play sounds and
// badge the app icon.
type Requester struct {
	Permission platform.NotificationPermission
	// Options are the capabilities requested. Defaults to
	// platform.StandardNotificationOptions.
	Options *platform.NotificationPermissionOptions
	// Logger receives the outcome. Nil uses log.Default().
	Logger *log.Logger
}

// NewRequester returns a Requester for the notifications service permission.
func NewRequester(logger *log.Logger) *Requester {
	return &Requester{Permission: platform.Notifications.Permission, Logger: logger}
}

// Request blocks until the host reports a decision or ctx is done. No deadline
// is added. granted is true for granted and provisional authorization; a host
// failure is returned as a PermissionError.
func (r *Requester) Request(ctx context.Context) (granted bool, err error) {
	opts := platform.StandardNotificationOptions
	if r.Options != nil {
		opts = *r.Options
	}

	status, reqErr := r.Permission.RequestWithOptions(ctx, opts)
	if reqErr != nil {
		err = &errors.AppError{
			Op:      "localnotify.requestPermission",
			Kind:    errors.KindPermission,
			Channel: "drift/permissions",
			Err:     reqErr,
		}
		r.logger().Printf("Permission error: %v", reqErr)
	}
	granted = status == platform.PermissionGranted || status == platform.PermissionProvisional
	r.logger().Printf("Permission granted: %t", granted)
	return granted, err
}

// RequestAsync runs Request on its own goroutine and hands the outcome to
// done exactly once, on the UI goroutine when a dispatcher is registered.
// A panic while requesting is reported and handed to done as a PermissionError.
func (r *Requester) RequestAsync(ctx context.Context, done func(granted bool, err error)) {
	go func() {
		called := false
		defer errors.RecoverWithCallback("localnotify.requestPermission", func(v any) {
			if done == nil || called {
				return
			}
			err := recovered("localnotify.requestPermission", errors.KindPermission, "drift/permissions", v)
			r.logger().Printf("Permission error: %v", err.Err)
			platform.DispatchOrRun(func() { done(false, err) })
		})
		granted, err := r.Request(ctx)
		if done != nil {
			called = true
			platform.DispatchOrRun(func() { done(granted, err) })
		}
	}()
}

// recovered wraps a recovered panic value as an AppError of kind.
func recovered(op string, kind errors.ErrorKind, channel string, v any) *errors.AppError {
	return &errors.AppError{
		Op:      op,
		Kind:    kind,
		Channel: channel,
		Err:     fmt.Errorf("panic: %v", v),
	}
}

func (r *Requester) logger() *log.Logger {
	if r.Logger == nil {
		return log.Default()
	}
	return r.Logger
}
