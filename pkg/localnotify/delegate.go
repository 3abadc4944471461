package localnotify

import (
	"context"
	"log"

	"github.com/go-drift/pushnotification/pkg/platform"
)

// DeliveryService is the part of the notifications service the delegate uses.
// *platform.NotificationsService implements it.
type DeliveryService interface {
	SetPresentationOptions(ctx context.Context, opts platform.PresentationOptions) error
	Deliveries() *platform.Stream[platform.NotificationEvent]
	Errors() *platform.Stream[platform.NotificationError]
}

// DelegateOptions configures the process-wide notification delegate.
type DelegateOptions struct {
	// Presentation is applied to notifications delivered while the app runs.
	Presentation platform.PresentationOptions
	// OnDelivery is called for each delivery after it is logged.
	OnDelivery func(platform.NotificationEvent)
}

// DefaultDelegateOptions shows foreground deliveries as a banner with sound
// and keeps them in the notification list.
func DefaultDelegateOptions() DelegateOptions {
	return DelegateOptions{
		Presentation: platform.PresentationOptions{Banner: true, Sound: true, List: true},
	}
}

// RegisterDelegate installs the notification delegate. Call it once during
// startup, before any UI is shown; the returned function removes it.
func RegisterDelegate(svc DeliveryService, logger *log.Logger, opts DelegateOptions) (unregister func(), err error) {
	if logger == nil {
		logger = log.Default()
	}
	if err := svc.SetPresentationOptions(context.Background(), opts.Presentation); err != nil {
		return nil, err
	}

	stopDeliveries := svc.Deliveries().Listen(func(e platform.NotificationEvent) {
		logger.Printf("Notification delivered: %s", e.Title)
		if opts.OnDelivery != nil {
			opts.OnDelivery(e)
		}
	})
	stopErrors := svc.Errors().Listen(func(e platform.NotificationError) {
		logger.Printf("Notification error: %v", e)
	})

	return func() {
		stopDeliveries()
		stopErrors()
	}, nil
}
