package localnotify

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/go-drift/pushnotification/pkg/errors"
	"github.com/go-drift/pushnotification/pkg/platform"
)

// Fixed contents of the test notification.
const (
	TestIdentifier = "testNotification"
	TestTitle      = "Hello!"
	TestBody       = "This is a test notification."
	TestDelay      = 3 * time.Second
)

// NotificationScheduler submits requests to the host.
// *platform.NotificationsService implements it.
type NotificationScheduler interface {
	Schedule(ctx context.Context, req platform.NotificationRequest) error
}

// Template describes the notification the scheduler submits.
type Template struct {
	Identifier string
	Title      string
	Body       string
	Sound      string
	Delay      time.Duration
	// UniqueIdentifiers appends a random suffix to Identifier so repeated
	// submissions queue up instead of replacing each other.
	UniqueIdentifiers bool
}

// DefaultTemplate returns the fixed test notification template.
func DefaultTemplate() Template {
	return Template{
		Identifier: TestIdentifier,
		Title:      TestTitle,
		Body:       TestBody,
		Sound:      platform.DefaultSound,
		Delay:      TestDelay,
	}
}

// Request builds a one-shot interval-triggered request from the template.
// The delay is rounded down to whole seconds, with a minimum of one.
func (t Template) Request() platform.NotificationRequest {
	id := t.Identifier
	if id == "" {
		id = TestIdentifier
	}
	if t.UniqueIdentifiers {
		id += "-" + uuid.NewString()
	}
	seconds := int64(t.Delay / time.Second)
	if seconds < 1 {
		seconds = 1
	}
	return platform.NotificationRequest{
		ID:              id,
		Title:           t.Title,
		Body:            t.Body,
		Sound:           t.Sound,
		IntervalSeconds: seconds,
		Repeats:         false,
	}
}

// TestNotification returns the request the "Send Local Notification" button submits.
func TestNotification() platform.NotificationRequest {
	return DefaultTemplate().Request()
}

// Scheduler submits the test notification.
type Scheduler struct {
	Service  NotificationScheduler
	Template Template
	// Logger receives submission errors. Nil uses log.Default().
	Logger *log.Logger
}

// NewScheduler returns a Scheduler for the notifications service using the
// default template.
func NewScheduler(logger *log.Logger) *Scheduler {
	return &Scheduler{Service: platform.Notifications, Template: DefaultTemplate(), Logger: logger}
}

// Schedule submits one request. Acceptance by the host is silent; a rejection
// is logged and returned as a SchedulingError. Acceptance does not mean the
// notification will be shown: without authorization the host drops it at fire
// time.
func (s *Scheduler) Schedule(ctx context.Context) error {
	req := s.Template.Request()
	if err := s.Service.Schedule(ctx, req); err != nil {
		s.logger().Printf("Error sending notification: %v", err)
		return &errors.AppError{
			Op:      "localnotify.schedule",
			Kind:    errors.KindScheduling,
			Channel: platform.NotificationsChannel,
			Err:     err,
		}
	}
	return nil
}

// ScheduleAsync runs Schedule on its own goroutine and hands the outcome to
// done exactly once, on the UI goroutine when a dispatcher is registered.
// A panic while scheduling is reported and handed to done as a SchedulingError.
func (s *Scheduler) ScheduleAsync(ctx context.Context, done func(err error)) {
	go func() {
		called := false
		defer errors.RecoverWithCallback("localnotify.schedule", func(v any) {
			if done == nil || called {
				return
			}
			err := recovered("localnotify.schedule", errors.KindScheduling, platform.NotificationsChannel, v)
			s.logger().Printf("Error sending notification: %v", err.Err)
			platform.DispatchOrRun(func() { done(err) })
		})
		err := s.Schedule(ctx)
		if done != nil {
			called = true
			platform.DispatchOrRun(func() { done(err) })
		}
	}()
}

func (s *Scheduler) logger() *log.Logger {
	if s.Logger == nil {
		return log.Default()
	}
	return s.Logger
}
