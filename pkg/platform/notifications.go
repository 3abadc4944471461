package platform

import (
	"context"
	"fmt"
	"time"

	"github.com/go-drift/pushnotification/pkg/errors"
)

// Notification channel names shared with the host.
const (
	NotificationsChannel         = "drift/notifications"
	NotificationsReceivedChannel = "drift/notifications/received"
	NotificationsErrorChannel    = "drift/notifications/error"
)

// DefaultSound selects the platform default notification sound.
const DefaultSound = "default"

// NotificationRequest describes a local notification schedule request.
type NotificationRequest struct {
	// ID is the unique identifier for the notification.
	// Scheduling again with the same ID replaces the pending notification.
	ID string
	// Title is the notification title.
	Title string
	// Body is the notification body text.
	Body string
	// Data is an optional key/value payload delivered with the notification.
	Data map[string]any
	// At schedules the notification for a specific time.
	// If zero, delivery is scheduled after IntervalSeconds.
	At time.Time
	// IntervalSeconds is the relative trigger delay in seconds.
	// If > 0 and Repeats is true, the notification repeats at this interval.
	IntervalSeconds int64
	// Repeats indicates whether the notification should repeat.
	// Repeating is only honored when IntervalSeconds > 0.
	Repeats bool
	// ChannelID specifies the Android notification channel.
	ChannelID string
	// Sound sets the sound name. Use DefaultSound for the platform default.
	// An empty string also uses the platform default sound.
	Sound string
	// Badge sets the app icon badge count. Nil leaves the badge unchanged.
	Badge *int
}

// Delay returns the relative trigger delay, or zero for time-based triggers.
func (r NotificationRequest) Delay() time.Duration {
	if !r.At.IsZero() {
		return 0
	}
	return time.Duration(r.IntervalSeconds) * time.Second
}

// NotificationSettings describes the current notification settings.
type NotificationSettings struct {
	// Status is the current notification permission status.
	Status PermissionResult
	// AlertsEnabled reports whether visible alerts are enabled.
	AlertsEnabled bool
	// SoundsEnabled reports whether sounds are enabled.
	SoundsEnabled bool
	// BadgesEnabled reports whether badge updates are enabled.
	BadgesEnabled bool
}

// PendingNotification is the host's view of a scheduled, not yet delivered request.
type PendingNotification struct {
	ID              string
	Title           string
	Body            string
	IntervalSeconds int64
	Repeats         bool
	FireAt          time.Time
}

// PresentationOptions controls how the host presents a notification that
// arrives while the app is in the foreground. All false means the
// notification is delivered silently.
type PresentationOptions struct {
	Banner bool
	Sound  bool
	List   bool
}

// NotificationEvent represents a delivered notification.
type NotificationEvent struct {
	// ID is the notification identifier.
	ID string
	// Title is the notification title.
	Title string
	// Body is the notification body text.
	Body string
	// Data is the payload delivered with the notification.
	Data map[string]any
	// Timestamp is when the notification was delivered.
	Timestamp time.Time
	// IsForeground reports whether the notification was delivered while the app was in foreground.
	IsForeground bool
	// Source is "local" or "remote".
	Source string
}

// NotificationError represents a notification-related error raised by the host
// outside of a method call (e.g. the presenter failed at fire time).
type NotificationError struct {
	// Code is a host-specific error code.
	Code string
	// Message is the human-readable error description.
	Message string
	// Platform is the error source platform (e.g., "linux", "ios").
	Platform string
}

func (e NotificationError) Error() string {
	return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Platform)
}

// NotificationsService provides local notification management.
type NotificationsService struct {
	// Permission for notification access.
	Permission NotificationPermission

	channel    *MethodChannel
	deliveries *Stream[NotificationEvent]
	errors     *Stream[NotificationError]
}

// Notifications is the singleton notifications service.
var Notifications *NotificationsService

func init() {
	Notifications = &NotificationsService{
		Permission: &notificationPermissionImpl{inner: newNotificationPermission()},
		channel:    NewMethodChannel(NotificationsChannel),
		deliveries: NewStream(NotificationsReceivedChannel, NewEventChannel(NotificationsReceivedChannel), parseNotificationEventWithError),
		errors:     NewStream(NotificationsErrorChannel, NewEventChannel(NotificationsErrorChannel), parseNotificationErrorWithError),
	}
}

// Settings returns current notification settings and permission status.
// The ctx parameter is currently unused and reserved for future cancellation support.
func (n *NotificationsService) Settings(ctx context.Context) (NotificationSettings, error) {
	result, err := n.channel.Invoke("getSettings", nil)
	if err != nil {
		return NotificationSettings{Status: PermissionResultUnknown}, err
	}
	settings := NotificationSettings{Status: PermissionResultUnknown}
	if m, ok := result.(map[string]any); ok {
		settings.Status = PermissionResult(parseString(m["status"]))
		settings.AlertsEnabled = parseBool(m["alertsEnabled"])
		settings.SoundsEnabled = parseBool(m["soundsEnabled"])
		settings.BadgesEnabled = parseBool(m["badgesEnabled"])
	}
	return settings, nil
}

// Schedule submits a local notification to the host.
// A nil error means the host accepted the request; it does not mean the
// notification will be shown, which depends on authorization at fire time.
// The ctx parameter is currently unused and reserved for future cancellation support.
func (n *NotificationsService) Schedule(ctx context.Context, req NotificationRequest) error {
	_, err := n.channel.Invoke("schedule", scheduleArgs(req))
	return err
}

func scheduleArgs(req NotificationRequest) map[string]any {
	args := map[string]any{
		"id":              req.ID,
		"title":           req.Title,
		"body":            req.Body,
		"data":            req.Data,
		"intervalSeconds": req.IntervalSeconds,
		"repeats":         req.Repeats,
		"channelId":       req.ChannelID,
		"sound":           req.Sound,
	}
	if !req.At.IsZero() {
		args["at"] = req.At.UnixMilli()
	}
	if req.Badge != nil {
		args["badge"] = *req.Badge
	}
	return args
}

// Pending returns the notifications the host has scheduled but not yet delivered.
func (n *NotificationsService) Pending(ctx context.Context) ([]PendingNotification, error) {
	result, err := n.channel.Invoke("getPending", nil)
	if err != nil {
		return nil, err
	}
	items, ok := result.([]any)
	if !ok {
		if result == nil {
			return nil, nil
		}
		return nil, &errors.ParseError{Channel: NotificationsChannel, DataType: "[]PendingNotification", Got: result}
	}
	pending := make([]PendingNotification, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, &errors.ParseError{Channel: NotificationsChannel, DataType: "PendingNotification", Got: item}
		}
		pending = append(pending, PendingNotification{
			ID:              parseString(m["id"]),
			Title:           parseString(m["title"]),
			Body:            parseString(m["body"]),
			IntervalSeconds: parseInt64(m["intervalSeconds"]),
			Repeats:         parseBool(m["repeats"]),
			FireAt:          parseTime(m["fireAt"]),
		})
	}
	return pending, nil
}

// SetPresentationOptions tells the host how to present notifications that
// arrive while the app is in the foreground.
func (n *NotificationsService) SetPresentationOptions(ctx context.Context, opts PresentationOptions) error {
	_, err := n.channel.Invoke("setPresentationOptions", map[string]any{
		"banner": opts.Banner,
		"sound":  opts.Sound,
		"list":   opts.List,
	})
	return err
}

// Deliveries returns a stream of delivered notifications.
func (n *NotificationsService) Deliveries() *Stream[NotificationEvent] {
	return n.deliveries
}

// Errors returns a stream of notification errors raised outside method calls.
func (n *NotificationsService) Errors() *Stream[NotificationError] {
	return n.errors
}

func parseNotificationEventWithError(data any) (NotificationEvent, error) {
	m, ok := data.(map[string]any)
	if !ok {
		return NotificationEvent{}, &errors.ParseError{
			Channel:  NotificationsReceivedChannel,
			DataType: "NotificationEvent",
			Got:      data,
		}
	}
	return NotificationEvent{
		ID:           parseString(m["id"]),
		Title:        parseString(m["title"]),
		Body:         parseString(m["body"]),
		Data:         parseMap(m["data"]),
		Timestamp:    parseTime(m["timestamp"]),
		IsForeground: parseBool(m["isForeground"]),
		Source:       parseString(m["source"]),
	}, nil
}

func parseNotificationErrorWithError(data any) (NotificationError, error) {
	m, ok := data.(map[string]any)
	if !ok {
		return NotificationError{}, &errors.ParseError{
			Channel:  NotificationsErrorChannel,
			DataType: "NotificationError",
			Got:      data,
		}
	}
	return NotificationError{
		Code:     parseString(m["code"]),
		Message:  parseString(m["message"]),
		Platform: parseString(m["platform"]),
	}, nil
}

func parseString(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case fmt.Stringer:
		return v.String()
	default:
		return ""
	}
}

func parseBool(value any) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		return v == "true"
	default:
		return false
	}
}

func parseMap(value any) map[string]any {
	if value == nil {
		return nil
	}
	if m, ok := value.(map[string]any); ok {
		return m
	}
	if m, ok := value.(map[any]any); ok {
		converted := make(map[string]any, len(m))
		for key, val := range m {
			if keyString, ok := key.(string); ok {
				converted[keyString] = val
			}
		}
		return converted
	}
	return nil
}

func parseInt64(value any) int64 {
	switch v := value.(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case int32:
		return int64(v)
	case uint64:
		return int64(v)
	case uint32:
		return int64(v)
	case float64:
		return int64(v)
	case float32:
		return int64(v)
	default:
		return 0
	}
}

// parseTime reads a Unix millisecond timestamp. JSON numbers decode as float64.
func parseTime(value any) time.Time {
	switch value.(type) {
	case int64, int, int32, uint64, uint32, float64, float32:
		return time.UnixMilli(parseInt64(value))
	default:
		return time.Time{}
	}
}
