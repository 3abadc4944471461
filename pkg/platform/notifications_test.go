package platform

import (
	"context"
	stderrors "errors"
	"testing"
	"time"
)

// fakeHost answers the permission and notification channels the way a host would.
type fakeHost struct {
	status      PermissionResult
	decision    PermissionResult
	respond     bool
	scheduleErr error
	scheduled   []map[string]any
	requests    int
	pending     []any
}

func (h *fakeHost) InvokeMethod(channel, method string, args []byte) ([]byte, error) {
	decoded, _ := DefaultCodec.Decode(args)
	m, _ := decoded.(map[string]any)
	switch channel + "#" + method {
	case "drift/permissions#check":
		return DefaultCodec.Encode(map[string]any{"status": string(h.status)})
	case "drift/permissions#request":
		h.requests++
		if h.respond {
			h.status = h.decision
			event, _ := DefaultCodec.Encode(map[string]any{
				"permission": m["permission"],
				"status":     string(h.decision),
			})
			_ = HandleEvent(permissionChangesChannel, event)
		}
		return DefaultCodec.Encode(nil)
	case "drift/notifications#schedule":
		if h.scheduleErr != nil {
			return nil, h.scheduleErr
		}
		h.scheduled = append(h.scheduled, m)
		return DefaultCodec.Encode(nil)
	case "drift/notifications#getSettings":
		return DefaultCodec.Encode(map[string]any{
			"status":        string(h.status),
			"alertsEnabled": true,
			"soundsEnabled": true,
			"badgesEnabled": false,
		})
	case "drift/notifications#getPending":
		return DefaultCodec.Encode(h.pending)
	case "drift/notifications#setPresentationOptions":
		return DefaultCodec.Encode(nil)
	}
	return nil, ErrMethodNotFound
}

func (h *fakeHost) StartEventStream(string) error { return nil }
func (h *fakeHost) StopEventStream(string) error  { return nil }

func TestNotificationPermissionRequest(t *testing.T) {
	tests := []struct {
		name         string
		initial      PermissionResult
		decision     PermissionResult
		wantStatus   PermissionResult
		wantRequests int
	}{
		{"granted after prompt", PermissionNotDetermined, PermissionGranted, PermissionGranted, 1},
		{"denied after prompt", PermissionNotDetermined, PermissionDenied, PermissionDenied, 1},
		{"already granted", PermissionGranted, PermissionDenied, PermissionGranted, 0},
		{"restricted", PermissionRestricted, PermissionGranted, PermissionRestricted, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			host := &fakeHost{status: tt.initial, decision: tt.decision, respond: true}
			SetupTestBridgeWith(host, t.Cleanup)

			status, err := Notifications.Permission.RequestWithOptions(context.Background(), StandardNotificationOptions)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if status != tt.wantStatus {
				t.Errorf("status = %q, want %q", status, tt.wantStatus)
			}
			if host.requests != tt.wantRequests {
				t.Errorf("host requests = %d, want %d", host.requests, tt.wantRequests)
			}
		})
	}
}

func TestNotificationPermissionRequestCanceled(t *testing.T) {
	host := &fakeHost{status: PermissionNotDetermined}
	SetupTestBridgeWith(host, t.Cleanup)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := Notifications.Permission.Request(ctx)
	if !stderrors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
}

func TestNotificationPermissionListen(t *testing.T) {
	host := &fakeHost{status: PermissionNotDetermined}
	SetupTestBridgeWith(host, t.Cleanup)

	var got []PermissionStatus
	unsubscribe := Notifications.Permission.Listen(func(s PermissionStatus) { got = append(got, s) })

	_ = HandleEvent(permissionChangesChannel, []byte(`{"permission":"camera","status":"granted"}`))
	_ = HandleEvent(permissionChangesChannel, []byte(`{"permission":"notifications","status":"denied"}`))
	unsubscribe()
	_ = HandleEvent(permissionChangesChannel, []byte(`{"permission":"notifications","status":"granted"}`))

	if len(got) != 1 || got[0] != PermissionDenied {
		t.Errorf("got %v, want [denied]", got)
	}
}

func TestScheduleEncodesRequest(t *testing.T) {
	host := &fakeHost{}
	SetupTestBridgeWith(host, t.Cleanup)

	badge := 2
	err := Notifications.Schedule(context.Background(), NotificationRequest{
		ID:              "testNotification",
		Title:           "Hello!",
		Body:            "This is a test notification.",
		Sound:           DefaultSound,
		IntervalSeconds: 3,
		Badge:           &badge,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(host.scheduled) != 1 {
		t.Fatalf("scheduled = %d", len(host.scheduled))
	}
	args := host.scheduled[0]
	if args["id"] != "testNotification" || args["title"] != "Hello!" || args["sound"] != "default" {
		t.Errorf("unexpected args %#v", args)
	}
	if args["intervalSeconds"] != float64(3) || args["repeats"] != false {
		t.Errorf("unexpected trigger %#v", args)
	}
	if _, ok := args["at"]; ok {
		t.Error("relative trigger should not carry 'at'")
	}
	if args["badge"] != float64(2) {
		t.Errorf("badge = %v", args["badge"])
	}
}

func TestScheduleHostError(t *testing.T) {
	host := &fakeHost{scheduleErr: NewChannelError("invalid_trigger", "interval must be positive")}
	SetupTestBridgeWith(host, t.Cleanup)

	err := Notifications.Schedule(context.Background(), NotificationRequest{ID: "x"})
	var chErr *ChannelError
	if !stderrors.As(err, &chErr) || chErr.Code != "invalid_trigger" {
		t.Fatalf("expected ChannelError, got %v", err)
	}
}

func TestSettingsAndPending(t *testing.T) {
	fireAt := time.Now().Add(3 * time.Second).Truncate(time.Millisecond)
	host := &fakeHost{
		status: PermissionGranted,
		pending: []any{map[string]any{
			"id":              "testNotification",
			"title":           "Hello!",
			"body":            "This is a test notification.",
			"intervalSeconds": 3,
			"repeats":         false,
			"fireAt":          fireAt.UnixMilli(),
		}},
	}
	SetupTestBridgeWith(host, t.Cleanup)

	settings, err := Notifications.Settings(context.Background())
	if err != nil {
		t.Fatalf("Settings: %v", err)
	}
	if settings.Status != PermissionGranted || !settings.AlertsEnabled || settings.BadgesEnabled {
		t.Errorf("settings = %+v", settings)
	}

	pending, err := Notifications.Pending(context.Background())
	if err != nil {
		t.Fatalf("Pending: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("pending = %v", pending)
	}
	p := pending[0]
	if p.ID != "testNotification" || p.IntervalSeconds != 3 || p.Repeats {
		t.Errorf("pending = %+v", p)
	}
	if !p.FireAt.Equal(fireAt) {
		t.Errorf("FireAt = %v, want %v", p.FireAt, fireAt)
	}
}

func TestDeliveriesStream(t *testing.T) {
	SetupTestBridge(t.Cleanup)

	var got []NotificationEvent
	unsubscribe := Notifications.Deliveries().Listen(func(e NotificationEvent) { got = append(got, e) })
	defer unsubscribe()

	_ = HandleEvent(NotificationsReceivedChannel, []byte(`{"id":"testNotification","title":"Hello!","body":"This is a test notification.","timestamp":1700000000000,"isForeground":true,"source":"local"}`))

	if len(got) != 1 {
		t.Fatalf("got %d events", len(got))
	}
	e := got[0]
	if e.Title != "Hello!" || !e.IsForeground || e.Source != "local" {
		t.Errorf("event = %+v", e)
	}
	if e.Timestamp.UnixMilli() != 1700000000000 {
		t.Errorf("timestamp = %v", e.Timestamp)
	}
}

func TestStreamNext(t *testing.T) {
	SetupTestBridge(t.Cleanup)

	go func() {
		time.Sleep(10 * time.Millisecond)
		_ = HandleEvent(NotificationsReceivedChannel, []byte(`{"id":"other"}`))
		_ = HandleEvent(NotificationsReceivedChannel, []byte(`{"id":"wanted"}`))
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	event, err := Notifications.Deliveries().Next(ctx, func(e NotificationEvent) bool { return e.ID == "wanted" })
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if event.ID != "wanted" {
		t.Errorf("ID = %q", event.ID)
	}

	short, cancelShort := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancelShort()
	if _, err := Notifications.Deliveries().Next(short, nil); !stderrors.Is(err, ErrTimeout) {
		t.Errorf("expected ErrTimeout, got %v", err)
	}
}

func TestRequestDelay(t *testing.T) {
	if got := (NotificationRequest{IntervalSeconds: 3}).Delay(); got != 3*time.Second {
		t.Errorf("Delay = %v", got)
	}
	if got := (NotificationRequest{IntervalSeconds: 3, At: time.Now()}).Delay(); got != 0 {
		t.Errorf("Delay with At = %v", got)
	}
}
