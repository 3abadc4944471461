package platform

import (
	stderrors "errors"
	"testing"
)

// recordingBridge records calls and returns canned results.
type recordingBridge struct {
	calls    []string
	started  map[string]int
	stopped  map[string]int
	response any
	err      error
	startErr error
}

func newRecordingBridge() *recordingBridge {
	return &recordingBridge{started: map[string]int{}, stopped: map[string]int{}}
}

func (b *recordingBridge) InvokeMethod(channel, method string, args []byte) ([]byte, error) {
	b.calls = append(b.calls, channel+"#"+method)
	if b.err != nil {
		return nil, b.err
	}
	return DefaultCodec.Encode(b.response)
}

func (b *recordingBridge) StartEventStream(channel string) error {
	b.started[channel]++
	return b.startErr
}

func (b *recordingBridge) StopEventStream(channel string) error {
	b.stopped[channel]++
	return nil
}

func TestInvokeWithoutBridge(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	ch := NewMethodChannel("test/no-bridge")
	_, err := ch.Invoke("anything", nil)
	if !stderrors.Is(err, ErrPlatformUnavailable) {
		t.Fatalf("expected ErrPlatformUnavailable, got %v", err)
	}
}

func TestInvokeRoundTrip(t *testing.T) {
	bridge := newRecordingBridge()
	bridge.response = map[string]any{"ok": true}
	SetupTestBridgeWith(bridge, t.Cleanup)

	ch := NewMethodChannel("test/roundtrip")
	result, err := ch.Invoke("ping", map[string]any{"n": 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	m, ok := result.(map[string]any)
	if !ok || m["ok"] != true {
		t.Errorf("unexpected result %#v", result)
	}
	if len(bridge.calls) != 1 || bridge.calls[0] != "test/roundtrip#ping" {
		t.Errorf("calls = %v", bridge.calls)
	}
}

func TestEventChannelStartsStreamOnce(t *testing.T) {
	bridge := newRecordingBridge()
	SetupTestBridgeWith(bridge, t.Cleanup)

	ch := NewEventChannel("test/events-once")
	first := ch.Listen(EventHandler{})
	second := ch.Listen(EventHandler{})

	if got := bridge.started["test/events-once"]; got != 1 {
		t.Errorf("start count = %d, want 1", got)
	}

	first.Cancel()
	if got := bridge.stopped["test/events-once"]; got != 0 {
		t.Errorf("stop count after first cancel = %d, want 0", got)
	}
	second.Cancel()
	if got := bridge.stopped["test/events-once"]; got != 1 {
		t.Errorf("stop count after last cancel = %d, want 1", got)
	}
}

func TestSetNativeBridgeStartsEarlySubscriptions(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	ch := NewEventChannel("test/early")
	ch.Listen(EventHandler{})

	bridge := newRecordingBridge()
	SetNativeBridge(bridge)

	if got := bridge.started["test/early"]; got != 1 {
		t.Errorf("start count = %d, want 1", got)
	}
}

func TestHandleEventDispatch(t *testing.T) {
	SetupTestBridge(t.Cleanup)

	ch := NewEventChannel("test/dispatch")
	var got []any
	var gotErr error
	sub := ch.Listen(EventHandler{
		OnEvent: func(data any) { got = append(got, data) },
		OnError: func(err error) { gotErr = err },
	})

	if err := HandleEvent("test/dispatch", []byte(`{"a":1}`)); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("events = %v", got)
	}

	if err := HandleEvent("test/dispatch", []byte(`{`)); err == nil {
		t.Error("expected decode error")
	}
	if gotErr == nil {
		t.Error("decode error should reach OnError")
	}

	sub.Cancel()
	_ = HandleEvent("test/dispatch", []byte(`{"a":2}`))
	if len(got) != 1 {
		t.Errorf("events after cancel = %d, want 1", len(got))
	}
}

func TestHandleEventUnregistered(t *testing.T) {
	SetupTestBridge(t.Cleanup)
	err := HandleEvent("test/missing", []byte(`{}`))
	if !stderrors.Is(err, ErrChannelNotRegistered) {
		t.Errorf("expected ErrChannelNotRegistered, got %v", err)
	}
}

func TestChannelErrorFormat(t *testing.T) {
	if got := NewChannelError("invalid_trigger", "interval must be positive").Error(); got != "invalid_trigger: interval must be positive" {
		t.Errorf("got %q", got)
	}
	if got := NewChannelError("denied", "").Error(); got != "denied" {
		t.Errorf("got %q", got)
	}
}

func TestDispatchOrRun(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	ran := false
	DispatchOrRun(func() { ran = true })
	if !ran {
		t.Error("callback should run inline without a dispatcher")
	}

	var queued []func()
	RegisterDispatch(func(cb func()) { queued = append(queued, cb) })
	ran = false
	DispatchOrRun(func() { ran = true })
	if ran || len(queued) != 1 {
		t.Fatalf("callback should be queued, ran=%v queued=%d", ran, len(queued))
	}
	queued[0]()
	if !ran {
		t.Error("queued callback did not run")
	}
}
