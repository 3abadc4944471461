package errors

import (
	"bytes"
	stderrors "errors"
	"strings"
	"testing"
	"time"
)

func TestAppErrorString(t *testing.T) {
	err := &AppError{
		Op:   "test.operation",
		Kind: KindPlatform,
		Err:  &ParseError{Channel: "test", DataType: "TestData", Got: "invalid"},
	}
	got := err.Error()
	want := "test.operation [platform]: failed to parse TestData from channel test: got string"
	if got != want {
		t.Errorf("AppError.Error() = %q, want %q", got, want)
	}
}

func TestAppErrorWithChannel(t *testing.T) {
	err := &AppError{
		Op:      "test.operation",
		Kind:    KindParsing,
		Channel: "drift/test/channel",
		Err:     &ParseError{Channel: "drift/test/channel", DataType: "TestData", Got: nil},
	}
	want := "channel=drift/test/channel"
	if got := err.Error(); !strings.Contains(got, want) {
		t.Errorf("error string %q should contain %q", got, want)
	}
}

func TestErrorKindString(t *testing.T) {
	tests := []struct {
		kind ErrorKind
		want string
	}{
		{KindUnknown, "unknown"},
		{KindPlatform, "platform"},
		{KindParsing, "parsing"},
		{KindInit, "init"},
		{KindPermission, "permission"},
		{KindScheduling, "scheduling"},
		{KindPanic, "panic"},
		{ErrorKind(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("ErrorKind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestAppErrorKindMatching(t *testing.T) {
	cause := stderrors.New("denied by policy")
	err := &AppError{Op: "localnotify.requestPermission", Kind: KindPermission, Err: cause}

	if !stderrors.Is(err, PermissionError) {
		t.Error("expected permission error to match PermissionError")
	}
	if stderrors.Is(err, SchedulingError) {
		t.Error("permission error should not match SchedulingError")
	}
	if !stderrors.Is(err, cause) {
		t.Error("expected errors.Is to reach the wrapped cause")
	}

	var appErr *AppError
	if !stderrors.As(err, &appErr) || appErr.Op != "localnotify.requestPermission" {
		t.Errorf("errors.As returned %+v", appErr)
	}
}

func TestPanicErrorString(t *testing.T) {
	tests := []struct {
		name string
		err  *PanicError
		want string
	}{
		{"without op", &PanicError{Value: "test panic", Timestamp: time.Now()}, "panic: test panic"},
		{"with op", &PanicError{Op: "host.fire", Value: "test panic"}, "panic in host.fire: test panic"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("PanicError.Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestReport(t *testing.T) {
	var captured *AppError
	handler := &testHandler{
		onError: func(err *AppError) {
			captured = err
		},
	}

	oldHandler := DefaultHandler
	SetHandler(handler)
	defer SetHandler(oldHandler)

	Report(&AppError{
		Op:   "test.op",
		Kind: KindInit,
		Err:  &ParseError{Channel: "test", DataType: "Test", Got: nil},
	})

	if captured == nil {
		t.Fatal("expected error to be captured")
	}
	if captured.Op != "test.op" {
		t.Errorf("Op = %q, want %q", captured.Op, "test.op")
	}
	if captured.Timestamp.IsZero() {
		t.Error("expected Timestamp to be set")
	}

	// nil reports are dropped
	captured = nil
	Report(nil)
	if captured != nil {
		t.Error("nil report should not reach the handler")
	}
}

func TestRecover(t *testing.T) {
	var captured *PanicError
	handler := &testHandler{
		onPanic: func(err *PanicError) {
			captured = err
		},
	}

	oldHandler := DefaultHandler
	SetHandler(handler)
	defer SetHandler(oldHandler)

	func() {
		defer Recover("test.recover")
		panic("intentional test panic")
	}()

	if captured == nil {
		t.Fatal("expected panic to be recovered and captured")
	}
	if captured.Value != "intentional test panic" {
		t.Errorf("Value = %v, want %q", captured.Value, "intentional test panic")
	}
	if captured.Op != "test.recover" {
		t.Errorf("Op = %q, want %q", captured.Op, "test.recover")
	}
	if captured.StackTrace == "" {
		t.Error("expected stack trace")
	}
}

func TestRecoverWithCallback(t *testing.T) {
	oldHandler := DefaultHandler
	SetHandler(&testHandler{})
	defer SetHandler(oldHandler)

	var got any
	func() {
		defer RecoverWithCallback("test.callback", func(r any) { got = r })
		panic(42)
	}()
	if got != 42 {
		t.Errorf("callback got %v, want 42", got)
	}
}

func TestSetHandlerNil(t *testing.T) {
	oldHandler := DefaultHandler
	defer SetHandler(oldHandler)

	SetHandler(nil)
	if _, ok := DefaultHandler.(*LogHandler); !ok {
		t.Errorf("SetHandler(nil) should set LogHandler, got %T", DefaultHandler)
	}
}

func TestLogHandler(t *testing.T) {
	err := &AppError{
		Op:         "platform.startEventStream",
		Kind:       KindPlatform,
		Channel:    "drift/notifications/received",
		Err:        stderrors.New("bridge gone"),
		StackTrace: "main.main\n",
	}

	t.Run("terse", func(t *testing.T) {
		var buf bytes.Buffer
		(&LogHandler{Out: &buf}).HandleError(err)
		want := "[pushnotification error] platform.startEventStream: bridge gone\n"
		if buf.String() != want {
			t.Errorf("got %q, want %q", buf.String(), want)
		}
	})

	t.Run("verbose", func(t *testing.T) {
		var buf bytes.Buffer
		(&LogHandler{Out: &buf, Verbose: true}).HandleError(err)
		got := buf.String()
		for _, want := range []string{"[platform]", "channel=drift/notifications/received", "Stack trace:"} {
			if !strings.Contains(got, want) {
				t.Errorf("verbose output %q missing %q", got, want)
			}
		}
	})

	t.Run("panic", func(t *testing.T) {
		var buf bytes.Buffer
		(&LogHandler{Out: &buf}).HandlePanic(&PanicError{Op: "host.fire", Value: "boom"})
		want := "[pushnotification panic] host.fire: boom\n"
		if buf.String() != want {
			t.Errorf("got %q, want %q", buf.String(), want)
		}
	})
}

func TestCaptureStack(t *testing.T) {
	stack := CaptureStack()
	if !strings.Contains(stack, "testing") && !strings.Contains(stack, "runtime") {
		t.Errorf("stack trace should contain testing or runtime frames, got: %s", stack)
	}
}

type testHandler struct {
	onError func(*AppError)
	onPanic func(*PanicError)
}

func (h *testHandler) HandleError(err *AppError) {
	if h.onError != nil {
		h.onError(err)
	}
}

func (h *testHandler) HandlePanic(err *PanicError) {
	if h.onPanic != nil {
		h.onPanic(err)
	}
}
