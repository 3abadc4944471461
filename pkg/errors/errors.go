// Package errors provides structured error handling for the notification
// platform layer and the demo application built on it.
package errors

import (
	"fmt"
	"time"
)

// ErrorKind identifies the category of an error.
type ErrorKind int

const (
	// KindUnknown indicates an error of unknown type.
	KindUnknown ErrorKind = iota
	// KindPlatform indicates a platform channel or native bridge error.
	KindPlatform
	// KindParsing indicates an event parsing failure.
	KindParsing
	// KindInit indicates an initialization error.
	KindInit
	// KindPermission indicates the host rejected or failed an authorization request.
	KindPermission
	// KindScheduling indicates the host rejected a notification submission.
	KindScheduling
	// KindPanic indicates a recovered panic.
	KindPanic
)

func (k ErrorKind) String() string {
	switch k {
	case KindPlatform:
		return "platform"
	case KindParsing:
		return "parsing"
	case KindInit:
		return "init"
	case KindPermission:
		return "permission"
	case KindScheduling:
		return "scheduling"
	case KindPanic:
		return "panic"
	default:
		return "unknown"
	}
}

// AppError represents a structured error raised by the platform layer or the app.
type AppError struct {
	// Op is the operation that failed (e.g., "localnotify.schedule").
	Op string
	// Kind categorizes the error.
	Kind ErrorKind
	// Err is the underlying error.
	Err error
	// Channel is the platform channel name, if applicable.
	Channel string
	// StackTrace contains the call stack at the time of the error.
	StackTrace string
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *AppError) Error() string {
	if e.Channel != "" {
		return fmt.Sprintf("%s [%s] channel=%s: %v", e.Op, e.Kind, e.Channel, e.Err)
	}
	return fmt.Sprintf("%s [%s]: %v", e.Op, e.Kind, e.Err)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *AppError of the same kind with no Op set,
// so callers can match on a kind with errors.Is(err, errors.PermissionError).
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Op == "" && t.Err == nil && t.Kind == e.Kind
}

// Kind sentinels for use with the standard library errors.Is.
var (
	// PermissionError matches any AppError of kind KindPermission.
	PermissionError = &AppError{Kind: KindPermission}
	// SchedulingError matches any AppError of kind KindScheduling.
	SchedulingError = &AppError{Kind: KindScheduling}
)

// PanicError represents a recovered panic.
type PanicError struct {
	// Op is the operation that panicked (e.g., "host.fire").
	Op string
	// Value is the value passed to panic().
	Value any
	// StackTrace contains the call stack at the time of the panic.
	StackTrace string
	// Timestamp is when the panic occurred.
	Timestamp time.Time
}

func (e *PanicError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("panic in %s: %v", e.Op, e.Value)
	}
	return fmt.Sprintf("panic: %v", e.Value)
}

// ParseError represents a failure to parse event data.
type ParseError struct {
	// Channel is the platform channel that received the event.
	Channel string
	// DataType is the expected type name.
	DataType string
	// Got is the actual data received.
	Got any
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse %s from channel %s: got %T", e.DataType, e.Channel, e.Got)
}

// ErrorHandler receives errors reported through Report and ReportPanic.
type ErrorHandler interface {
	// HandleError is called when an error occurs.
	HandleError(err *AppError)
	// HandlePanic is called when a panic is recovered.
	HandlePanic(err *PanicError)
}
