package platform

import (
	"context"

	"github.com/go-drift/pushnotification/pkg/errors"
)

// Stream is a typed, multi-subscriber view over an EventChannel.
// Every listener receives every event; the returned function unsubscribes.
type Stream[T any] struct {
	eventChannel *EventChannel
	channelName  string
	parser       func(data any) (T, error)
}

// Listen subscribes to events and returns an unsubscribe function.
// The handler is called for each event. Parse errors are reported via errors.Report.
// Call the returned function to stop receiving events.
func (s *Stream[T]) Listen(handler func(T)) (unsubscribe func()) {
	sub := s.eventChannel.Listen(EventHandler{
		OnEvent: func(data any) {
			val, err := s.parser(data)
			if err != nil {
				errors.Report(&errors.AppError{
					Op:      "stream.parse",
					Kind:    errors.KindParsing,
					Channel: s.channelName,
					Err:     err,
				})
				return
			}
			handler(val)
		},
		OnError: func(err error) {
			errors.Report(&errors.AppError{
				Op:      "stream.error",
				Kind:    errors.KindPlatform,
				Channel: s.channelName,
				Err:     err,
			})
		},
	})
	return sub.Cancel
}

// Next blocks until the next event matching accept arrives or ctx is done.
// A nil accept matches every event.
func (s *Stream[T]) Next(ctx context.Context, accept func(T) bool) (T, error) {
	events := make(chan T, 1)
	unsubscribe := s.Listen(func(v T) {
		if accept != nil && !accept(v) {
			return
		}
		select {
		case events <- v:
		default:
		}
	})
	defer unsubscribe()

	select {
	case v := <-events:
		return v, nil
	case <-ctx.Done():
		var zero T
		if ctx.Err() == context.DeadlineExceeded {
			return zero, ErrTimeout
		}
		return zero, ErrCanceled
	}
}

// NewStream creates a Stream wrapping an EventChannel.
// The parser converts raw event data to the typed value, returning error on parse failure.
func NewStream[T any](name string, channel *EventChannel, parser func(data any) (T, error)) *Stream[T] {
	return &Stream[T]{
		eventChannel: channel,
		channelName:  name,
		parser:       parser,
	}
}
