package platform

import (
	"fmt"
	"sync"

	"github.com/go-drift/pushnotification/pkg/errors"
)

// channelRegistry manages all registered platform channels.
type channelRegistry struct {
	eventChannels map[string]*EventChannel
	mu            sync.RWMutex
}

var registry = &channelRegistry{
	eventChannels: make(map[string]*EventChannel),
}

func (r *channelRegistry) registerEvent(name string, ch *EventChannel) {
	r.mu.Lock()
	r.eventChannels[name] = ch
	r.mu.Unlock()
}

func (r *channelRegistry) getEventChannel(name string) *EventChannel {
	r.mu.RLock()
	ch := r.eventChannels[name]
	r.mu.RUnlock()
	return ch
}

func (r *channelRegistry) events() []*EventChannel {
	r.mu.RLock()
	defer r.mu.RUnlock()
	channels := make([]*EventChannel, 0, len(r.eventChannels))
	for _, ch := range r.eventChannels {
		channels = append(channels, ch)
	}
	return channels
}

// NativeBridge defines the interface to the host notification service.
// Mobile embedders implement it over cgo/JNI; pkg/host implements it in Go
// for desktop runs.
type NativeBridge interface {
	// InvokeMethod calls a method on the host side.
	InvokeMethod(channel, method string, args []byte) ([]byte, error)

	// StartEventStream tells the host to start sending events for a channel.
	StartEventStream(channel string) error

	// StopEventStream tells the host to stop sending events for a channel.
	StopEventStream(channel string) error
}

var (
	bridgeMu     sync.RWMutex
	nativeBridge NativeBridge
)

func currentBridge() NativeBridge {
	bridgeMu.RLock()
	defer bridgeMu.RUnlock()
	return nativeBridge
}

// SetNativeBridge attaches the host implementation.
//
// After setting the bridge, SetNativeBridge starts event streams for any
// event channels that acquired subscriptions before the bridge was available
// (e.g., during package init). Startup errors are dispatched to subscribers'
// error handlers.
func SetNativeBridge(bridge NativeBridge) {
	bridgeMu.Lock()
	nativeBridge = bridge
	bridgeMu.Unlock()

	if bridge == nil {
		return
	}

	for _, ch := range registry.events() {
		ch.mu.Lock()
		shouldStart := len(ch.subscriptions) > 0 && !ch.started
		if shouldStart {
			ch.started = true
		}
		ch.mu.Unlock()

		if shouldStart {
			if err := startEventStream(ch.name); err != nil {
				ch.mu.Lock()
				ch.started = false
				ch.mu.Unlock()
				ch.dispatchError(err)
			}
		}
	}
}

// invokeNative calls a method on the host side.
func invokeNative(channel, method string, args any) (any, error) {
	bridge := currentBridge()
	if bridge == nil {
		return nil, ErrPlatformUnavailable
	}

	argsData, err := DefaultCodec.Encode(args)
	if err != nil {
		return nil, err
	}

	resultData, err := bridge.InvokeMethod(channel, method, argsData)
	if err != nil {
		return nil, err
	}

	return DefaultCodec.Decode(resultData)
}

// startEventStream notifies the host to start sending events.
// A missing bridge is not reported: SetNativeBridge starts the stream later.
func startEventStream(channel string) error {
	bridge := currentBridge()
	if bridge == nil {
		return ErrPlatformUnavailable
	}
	if err := bridge.StartEventStream(channel); err != nil {
		errors.Report(&errors.AppError{
			Op:      "platform.startEventStream",
			Kind:    errors.KindPlatform,
			Channel: channel,
			Err:     err,
		})
		return err
	}
	return nil
}

// stopEventStream notifies the host to stop sending events.
func stopEventStream(channel string) error {
	bridge := currentBridge()
	if bridge == nil {
		return ErrPlatformUnavailable
	}
	if err := bridge.StopEventStream(channel); err != nil {
		if !isClosed(err) {
			errors.Report(&errors.AppError{
				Op:      "platform.stopEventStream",
				Kind:    errors.KindPlatform,
				Channel: channel,
				Err:     err,
			})
		}
		return err
	}
	return nil
}

// ErrChannelNotRegistered is returned when an event is received for an unregistered channel.
var ErrChannelNotRegistered = fmt.Errorf("event channel not registered")

func unregistered(op, channel string) error {
	err := fmt.Errorf("%w: %s", ErrChannelNotRegistered, channel)
	errors.Report(&errors.AppError{
		Op:      op,
		Kind:    errors.KindPlatform,
		Channel: channel,
		Err:     err,
	})
	return err
}

// HandleEvent is called by the host when it sends an event.
func HandleEvent(channel string, eventData []byte) error {
	ch := registry.getEventChannel(channel)
	if ch == nil {
		return unregistered("platform.HandleEvent", channel)
	}

	data, err := DefaultCodec.Decode(eventData)
	if err != nil {
		ch.dispatchError(err)
		return err
	}

	ch.dispatchEvent(data)
	return nil
}

// ResetForTest resets all global platform state for test isolation.
// It detaches the native bridge, removes all event subscriptions and clears
// the dispatch function. This should only be called from tests.
func ResetForTest() {
	bridgeMu.Lock()
	nativeBridge = nil
	bridgeMu.Unlock()

	for _, ch := range registry.events() {
		ch.mu.Lock()
		ch.subscriptions = ch.subscriptions[:0]
		ch.started = false
		ch.mu.Unlock()
	}

	dispatchMu.Lock()
	dispatchFunc = nil
	dispatchMu.Unlock()
}
