package host

import (
	"context"
	"runtime"
)

// platformName tags host errors with their source.
var platformName = runtime.GOOS

// Notification is what the host shows on screen when a trigger fires.
type Notification struct {
	ID      string
	AppName string
	AppID   string
	Title   string
	Body    string
	// Sound plays the platform default sound.
	Sound bool
	// Icon is a path to a prepared PNG, or empty.
	Icon string
}

// Presenter shows notifications through the operating system.
type Presenter interface {
	Present(ctx context.Context, n Notification) error
}

// PresenterFunc adapts a function to Presenter.
type PresenterFunc func(ctx context.Context, n Notification) error

func (f PresenterFunc) Present(ctx context.Context, n Notification) error {
	return f(ctx, n)
}
