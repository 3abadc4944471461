//go:build windows

package host

import (
	"context"

	"github.com/go-toast/toast"
)

type toastPresenter struct{}

// NewSystemPresenter returns the presenter for this operating system.
func NewSystemPresenter() Presenter {
	return toastPresenter{}
}

func (toastPresenter) Present(ctx context.Context, n Notification) error {
	notification := toastNotification(n)
	return notification.Push()
}

// toastNotification maps n onto a toast. Without sound the toast is silent
// rather than falling back to the system default.
func toastNotification(n Notification) toast.Notification {
	notification := toast.Notification{
		AppID:   n.AppName,
		Title:   n.Title,
		Message: n.Body,
		Icon:    n.Icon,
	}
	if n.Sound {
		notification.Audio = toast.Default
	} else {
		notification.Audio = toast.Silent
	}
	return notification
}
