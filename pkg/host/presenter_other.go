//go:build !linux && !windows

package host

import (
	"context"

	"github.com/gen2brain/beeep"
)

type beeepPresenter struct{}

// NewSystemPresenter returns the presenter for this operating system.
func NewSystemPresenter() Presenter {
	return beeepPresenter{}
}

func (beeepPresenter) Present(ctx context.Context, n Notification) error {
	beeep.AppName = n.AppName
	if n.Sound {
		return beeep.Alert(n.Title, n.Body, n.Icon)
	}
	return beeep.Notify(n.Title, n.Body, n.Icon)
}
