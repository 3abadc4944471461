package host

import (
	"context"
	"errors"
	"testing"

	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type notifyRecorder struct {
	calls [][]any
	ids   []uint32
	err   error
}

func (r *notifyRecorder) notify(_ context.Context, args []any) (uint32, error) {
	r.calls = append(r.calls, args)
	if r.err != nil {
		return 0, r.err
	}
	id := r.ids[0]
	r.ids = r.ids[1:]
	return id, nil
}

func TestDBusPresenterReplacesByIdentifier(t *testing.T) {
	rec := &notifyRecorder{ids: []uint32{7, 7, 9}}
	p := newDBusPresenter(rec.notify)
	ctx := context.Background()

	require.NoError(t, p.Present(ctx, Notification{ID: "testNotification"}))
	require.NoError(t, p.Present(ctx, Notification{ID: "testNotification"}))
	require.NoError(t, p.Present(ctx, Notification{ID: "other"}))

	require.Len(t, rec.calls, 3)
	assert.Equal(t, uint32(0), rec.calls[0][1])
	assert.Equal(t, uint32(7), rec.calls[1][1])
	assert.Equal(t, uint32(0), rec.calls[2][1])
}

func TestDBusPresenterNotifyFailure(t *testing.T) {
	rec := &notifyRecorder{err: errors.New("no notification daemon")}
	p := newDBusPresenter(rec.notify)

	err := p.Present(context.Background(), Notification{ID: "testNotification"})
	assert.EqualError(t, err, "no notification daemon")
	assert.Empty(t, p.replaces)
}

func TestNotifyArgs(t *testing.T) {
	n := Notification{
		ID:      "testNotification",
		AppName: "Push Demo",
		AppID:   "com.example.pushdemo",
		Title:   "Hello!",
		Body:    "This is a test notification.",
		Icon:    "/tmp/bell-128.png",
		Sound:   true,
	}

	args := notifyArgs(n, 3)
	require.Len(t, args, 8)
	assert.Equal(t, "Push Demo", args[0])
	assert.Equal(t, uint32(3), args[1])
	assert.Equal(t, "/tmp/bell-128.png", args[2])
	assert.Equal(t, "Hello!", args[3])
	assert.Equal(t, "This is a test notification.", args[4])
	assert.Equal(t, []string{}, args[5])
	assert.Equal(t, int32(-1), args[7])

	hints := args[6].(map[string]dbus.Variant)
	assert.Equal(t, "com.example.pushdemo", hints["desktop-entry"].Value())
	assert.Equal(t, soundName, hints["sound-name"].Value())
	assert.NotContains(t, hints, "suppress-sound")
}

func TestNotifyHintsSilent(t *testing.T) {
	hints := notifyHints(Notification{AppID: "com.example.pushdemo"})
	assert.Equal(t, true, hints["suppress-sound"].Value())
	assert.NotContains(t, hints, "sound-name")
}
