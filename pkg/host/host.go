// Package host is a desktop implementation of the host notification service.
//
// A Host plugs into the platform layer as its NativeBridge. It answers the
// permission and notification channels the way a mobile OS would: it owns the
// authorization decision, keeps pending requests keyed by identifier, fires
// triggers and presents deliveries through the desktop notification system.
package host

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/go-drift/pushnotification/pkg/errors"
	"github.com/go-drift/pushnotification/pkg/platform"
)

const (
	permissionsChannel       = "drift/permissions"
	permissionChangesChannel = "drift/permissions/changes"
	notificationPermission   = "notifications"

	// MinRepeatInterval is the shortest accepted interval for repeating triggers.
	MinRepeatInterval = 60 * time.Second
)

// Options configures a Host.
type Options struct {
	// AppID keys the stored authorization decision.
	AppID string
	// AppName is shown in prompts and notifications.
	AppName string
	// Policy answers requests without a stored decision.
	Policy Policy
	// Store holds decisions. Defaults to a MemoryStore.
	Store AuthorizationStore
	// Prompter is used by PolicyPrompt. Defaults to denying.
	Prompter Prompter
	// Presenter shows notifications. Defaults to NewSystemPresenter().
	Presenter Presenter
	// Icon is a prepared icon path passed to the presenter.
	Icon string
	// Logger receives host diagnostics. Nil discards them.
	Logger *log.Logger
}

type pending struct {
	req        platform.NotificationRequest
	fireAt     time.Time
	timer      *time.Timer
	generation uint64
}

// Host is a NativeBridge backed by the desktop.
type Host struct {
	opts Options

	ctx    context.Context
	cancel context.CancelFunc

	mu           sync.Mutex
	pending      map[string]*pending
	generation   uint64
	listening    map[string]bool
	presentation platform.PresentationOptions
	closed       bool
	fires        sync.WaitGroup
}

// New creates a Host. Call Close to stop pending triggers.
func New(opts Options) *Host {
	if opts.Store == nil {
		opts.Store = NewMemoryStore()
	}
	if opts.Prompter == nil {
		opts.Prompter = StaticPrompter(false)
	}
	if opts.Presenter == nil {
		opts.Presenter = NewSystemPresenter()
	}
	if opts.Policy == "" {
		opts.Policy = PolicyPrompt
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Host{
		opts:      opts,
		ctx:       ctx,
		cancel:    cancel,
		pending:   make(map[string]*pending),
		listening: make(map[string]bool),
	}
}

func (h *Host) logf(format string, args ...any) {
	if h.opts.Logger != nil {
		h.opts.Logger.Printf(format, args...)
	}
}

// InvokeMethod implements platform.NativeBridge.
func (h *Host) InvokeMethod(channel, method string, args []byte) ([]byte, error) {
	h.mu.Lock()
	closed := h.closed
	h.mu.Unlock()
	if closed {
		return nil, platform.ErrClosed
	}

	decoded, err := platform.DefaultCodec.Decode(args)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", platform.ErrInvalidArguments, err)
	}
	m, _ := decoded.(map[string]any)

	var result any
	switch channel {
	case permissionsChannel:
		result, err = h.handlePermission(method, m)
	case platform.NotificationsChannel:
		result, err = h.handleNotifications(method, m)
	default:
		return nil, platform.ErrChannelNotFound
	}
	if err != nil {
		return nil, err
	}
	return platform.DefaultCodec.Encode(result)
}

// StartEventStream implements platform.NativeBridge.
func (h *Host) StartEventStream(channel string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return platform.ErrClosed
	}
	h.listening[channel] = true
	return nil
}

// StopEventStream implements platform.NativeBridge.
func (h *Host) StopEventStream(channel string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return platform.ErrClosed
	}
	delete(h.listening, channel)
	return nil
}

// Close cancels pending triggers and any prompt in progress, then waits for
// deliveries already firing. Calls after Close fail with platform.ErrClosed.
func (h *Host) Close() error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.closed = true
	for id, p := range h.pending {
		p.timer.Stop()
		delete(h.pending, id)
	}
	h.mu.Unlock()

	h.cancel()
	h.fires.Wait()
	return nil
}

// ResetAuthorization forgets the stored decision so the next request prompts
// again, like toggling the app off and on in system settings.
func (h *Host) ResetAuthorization() error {
	return h.opts.Store.Delete(h.opts.AppID)
}

func (h *Host) emit(channel string, payload any) {
	h.mu.Lock()
	listening := h.listening[channel]
	h.mu.Unlock()
	if !listening {
		return
	}
	data, err := platform.DefaultCodec.Encode(payload)
	if err != nil {
		errors.Report(&errors.AppError{Op: "host.emit", Kind: errors.KindPlatform, Channel: channel, Err: err})
		return
	}
	_ = platform.HandleEvent(channel, data)
}

// authorization returns the effective decision: stored, or derived from policy.
func (h *Host) authorization() (Authorization, error) {
	auth, ok, err := h.opts.Store.Load(h.opts.AppID)
	if err != nil {
		return Authorization{Status: platform.PermissionResultUnknown}, err
	}
	if ok {
		return auth, nil
	}
	if h.opts.Policy == PolicyRestricted {
		return Authorization{Status: platform.PermissionRestricted}, nil
	}
	return Authorization{Status: platform.PermissionNotDetermined}, nil
}

func (h *Host) handlePermission(method string, args map[string]any) (any, error) {
	if name, _ := args["permission"].(string); name != notificationPermission {
		return nil, platform.NewChannelError("unsupported_permission", fmt.Sprintf("permission %q is not handled by this host", name))
	}

	switch method {
	case "check":
		auth, err := h.authorization()
		if err != nil {
			return nil, platform.NewChannelError("store_unavailable", err.Error())
		}
		return map[string]any{"status": string(auth.Status)}, nil
	case "request":
		return nil, h.requestAuthorization(args)
	default:
		return nil, platform.ErrMethodNotFound
	}
}

// requestAuthorization resolves a request and reports the decision on the
// permission changes channel. The prompt is modal: the call returns once the
// user has answered.
func (h *Host) requestAuthorization(args map[string]any) error {
	auth, err := h.authorization()
	if err != nil {
		return platform.NewChannelError("store_unavailable", err.Error())
	}

	if auth.Status == platform.PermissionNotDetermined {
		req := PromptRequest{
			AppName: h.opts.AppName,
			Alert:   boolArg(args, "alert"),
			Sound:   boolArg(args, "sound"),
			Badge:   boolArg(args, "badge"),
		}

		var allowed bool
		switch h.opts.Policy {
		case PolicyGrant:
			allowed = true
		case PolicyDeny:
			allowed = false
		default:
			allowed, err = h.opts.Prompter.Prompt(h.ctx, req)
			if err != nil {
				return platform.NewChannelError("prompt_failed", err.Error())
			}
		}

		auth = Authorization{Status: platform.PermissionDenied}
		if allowed {
			auth = Authorization{Status: platform.PermissionGranted, Alert: req.Alert, Sound: req.Sound, Badge: req.Badge}
			if boolArg(args, "provisional") {
				auth.Status = platform.PermissionProvisional
			}
		}
		if err := h.opts.Store.Save(h.opts.AppID, auth); err != nil {
			h.logf("host: could not persist authorization: %v", err)
		}
		h.logf("host: notifications %s for %s", auth.Status, h.opts.AppID)
	}

	h.emit(permissionChangesChannel, map[string]any{
		"permission": notificationPermission,
		"status":     string(auth.Status),
	})
	return nil
}

func (h *Host) handleNotifications(method string, args map[string]any) (any, error) {
	switch method {
	case "getSettings":
		auth, err := h.authorization()
		if err != nil {
			return nil, platform.NewChannelError("store_unavailable", err.Error())
		}
		return map[string]any{
			"status":        string(auth.Status),
			"alertsEnabled": auth.Alert,
			"soundsEnabled": auth.Sound,
			"badgesEnabled": auth.Badge,
		}, nil
	case "schedule":
		req, err := parseRequest(args)
		if err != nil {
			return nil, err
		}
		return nil, h.schedule(req)
	case "getPending":
		return h.pendingList(), nil
	case "setPresentationOptions":
		h.mu.Lock()
		h.presentation = platform.PresentationOptions{
			Banner: boolArg(args, "banner"),
			Sound:  boolArg(args, "sound"),
			List:   boolArg(args, "list"),
		}
		h.mu.Unlock()
		return nil, nil
	default:
		return nil, platform.ErrMethodNotFound
	}
}

func parseRequest(args map[string]any) (platform.NotificationRequest, error) {
	if args == nil {
		return platform.NotificationRequest{}, platform.NewChannelError("invalid_request", "missing request")
	}
	req := platform.NotificationRequest{
		ID:              stringArg(args, "id"),
		Title:           stringArg(args, "title"),
		Body:            stringArg(args, "body"),
		Sound:           stringArg(args, "sound"),
		ChannelID:       stringArg(args, "channelId"),
		IntervalSeconds: int64Arg(args, "intervalSeconds"),
		Repeats:         boolArg(args, "repeats"),
	}
	if data, ok := args["data"].(map[string]any); ok {
		req.Data = data
	}
	if _, ok := args["at"]; ok {
		req.At = time.UnixMilli(int64Arg(args, "at"))
	}

	if req.ID == "" {
		return req, platform.NewChannelError("invalid_request", "identifier must not be empty")
	}
	if req.At.IsZero() && req.IntervalSeconds <= 0 {
		return req, platform.NewChannelError("invalid_trigger", "time interval must be greater than 0")
	}
	if req.Repeats && time.Duration(req.IntervalSeconds)*time.Second < MinRepeatInterval {
		return req, platform.NewChannelError("invalid_trigger", "time interval must be at least 60 seconds if repeating")
	}
	return req, nil
}

// schedule arms a trigger, replacing any pending request with the same identifier.
func (h *Host) schedule(req platform.NotificationRequest) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return platform.ErrClosed
	}

	fireAt := req.At
	if fireAt.IsZero() {
		fireAt = time.Now().Add(req.Delay())
	}
	delay := time.Until(fireAt)
	if delay < 0 {
		delay = 0
	}

	if existing, ok := h.pending[req.ID]; ok {
		existing.timer.Stop()
		h.logf("host: replacing pending notification %q", req.ID)
	}

	h.generation++
	p := &pending{req: req, fireAt: fireAt, generation: h.generation}
	id, gen := req.ID, p.generation
	p.timer = time.AfterFunc(delay, func() { h.fire(id, gen) })
	h.pending[req.ID] = p
	return nil
}

func (h *Host) pendingList() []map[string]any {
	h.mu.Lock()
	list := make([]*pending, 0, len(h.pending))
	for _, p := range h.pending {
		list = append(list, p)
	}
	h.mu.Unlock()

	sort.Slice(list, func(i, j int) bool { return list[i].fireAt.Before(list[j].fireAt) })
	out := make([]map[string]any, 0, len(list))
	for _, p := range list {
		out = append(out, map[string]any{
			"id":              p.req.ID,
			"title":           p.req.Title,
			"body":            p.req.Body,
			"intervalSeconds": p.req.IntervalSeconds,
			"repeats":         p.req.Repeats,
			"fireAt":          p.fireAt.UnixMilli(),
		})
	}
	return out
}

// fire delivers a pending request if it is still the current one for its identifier.
func (h *Host) fire(id string, generation uint64) {
	h.mu.Lock()
	p, ok := h.pending[id]
	if !ok || p.generation != generation || h.closed {
		h.mu.Unlock()
		return
	}
	req := p.req
	if req.Repeats {
		interval := time.Duration(req.IntervalSeconds) * time.Second
		p.fireAt = time.Now().Add(interval)
		p.timer = time.AfterFunc(interval, func() { h.fire(id, generation) })
	} else {
		delete(h.pending, id)
	}
	presentation := h.presentation
	h.fires.Add(1)
	h.mu.Unlock()

	defer h.fires.Done()
	defer errors.Recover("host.fire")

	auth, err := h.authorization()
	if err != nil {
		h.logf("host: dropping %q: %v", id, err)
		return
	}
	if !auth.Granted() {
		// Not authorized: the request was accepted but nothing is shown.
		h.logf("host: suppressed %q (notifications %s)", id, auth.Status)
		return
	}

	if presentation.Banner && auth.Alert {
		err := h.opts.Presenter.Present(h.ctx, Notification{
			ID:      req.ID,
			AppName: h.opts.AppName,
			AppID:   h.opts.AppID,
			Title:   req.Title,
			Body:    req.Body,
			Sound:   presentation.Sound && auth.Sound,
			Icon:    h.opts.Icon,
		})
		if err != nil {
			h.emit(platform.NotificationsErrorChannel, map[string]any{
				"code":     "present_failed",
				"message":  err.Error(),
				"platform": platformName,
			})
		}
	}

	h.emit(platform.NotificationsReceivedChannel, map[string]any{
		"id":           req.ID,
		"title":        req.Title,
		"body":         req.Body,
		"data":         req.Data,
		"timestamp":    time.Now().UnixMilli(),
		"isForeground": true,
		"source":       "local",
	})
}

func stringArg(args map[string]any, key string) string {
	s, _ := args[key].(string)
	return s
}

func boolArg(args map[string]any, key string) bool {
	b, _ := args[key].(bool)
	return b
}

func int64Arg(args map[string]any, key string) int64 {
	switch v := args[key].(type) {
	case float64:
		return int64(v)
	case int64:
		return v
	case int:
		return int64(v)
	default:
		return 0
	}
}
