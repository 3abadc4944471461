package cmd

import (
	"fmt"
	"io"
	"log"
	"path/filepath"

	"github.com/go-drift/pushnotification/internal/cache"
	"github.com/go-drift/pushnotification/internal/config"
	"github.com/go-drift/pushnotification/pkg/errors"
	"github.com/go-drift/pushnotification/pkg/host"
	"github.com/go-drift/pushnotification/pkg/localnotify"
	"github.com/go-drift/pushnotification/pkg/platform"
)

// app is the wired application: configuration, the desktop host attached as
// the native bridge, the notification delegate and the two button actions.
type app struct {
	cfg       *config.Resolved
	host      *host.Host
	logger    *log.Logger
	requester *localnotify.Requester
	scheduler *localnotify.Scheduler

	unregister func()
}

// appDeps are the per-command pieces of startup.
type appDeps struct {
	// prompter answers the host's permission prompt. Nil denies.
	prompter host.Prompter
	// presenter overrides the system presenter.
	presenter host.Presenter
	// onDelivery is called after the delegate logs a delivery.
	onDelivery func(platform.NotificationEvent)
	stderr     io.Writer
}

func loadConfig(opts *globalOptions) (*config.Resolved, error) {
	if opts.configPath != "" {
		cfg, err := config.LoadFile(opts.configPath)
		if err != nil {
			return nil, err
		}
		return config.ResolveConfig(filepath.Dir(opts.configPath), cfg)
	}

	root, err := config.FindProjectRoot()
	if err != nil {
		return nil, err
	}
	return config.Resolve(root)
}

// newApp performs startup in order: configuration, error reporting, the host
// bridge, then the delegate. The delegate is registered before any UI exists.
func newApp(opts *globalOptions, deps appDeps) (*app, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if opts.authorization != "" {
		cfg.Authorization = opts.authorization
	}
	policy, err := host.ParsePolicy(cfg.Authorization)
	if err != nil {
		return nil, err
	}

	errors.SetHandler(&errors.LogHandler{Verbose: opts.verbose || cfg.Verbose, Out: deps.stderr})
	logger := log.New(deps.stderr, "", log.LstdFlags)

	var store host.AuthorizationStore = host.NewMemoryStore()
	if cfg.Keyring {
		keyring := host.NewKeyringStore()
		if _, _, err := keyring.Load(cfg.AppID); err != nil {
			logger.Printf("Warning: keyring unavailable, authorization kept in memory: %v", err)
		} else {
			store = keyring
		}
	}

	icon := ""
	if cfg.Icon != "" {
		icon, err = prepareIcon(cfg)
		if err != nil {
			logger.Printf("Warning: notification icon unavailable: %v", err)
		}
	}

	presenter := deps.presenter
	if presenter == nil {
		presenter = opts.presenter
	}

	h := host.New(host.Options{
		AppID:     cfg.AppID,
		AppName:   cfg.AppName,
		Policy:    policy,
		Store:     store,
		Prompter:  deps.prompter,
		Presenter: presenter,
		Icon:      icon,
		Logger:    verboseLogger(opts.verbose || cfg.Verbose, logger),
	})
	platform.SetNativeBridge(h)

	delegate := localnotify.DefaultDelegateOptions()
	delegate.OnDelivery = deps.onDelivery
	unregister, err := localnotify.RegisterDelegate(platform.Notifications, logger, delegate)
	if err != nil {
		_ = h.Close()
		return nil, fmt.Errorf("failed to register notification delegate: %w", err)
	}

	return &app{
		cfg:       cfg,
		host:      h,
		logger:    logger,
		requester: &localnotify.Requester{Permission: platform.Notifications.Permission, Logger: logger},
		scheduler: &localnotify.Scheduler{
			Service: platform.Notifications,
			Template: localnotify.Template{
				Identifier:        cfg.Identifier,
				Title:             cfg.Title,
				Body:              cfg.Body,
				Sound:             cfg.Sound,
				Delay:             cfg.Delay,
				UniqueIdentifiers: cfg.UniqueIdentifiers,
			},
			Logger: logger,
		},
		unregister: unregister,
	}, nil
}

// Close removes the delegate and stops the host. Pending notifications that
// have not fired are dropped.
func (a *app) Close() error {
	a.unregister()
	return a.host.Close()
}

func prepareIcon(cfg *config.Resolved) (string, error) {
	dir, err := cache.AppDir(cfg.AppID)
	if err != nil {
		return "", err
	}
	return host.PrepareIcon(cfg.Icon, dir)
}

// verboseLogger returns logger when host diagnostics are wanted.
func verboseLogger(verbose bool, logger *log.Logger) *log.Logger {
	if verbose {
		return logger
	}
	return nil
}
