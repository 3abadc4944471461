// Package config loads pushnotification.yaml and resolves defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/mod/modfile"
	"golang.org/x/mod/module"
	"gopkg.in/yaml.v3"
)

// FileName is the configuration file looked up in the project directory.
const FileName = "pushnotification.yaml"

// Defaults for the notification section.
const (
	DefaultIdentifier = "testNotification"
	DefaultTitle      = "Hello!"
	DefaultBody       = "This is a test notification."
	DefaultSound      = "default"
	DefaultDelay      = 3 * time.Second
)

// Config represents the optional pushnotification.yaml configuration.
type Config struct {
	App          AppConfig          `yaml:"app"`
	Notification NotificationConfig `yaml:"notification"`
	Host         HostConfig         `yaml:"host"`
	Log          LogConfig          `yaml:"log"`
}

// AppConfig contains application metadata.
type AppConfig struct {
	Name string `yaml:"name,omitempty"`
	ID   string `yaml:"id,omitempty"`
}

// NotificationConfig overrides the test notification.
type NotificationConfig struct {
	Title             string `yaml:"title,omitempty"`
	Body              string `yaml:"body,omitempty"`
	Sound             string `yaml:"sound,omitempty"`
	Delay             string `yaml:"delay,omitempty"`
	Identifier        string `yaml:"identifier,omitempty"`
	UniqueIdentifiers bool   `yaml:"unique_identifiers,omitempty"`
}

// HostConfig contains desktop host settings.
type HostConfig struct {
	// Authorization is prompt, grant, deny or restricted.
	Authorization string `yaml:"authorization,omitempty"`
	// Keyring stores the authorization decision in the OS keyring. Default true.
	Keyring *bool  `yaml:"keyring,omitempty"`
	Icon    string `yaml:"icon,omitempty"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Verbose bool `yaml:"verbose,omitempty"`
}

// Resolved contains resolved configuration values.
type Resolved struct {
	Root       string
	ModulePath string
	AppName    string
	AppID      string

	Identifier        string
	Title             string
	Body              string
	Sound             string
	Delay             time.Duration
	UniqueIdentifiers bool

	Authorization string
	Keyring       bool
	Icon          string

	Verbose bool
}

// LoadOptional reads pushnotification.yaml from dir if present.
func LoadOptional(dir string) (*Config, error) {
	cfg, err := LoadFile(filepath.Join(dir, FileName))
	if errors.Is(err, os.ErrNotExist) {
		return &Config{}, nil
	}
	return cfg, err
}

// LoadFile reads a configuration file. A missing file is an error
// wrapping os.ErrNotExist.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}

	return &cfg, nil
}

// Resolve loads pushnotification.yaml from dir (if present) and resolves defaults.
func Resolve(dir string) (*Resolved, error) {
	cfg, err := LoadOptional(dir)
	if err != nil {
		return nil, err
	}
	return ResolveConfig(dir, cfg)
}

// ResolveConfig resolves defaults for cfg. App name and ID default from the
// go.mod in dir when there is one, and from the directory name otherwise.
func ResolveConfig(dir string, cfg *Config) (*Resolved, error) {
	modulePath, err := modulePath(dir)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	appName := strings.TrimSpace(cfg.App.Name)
	if appName == "" {
		appName = defaultAppName(modulePath, dir)
	}

	appID := strings.TrimSpace(cfg.App.ID)
	if appID == "" {
		appID = defaultAppID(modulePath, appName)
	}
	if err := validateAppID(appID); err != nil {
		return nil, err
	}

	n := cfg.Notification
	delay := DefaultDelay
	if s := strings.TrimSpace(n.Delay); s != "" {
		delay, err = time.ParseDuration(s)
		if err != nil {
			return nil, fmt.Errorf("notification.delay: %w", err)
		}
		if delay < time.Second {
			return nil, fmt.Errorf("notification.delay must be at least 1s (got %s)", delay)
		}
	}

	authorization := strings.TrimSpace(cfg.Host.Authorization)
	if authorization == "" {
		authorization = "prompt"
	}
	switch authorization {
	case "prompt", "grant", "deny", "restricted":
	default:
		return nil, fmt.Errorf("host.authorization must be prompt, grant, deny or restricted (got %q)", authorization)
	}

	keyring := true
	if cfg.Host.Keyring != nil {
		keyring = *cfg.Host.Keyring
	}

	icon := strings.TrimSpace(cfg.Host.Icon)
	if icon != "" && !filepath.IsAbs(icon) {
		icon = filepath.Join(dir, icon)
	}

	return &Resolved{
		Root:              dir,
		ModulePath:        modulePath,
		AppName:           appName,
		AppID:             appID,
		Identifier:        orDefault(n.Identifier, DefaultIdentifier),
		Title:             orDefault(n.Title, DefaultTitle),
		Body:              orDefault(n.Body, DefaultBody),
		Sound:             orDefault(n.Sound, DefaultSound),
		Delay:             delay,
		UniqueIdentifiers: n.UniqueIdentifiers,
		Authorization:     authorization,
		Keyring:           keyring,
		Icon:              icon,
		Verbose:           cfg.Log.Verbose,
	}, nil
}

// FindProjectRoot walks up from the current directory to find go.mod or
// pushnotification.yaml. It returns the current directory when neither exists.
func FindProjectRoot() (string, error) {
	start, err := os.Getwd()
	if err != nil {
		return "", err
	}

	dir := start
	for {
		for _, name := range []string{FileName, "go.mod"} {
			if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
				return dir, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return start, nil
		}
		dir = parent
	}
}

func orDefault(value, def string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return def
}

func modulePath(dir string) (string, error) {
	data, err := os.ReadFile(filepath.Join(dir, "go.mod"))
	if err != nil {
		return "", fmt.Errorf("failed to read go.mod: %w", err)
	}
	path := modfile.ModulePath(data)
	if path == "" {
		return "", fmt.Errorf("could not determine module path from go.mod")
	}
	return path, nil
}

func defaultAppName(modulePath, dir string) string {
	base := filepath.Base(dir)
	if modulePath != "" {
		modName, _, ok := module.SplitPathVersion(modulePath)
		if ok {
			parts := strings.Split(modName, "/")
			base = parts[len(parts)-1]
		}
	}
	if base == "" || base == "." || base == string(filepath.Separator) {
		return "pushnotification"
	}
	return base
}

func defaultAppID(modulePath, appName string) string {
	parts := strings.Split(modulePath, "/")
	if len(parts) < 2 || !strings.Contains(parts[0], ".") {
		return fmt.Sprintf("com.example.%s", sanitizeSegment(appName))
	}

	host := strings.Split(parts[0], ".")
	for i, j := 0, len(host)-1; i < j; i, j = i+1, j-1 {
		host[i], host[j] = host[j], host[i]
	}

	var pathParts []string
	for _, p := range parts[1:] {
		if p == "" {
			continue
		}
		pathParts = append(pathParts, p)
	}

	segments := append(host, pathParts...)
	for i, segment := range segments {
		segments[i] = sanitizeSegment(segment)
	}

	return strings.Join(segments, ".")
}

// sanitizeSegment lowercases a reverse-DNS segment and drops characters
// desktop entry names and keyring accounts reject.
func sanitizeSegment(segment string) string {
	segment = strings.TrimSpace(segment)
	if segment == "" {
		segment = "app"
	}

	var out []rune
	for _, r := range segment {
		switch {
		case r >= 'a' && r <= 'z':
			out = append(out, r)
		case r >= 'A' && r <= 'Z':
			out = append(out, r+('a'-'A'))
		case r >= '0' && r <= '9':
			out = append(out, r)
		}
	}

	if len(out) == 0 {
		out = []rune("app")
	}

	if out[0] >= '0' && out[0] <= '9' {
		out = append([]rune{'a'}, out...)
	}

	return string(out)
}

func validateAppID(appID string) error {
	if !strings.Contains(appID, ".") {
		return fmt.Errorf("app.id must contain at least one '.' (got %q)", appID)
	}
	for _, segment := range strings.Split(appID, ".") {
		if segment == "" {
			return fmt.Errorf("app.id contains an empty segment (%q)", appID)
		}
		if segment[0] >= '0' && segment[0] <= '9' {
			return fmt.Errorf("app.id segments cannot start with a digit (%q)", appID)
		}
		for _, r := range segment {
			if !(r == '_' || r >= 'a' && r <= 'z' || r >= '0' && r <= '9') {
				return fmt.Errorf("app.id contains invalid character %q in %q", r, appID)
			}
		}
	}
	return nil
}
