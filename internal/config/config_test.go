package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestResolveDefaults(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "go.mod", "module github.com/Acme-Labs/push-demo\n\ngo 1.24\n")

	r, err := Resolve(dir)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	if r.ModulePath != "github.com/Acme-Labs/push-demo" {
		t.Errorf("ModulePath = %q", r.ModulePath)
	}
	if r.AppName != "push-demo" {
		t.Errorf("AppName = %q, want push-demo", r.AppName)
	}
	if r.AppID != "com.github.acmelabs.pushdemo" {
		t.Errorf("AppID = %q, want com.github.acmelabs.pushdemo", r.AppID)
	}
	if r.Identifier != "testNotification" || r.Title != "Hello!" || r.Body != "This is a test notification." {
		t.Errorf("notification defaults = %q %q %q", r.Identifier, r.Title, r.Body)
	}
	if r.Sound != "default" {
		t.Errorf("Sound = %q, want default", r.Sound)
	}
	if r.Delay != 3*time.Second {
		t.Errorf("Delay = %v, want 3s", r.Delay)
	}
	if r.UniqueIdentifiers {
		t.Error("UniqueIdentifiers should default to false")
	}
	if r.Authorization != "prompt" || !r.Keyring {
		t.Errorf("host defaults = %q keyring=%v", r.Authorization, r.Keyring)
	}
}

func TestResolveWithoutGoMod(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "My App")
	if err := os.Mkdir(dir, 0o755); err != nil {
		t.Fatal(err)
	}

	r, err := Resolve(dir)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if r.ModulePath != "" {
		t.Errorf("ModulePath = %q, want empty", r.ModulePath)
	}
	if r.AppName != "My App" {
		t.Errorf("AppName = %q", r.AppName)
	}
	if r.AppID != "com.example.myapp" {
		t.Errorf("AppID = %q, want com.example.myapp", r.AppID)
	}
}

func TestResolveOverrides(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, FileName, `
app:
  name: Demo
  id: com.example.demo
notification:
  title: Hi
  body: Body text
  delay: 10s
  identifier: reminder
  unique_identifiers: true
host:
  authorization: grant
  keyring: false
  icon: assets/bell.png
log:
  verbose: true
`)

	r, err := Resolve(dir)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if r.AppName != "Demo" || r.AppID != "com.example.demo" {
		t.Errorf("app = %q %q", r.AppName, r.AppID)
	}
	if r.Title != "Hi" || r.Body != "Body text" || r.Identifier != "reminder" {
		t.Errorf("notification = %q %q %q", r.Title, r.Body, r.Identifier)
	}
	if r.Sound != "default" {
		t.Errorf("Sound = %q, want default", r.Sound)
	}
	if r.Delay != 10*time.Second {
		t.Errorf("Delay = %v", r.Delay)
	}
	if !r.UniqueIdentifiers {
		t.Error("UniqueIdentifiers = false")
	}
	if r.Authorization != "grant" || r.Keyring {
		t.Errorf("host = %q keyring=%v", r.Authorization, r.Keyring)
	}
	if r.Icon != filepath.Join(dir, "assets", "bell.png") {
		t.Errorf("Icon = %q", r.Icon)
	}
	if !r.Verbose {
		t.Error("Verbose = false")
	}
}

func TestResolveErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"bad yaml", "app: [", "failed to parse"},
		{"bad delay", "notification:\n  delay: soon\n", "notification.delay"},
		{"short delay", "notification:\n  delay: 500ms\n", "at least 1s"},
		{"bad policy", "host:\n  authorization: always\n", "host.authorization"},
		{"bad id", "app:\n  id: nodots\n", "at least one '.'"},
		{"digit segment", "app:\n  id: com.1example\n", "cannot start with a digit"},
		{"uppercase id", "app:\n  id: com.Example\n", "invalid character"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFile(t, dir, FileName, tt.yaml)
			_, err := Resolve(dir)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("Resolve error = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "custom.yaml"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("LoadFile error = %v", err)
	}
}

func TestSanitizeSegment(t *testing.T) {
	tests := map[string]string{
		"Push-Demo": "pushdemo",
		"my_app":    "myapp",
		"9lives":    "a9lives",
		"!!!":       "app",
		"":          "app",
	}
	for in, want := range tests {
		if got := sanitizeSegment(in); got != want {
			t.Errorf("sanitizeSegment(%q) = %q, want %q", in, got, want)
		}
	}
}
