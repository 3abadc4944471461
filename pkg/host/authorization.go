package host

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"sync"

	"github.com/zalando/go-keyring"

	"github.com/go-drift/pushnotification/pkg/platform"
)

// Authorization is the host's stored notification decision for one app.
type Authorization struct {
	Status platform.PermissionResult `json:"status"`
	Alert  bool                      `json:"alert"`
	Sound  bool                      `json:"sound"`
	Badge  bool                      `json:"badge"`
}

// Granted reports whether deliveries may be shown.
func (a Authorization) Granted() bool {
	return a.Status == platform.PermissionGranted || a.Status == platform.PermissionProvisional
}

// AuthorizationStore persists authorization decisions per app ID.
type AuthorizationStore interface {
	Load(appID string) (Authorization, bool, error)
	Save(appID string, auth Authorization) error
	Delete(appID string) error
}

// KeyringService is the keyring service name decisions are stored under.
const KeyringService = "pushnotification.authorization"

// KeyringStore stores decisions in the OS keyring so they survive restarts,
// the way a mobile OS remembers the answer to its permission prompt.
type KeyringStore struct {
	Service string
}

// NewKeyringStore returns a store using KeyringService.
func NewKeyringStore() *KeyringStore {
	return &KeyringStore{Service: KeyringService}
}

func (s *KeyringStore) service() string {
	if s.Service == "" {
		return KeyringService
	}
	return s.Service
}

// Load returns the stored decision, or false when none was recorded.
func (s *KeyringStore) Load(appID string) (Authorization, bool, error) {
	secret, err := keyring.Get(s.service(), appID)
	if stderrors.Is(err, keyring.ErrNotFound) {
		return Authorization{}, false, nil
	}
	if err != nil {
		return Authorization{}, false, fmt.Errorf("read keyring: %w", err)
	}
	var auth Authorization
	if err := json.Unmarshal([]byte(secret), &auth); err != nil {
		return Authorization{}, false, fmt.Errorf("decode stored authorization: %w", err)
	}
	return auth, true, nil
}

// Save records a decision.
func (s *KeyringStore) Save(appID string, auth Authorization) error {
	data, err := json.Marshal(auth)
	if err != nil {
		return err
	}
	if err := keyring.Set(s.service(), appID, string(data)); err != nil {
		return fmt.Errorf("write keyring: %w", err)
	}
	return nil
}

// Delete forgets a decision. Deleting a missing entry is not an error.
func (s *KeyringStore) Delete(appID string) error {
	err := keyring.Delete(s.service(), appID)
	if err != nil && !stderrors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("delete keyring entry: %w", err)
	}
	return nil
}

// MemoryStore keeps decisions for the lifetime of the process.
type MemoryStore struct {
	mu   sync.Mutex
	auth map[string]Authorization
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{auth: make(map[string]Authorization)}
}

func (s *MemoryStore) Load(appID string) (Authorization, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	auth, ok := s.auth[appID]
	return auth, ok, nil
}

func (s *MemoryStore) Save(appID string, auth Authorization) error {
	s.mu.Lock()
	s.auth[appID] = auth
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(appID string) error {
	s.mu.Lock()
	delete(s.auth, appID)
	s.mu.Unlock()
	return nil
}

// Policy decides how the host answers an authorization request it has no
// stored decision for.
type Policy string

const (
	// PolicyPrompt asks the user through the Prompter.
	PolicyPrompt Policy = "prompt"
	// PolicyGrant grants without asking.
	PolicyGrant Policy = "grant"
	// PolicyDeny denies without asking.
	PolicyDeny Policy = "deny"
	// PolicyRestricted reports the permission as restricted by system policy.
	PolicyRestricted Policy = "restricted"
)

// ParsePolicy validates a policy name. The empty string means PolicyPrompt.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case "":
		return PolicyPrompt, nil
	case PolicyPrompt, PolicyGrant, PolicyDeny, PolicyRestricted:
		return Policy(s), nil
	default:
		return "", fmt.Errorf("unknown authorization policy %q (use prompt, grant, deny or restricted)", s)
	}
}

// PromptRequest describes what the app asked for.
type PromptRequest struct {
	AppName string
	Alert   bool
	Sound   bool
	Badge   bool
}

// Prompter asks the user whether the app may send notifications.
type Prompter interface {
	Prompt(ctx context.Context, req PromptRequest) (bool, error)
}

// PrompterFunc adapts a function to Prompter.
type PrompterFunc func(ctx context.Context, req PromptRequest) (bool, error)

func (f PrompterFunc) Prompt(ctx context.Context, req PromptRequest) (bool, error) {
	return f(ctx, req)
}

// StaticPrompter answers every prompt the same way.
type StaticPrompter bool

func (p StaticPrompter) Prompt(context.Context, PromptRequest) (bool, error) {
	return bool(p), nil
}
