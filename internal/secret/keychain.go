package secret

import (
	"fmt"
	"os/exec"
	"strings"
)

// Entries are keyed by connection id under one service name, so
// `security find-generic-password -s noteboard-connections` finds them all.
const keychainService = "noteboard-connections"

// KeychainStore keeps secrets in the macOS Keychain through the `security`
// command line tool. No cgo and no extra dependency; the binary only runs
// where the Wails shell does anyway.
type KeychainStore struct{}

func NewKeychainStore() *KeychainStore {
	return &KeychainStore{}
}

// Set writes the secret, replacing any existing entry for the key.
func (s *KeychainStore) Set(key string, value []byte) error {
	// add-generic-password -U prompts instead of updating on some macOS
	// versions; deleting first keeps the overwrite path uniform.
	s.Delete(key)

	out, err := exec.Command("security", "add-generic-password",
		"-a", key, "-s", keychainService, "-w", string(value), "-U",
	).CombinedOutput()
	if err != nil {
		return fmt.Errorf("keychain set %s: %s: %w", key, strings.TrimSpace(string(out)), err)
	}
	return nil
}

// Get reads the secret for key. A missing entry is (nil, nil), not an
// error: callers treat an absent password as "connect without one". Other
// failures (locked keychain, denied prompt) degrade to the same answer.
func (s *KeychainStore) Get(key string) ([]byte, error) {
	out, err := exec.Command("security", "find-generic-password",
		"-a", key, "-s", keychainService, "-w",
	).Output()
	if err != nil {
		return nil, nil
	}
	return []byte(strings.TrimSpace(string(out))), nil
}

// Delete removes the entry for key; removing an absent entry succeeds.
func (s *KeychainStore) Delete(key string) error {
	exec.Command("security", "delete-generic-password",
		"-a", key, "-s", keychainService,
	).Run()
	return nil
}
