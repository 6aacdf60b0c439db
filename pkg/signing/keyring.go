package signing

import (
	"crypto/ed25519"
	"crypto/rand"
	"fmt"
	"sync"
)

// Keyring holds the Ed25519 identity of every registered component.
// Keys are ephemeral: generated at boot, never persisted. Signing exists to
// authenticate in-process senders to each other, not to survive restarts.
type Keyring struct {
	mu   sync.RWMutex
	keys map[string]ed25519.PrivateKey
}

// NewKeyring returns an empty keyring.
func NewKeyring() *Keyring {
	return &Keyring{keys: make(map[string]ed25519.PrivateKey)}
}

// Generate mints a fresh keypair for a component. Re-generating an existing
// identity is an error: a second keypair for the same name means two callers
// both believe they are that component.
func (k *Keyring) Generate(component string) error {
	if component == "" {
		return fmt.Errorf("keyring: empty component name")
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	if _, exists := k.keys[component]; exists {
		return fmt.Errorf("keyring: component %q already has a key", component)
	}

	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return fmt.Errorf("keyring: generate key for %q: %w", component, err)
	}
	k.keys[component] = priv
	return nil
}

// PublicKey returns the verification key for a component.
func (k *Keyring) PublicKey(component string) (ed25519.PublicKey, bool) {
	k.mu.RLock()
	defer k.mu.RUnlock()

	priv, ok := k.keys[component]
	if !ok {
		return nil, false
	}
	return priv.Public().(ed25519.PublicKey), true
}

// Components returns the registered component names.
func (k *Keyring) Components() []string {
	k.mu.RLock()
	defer k.mu.RUnlock()

	out := make([]string, 0, len(k.keys))
	for name := range k.keys {
		out = append(out, name)
	}
	return out
}

func (k *Keyring) privateKey(component string) (ed25519.PrivateKey, bool) {
	k.mu.RLock()
	defer k.mu.RUnlock()

	priv, ok := k.keys[component]
	return priv, ok
}
