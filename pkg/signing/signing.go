// Package signing authenticates in-process messages between components.
// Every component gets an ephemeral Ed25519 identity at boot; messages carry
// a signed envelope binding the canonical message body to that identity,
// with a single-use nonce and a bounded timestamp for replay protection.
package signing

import (
	"bytes"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	cache "github.com/patrickmn/go-cache"
)

// NonceBytes is the size of the random nonce attached to each envelope.
const NonceBytes = 32

// Envelope is the signature attachment carried in message metadata.
// Signature is base64, nonce is hex, timestamp serializes as ISO-8601.
type Envelope struct {
	Signer    string    `json:"signer"`
	Timestamp time.Time `json:"timestamp"`
	Nonce     string    `json:"nonce"`
	Signature string    `json:"signature"`
}

// Verification failure reasons. Callers log these; the router's error
// surface to message senders stays generic.
var (
	ErrUnknownSigner = errors.New("unknown signer")
	ErrStale         = errors.New("timestamp outside replay window")
	ErrBadSignature  = errors.New("signature mismatch")
	ErrReplay        = errors.New("nonce already used")
)

// Service signs and verifies message bodies against a keyring.
type Service struct {
	keyring *Keyring
	window  time.Duration
	nonces  *cache.Cache

	// now is a test seam; production uses time.Now.
	now func() time.Time
}

// NewService builds a signing service. window bounds both acceptable
// timestamp skew and nonce lifetime in the replay cache.
func NewService(keyring *Keyring, window time.Duration) *Service {
	return &Service{
		keyring: keyring,
		window:  window,
		nonces:  cache.New(window, 2*window),
		now:     time.Now,
	}
}

// Sign canonicalizes body (a JSON object, typically a marshaled message),
// strips its top-level metadata member, and returns an envelope over the
// result. Metadata is excluded because the envelope itself travels there.
func (s *Service) Sign(signer string, body []byte) (*Envelope, error) {
	priv, ok := s.keyring.privateKey(signer)
	if !ok {
		return nil, fmt.Errorf("sign: %w: %q", ErrUnknownSigner, signer)
	}

	signable, err := SignableBytes(body)
	if err != nil {
		return nil, fmt.Errorf("sign: %w", err)
	}

	nonce, err := newNonce()
	if err != nil {
		return nil, fmt.Errorf("sign: %w", err)
	}

	ts := s.now().UTC()
	sig := ed25519.Sign(priv, signingInput(signable, signer, nonce, ts))

	return &Envelope{
		Signer:    signer,
		Timestamp: ts,
		Nonce:     nonce,
		Signature: base64.StdEncoding.EncodeToString(sig),
	}, nil
}

// Verify checks an envelope against the message body it claims to cover.
// The nonce is consumed only after the signature and timestamp pass, so
// garbage traffic cannot burn nonces.
func (s *Service) Verify(env *Envelope, body []byte) error {
	pub, ok := s.keyring.PublicKey(env.Signer)
	if !ok {
		return fmt.Errorf("verify: %w: %q", ErrUnknownSigner, env.Signer)
	}

	if skew := s.now().Sub(env.Timestamp); skew > s.window || skew < -s.window {
		return fmt.Errorf("verify: %w (skew %s)", ErrStale, skew.Round(time.Millisecond))
	}

	sig, err := base64.StdEncoding.DecodeString(env.Signature)
	if err != nil {
		return fmt.Errorf("verify: %w: %v", ErrBadSignature, err)
	}

	signable, err := SignableBytes(body)
	if err != nil {
		return fmt.Errorf("verify: %w", err)
	}

	if !ed25519.Verify(pub, signingInput(signable, env.Signer, env.Nonce, env.Timestamp), sig) {
		return fmt.Errorf("verify: %w", ErrBadSignature)
	}

	if err := s.nonces.Add(env.Signer+":"+env.Nonce, struct{}{}, s.window); err != nil {
		return fmt.Errorf("verify: %w", ErrReplay)
	}
	return nil
}

// SignableBytes returns the canonical form of a JSON object with its
// top-level "metadata" member removed.
func SignableBytes(body []byte) ([]byte, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var obj map[string]any
	if err := dec.Decode(&obj); err != nil {
		return nil, fmt.Errorf("body is not a JSON object: %w", err)
	}
	delete(obj, "metadata")

	return CanonicalJSON(obj)
}

// signingInput binds the canonical body to the envelope fields so a captured
// signature cannot be replayed under a fresh nonce or timestamp.
func signingInput(canonical []byte, signer, nonce string, ts time.Time) []byte {
	var buf bytes.Buffer
	buf.Grow(len(canonical) + len(signer) + len(nonce) + 40)
	buf.Write(canonical)
	buf.WriteByte('\n')
	buf.WriteString(signer)
	buf.WriteByte('\n')
	buf.WriteString(nonce)
	buf.WriteByte('\n')
	buf.WriteString(ts.UTC().Format(time.RFC3339Nano))
	return buf.Bytes()
}

func newNonce() (string, error) {
	b := make([]byte, NonceBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("nonce: %w", err)
	}
	return hex.EncodeToString(b), nil
}
