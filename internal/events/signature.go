package events

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/safient/safient-escrow/internal/adapter"
)

const SIGNATURE_PREFIX = "sha256="

// Signer serializes events canonically and signs them with HMAC-SHA256
type Signer struct {
	secret []byte
	json   adapter.JSON
	jcs    adapter.JCS
}

// NewSigner creates a signer. With an empty secret events are serialized but not signed.
func NewSigner(secret string, json adapter.JSON, jcs adapter.JCS) *Signer {
	return &Signer{secret: []byte(secret), json: json, jcs: jcs}
}

// Enabled reports whether a signing secret is configured
func (s *Signer) Enabled() bool {
	return len(s.secret) > 0
}

// Sign returns the RFC 8785 canonical payload and its signature.
// The signed message is "{timestamp}.{event_id}.{payload}"; the signature is "sha256=<hex>".
func (s *Signer) Sign(event TransferEvent, timestamp int64) (payload []byte, signature string, err error) {
	raw, err := s.json.Marshal(event)
	if err != nil {
		return nil, "", fmt.Errorf("failed to marshal event: %w", err)
	}

	payload, err = s.jcs.Transform(raw)
	if err != nil {
		return nil, "", fmt.Errorf("failed to canonicalize event: %w", err)
	}

	if !s.Enabled() {
		return payload, "", nil
	}

	return payload, computeSignature(s.secret, timestamp, event.EventID, payload), nil
}

// Verify checks a signature produced by Sign
func Verify(secret string, timestamp int64, eventID string, payload []byte, signature string) bool {
	expected := computeSignature([]byte(secret), timestamp, eventID, payload)
	return hmac.Equal([]byte(expected), []byte(signature))
}

func computeSignature(secret []byte, timestamp int64, eventID string, payload []byte) string {
	h := hmac.New(sha256.New, secret)
	fmt.Fprintf(h, "%d.%s.", timestamp, eventID)
	h.Write(payload)
	return SIGNATURE_PREFIX + hex.EncodeToString(h.Sum(nil))
}
