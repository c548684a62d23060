package escrow

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/nacl/secretbox"

	"github.com/safient/safient-escrow/internal/adapter"
	"github.com/safient/safient-escrow/internal/logger"
)

const (
	SEALED_SECRET_PREFIX = "secretbox:"
	SECRET_KEY_SIZE      = 32
	SECRET_NONCE_SIZE    = 24
)

var (
	ErrSecretKeyRequired = errors.New("escrow secret key is required")
	ErrSecretKeyInvalid  = errors.New("escrow secret key must be 32 bytes hex encoded")
	ErrSealedSecret      = errors.New("cannot open escrow secret")
)

// SecretBox seals escrow secrets before they are stored
//
//go:generate mockgen -source=secret.go -destination=../mocks/secret_box.go -package=mocks -mock_names=SecretBox=MockSecretBox
type SecretBox interface {
	Seal(secret string) (string, error)
	Open(sealed string) (string, error)
}

type naclSecretBox struct {
	key            *[SECRET_KEY_SIZE]byte
	allowPlaintext bool
	base64         adapter.Base64
	random         io.Reader
}

// NewSecretBox creates a SecretBox using XSalsa20-Poly1305 with a hex encoded 32-byte key.
// With allowPlaintext and no key secrets are stored as given.
func NewSecretBox(keyHex string, allowPlaintext bool, b64 adapter.Base64) (SecretBox, error) {
	box := &naclSecretBox{
		allowPlaintext: allowPlaintext,
		base64:         b64,
		random:         rand.Reader,
	}

	keyHex = strings.TrimSpace(keyHex)
	if keyHex == "" {
		if !allowPlaintext {
			return nil, ErrSecretKeyRequired
		}
		logger.Warn("Escrow secrets are stored in plaintext, do not use this outside development")
		return box, nil
	}

	raw, err := hex.DecodeString(keyHex)
	if err != nil || len(raw) != SECRET_KEY_SIZE {
		return nil, ErrSecretKeyInvalid
	}

	box.key = new([SECRET_KEY_SIZE]byte)
	copy(box.key[:], raw)
	return box, nil
}

func (b *naclSecretBox) Seal(secret string) (string, error) {
	if b.key == nil {
		return secret, nil
	}

	var nonce [SECRET_NONCE_SIZE]byte
	if _, err := io.ReadFull(b.random, nonce[:]); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := secretbox.Seal(nonce[:], []byte(secret), &nonce, b.key)
	return SEALED_SECRET_PREFIX + b.base64.Encode(sealed), nil
}

func (b *naclSecretBox) Open(sealed string) (string, error) {
	encoded, ok := strings.CutPrefix(sealed, SEALED_SECRET_PREFIX)
	if !ok {
		if b.allowPlaintext {
			return sealed, nil
		}
		return "", fmt.Errorf("%w: value is not sealed", ErrSealedSecret)
	}
	if b.key == nil {
		return "", fmt.Errorf("%w: no key configured", ErrSealedSecret)
	}

	raw, err := b.base64.Decode(encoded)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSealedSecret, err)
	}
	if len(raw) < SECRET_NONCE_SIZE+secretbox.Overhead {
		return "", fmt.Errorf("%w: value too short", ErrSealedSecret)
	}

	var nonce [SECRET_NONCE_SIZE]byte
	copy(nonce[:], raw[:SECRET_NONCE_SIZE])
	opened, ok := secretbox.Open(nil, raw[SECRET_NONCE_SIZE:], &nonce, b.key)
	if !ok {
		return "", fmt.Errorf("%w: authentication failed", ErrSealedSecret)
	}
	return string(opened), nil
}
