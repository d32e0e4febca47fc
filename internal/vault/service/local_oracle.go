package service

import (
	"context"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

// LocalOracle implements KeyOracle with ChaCha20-Poly1305 and a single local
// key. Intended for development and tests; production deployments use a
// managed key service.
//
// Context binding is enforced by feeding the canonicalized encryption context
// to the AEAD as additional authenticated data. A decrypt under a different
// context fails authentication, matching managed-KMS semantics.
type LocalOracle struct {
	aead cipher.AEAD
}

// NewLocalOracle creates a local oracle. The key must be exactly 32 bytes.
func NewLocalOracle(key []byte) (*LocalOracle, error) {
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create ChaCha20-Poly1305 cipher: %w", err)
	}
	return &LocalOracle{aead: aead}, nil
}

// Encrypt encrypts plaintext with the canonical context as AAD. The returned
// ciphertext is base64(nonce || sealed).
func (o *LocalOracle) Encrypt(
	_ context.Context, plaintext []byte, encryptionContext map[string]string,
) (string, error) {
	aad, err := canonicalContext(encryptionContext)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, o.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := o.aead.Seal(nonce, nonce, plaintext, aad)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt decrypts a ciphertext produced by Encrypt. Fails if the encryption
// context differs from the one the ciphertext was bound to.
func (o *LocalOracle) Decrypt(
	_ context.Context, ciphertext string, encryptionContext map[string]string,
) ([]byte, error) {
	aad, err := canonicalContext(encryptionContext)
	if err != nil {
		return nil, err
	}

	sealed, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return nil, fmt.Errorf("failed to decode ciphertext: %w", err)
	}
	if len(sealed) < o.aead.NonceSize() {
		return nil, fmt.Errorf("ciphertext shorter than nonce")
	}

	nonce, data := sealed[:o.aead.NonceSize()], sealed[o.aead.NonceSize():]
	plaintext, err := o.aead.Open(nil, nonce, data, aad)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt: %w", err)
	}
	return plaintext, nil
}

// canonicalContext serializes an encryption context deterministically so that
// equal contexts always produce equal AAD bytes. json.Marshal sorts map keys.
func canonicalContext(encryptionContext map[string]string) ([]byte, error) {
	if encryptionContext == nil {
		encryptionContext = map[string]string{}
	}
	aad, err := json.Marshal(encryptionContext)
	if err != nil {
		return nil, fmt.Errorf("failed to canonicalize encryption context: %w", err)
	}
	return aad, nil
}
