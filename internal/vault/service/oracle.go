// Package service provides the cryptographic core of the vault: the key
// oracle boundary plus the sealing and resolution flows built on top of it.
package service

import (
	"context"
)

// Encryption context keys and values. The context is bound into every
// ciphertext: a ciphertext encrypted under one context cannot be decrypted
// under another, which is what separates the owner, per-user and per-group
// copies of the same password.
const (
	ContextKeyPurpose = "purpose"
	ContextKeyUserID  = "userId"
	ContextKeyGroupID = "groupId"

	// ContextPurpose marks all vault ciphertexts, keeping them unusable for
	// any other application sharing the same key.
	ContextPurpose = "password-manager"
)

// PrimaryContext returns the encryption context for the owner's copy.
func PrimaryContext() map[string]string {
	return map[string]string{ContextKeyPurpose: ContextPurpose}
}

// UserContext returns the encryption context for a per-user share.
func UserContext(userID string) map[string]string {
	return map[string]string{
		ContextKeyPurpose: ContextPurpose,
		ContextKeyUserID:  userID,
	}
}

// GroupContext returns the encryption context for a per-group share.
func GroupContext(groupID string) map[string]string {
	return map[string]string{
		ContextKeyPurpose: ContextPurpose,
		ContextKeyGroupID: groupID,
	}
}

// KeyOracle is the boundary to the external key service. Key material never
// crosses it: callers hand over plaintext or ciphertext plus an encryption
// context and get the transformed bytes back.
//
// Implementations must enforce context binding: Decrypt fails unless the
// encryption context exactly matches the one used at Encrypt time.
// Ciphertexts are opaque base64 strings, storable as-is inside envelopes.
type KeyOracle interface {
	// Encrypt encrypts plaintext bound to the given encryption context.
	Encrypt(ctx context.Context, plaintext []byte, encryptionContext map[string]string) (string, error)

	// Decrypt decrypts a ciphertext under the given encryption context.
	Decrypt(ctx context.Context, ciphertext string, encryptionContext map[string]string) ([]byte, error)
}
