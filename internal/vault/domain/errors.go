// Package domain defines core domain models and errors for vault secrets.
package domain

import (
	"github.com/runavault/runavault/internal/errors"
)

// Secret-specific error definitions.
var (
	// ErrSecretNotFound indicates the secret does not exist or is not visible to the caller.
	ErrSecretNotFound = errors.Wrap(errors.ErrNotFound, "secret not found")

	// ErrSecretAlreadyExists indicates a secret with the same owner, site and
	// subdirectory already exists.
	ErrSecretAlreadyExists = errors.Wrap(errors.ErrConflict, "secret already exists")

	// ErrInvalidEnvelope indicates a stored encrypted payload is not well-formed.
	ErrInvalidEnvelope = errors.Wrap(errors.ErrInvalidInput, "invalid envelope")

	// ErrNoAccessibleCiphertext indicates the envelope has no usable entry for the
	// caller. Raised before any key oracle call is made.
	ErrNoAccessibleCiphertext = errors.Wrap(errors.ErrForbidden, "no accessible ciphertext")

	// ErrDecryptionFailed indicates the key oracle rejected the ciphertext/context
	// pair (wrong key, tampered data, revoked permission). Never retried: access
	// may have been legitimately revoked.
	ErrDecryptionFailed = errors.Wrap(errors.ErrForbidden, "decryption failed")

	// ErrPartialEncryption indicates one or more per-principal encrypt calls failed
	// while sealing an envelope. The whole operation fails; no partially-sealed
	// envelope is ever persisted.
	ErrPartialEncryption = errors.New("partial encryption failure")

	// ErrUnauthorizedAction indicates the caller's role does not permit the
	// requested mutation. Raised before any oracle or repository call.
	ErrUnauthorizedAction = errors.Wrap(errors.ErrForbidden, "action not permitted")

	// ErrNotesTooLong indicates the notes field exceeds MaxNotesLength.
	ErrNotesTooLong = errors.Wrap(errors.ErrInvalidInput, "notes exceed maximum length")
)
