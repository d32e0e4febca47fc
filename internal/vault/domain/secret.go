package domain

import (
	"time"

	"github.com/google/uuid"
)

// MaxNotesLength is the maximum allowed length of a secret's notes field.
const MaxNotesLength = 500

// Secret represents one stored password entry.
//
// Password material exists in two forms: Envelope holds the persisted
// multi-ciphertext encryption, Plaintext holds the decrypted value and is only
// populated transiently during seal/reveal flows. Plaintext is never persisted
// and never serialized.
type Secret struct {
	ID           uuid.UUID
	Owner        string
	Site         string
	Subdirectory string
	Username     string
	Envelope     *Envelope
	Notes        string
	Tags         []string
	Favorite     bool
	Version      uint
	LastModified time.Time

	// Plaintext is the decrypted password. Memory only.
	Plaintext []byte `json:"-"`
}

// SharePolicy describes the principals a secret is shared with. Used as input
// when sealing or re-sealing an envelope.
type SharePolicy struct {
	// Users lists directly shared user ids.
	Users []string
	// Groups lists shared group ids, in share order.
	Groups []string
	// Roles maps group ids to their authorization level. Groups absent from
	// the map default to viewer.
	Roles map[string]Role
}

// NewSharePolicy returns an empty share policy.
func NewSharePolicy() SharePolicy {
	return SharePolicy{Users: []string{}, Groups: []string{}, Roles: map[string]Role{}}
}

// Normalize deduplicates principals preserving first occurrence order, drops
// invalid role entries and role entries for groups not in the policy.
func (p SharePolicy) Normalize() SharePolicy {
	out := NewSharePolicy()

	seenUsers := make(map[string]struct{}, len(p.Users))
	for _, id := range p.Users {
		if id == "" {
			continue
		}
		if _, ok := seenUsers[id]; ok {
			continue
		}
		seenUsers[id] = struct{}{}
		out.Users = append(out.Users, id)
	}

	seenGroups := make(map[string]struct{}, len(p.Groups))
	for _, id := range p.Groups {
		if id == "" {
			continue
		}
		if _, ok := seenGroups[id]; ok {
			continue
		}
		seenGroups[id] = struct{}{}
		out.Groups = append(out.Groups, id)
	}

	for groupID, role := range p.Roles {
		if _, ok := seenGroups[groupID]; !ok {
			continue
		}
		if !role.Valid() {
			continue
		}
		out.Roles[groupID] = role
	}

	return out
}

// PolicyOf derives the share policy currently encoded in the secret's envelope.
func PolicyOf(envelope *Envelope) SharePolicy {
	policy := NewSharePolicy()
	if envelope == nil {
		return policy
	}
	policy.Users = envelope.UserIDs()
	policy.Groups = envelope.GroupIDs()
	for groupID, role := range envelope.Roles {
		policy.Roles[groupID] = role
	}
	return policy
}

// ValidateNotes returns ErrNotesTooLong when notes exceed the allowed length.
func ValidateNotes(notes string) error {
	if len(notes) > MaxNotesLength {
		return ErrNotesTooLong
	}
	return nil
}
