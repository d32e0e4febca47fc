package domain

import (
	"bytes"
	"encoding/json"
)

// Role is the per-group authorization level for a shared secret.
type Role string

// Supported roles. Absent role entries default to RoleViewer.
const (
	RoleViewer Role = "viewer"
	RoleEditor Role = "editor"
)

// Valid reports whether the role is one of the supported values.
func (r Role) Valid() bool {
	return r == RoleViewer || r == RoleEditor
}

// UserShare is one per-user ciphertext entry of an envelope.
type UserShare struct {
	UserID     string `json:"userId"`
	Ciphertext string `json:"encryptedPassword"`
}

// GroupShare is one per-group ciphertext entry of an envelope.
type GroupShare struct {
	GroupID    string `json:"groupId"`
	Ciphertext string `json:"encryptedPassword"`
}

// Envelope is the multi-ciphertext encrypted representation of one password.
// Every ciphertext in an envelope decrypts, under its bound encryption context,
// to the same plaintext. That invariant is established when the envelope is
// sealed and cannot be verified afterwards without decrypting.
//
// The order of SharedWithGroups is significant: resolution picks the first
// matching group entry in stored order, so an unordered set would make
// resolution non-deterministic for callers in multiple shared groups.
type Envelope struct {
	// Primary is the owner's ciphertext, bound to the purpose-only context.
	Primary string
	// SharedWithUsers holds one ciphertext per directly shared user.
	SharedWithUsers []UserShare
	// SharedWithGroups holds one ciphertext per shared group, in share order.
	SharedWithGroups []GroupShare
	// Roles maps group ids to their authorization level.
	Roles map[string]Role
}

// envelopeWire is the JSON wire/storage shape of an envelope.
type envelopeWire struct {
	EncryptedPassword string          `json:"encryptedPassword"`
	SharedWith        *sharedWithWire `json:"sharedWith,omitempty"`
}

type sharedWithWire struct {
	Users  []UserShare     `json:"users"`
	Groups []GroupShare    `json:"groups"`
	Roles  map[string]Role `json:"roles"`
}

// NewEnvelope returns an envelope holding only the primary ciphertext.
func NewEnvelope(primary string) *Envelope {
	return &Envelope{
		Primary:          primary,
		SharedWithUsers:  []UserShare{},
		SharedWithGroups: []GroupShare{},
		Roles:            map[string]Role{},
	}
}

// ParseEnvelope decodes a wire/storage representation into an Envelope.
//
// Legacy shapes are tolerated: the payload may be a structured JSON object, a
// JSON-encoded string holding that object, or a bare ciphertext string from
// before sharing existed. Missing sharedWith collections normalize to empty,
// never nil. Returns ErrInvalidEnvelope if, after normalization, the primary
// ciphertext is missing.
func ParseEnvelope(raw []byte) (*Envelope, error) {
	data := bytes.TrimSpace(raw)
	if len(data) == 0 {
		return nil, ErrInvalidEnvelope
	}

	switch data[0] {
	case '{':
		return parseEnvelopeObject(data)
	case '"':
		// JSON-encoded string: unwrap and re-parse, covering both a quoted
		// object and a quoted bare ciphertext.
		var inner string
		if err := json.Unmarshal(data, &inner); err != nil {
			return nil, ErrInvalidEnvelope
		}
		return ParseEnvelope([]byte(inner))
	default:
		// Bare ciphertext from the pre-sharing format.
		return NewEnvelope(string(data)), nil
	}
}

// parseEnvelopeObject decodes the structured wire shape.
func parseEnvelopeObject(data []byte) (*Envelope, error) {
	var wire envelopeWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, ErrInvalidEnvelope
	}
	if wire.EncryptedPassword == "" {
		return nil, ErrInvalidEnvelope
	}

	envelope := NewEnvelope(wire.EncryptedPassword)
	if wire.SharedWith != nil {
		if wire.SharedWith.Users != nil {
			envelope.SharedWithUsers = wire.SharedWith.Users
		}
		if wire.SharedWith.Groups != nil {
			envelope.SharedWithGroups = wire.SharedWith.Groups
		}
		if wire.SharedWith.Roles != nil {
			envelope.Roles = wire.SharedWith.Roles
		}
	}
	return envelope, nil
}

// Encode serializes the envelope into its canonical wire form.
func (e *Envelope) Encode() ([]byte, error) {
	if e.Primary == "" {
		return nil, ErrInvalidEnvelope
	}

	wire := envelopeWire{
		EncryptedPassword: e.Primary,
		SharedWith: &sharedWithWire{
			Users:  e.SharedWithUsers,
			Groups: e.SharedWithGroups,
			Roles:  e.Roles,
		},
	}
	if wire.SharedWith.Users == nil {
		wire.SharedWith.Users = []UserShare{}
	}
	if wire.SharedWith.Groups == nil {
		wire.SharedWith.Groups = []GroupShare{}
	}
	if wire.SharedWith.Roles == nil {
		wire.SharedWith.Roles = map[string]Role{}
	}

	return json.Marshal(wire)
}

// FindUserShare returns the ciphertext entry for the given user id.
func (e *Envelope) FindUserShare(userID string) (UserShare, bool) {
	for _, share := range e.SharedWithUsers {
		if share.UserID == userID {
			return share, true
		}
	}
	return UserShare{}, false
}

// FindGroupShare returns the ciphertext entry for the given group id.
func (e *Envelope) FindGroupShare(groupID string) (GroupShare, bool) {
	for _, share := range e.SharedWithGroups {
		if share.GroupID == groupID {
			return share, true
		}
	}
	return GroupShare{}, false
}

// RoleForGroup returns the group's authorization level, defaulting to viewer
// for shared groups without an explicit role entry.
func (e *Envelope) RoleForGroup(groupID string) Role {
	if role, ok := e.Roles[groupID]; ok && role.Valid() {
		return role
	}
	return RoleViewer
}

// UserIDs returns the ids of all directly shared users, in share order.
func (e *Envelope) UserIDs() []string {
	ids := make([]string, 0, len(e.SharedWithUsers))
	for _, share := range e.SharedWithUsers {
		ids = append(ids, share.UserID)
	}
	return ids
}

// GroupIDs returns the ids of all shared groups, in share order.
func (e *Envelope) GroupIDs() []string {
	ids := make([]string, 0, len(e.SharedWithGroups))
	for _, share := range e.SharedWithGroups {
		ids = append(ids, share.GroupID)
	}
	return ids
}
