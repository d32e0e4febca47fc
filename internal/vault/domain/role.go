package domain

// AccessLevel is the effective authorization of one caller on one secret.
type AccessLevel int

// Access levels, weakest to strongest.
const (
	AccessNone AccessLevel = iota
	AccessViewer
	AccessEditor
	AccessOwner
)

// String implements fmt.Stringer.
func (a AccessLevel) String() string {
	switch a {
	case AccessOwner:
		return "owner"
	case AccessEditor:
		return "editor"
	case AccessViewer:
		return "viewer"
	default:
		return "none"
	}
}

// CanView reports whether the level permits reading the secret.
func (a AccessLevel) CanView() bool { return a >= AccessViewer }

// AccessOf computes the caller's effective access level on a secret.
//
// Ownership wins outright. Otherwise group membership is consulted: when
// scopeGroup names a shared group the caller belongs to, that group's role
// applies; otherwise the first shared group (in envelope share order) the
// caller belongs to applies. Directly shared users are always viewers.
func AccessOf(secret *Secret, subject string, groups []string, scopeGroup string) AccessLevel {
	if secret.Owner == subject {
		return AccessOwner
	}
	if secret.Envelope == nil {
		return AccessNone
	}

	if scopeGroup != "" && memberOf(groups, scopeGroup) {
		if _, ok := secret.Envelope.FindGroupShare(scopeGroup); ok {
			return roleLevel(secret.Envelope.RoleForGroup(scopeGroup))
		}
	}

	for _, share := range secret.Envelope.SharedWithGroups {
		if memberOf(groups, share.GroupID) {
			return roleLevel(secret.Envelope.RoleForGroup(share.GroupID))
		}
	}

	if _, ok := secret.Envelope.FindUserShare(subject); ok {
		return AccessViewer
	}

	return AccessNone
}

// CanEdit reports whether the caller may modify the secret. Owners always may;
// non-owners need an editor role through at least one shared group they belong
// to, regardless of which group the request was scoped to.
func CanEdit(secret *Secret, subject string, groups []string) bool {
	if secret.Owner == subject {
		return true
	}
	if secret.Envelope == nil {
		return false
	}
	for _, share := range secret.Envelope.SharedWithGroups {
		if memberOf(groups, share.GroupID) &&
			secret.Envelope.RoleForGroup(share.GroupID) == RoleEditor {
			return true
		}
	}
	return false
}

// CanDelete reports whether the caller may delete the secret. Owner only.
func CanDelete(secret *Secret, subject string) bool {
	return secret.Owner == subject
}

// CanFavorite reports whether the caller may toggle the favorite flag. Owner
// only: the flag lives on the owner's record, not per viewer.
func CanFavorite(secret *Secret, subject string) bool {
	return secret.Owner == subject
}

func roleLevel(role Role) AccessLevel {
	if role == RoleEditor {
		return AccessEditor
	}
	return AccessViewer
}

func memberOf(groups []string, group string) bool {
	for _, g := range groups {
		if g == group {
			return true
		}
	}
	return false
}
