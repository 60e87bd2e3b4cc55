package entity

// Privacy selects which browsing context a window is bound to.
// Normal windows share the persistent context; Private windows share the
// ephemeral one. State from one never leaks into the other.
type Privacy int

const (
	PrivacyNormal Privacy = iota
	PrivacyPrivate
)

func (p Privacy) String() string {
	if p == PrivacyPrivate {
		return "private"
	}
	return "normal"
}

// IsPrivate reports whether the privacy class excludes the window from
// crash-recovery persistence.
func (p Privacy) IsPrivate() bool {
	return p == PrivacyPrivate
}
