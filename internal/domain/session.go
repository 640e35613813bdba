package domain

// Session identifies who is acting. It is threaded explicitly through every
// usecase call instead of being read from ambient state.
type Session struct {
	// DeviceID scopes the device-local store (drafts, local entitlements).
	DeviceID string
	// UserID is the identity-provider subject, empty for anonymous visitors.
	UserID string
}

// Authenticated reports whether a signed-in user is present.
func (s Session) Authenticated() bool { return s.UserID != "" }
