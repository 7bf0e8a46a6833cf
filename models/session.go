package models

// Session identifies the active user for the lifetime of the client.
// Guest sessions may browse the catalog but never persist watchlist state.
type Session struct {
	Owner       string `json:"username"`
	DisplayName string `json:"displayName,omitempty"`
	Email       string `json:"email,omitempty"`
	IsGuest     bool   `json:"isGuest"`
}

// CanPersist reports whether mutations may be sent to the watchlist store
// on behalf of this session.
func (s Session) CanPersist() bool {
	return !s.IsGuest && s.Owner != ""
}
