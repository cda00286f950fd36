package models

// Session is the authenticated identity and credential pair held by the app.
// Either both fields are set or neither is.
type Session struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

// Signed reports whether the session carries an identity.
func (s Session) Signed() bool {
	return s.User != nil
}
