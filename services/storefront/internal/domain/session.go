package domain

import "strings"

// Session is the signed-in state of the storefront user.
type Session struct {
	Authenticated bool   `json:"isAuthenticated"`
	Email         string `json:"userEmail"`
	Name          string `json:"userName"`
}

// Anonymous is the signed-out session.
var Anonymous = Session{}

// Valid reports whether the session is authenticated and fully populated.
// A partial session counts as signed out.
func (s Session) Valid() bool {
	return s.Authenticated && s.Email != "" && s.Name != ""
}

// DisplayNameFromEmail derives a display name from the local part of email.
func DisplayNameFromEmail(email string) string {
	local, _, _ := strings.Cut(email, "@")
	return local
}
