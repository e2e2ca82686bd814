package listing

import "strings"

// Actor is the logged-in identity attached to every persistence call.
type Actor struct {
	UserID   string `json:"userId" yaml:"user_id"`
	Username string `json:"username" yaml:"username"`
	FullName string `json:"fullName" yaml:"full_name"`
	Role     string `json:"role" yaml:"role"`
	Token    string `json:"token,omitempty" yaml:"token,omitempty"`
}

// Valid reports whether the actor carries the identity the backend requires.
func (a Actor) Valid() bool {
	return strings.TrimSpace(a.UserID) != "" &&
		strings.TrimSpace(a.Username) != "" &&
		strings.TrimSpace(a.Role) != ""
}
