package client

import "log/slog"

// Credentials are the WebUI username and password. They are fixed for
// the lifetime of a [Client].
type Credentials struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password"`
}

// NewCredentials builds Credentials from a username and password.
func NewCredentials(username, password string) Credentials {
	return Credentials{Username: username, Password: password}
}

// String hides the password.
func (c Credentials) String() string {
	return c.Username + ":********"
}

// LogValue hides the password from slog output.
func (c Credentials) LogValue() slog.Value {
	return slog.GroupValue(slog.String("username", c.Username))
}
