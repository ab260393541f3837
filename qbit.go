// Package qbit exposes the client builder for the qBittorrent WebUI API.
package qbit

import (
	"context"

	"github.com/adamwoolhether/qbit/client"
)

type (
	// Client is an authenticated connection to one WebUI.
	Client = client.Client
	// Credentials are the WebUI username and password.
	Credentials = client.Credentials
	// Option configures a Client.
	Option = client.Option
)

// NewClient logs in to the WebUI at authority and returns a ready Client.
// If not specified, a fresh http.Client over http.DefaultTransport is used.
func NewClient(ctx context.Context, authority string, creds Credentials, opts ...Option) (*Client, error) {
	return client.Build(ctx, authority, creds, opts...)
}
