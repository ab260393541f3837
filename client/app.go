package client

import "context"

// BuildInfo describes the libraries the server was built against.
type BuildInfo struct {
	Qt         string `json:"qt"`
	Libtorrent string `json:"libtorrent"`
	Boost      string `json:"boost"`
	OpenSSL    string `json:"openssl"`
	Zlib       string `json:"zlib"`
	Bitness    int    `json:"bitness"`
}

// AppVersion returns the qBittorrent version, e.g. "v4.6.2".
func (c *Client) AppVersion(ctx context.Context) (string, error) {
	return c.DispatchBare(ctx, "/app/version", "AppVersion")
}

// WebAPIVersion returns the WebUI API version, e.g. "2.9.3".
func (c *Client) WebAPIVersion(ctx context.Context) (string, error) {
	return c.DispatchBare(ctx, "/app/webapiVersion", "WebAPIVersion")
}

// BuildInfo returns the versions of the libraries the server uses.
func (c *Client) BuildInfo(ctx context.Context) (BuildInfo, error) {
	body, err := c.DispatchBare(ctx, "/app/buildInfo", "BuildInfo")
	if err != nil {
		return BuildInfo{}, err
	}

	return Decode[BuildInfo]("BuildInfo", body)
}

// DefaultSavePath returns the directory new torrents are saved to.
func (c *Client) DefaultSavePath(ctx context.Context) (string, error) {
	return c.DispatchBare(ctx, "/app/defaultSavePath", "DefaultSavePath")
}

// Shutdown asks the application to exit. The session is gone afterwards.
func (c *Client) Shutdown(ctx context.Context) error {
	_, err := c.DispatchBare(ctx, "/app/shutdown", "Shutdown")
	if err == nil {
		c.sessions.Invalidate()
	}

	return err
}
