// Package client is a typed client for the qBittorrent WebUI API (v2).
//
// # Building a Client
//
// [Build] validates the authority and credentials and logs in once before
// returning, so a Client that exists holds a working session:
//
//	c, err := client.Build(ctx, "http://localhost:8080", client.NewCredentials("admin", "adminadmin"),
//		client.WithTimeout(10*time.Second),
//		client.WithThrottle(20, 5),
//	)
//
// # Sessions
//
// The SID cookie returned by the login is cached and reused until it is
// older than the session TTL ([session.DefaultTTL] unless changed with
// [WithSessionTTL]). The first call after expiry logs in again; concurrent
// callers that find the session expired share that single login.
//
// # Calling endpoints
//
// Every endpoint is a POST to /api/v2{path}. Typed methods such as
// [Client.TransferInfo] or [Client.PauseTorrents] cover common calls; any
// other endpoint can be reached through the three dispatch shapes:
//
//	body, err := c.DispatchBare(ctx, "/app/version", "AppVersion")
//	body, err := c.DispatchForm(ctx, "/torrents/info", "TorrentsInfo", client.NewForm().Set("filter", "active"))
//	body, err := c.DispatchFormKeyed(ctx, "/torrents/files", "TorrentFiles", client.NewForm().Set("hash", h))
//
// JSON bodies decode with [Decode].
//
// # Errors
//
// Failures are [*Error] values whose [Kind] says what went wrong. They
// match the package sentinels with [errors.Is]:
//
//	if errors.Is(err, client.ErrNotFound) { ... }
//	if errors.Is(err, client.ErrAuthFailure) { ... }
package client
