// Package throttle rate-limits requests sent to a qBittorrent WebUI using a
// token bucket from [golang.org/x/time/rate].
//
// The WebUI runs inside the torrent client's own event loop, so bursts of
// API calls compete with peer traffic. Wrap the transport with [New]:
//
//	rt, err := throttle.New(throttle.Config{RPS: 10, Burst: 5},
//		func() *slog.Logger { return slog.Default() },
//		http.DefaultTransport,
//	)
//	httpClient := &http.Client{Transport: rt}
//
// Requests over the limit block until a token is available or their
// context ends.
package throttle
