// Package session caches the qBittorrent SID cookie for a client and
// refreshes it lazily.
//
// A [Cache] hands out the current token until it is older than its TTL.
// Once expired, the first caller to notice logs in again; callers arriving
// while that login is running wait for it and reuse its token instead of
// logging in themselves:
//
//	cache := session.New(login, session.WithTTL(30*time.Minute))
//	sid, err := cache.Token(ctx)
//
// Readers of a valid session only take a read lock and never block each
// other.
package session
