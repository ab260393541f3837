package session

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"
)

// DefaultTTL is how long a SID is trusted after login. qBittorrent expires
// idle sessions after an hour by default; the margin leaves room for a
// request that starts just before the deadline to finish.
const DefaultTTL = 55 * time.Minute

// refreshKey is the only key used with the singleflight group: there is
// exactly one session per Cache.
const refreshKey = "sid"

// LoginFunc performs the login handshake and returns a fresh SID.
type LoginFunc func(ctx context.Context) (string, error)

// Session is a copy of the cached credential.
type Session struct {
	Token     string
	CreatedAt time.Time
}

// Expired reports whether s is unusable at now for the given ttl.
// A session without a token is always expired.
func (s Session) Expired(now time.Time, ttl time.Duration) bool {
	if s.Token == "" {
		return true
	}

	return now.Sub(s.CreatedAt) >= ttl
}

// Cache owns the current Session together with the guard that keeps
// concurrent callers from logging in more than once per expiry.
type Cache struct {
	login  LoginFunc
	ttl    time.Duration
	now    func() time.Time
	logger *slog.Logger

	mu      sync.RWMutex
	current Session

	group  singleflight.Group
	logins atomic.Int64
}

// New returns an empty Cache. The first call to [Cache.Token] logs in.
func New(login LoginFunc, optFns ...Option) *Cache {
	opts := options{
		ttl: DefaultTTL,
		now: time.Now,
	}
	for _, opt := range optFns {
		opt(&opts)
	}

	logger := opts.logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Cache{
		login:  login,
		ttl:    opts.ttl,
		now:    opts.now,
		logger: logger,
	}
}

// Token returns a SID that has not expired, logging in first when needed.
// Callers that find the session expired while a login is already running
// wait for that login and share its result.
func (c *Cache) Token(ctx context.Context) (string, error) {
	if token, ok := c.valid(); ok {
		return token, nil
	}

	ch := c.group.DoChan(refreshKey, func() (any, error) {
		// Someone may have refreshed between our read and joining the group.
		if token, ok := c.valid(); ok {
			return token, nil
		}

		return c.refresh(context.WithoutCancel(ctx))
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}

		return res.Val.(string), nil
	}
}

// Snapshot returns a copy of the cached session.
func (c *Cache) Snapshot() Session {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.current
}

// Expired reports whether the cached session needs a login.
func (c *Cache) Expired() bool {
	return c.Snapshot().Expired(c.now(), c.ttl)
}

// Invalidate discards the cached session so the next [Cache.Token] logs in.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.current = Session{}
}

// InvalidateToken discards the cached session only if it still holds token.
// A rejection of an older SID leaves a newer session in place.
func (c *Cache) InvalidateToken(token string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if token == "" || c.current.Token != token {
		return false
	}
	c.current = Session{}

	return true
}

// Logins returns how many times the LoginFunc has been invoked.
func (c *Cache) Logins() int64 {
	return c.logins.Load()
}

// TTL returns the configured session lifetime.
func (c *Cache) TTL() time.Duration {
	return c.ttl
}

func (c *Cache) valid() (string, bool) {
	c.mu.RLock()
	s := c.current
	c.mu.RUnlock()

	if s.Expired(c.now(), c.ttl) {
		return "", false
	}

	return s.Token, true
}

func (c *Cache) refresh(ctx context.Context) (string, error) {
	c.logins.Add(1)

	start := c.now()
	token, err := c.login(ctx)
	if err != nil {
		c.logger.Debug("session refresh failed", "error", err)
		return "", err
	}

	c.mu.Lock()
	c.current = Session{Token: token, CreatedAt: start}
	c.mu.Unlock()

	c.logger.Debug("session refreshed", "ttl", c.ttl.String())

	return token, nil
}
