package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/adamwoolhether/qbit/client/session"
	"github.com/adamwoolhether/qbit/client/throttle"
)

// Client is an authenticated connection to one qBittorrent WebUI.
// It is safe for concurrent use.
type Client struct {
	c         *http.Client
	logger    *slog.Logger
	tracer    trace.Tracer
	authority string
	creds     Credentials
	sessions  *session.Cache
}

// Build validates its inputs, configures the transport and logs in once.
// Trailing slashes are trimmed from authority, so "http://host:8080/" and
// "http://host:8080" are equivalent.
func Build(ctx context.Context, authority string, creds Credentials, optFns ...Option) (*Client, error) {
	authority = strings.TrimRight(authority, "/")
	if err := check(target{Authority: authority, Credentials: creds}); err != nil {
		return nil, invalidInput(opBuild, err)
	}

	var opts options
	for _, opt := range optFns {
		if err := opt(&opts); err != nil {
			return nil, fmt.Errorf("applying client option: %w", err)
		}
	}

	client := &Client{
		c:         &http.Client{},
		logger:    slog.Default(),
		tracer:    otel.Tracer(tracerName),
		authority: authority,
		creds:     creds,
	}

	if opts.client != nil {
		client.c = opts.client
	}

	if opts.logger != nil {
		client.logger = opts.logger
	}

	if opts.tracer != nil {
		client.tracer = opts.tracer
	}

	if opts.timeout != nil {
		client.c.Timeout = *opts.timeout
	}

	if opts.noFollowRedirects {
		client.c.CheckRedirect = func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}

	var transport http.RoundTripper
	switch {
	case opts.rt != nil:
		transport = opts.rt
	case opts.client != nil && opts.client.Transport != nil:
		transport = opts.client.Transport
	default:
		transport = http.DefaultTransport
	}
	if opts.userAgent != "" {
		transport = userAgent{value: opts.userAgent, base: transport}
	}
	if opts.throttle != nil {
		rt, err := throttle.New(*opts.throttle, func() *slog.Logger { return client.logger }, transport)
		if err != nil {
			return nil, fmt.Errorf("configuring throttle: %w", err)
		}
		transport = rt
	}
	client.c.Transport = transport

	sessOpts := []session.Option{session.WithLogger(client.logger)}
	if opts.sessionTTL > 0 {
		sessOpts = append(sessOpts, session.WithTTL(opts.sessionTTL))
	}
	if opts.now != nil {
		sessOpts = append(sessOpts, session.WithClock(opts.now))
	}
	client.sessions = session.New(client.login, sessOpts...)

	if _, err := client.sessions.Token(ctx); err != nil {
		return nil, fmt.Errorf("initial login: %w", err)
	}

	return client, nil
}

// Authority returns the base URL the client talks to, without a trailing slash.
func (c *Client) Authority() string {
	return c.authority
}

// Session returns a copy of the cached session.
func (c *Client) Session() session.Session {
	return c.sessions.Snapshot()
}

// Logins returns how many login handshakes the client has attempted.
func (c *Client) Logins() int64 {
	return c.sessions.Logins()
}

// DispatchBare sends a POST without a body to /api/v2{path} and returns
// the response body. Any non-2xx status is an error tagged with op.
func (c *Client) DispatchBare(ctx context.Context, path, op string) (string, error) {
	return c.dispatch(ctx, path, op, nil, false)
}

// DispatchForm is [Client.DispatchBare] with form as the url-encoded body.
func (c *Client) DispatchForm(ctx context.Context, path, op string, form *Form) (string, error) {
	if form == nil {
		return "", invalidInput(op, errors.New("form must not be nil"))
	}

	return c.dispatch(ctx, path, op, form, false)
}

// DispatchFormKeyed is [Client.DispatchForm] for endpoints addressed by a
// torrent hash: a 404 is reported as [KindNotFound].
func (c *Client) DispatchFormKeyed(ctx context.Context, path, op string, form *Form) (string, error) {
	if form == nil {
		return "", invalidInput(op, errors.New("form must not be nil"))
	}

	return c.dispatch(ctx, path, op, form, true)
}

// Logout ends the server-side session and drops the cached SID. A later
// call logs in again, so calling Logout twice is harmless.
func (c *Client) Logout(ctx context.Context) error {
	_, err := c.DispatchBare(ctx, logoutPath, opLogout)
	c.sessions.Invalidate()

	return err
}

func (c *Client) dispatch(ctx context.Context, path, op string, form *Form, keyed bool) (string, error) {
	var text string
	err := c.do(ctx, path, op, form, keyed, func(resp *http.Response) error {
		b, err := io.ReadAll(resp.Body)
		if err != nil {
			return &Error{Kind: KindTransport, Op: op, StatusCode: resp.StatusCode, Err: err}
		}
		text = string(b)

		return nil
	})
	if err != nil {
		return "", err
	}

	return text, nil
}

// do runs one authenticated round trip and hands a 2xx response to fn.
func (c *Client) do(ctx context.Context, path, op string, form *Form, keyed bool, fn execFn) (err error) {
	ctx, span := c.startSpan(ctx, spanDispatch, op, path)
	defer func() { endSpan(span, err) }()

	sid, err := c.sessions.Token(ctx)
	if err != nil {
		return err
	}

	req, err := c.newRequest(ctx, path, form)
	if err != nil {
		return invalidInput(op, err)
	}
	req.AddCookie(&http.Cookie{Name: sidCookie, Value: sid})

	err = c.exec(req, op, fn)

	var e *Error
	if errors.As(err, &e) && e.Kind == KindUnexpectedStatus {
		switch {
		case keyed && e.StatusCode == http.StatusNotFound:
			e.Kind = KindNotFound
		case e.StatusCode == http.StatusForbidden:
			// The server has forgotten this SID; make the next call log in
			// unless another call already replaced it.
			if !c.sessions.InvalidateToken(sid) {
				c.logger.Debug("ignoring 403 for replaced session", "op", op)
			}
		}
	}

	if c.logger.Enabled(ctx, slog.LevelDebug) {
		c.logger.Debug("dispatch", "op", op, "path", path, "status", StatusCode(err), "trace_id", traceID(ctx), "error", err)
	}

	return err
}

// exec runs the request and injected function on success after validating the status code.
func (c *Client) exec(req *http.Request, op string, fn execFn) error {
	resp, err := c.c.Do(req)
	if err != nil {
		return &Error{Kind: KindTransport, Op: op, Err: err}
	}

	trace.SpanFromContext(req.Context()).SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	discardBody := true
	defer func() {
		if discardBody {
			if _, err = io.Copy(io.Discard, resp.Body); err != nil {
				c.logger.Error("failed to discard unused body", "error", err)
			}
		}
		if err = resp.Body.Close(); err != nil {
			c.logger.Error("failed to close response body", "error", err)
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, err := io.ReadAll(io.LimitReader(resp.Body, maxErrBodySize))
		if err != nil {
			b = []byte("unable to read body")
		}

		return &Error{
			Kind:       KindUnexpectedStatus,
			Op:         op,
			StatusCode: resp.StatusCode,
			Body:       string(b),
		}
	}

	if err := fn(resp); err != nil {
		discardBody = false
		return err
	}

	return nil
}

// newRequest builds a POST to {authority}/api/v2{path}. A nil form sends
// no body.
func (c *Client) newRequest(ctx context.Context, path string, form *Form) (*http.Request, error) {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	body := io.Reader(http.NoBody)
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.authority+apiPrefix+path, body)
	if err != nil {
		return nil, fmt.Errorf("instantiating request: %w", err)
	}

	if form != nil {
		req.Header.Set("Content-Type", formContentType)
	}

	return req, nil
}
