package client

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
)

// login performs the WebUI login handshake and returns the new SID.
// It never retries: qBittorrent bans the caller's address after a few
// failed attempts.
func (c *Client) login(ctx context.Context) (_ string, err error) {
	ctx, span := c.startSpan(ctx, spanLogin, opLogin, loginPath)
	defer func() { endSpan(span, err) }()

	form := NewForm().
		Set("username", c.creds.Username).
		Set("password", c.creds.Password)

	req, err := c.newRequest(ctx, loginPath, form)
	if err != nil {
		return "", invalidInput(opLogin, err)
	}
	req.Header.Set("Referer", c.authority)

	var sid string
	err = c.exec(req, opLogin, func(resp *http.Response) error {
		token, ok := sidFromHeader(resp.Header)
		if !ok {
			b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrBodySize))
			return &Error{Kind: KindCredentials, Op: opLogin, Body: strings.TrimSpace(string(b))}
		}
		sid = token

		return nil
	})

	var e *Error
	if errors.As(err, &e) && e.Kind == KindUnexpectedStatus && e.StatusCode == http.StatusForbidden {
		e.Kind = KindRateLimited
	}

	if err != nil {
		c.logger.Warn("login failed", "authority", c.authority, "credentials", c.creds, "error", err)
		return "", err
	}

	c.logger.Debug("login succeeded", "authority", c.authority, "credentials", c.creds, "trace_id", traceID(ctx))

	return sid, nil
}

// ExtractSID returns the SID value from one Set-Cookie header value, such
// as "SID=abc123; Path=/; HttpOnly". The value is the text between the
// first '=' and the first ';'.
func ExtractSID(setCookie string) (string, bool) {
	name, rest, ok := strings.Cut(setCookie, "=")
	if !ok || strings.TrimSpace(name) != sidCookie {
		return "", false
	}

	value, _, _ := strings.Cut(rest, ";")
	value = strings.TrimSpace(value)

	return value, value != ""
}

func sidFromHeader(h http.Header) (string, bool) {
	for _, v := range h.Values("Set-Cookie") {
		if sid, ok := ExtractSID(v); ok {
			return sid, true
		}
	}

	return "", false
}
