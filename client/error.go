package client

import (
	"errors"
	"fmt"
)

// Kind classifies an [Error] so callers can branch on it without
// inspecting status codes.
type Kind int

const (
	// KindUnexpectedStatus is any non-2xx status without a more specific meaning.
	KindUnexpectedStatus Kind = iota
	// KindCredentials means login succeeded at the HTTP level but no SID cookie came back.
	KindCredentials
	// KindRateLimited means the login was refused with 403; qBittorrent bans an
	// address after repeated failed logins.
	KindRateLimited
	// KindNotFound means a keyed call got 404 for its torrent hash.
	KindNotFound
	// KindConflict means an endpoint returned 409 or another status with an
	// endpoint-specific meaning.
	KindConflict
	// KindTransport means the request failed before any status was received.
	KindTransport
	// KindDecode means a 2xx body could not be parsed into the expected shape.
	KindDecode
	// KindInvalidInput means the call was rejected before anything was sent.
	KindInvalidInput
	// KindStorage means a response arrived but could not be written locally.
	KindStorage
)

func (k Kind) String() string {
	switch k {
	case KindCredentials:
		return "credentials"
	case KindRateLimited:
		return "rate_limited"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindTransport:
		return "transport"
	case KindDecode:
		return "decode"
	case KindInvalidInput:
		return "invalid_input"
	case KindStorage:
		return "storage"
	default:
		return "unexpected_status"
	}
}

var (
	// ErrUnexpectedStatusCode matches errors of kind [KindUnexpectedStatus].
	ErrUnexpectedStatusCode = errors.New("unexpected status code")
	// ErrWrongCredentials matches errors of kind [KindCredentials].
	ErrWrongCredentials = errors.New("wrong credentials")
	// ErrTooManyFailedAttempts matches errors of kind [KindRateLimited].
	ErrTooManyFailedAttempts = errors.New("banned after too many failed login attempts")
	// ErrAuthFailure matches both [KindCredentials] and [KindRateLimited].
	ErrAuthFailure = errors.New("auth failure")
	// ErrNotFound matches errors of kind [KindNotFound].
	ErrNotFound = errors.New("torrent hash not found")
	// ErrConflict matches errors of kind [KindConflict].
	ErrConflict = errors.New("conflict")
	// ErrTransport matches errors of kind [KindTransport].
	ErrTransport = errors.New("transport failure")
	// ErrInvalidResponse matches errors of kind [KindDecode].
	ErrInvalidResponse = errors.New("invalid response body")
	// ErrInvalidInput matches errors of kind [KindInvalidInput].
	ErrInvalidInput = errors.New("invalid input")
	// ErrStorage matches errors of kind [KindStorage].
	ErrStorage = errors.New("local storage failure")
)

// Error is returned by every call that reaches the remote service.
// StatusCode is zero when no HTTP status was obtained.
type Error struct {
	Kind       Kind
	Op         string
	StatusCode int
	Body       string
	Err        error
}

func (e *Error) Error() string {
	msg := e.Kind.sentinel().Error()
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s: %d", msg, e.StatusCode)
	}
	if e.Body != "" {
		msg = fmt.Sprintf("%s, body: %s", msg, e.Body)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}

	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel for e's Kind.
func (e *Error) Is(target error) bool {
	if target == ErrAuthFailure {
		return e.Kind == KindCredentials || e.Kind == KindRateLimited
	}

	return target == e.Kind.sentinel()
}

func (k Kind) sentinel() error {
	switch k {
	case KindCredentials:
		return ErrWrongCredentials
	case KindRateLimited:
		return ErrTooManyFailedAttempts
	case KindNotFound:
		return ErrNotFound
	case KindConflict:
		return ErrConflict
	case KindTransport:
		return ErrTransport
	case KindDecode:
		return ErrInvalidResponse
	case KindInvalidInput:
		return ErrInvalidInput
	case KindStorage:
		return ErrStorage
	default:
		return ErrUnexpectedStatusCode
	}
}

// KindOf returns the Kind of the first [*Error] in err's chain.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if !errors.As(err, &e) {
		return 0, false
	}

	return e.Kind, true
}

// StatusCode returns the HTTP status carried by err, or zero.
func StatusCode(err error) int {
	var e *Error
	if !errors.As(err, &e) {
		return 0
	}

	return e.StatusCode
}

func invalidInput(op string, err error) *Error {
	return &Error{Kind: KindInvalidInput, Op: op, Err: err}
}
