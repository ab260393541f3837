package download

import (
	"encoding/hex"
	"fmt"
	"hash"
	"strings"
)

// checksumVerifier hashes everything written through it.
type checksumVerifier struct {
	hash     hash.Hash
	expected string
}

func (v *checksumVerifier) Write(p []byte) (int, error) {
	return v.hash.Write(p)
}

func (v *checksumVerifier) Verify() error {
	if v == nil {
		return nil
	}

	actual := hex.EncodeToString(v.hash.Sum(nil))
	if !strings.EqualFold(actual, v.expected) {
		return &Error{
			Err:    ErrChecksumMismatch,
			Detail: fmt.Sprintf("expected %s, got %s", v.expected, actual),
		}
	}

	return nil
}

// sniffer remembers the first byte written through it.
type sniffer struct {
	first byte
	seen  bool
}

func (s *sniffer) Write(p []byte) (int, error) {
	if !s.seen && len(p) > 0 {
		s.first = p[0]
		s.seen = true
	}
	return len(p), nil
}

func (s *sniffer) Verify() error {
	if !s.seen {
		return &Error{Err: ErrNotTorrent, Detail: "empty body"}
	}
	if s.first != 'd' {
		return &Error{Err: ErrNotTorrent, Detail: fmt.Sprintf("unexpected leading byte %q", s.first)}
	}
	return nil
}
