package download

import (
	"errors"
	"hash"
	"io/fs"
)

// Option configures [ToFile].
type Option func(*options) error

type options struct {
	checksum     *checksumVerifier
	progress     bool
	skipExisting bool
	torrent      bool
	mode         fs.FileMode
}

// WithChecksum verifies the written bytes against expected, the
// hex-encoded sum produced by h.
func WithChecksum(h hash.Hash, expected string) Option {
	return func(opts *options) error {
		if h == nil {
			return errors.New("hash must not be nil")
		}

		if expected == "" {
			return errors.New("expected checksum must not be empty")
		}

		opts.checksum = &checksumVerifier{hash: h, expected: expected}
		return nil
	}
}

// WithProgress logs progress at most once per second.
func WithProgress() Option {
	return func(opts *options) error {
		opts.progress = true
		return nil
	}
}

// WithSkipExisting leaves an existing destination untouched.
func WithSkipExisting() Option {
	return func(opts *options) error {
		opts.skipExisting = true
		return nil
	}
}

// WithTorrentCheck rejects bodies that do not start like a bencoded
// dictionary, which is what the WebUI sends when an export succeeded.
func WithTorrentCheck() Option {
	return func(opts *options) error {
		opts.torrent = true
		return nil
	}
}

// WithMode sets the permissions of the final file. The default is 0644.
func WithMode(mode fs.FileMode) Option {
	return func(opts *options) error {
		if mode&fs.ModePerm == 0 {
			return errors.New("mode must grant some permission")
		}
		opts.mode = mode & fs.ModePerm
		return nil
	}
}
