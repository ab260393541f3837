package client

import (
	"hash"

	"github.com/adamwoolhether/qbit/client/download"
)

// ExportOption configures [Client.ExportTorrentFile].
type ExportOption = download.Option

// ExportError wraps a download sentinel error with additional detail.
type ExportError = download.Error

var (
	// ErrContentLengthMismatch indicates the byte count did not match Content-Length.
	ErrContentLengthMismatch = download.ErrContentLengthMismatch
	// ErrChecksumMismatch indicates the file checksum did not match the expected value.
	ErrChecksumMismatch = download.ErrChecksumMismatch
	// ErrNotTorrent indicates the exported body was not a bencoded torrent.
	ErrNotTorrent = download.ErrNotTorrent
	// ErrExportCancelled indicates the export was cancelled via context.
	ErrExportCancelled = download.ErrDownloadCancelled
)

// WithChecksum verifies the exported file against expected, the
// hex-encoded sum produced by h (e.g. sha1.New()).
func WithChecksum(h hash.Hash, expected string) ExportOption {
	return download.WithChecksum(h, expected)
}

// WithProgress enables periodic export progress logging.
func WithProgress() ExportOption { return download.WithProgress() }

// WithSkipExisting makes an export return nil immediately when the
// destination file already exists.
func WithSkipExisting() ExportOption { return download.WithSkipExisting() }
