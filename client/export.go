package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/adamwoolhether/qbit/client/download"
)

const exportPath = "/torrents/export"

// ExportTorrent writes the .torrent file of the torrent with hash to w
// and returns the number of bytes written. The body is streamed, not
// buffered. An unknown hash yields an error matching [ErrNotFound].
func (c *Client) ExportTorrent(ctx context.Context, hash string, w io.Writer) (int64, error) {
	const op = "ExportTorrent"
	if err := checkHash(hash); err != nil {
		return 0, invalidInput(op, err)
	}

	var n int64
	err := c.do(ctx, exportPath, op, NewForm().Set("hash", hash), true, func(resp *http.Response) error {
		var err error
		n, err = io.Copy(w, resp.Body)
		if err != nil {
			return &Error{Kind: KindTransport, Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("streaming export: %w", err)}
		}

		return nil
	})

	return n, err
}

// ExportTorrentFile saves the .torrent file of the torrent with hash to
// dest. The file appears only once it was fully written and checked.
func (c *Client) ExportTorrentFile(ctx context.Context, hash, dest string, optFns ...ExportOption) error {
	const op = "ExportTorrentFile"
	if err := checkHash(hash); err != nil {
		return invalidInput(op, err)
	}

	opts := append([]download.Option{download.WithTorrentCheck()}, optFns...)

	return c.do(ctx, exportPath, op, NewForm().Set("hash", hash), true, func(resp *http.Response) error {
		if err := download.ToFile(ctx, resp.Body, resp.ContentLength, dest, c.logger, opts...); err != nil {
			return &Error{Kind: exportKind(err), Op: op, StatusCode: resp.StatusCode, Err: err}
		}

		return nil
	})
}

// exportKind separates a bad or truncated body from a failure to write it.
func exportKind(err error) Kind {
	switch {
	case errors.Is(err, download.ErrNotTorrent), errors.Is(err, download.ErrChecksumMismatch):
		return KindDecode
	case errors.Is(err, download.ErrContentLengthMismatch), errors.Is(err, download.ErrDownloadCancelled):
		return KindTransport
	default:
		return KindStorage
	}
}
