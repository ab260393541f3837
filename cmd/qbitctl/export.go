package main

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/gcsblob"
	_ "gocloud.dev/blob/s3blob"

	"github.com/adamwoolhether/qbit/client"
)

const torrentContentType = "application/x-bittorrent"

func runExport(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	fs.SetOutput(stderr)
	conn := addConnFlags(fs)
	hash := fs.String("hash", "", "Info hash of the torrent (required)")
	out := fs.String("out", "", "Local file path, or bucket URL such as s3://bucket or file:///dir (required)")
	key := fs.String("key", "", "Object key when -out is a bucket URL (default <hash>.torrent)")
	verify := fs.String("sha1", "", "Expected SHA-1 of the .torrent file, hex encoded")
	progress := fs.Bool("progress", false, "Log export progress")
	fs.Usage = usage(fs, stderr, `Usage: qbitctl export [options]

Save the .torrent file of a torrent. A local file is written atomically;
bucket URLs use gocloud.dev drivers (file, gs, s3).`)

	if err := fs.Parse(args); err != nil {
		return ExitInvalidArgs
	}

	if *hash == "" || *out == "" {
		fmt.Fprintln(stderr, "Error: -hash and -out are required")
		fs.Usage()
		return ExitInvalidArgs
	}

	ctx, cancel := signalContext(stderr)
	defer cancel()

	c, code := connect(ctx, conn, stderr)
	if c == nil {
		return code
	}

	if !strings.Contains(*out, "://") {
		var opts []client.ExportOption
		if *verify != "" {
			opts = append(opts, client.WithChecksum(sha1.New(), *verify))
		}
		if *progress {
			opts = append(opts, client.WithProgress())
		}

		if err := c.ExportTorrentFile(ctx, *hash, *out, opts...); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return exportExitCode(err)
		}

		fmt.Fprintf(stdout, "Exported %s to %s\n", *hash, *out)
		return ExitSuccess
	}

	bkt, err := blob.OpenBucket(ctx, *out)
	if err != nil {
		fmt.Fprintf(stderr, "Error opening bucket: %v\n", err)
		return ExitStorageError
	}
	defer bkt.Close()

	objectKey := *key
	if objectKey == "" {
		objectKey = strings.ToLower(*hash) + ".torrent"
	}

	n, err := exportToBucket(ctx, c, bkt, *hash, objectKey, *verify)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exportExitCode(err)
	}

	fmt.Fprintf(stdout, "Exported %s to %s (%s, %d bytes)\n", *hash, *out, objectKey, n)
	return ExitSuccess
}

// errStorage marks failures of the destination bucket.
var errStorage = errors.New("storage")

// exportToBucket streams the .torrent file into key. The object is only
// committed when the export and the optional SHA-1 check succeeded.
func exportToBucket(ctx context.Context, c *client.Client, bkt *blob.Bucket, hash, key, expectedSHA1 string) (int64, error) {
	writeCtx, abort := context.WithCancel(ctx)
	defer abort()

	w, err := bkt.NewWriter(writeCtx, key, &blob.WriterOptions{ContentType: torrentContentType})
	if err != nil {
		return 0, fmt.Errorf("%w: opening writer: %w", errStorage, err)
	}

	sum := sha1.New()
	n, err := c.ExportTorrent(ctx, hash, io.MultiWriter(w, sum))
	if err == nil && expectedSHA1 != "" {
		if actual := hex.EncodeToString(sum.Sum(nil)); !strings.EqualFold(actual, expectedSHA1) {
			err = &client.ExportError{Err: client.ErrChecksumMismatch, Detail: fmt.Sprintf("expected %s, got %s", expectedSHA1, actual)}
		}
	}
	if err != nil {
		// Cancelling the writer's context discards the partial object.
		abort()
		w.Close()
		return 0, err
	}

	if err := w.Close(); err != nil {
		return 0, fmt.Errorf("%w: committing %s: %w", errStorage, key, err)
	}

	return n, nil
}

func exportExitCode(err error) int {
	switch {
	case errors.Is(err, errStorage):
		return ExitStorageError
	case errors.Is(err, client.ErrChecksumMismatch), errors.Is(err, client.ErrNotTorrent):
		return ExitRequestFailed
	default:
		return exitCode(err)
	}
}
