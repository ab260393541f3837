// Package download writes a response body to disk atomically. The client
// uses it to save .torrent files exported from the WebUI.
//
// Data is streamed into a temp file next to the destination and renamed
// into place only after every check passed, so a failed export never
// leaves a truncated file behind:
//
//	err := download.ToFile(ctx, resp.Body, resp.ContentLength, "/backups/x.torrent", logger,
//		download.WithChecksum(sha1.New(), expectedHex),
//		download.WithProgress(),
//	)
package download
