package main

import (
	"flag"
	"fmt"
	"io"
)

func runVersion(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("version", flag.ContinueOnError)
	fs.SetOutput(stderr)
	conn := addConnFlags(fs)
	fs.Usage = usage(fs, stderr, `Usage: qbitctl version [options]

Print the qBittorrent version and the WebUI API version.`)

	if err := fs.Parse(args); err != nil {
		return ExitInvalidArgs
	}

	ctx, cancel := signalContext(stderr)
	defer cancel()

	c, code := connect(ctx, conn, stderr)
	if c == nil {
		return code
	}

	app, err := c.AppVersion(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCode(err)
	}

	api, err := c.WebAPIVersion(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCode(err)
	}

	fmt.Fprintf(stdout, "qBittorrent %s\nWebUI API   %s\n", app, api)
	return ExitSuccess
}
