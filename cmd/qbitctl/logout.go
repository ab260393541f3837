package main

import (
	"flag"
	"fmt"
	"io"
)

func runLogout(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("logout", flag.ContinueOnError)
	fs.SetOutput(stderr)
	conn := addConnFlags(fs)
	fs.Usage = usage(fs, stderr, `Usage: qbitctl logout [options]

Log in and immediately end the session, e.g. to verify credentials.`)

	if err := fs.Parse(args); err != nil {
		return ExitInvalidArgs
	}

	ctx, cancel := signalContext(stderr)
	defer cancel()

	c, code := connect(ctx, conn, stderr)
	if c == nil {
		return code
	}

	if err := c.Logout(ctx); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCode(err)
	}

	fmt.Fprintln(stdout, "Logged out")
	return ExitSuccess
}
