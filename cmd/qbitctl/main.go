// Command qbitctl talks to a qBittorrent WebUI from the shell.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/adamwoolhether/qbit/client"
)

// Exit codes
const (
	ExitSuccess       = 0
	ExitGeneralError  = 1
	ExitInvalidArgs   = 2
	ExitAuthFailed    = 3
	ExitUnreachable   = 4
	ExitNotFound      = 5
	ExitStorageError  = 6
	ExitRequestFailed = 7
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		printUsage(stderr)
		return ExitInvalidArgs
	}

	command := args[0]
	cmdArgs := args[1:]

	switch command {
	case "version":
		return runVersion(cmdArgs, stdout, stderr)
	case "transfer":
		return runTransfer(cmdArgs, stdout, stderr)
	case "logout":
		return runLogout(cmdArgs, stdout, stderr)
	case "export":
		return runExport(cmdArgs, stdout, stderr)
	case "help", "-h", "--help":
		printUsage(stderr)
		return ExitSuccess
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n", command)
		printUsage(stderr)
		return ExitInvalidArgs
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `Usage: qbitctl <command> [options]

Commands:
  version   Print the application and WebUI API versions
  transfer  Print global transfer statistics
  logout    End the WebUI session
  export    Save a torrent's .torrent file locally or to a bucket

Connection settings come from -config, then QBIT_* environment variables,
then command flags. Run 'qbitctl <command> -h' for command-specific help.`)
}

// exitCode maps a client error to the process exit status.
func exitCode(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, client.ErrAuthFailure):
		return ExitAuthFailed
	case errors.Is(err, client.ErrTransport):
		return ExitUnreachable
	case errors.Is(err, client.ErrNotFound):
		return ExitNotFound
	case errors.Is(err, client.ErrInvalidInput):
		return ExitInvalidArgs
	case errors.Is(err, client.ErrStorage):
		return ExitStorageError
	case errors.Is(err, client.ErrUnexpectedStatusCode), errors.Is(err, client.ErrConflict), errors.Is(err, client.ErrInvalidResponse):
		return ExitRequestFailed
	default:
		return ExitGeneralError
	}
}
