package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/adamwoolhether/qbit/client"
)

// transferView is the printed form of client.TransferInfo.
type transferView struct {
	Status        string `json:"connection_status" yaml:"connection_status"`
	DownloadSpeed int64  `json:"download_speed" yaml:"download_speed"`
	UploadSpeed   int64  `json:"upload_speed" yaml:"upload_speed"`
	Downloaded    int64  `json:"downloaded" yaml:"downloaded"`
	Uploaded      int64  `json:"uploaded" yaml:"uploaded"`
	DownloadLimit int64  `json:"download_limit" yaml:"download_limit"`
	UploadLimit   int64  `json:"upload_limit" yaml:"upload_limit"`
	DHTNodes      int64  `json:"dht_nodes" yaml:"dht_nodes"`
	AltSpeed      bool   `json:"alt_speed_limits" yaml:"alt_speed_limits"`
}

func newTransferView(info client.TransferInfo, alt bool) transferView {
	return transferView{
		Status:        info.ConnectionStatus,
		DownloadSpeed: info.DownloadSpeed,
		UploadSpeed:   info.UploadSpeed,
		Downloaded:    info.Downloaded,
		Uploaded:      info.Uploaded,
		DownloadLimit: info.DownloadLimit,
		UploadLimit:   info.UploadLimit,
		DHTNodes:      info.DHTNodes,
		AltSpeed:      alt,
	}
}

func runTransfer(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("transfer", flag.ContinueOnError)
	fs.SetOutput(stderr)
	conn := addConnFlags(fs)
	output := fs.String("o", "yaml", "Output format: yaml or json")
	fs.Usage = usage(fs, stderr, `Usage: qbitctl transfer [options]

Print global transfer statistics. Speeds are in bytes per second.`)

	if err := fs.Parse(args); err != nil {
		return ExitInvalidArgs
	}

	if *output != "yaml" && *output != "json" {
		fmt.Fprintf(stderr, "Error: unknown output format %q\n", *output)
		return ExitInvalidArgs
	}

	ctx, cancel := signalContext(stderr)
	defer cancel()

	c, code := connect(ctx, conn, stderr)
	if c == nil {
		return code
	}

	info, err := c.TransferInfo(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCode(err)
	}

	alt, err := c.SpeedLimitsMode(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCode(err)
	}

	view := newTransferView(info, alt)

	switch *output {
	case "json":
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		err = enc.Encode(view)
	default:
		enc := yaml.NewEncoder(stdout)
		enc.SetIndent(2)
		err = enc.Encode(view)
		if err == nil {
			err = enc.Close()
		}
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error writing output: %v\n", err)
		return ExitGeneralError
	}

	return ExitSuccess
}
