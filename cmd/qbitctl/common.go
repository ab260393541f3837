package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/adamwoolhether/qbit/client"
	"github.com/adamwoolhether/qbit/internal/config"
)

// connFlags are the connection flags shared by every command.
type connFlags struct {
	config   *string
	url      *string
	username *string
	logLevel *string
}

func addConnFlags(fs *flag.FlagSet) connFlags {
	return connFlags{
		config:   fs.String("config", "", "Path to a YAML config file"),
		url:      fs.String("url", "", "WebUI URL, e.g. http://localhost:8080"),
		username: fs.String("username", "", "WebUI username"),
		logLevel: fs.String("log-level", "", "Log level: debug, info, warn, error"),
	}
}

// load resolves defaults, the config file, QBIT_* variables and flags,
// in that order.
func (f connFlags) load() (config.Config, error) {
	cfg := config.Default()

	if *f.config != "" {
		fileCfg, err := config.LoadFromFile(*f.config)
		if err != nil {
			return config.Config{}, err
		}
		cfg = fileCfg
	}

	if err := cfg.LoadFromEnv(); err != nil {
		return config.Config{}, err
	}

	cfg = cfg.Merge(config.Config{
		URL:      *f.url,
		Username: *f.username,
		LogLevel: *f.logLevel,
	})

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}

	return cfg, nil
}

// connect loads the configuration and logs in. On failure it reports to
// stderr and returns the exit code to use.
func connect(ctx context.Context, f connFlags, stderr io.Writer) (*client.Client, int) {
	cfg, err := f.load()
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return nil, ExitInvalidArgs
	}

	level, _ := cfg.Level()
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	c, err := client.Build(ctx, cfg.URL, cfg.Credentials(), cfg.ClientOptions(logger)...)
	if err != nil {
		fmt.Fprintf(stderr, "Error connecting to %s: %v\n", cfg.URL, err)
		return nil, exitCode(err)
	}

	return c, ExitSuccess
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(stderr io.Writer) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			fmt.Fprintln(stderr, "\n[qbitctl] Received interrupt, shutting down...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()

	return ctx, cancel
}

func usage(fs *flag.FlagSet, stderr io.Writer, text string) func() {
	return func() {
		fmt.Fprintln(stderr, text)
		fmt.Fprintln(stderr, "\nOptions:")
		fs.PrintDefaults()
	}
}
