//go:build integration

// Tests in this package talk to a real qBittorrent WebUI. They are
// skipped unless QBIT_URL is set; credentials come from QBIT_USERNAME
// and QBIT_PASSWORD.
package e2e_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/adamwoolhether/qbit"
	"github.com/adamwoolhether/qbit/client"
)

// -------------------------------------------------------------------------
// Helpers
// -------------------------------------------------------------------------

func newClient(t *testing.T, opts ...client.Option) *client.Client {
	t.Helper()

	authority := os.Getenv("QBIT_URL")
	if authority == "" {
		t.Skip("QBIT_URL not set")
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	opts = append([]client.Option{client.WithLogger(log), client.WithTimeout(10 * time.Second)}, opts...)

	c, err := qbit.NewClient(t.Context(), authority, client.NewCredentials(os.Getenv("QBIT_USERNAME"), os.Getenv("QBIT_PASSWORD")), opts...)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	t.Cleanup(func() { c.Logout(context.Background()) })

	return c
}

// -------------------------------------------------------------------------
// Tests
// -------------------------------------------------------------------------

func TestE2E_AppInfo(t *testing.T) {
	c := newClient(t)

	version, err := c.AppVersion(t.Context())
	if err != nil {
		t.Fatalf("AppVersion: %v", err)
	}
	if !strings.HasPrefix(version, "v") {
		t.Errorf("version = %q", version)
	}

	api, err := c.WebAPIVersion(t.Context())
	if err != nil {
		t.Fatalf("WebAPIVersion: %v", err)
	}
	if strings.Count(api, ".") < 1 {
		t.Errorf("webapi version = %q", api)
	}

	if _, err := c.BuildInfo(t.Context()); err != nil {
		t.Errorf("BuildInfo: %v", err)
	}
}

func TestE2E_TransferAndSync(t *testing.T) {
	c := newClient(t, client.WithThrottle(10, 2))

	if _, err := c.TransferInfo(t.Context()); err != nil {
		t.Fatalf("TransferInfo: %v", err)
	}

	data, err := c.MainData(t.Context(), 0)
	if err != nil {
		t.Fatalf("MainData: %v", err)
	}
	if !data.FullUpdate {
		t.Error("rid 0 should return a full update")
	}

	if _, err := c.MainLog(t.Context(), client.DefaultLogFilter()); err != nil {
		t.Errorf("MainLog: %v", err)
	}
}

func TestE2E_UnknownHash(t *testing.T) {
	c := newClient(t)

	const unknown = "0000000000000000000000000000000000000000"

	if _, err := c.TorrentProperties(t.Context(), unknown); !errors.Is(err, client.ErrNotFound) {
		t.Errorf("TorrentProperties: exp ErrNotFound, got %v", err)
	}

	var buf bytes.Buffer
	if _, err := c.ExportTorrent(t.Context(), unknown, &buf); !errors.Is(err, client.ErrNotFound) {
		t.Errorf("ExportTorrent: exp ErrNotFound, got %v", err)
	}

	dest := filepath.Join(t.TempDir(), "missing.torrent")
	if err := c.ExportTorrentFile(t.Context(), unknown, dest); !errors.Is(err, client.ErrNotFound) {
		t.Errorf("ExportTorrentFile: exp ErrNotFound, got %v", err)
	}
}

func TestE2E_WrongPassword(t *testing.T) {
	authority := os.Getenv("QBIT_URL")
	if authority == "" {
		t.Skip("QBIT_URL not set")
	}

	_, err := qbit.NewClient(t.Context(), authority, client.NewCredentials(os.Getenv("QBIT_USERNAME"), "definitely-not-the-password"))
	if !errors.Is(err, client.ErrAuthFailure) {
		t.Fatalf("exp ErrAuthFailure, got %v", err)
	}
}

func TestE2E_LogoutTwice(t *testing.T) {
	c := newClient(t)

	if err := c.Logout(t.Context()); err != nil {
		t.Fatalf("first Logout: %v", err)
	}
	if err := c.Logout(t.Context()); err != nil {
		t.Fatalf("second Logout: %v", err)
	}
}
