package client_test

import (
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/adamwoolhether/qbit/client"
	"github.com/adamwoolhether/qbit/internal/qbtest"
)

var torrentData = []byte("d8:announce22:http://tracker.test/ann4:infod6:lengthi1024e4:name7:foo.iso12:piece lengthi16384eee")

func seeded(t *testing.T, opts ...qbtest.Option) (*qbtest.Server, *client.Client) {
	t.Helper()

	srv := qbtest.New(t, opts...)
	srv.AddTorrent(testHash, qbtest.Torrent{
		Name:     "foo.iso",
		SavePath: "/downloads",
		Data:     torrentData,
		Trackers: []string{"http://tracker.test/ann", "udp://tracker.test:1337"},
	})

	return srv, build(t, srv)
}

func lastBody(t *testing.T, srv *qbtest.Server, path string) string {
	t.Helper()

	reqs := srv.RequestsTo(path)
	if len(reqs) == 0 {
		t.Fatalf("no request to %s", path)
	}

	return reqs[len(reqs)-1].Body
}

func TestClient_App(t *testing.T) {
	srv, c := seeded(t)

	version, err := c.AppVersion(t.Context())
	if err != nil || version != "v4.6.2" {
		t.Errorf("AppVersion = %q, %v", version, err)
	}

	api, err := c.WebAPIVersion(t.Context())
	if err != nil || api != "2.9.3" {
		t.Errorf("WebAPIVersion = %q, %v", api, err)
	}

	savePath, err := c.DefaultSavePath(t.Context())
	if err != nil || savePath != "/downloads" {
		t.Errorf("DefaultSavePath = %q, %v", savePath, err)
	}

	info, err := c.BuildInfo(t.Context())
	if err != nil {
		t.Fatalf("BuildInfo: %v", err)
	}
	exp := client.BuildInfo{Qt: "6.4.2", Libtorrent: "2.0.9.0", Boost: "1.83.0", OpenSSL: "3.1.4", Zlib: "1.3", Bitness: 64}
	if diff := cmp.Diff(exp, info); diff != "" {
		t.Errorf("BuildInfo mismatch (-want +got):\n%s", diff)
	}

	if err := c.Shutdown(t.Context()); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	if c.Session().Token != "" {
		t.Error("session should be dropped after shutdown")
	}
	if srv.Logins() != 1 {
		t.Errorf("logins = %d, want 1", srv.Logins())
	}
}

func TestClient_Transfer(t *testing.T) {
	srv, c := seeded(t)

	info, err := c.TransferInfo(t.Context())
	if err != nil {
		t.Fatalf("TransferInfo: %v", err)
	}
	exp := client.TransferInfo{
		DownloadSpeed:    1024,
		Downloaded:       4096,
		UploadSpeed:      512,
		Uploaded:         2048,
		DHTNodes:         312,
		ConnectionStatus: "connected",
	}
	if diff := cmp.Diff(exp, info); diff != "" {
		t.Errorf("TransferInfo mismatch (-want +got):\n%s", diff)
	}

	if err := c.SetGlobalDownloadLimit(t.Context(), 1<<20); err != nil {
		t.Fatalf("SetGlobalDownloadLimit: %v", err)
	}
	if got := lastBody(t, srv, "/transfer/setDownloadLimit"); got != "limit=1048576" {
		t.Errorf("body = %q", got)
	}

	if err := c.SetGlobalUploadLimit(t.Context(), -1); !errors.Is(err, client.ErrInvalidInput) {
		t.Errorf("negative limit: exp ErrInvalidInput, got %v", err)
	}
	if n := len(srv.RequestsTo("/transfer/setUploadLimit")); n != 0 {
		t.Errorf("rejected limit must not be sent, got %d requests", n)
	}

	limit, err := c.GlobalDownloadLimit(t.Context())
	if err != nil || limit != 0 {
		t.Errorf("GlobalDownloadLimit = %d, %v", limit, err)
	}

	alt, err := c.SpeedLimitsMode(t.Context())
	if err != nil || alt {
		t.Errorf("SpeedLimitsMode = %v, %v", alt, err)
	}

	if err := c.ToggleSpeedLimitsMode(t.Context()); err != nil {
		t.Errorf("ToggleSpeedLimitsMode: %v", err)
	}

	if err := c.BanPeers(t.Context(), "203.0.113.7:6881", "[2001:db8::1]:51413"); err != nil {
		t.Fatalf("BanPeers: %v", err)
	}
	if got := lastBody(t, srv, "/transfer/banPeers"); got != "peers=203.0.113.7%3A6881%7C%5B2001%3Adb8%3A%3A1%5D%3A51413" {
		t.Errorf("body = %q", got)
	}

	if err := c.BanPeers(t.Context()); !errors.Is(err, client.ErrInvalidInput) {
		t.Errorf("no peers: exp ErrInvalidInput, got %v", err)
	}
}

func TestClient_DecodeFailures(t *testing.T) {
	srv, c := seeded(t)
	srv.Handle("/transfer/speedLimitsMode", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("maybe"))
	})
	srv.Handle("/transfer/uploadLimit", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("lots"))
	})
	srv.Handle("/transfer/info", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("<html>"))
	})

	if _, err := c.SpeedLimitsMode(t.Context()); !errors.Is(err, client.ErrInvalidResponse) {
		t.Errorf("SpeedLimitsMode: exp ErrInvalidResponse, got %v", err)
	}
	if _, err := c.GlobalUploadLimit(t.Context()); !errors.Is(err, client.ErrInvalidResponse) {
		t.Errorf("GlobalUploadLimit: exp ErrInvalidResponse, got %v", err)
	}
	if _, err := c.TransferInfo(t.Context()); !errors.Is(err, client.ErrInvalidResponse) {
		t.Errorf("TransferInfo: exp ErrInvalidResponse, got %v", err)
	}
}

func TestClient_TorrentKeyed(t *testing.T) {
	srv, c := seeded(t)

	props, err := c.TorrentProperties(t.Context(), testHash)
	if err != nil {
		t.Fatalf("TorrentProperties: %v", err)
	}
	if props.SavePath != "/downloads" || props.TotalSize != int64(len(torrentData)) {
		t.Errorf("unexpected properties: %+v", props)
	}
	if got := lastBody(t, srv, "/torrents/properties"); got != "hash="+testHash {
		t.Errorf("body = %q", got)
	}

	trackers, err := c.TorrentTrackers(t.Context(), testHash)
	if err != nil {
		t.Fatalf("TorrentTrackers: %v", err)
	}
	exp := []client.Tracker{
		{URL: "http://tracker.test/ann", Status: 2, Tier: 0},
		{URL: "udp://tracker.test:1337", Status: 2, Tier: 1},
	}
	if diff := cmp.Diff(exp, trackers); diff != "" {
		t.Errorf("trackers mismatch (-want +got):\n%s", diff)
	}

	seeds, err := c.TorrentWebSeeds(t.Context(), testHash)
	if err != nil || len(seeds) != 0 {
		t.Errorf("TorrentWebSeeds = %v, %v", seeds, err)
	}

	const unknown = "0000000000000000000000000000000000000000"
	if _, err := c.TorrentProperties(t.Context(), unknown); !errors.Is(err, client.ErrNotFound) {
		t.Errorf("unknown hash: exp ErrNotFound, got %v", err)
	}
	if _, err := c.TorrentTrackers(t.Context(), unknown); !errors.Is(err, client.ErrNotFound) {
		t.Errorf("unknown hash: exp ErrNotFound, got %v", err)
	}
}

func TestClient_TorrentHashValidation(t *testing.T) {
	srv, c := seeded(t)

	for _, hash := range []string{
		"",
		"abc",
		"zz212779b4abde7c6bc608063a0d008b7e40ce32",
		"0x12779b4abde7c6bc608063a0d008b7e40ce32a",
		"0X12779b4abde7c6bc608063a0d008b7e40ce32a",
		testHash + "0",
	} {
		if _, err := c.TorrentProperties(t.Context(), hash); !errors.Is(err, client.ErrInvalidInput) {
			t.Errorf("hash %q: exp ErrInvalidInput, got %v", hash, err)
		}
	}

	v2 := "a94a8fe5ccb19ba61c4c0873d391e987982fbbd3a94a8fe5ccb19ba61c4c0873"
	if _, err := c.TorrentProperties(t.Context(), v2); !errors.Is(err, client.ErrNotFound) {
		t.Errorf("v2 hash should reach the server, got %v", err)
	}

	if n := len(srv.RequestsTo("/torrents/properties")); n != 1 {
		t.Errorf("requests = %d, want 1", n)
	}
}

func TestClient_TorrentBulk(t *testing.T) {
	srv, c := seeded(t)

	if err := c.PauseTorrents(t.Context(), client.AllTorrents); err != nil {
		t.Fatalf("PauseTorrents: %v", err)
	}
	if got := lastBody(t, srv, "/torrents/pause"); got != "hashes=all" {
		t.Errorf("body = %q", got)
	}

	other := "a94a8fe5ccb19ba61c4c0873d391e987982fbbd3"
	if err := c.ResumeTorrents(t.Context(), client.HashList(testHash, other)); err != nil {
		t.Fatalf("ResumeTorrents: %v", err)
	}
	if got := lastBody(t, srv, "/torrents/resume"); got != "hashes="+testHash+"%7C"+other {
		t.Errorf("body = %q", got)
	}

	if err := c.PauseTorrents(t.Context(), client.HashList()); !errors.Is(err, client.ErrInvalidInput) {
		t.Errorf("empty list: exp ErrInvalidInput, got %v", err)
	}
	if err := c.PauseTorrents(t.Context(), client.HashList("nope")); !errors.Is(err, client.ErrInvalidInput) {
		t.Errorf("bad hash: exp ErrInvalidInput, got %v", err)
	}
}

func TestClient_Priority(t *testing.T) {
	t.Run("queueingDisabled", func(t *testing.T) {
		_, c := seeded(t)

		err := c.IncreasePriority(t.Context(), client.HashList(testHash))
		if !errors.Is(err, client.ErrConflict) {
			t.Fatalf("exp ErrConflict, got %v", err)
		}
		if client.StatusCode(err) != http.StatusConflict {
			t.Errorf("status = %d", client.StatusCode(err))
		}

		if err := c.DecreasePriority(t.Context(), client.AllTorrents); !errors.Is(err, client.ErrConflict) {
			t.Errorf("exp ErrConflict, got %v", err)
		}
	})

	t.Run("queueingEnabled", func(t *testing.T) {
		_, c := seeded(t, qbtest.WithQueueing())

		if err := c.IncreasePriority(t.Context(), client.HashList(testHash)); err != nil {
			t.Errorf("IncreasePriority: %v", err)
		}
		if err := c.DecreasePriority(t.Context(), client.HashList(testHash)); err != nil {
			t.Errorf("DecreasePriority: %v", err)
		}
	})
}

func TestClient_Logs(t *testing.T) {
	srv, c := seeded(t)

	entries, err := c.MainLog(t.Context(), client.DefaultLogFilter())
	if err != nil {
		t.Fatalf("MainLog: %v", err)
	}
	if len(entries) != 2 || entries[1].Type != client.LogInfo {
		t.Errorf("unexpected entries: %+v", entries)
	}
	if got := lastBody(t, srv, "/log/main"); got != "normal=true&info=true&warning=true&critical=true&last_known_id=-1" {
		t.Errorf("body = %q", got)
	}

	filter := client.LogFilter{Critical: true, LastKnownID: 41}
	if _, err := c.MainLog(t.Context(), filter); err != nil {
		t.Fatalf("MainLog: %v", err)
	}
	if got := lastBody(t, srv, "/log/main"); got != "normal=false&info=false&warning=false&critical=true&last_known_id=41" {
		t.Errorf("body = %q", got)
	}

	peers, err := c.PeerLog(t.Context(), -1)
	if err != nil {
		t.Fatalf("PeerLog: %v", err)
	}
	exp := []client.PeerLogEntry{{ID: 0, IP: "203.0.113.7", Timestamp: 1700000000000, Blocked: true, Reason: "banned"}}
	if diff := cmp.Diff(exp, peers); diff != "" {
		t.Errorf("peer log mismatch (-want +got):\n%s", diff)
	}
}

func TestClient_Sync(t *testing.T) {
	srv, c := seeded(t)

	data, err := c.MainData(t.Context(), 0)
	if err != nil {
		t.Fatalf("MainData: %v", err)
	}
	if data.RID != 1 || !data.FullUpdate {
		t.Errorf("unexpected main data: %+v", data)
	}
	if got := lastBody(t, srv, "/sync/maindata"); got != "rid=0" {
		t.Errorf("body = %q", got)
	}

	peers, err := c.TorrentPeers(t.Context(), testHash, 0)
	if err != nil {
		t.Fatalf("TorrentPeers: %v", err)
	}
	if _, ok := peers.Peers["198.51.100.4:6881"]; !ok {
		t.Errorf("expected peer in %v", peers.Peers)
	}
	if got := lastBody(t, srv, "/sync/torrentPeers"); got != "hash="+testHash+"&rid=0" {
		t.Errorf("body = %q", got)
	}

	if _, err := c.TorrentPeers(t.Context(), "0000000000000000000000000000000000000000", 0); !errors.Is(err, client.ErrNotFound) {
		t.Errorf("unknown hash: exp ErrNotFound, got %v", err)
	}
}

func TestClient_ExportTorrent(t *testing.T) {
	_, c := seeded(t)

	var buf bytes.Buffer
	n, err := c.ExportTorrent(t.Context(), testHash, &buf)
	if err != nil {
		t.Fatalf("ExportTorrent: %v", err)
	}
	if n != int64(len(torrentData)) || !bytes.Equal(buf.Bytes(), torrentData) {
		t.Errorf("exported %d bytes %q", n, buf.Bytes())
	}

	buf.Reset()
	if _, err := c.ExportTorrent(t.Context(), "0000000000000000000000000000000000000000", &buf); !errors.Is(err, client.ErrNotFound) {
		t.Errorf("unknown hash: exp ErrNotFound, got %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("nothing should be written for an error, got %q", buf.Bytes())
	}
}

func TestClient_ExportTorrentFile(t *testing.T) {
	sum := sha1.Sum(torrentData)
	expSum := hex.EncodeToString(sum[:])

	testCases := map[string]struct {
		hash    string
		data    []byte
		opts    []client.ExportOption
		dest    string
		expErr  error
		expKind client.Kind
		expFile bool
	}{
		"basic": {
			hash:    testHash,
			expFile: true,
		},
		"checksumPass": {
			hash:    testHash,
			opts:    []client.ExportOption{client.WithChecksum(sha1.New(), expSum), client.WithProgress()},
			expFile: true,
		},
		"checksumFail": {
			hash:    testHash,
			opts:    []client.ExportOption{client.WithChecksum(sha1.New(), "deadbeef")},
			expErr:  client.ErrChecksumMismatch,
			expKind: client.KindDecode,
		},
		"notTorrent": {
			hash:    testHash,
			data:    []byte("<html>login</html>"),
			expErr:  client.ErrNotTorrent,
			expKind: client.KindDecode,
		},
		"unknownHash": {
			hash:    "0000000000000000000000000000000000000000",
			expErr:  client.ErrNotFound,
			expKind: client.KindNotFound,
		},
		"missingDir": {
			hash:    testHash,
			dest:    filepath.Join("missing", "foo.torrent"),
			expErr:  client.ErrStorage,
			expKind: client.KindStorage,
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			srv := qbtest.New(t)
			data := torrentData
			if tc.data != nil {
				data = tc.data
			}
			srv.AddTorrent(testHash, qbtest.Torrent{Name: "foo.iso", Data: data})
			c := build(t, srv)

			dir := t.TempDir()
			dest := filepath.Join(dir, "foo.torrent")
			if tc.dest != "" {
				dest = filepath.Join(dir, tc.dest)
			}

			err := c.ExportTorrentFile(t.Context(), tc.hash, dest, tc.opts...)
			if tc.expErr != nil {
				if !errors.Is(err, tc.expErr) {
					t.Fatalf("exp %v, got %v", tc.expErr, err)
				}
				if kind, ok := client.KindOf(err); !ok || kind != tc.expKind {
					t.Errorf("kind = %v, want %v", kind, tc.expKind)
				}
			} else if err != nil {
				t.Fatalf("ExportTorrentFile: %v", err)
			}

			got, readErr := os.ReadFile(dest)
			if tc.expFile {
				if readErr != nil {
					t.Fatalf("reading export: %v", readErr)
				}
				if !bytes.Equal(got, torrentData) {
					t.Errorf("file contents = %q", got)
				}
			} else if !os.IsNotExist(readErr) {
				t.Errorf("dest should not exist, stat err: %v", readErr)
			}

			matches, _ := filepath.Glob(filepath.Join(dir, ".qbit-export-*"))
			if len(matches) > 0 {
				t.Errorf("temp files left behind: %v", matches)
			}
		})
	}
}

func TestClient_ExportTorrentFile_SkipExisting(t *testing.T) {
	srv, c := seeded(t)

	dest := filepath.Join(t.TempDir(), "foo.torrent")
	if err := os.WriteFile(dest, []byte("keep"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := c.ExportTorrentFile(t.Context(), testHash, dest, client.WithSkipExisting()); err != nil {
		t.Fatalf("ExportTorrentFile: %v", err)
	}

	got, _ := os.ReadFile(dest)
	if string(got) != "keep" {
		t.Errorf("existing file overwritten: %q", got)
	}
	if n := len(srv.RequestsTo("/torrents/export")); n != 1 {
		t.Errorf("requests = %d, want 1", n)
	}
}
