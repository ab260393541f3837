package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// hashRule accepts v1 (SHA-1) and v2 (SHA-256) info hashes.
const hashRule = "required,infohash"

// Hashes selects the torrents a bulk operation applies to.
type Hashes struct {
	all  bool
	list []string
}

// AllTorrents selects every torrent known to the server.
var AllTorrents = Hashes{all: true}

// HashList selects the torrents with the given info hashes.
func HashList(hashes ...string) Hashes {
	return Hashes{list: append([]string(nil), hashes...)}
}

// String returns the wire form: "all" or the hashes joined by '|'.
func (h Hashes) String() string {
	if h.all {
		return "all"
	}

	return strings.Join(h.list, "|")
}

func (h Hashes) check() error {
	if h.all {
		return nil
	}
	if len(h.list) == 0 {
		return errors.New("no torrent hashes given")
	}
	for _, hash := range h.list {
		if err := checkHash(hash); err != nil {
			return err
		}
	}

	return nil
}

func checkHash(hash string) error {
	if err := validate.Var(hash, hashRule); err != nil {
		return fmt.Errorf("hash %q: %w", hash, FieldErrors{{Field: "hash", Err: "must be a 40 or 64 character hex info hash"}})
	}

	return nil
}

// TorrentProperties is the detail view of a single torrent. Sizes are in
// bytes, durations in seconds and speeds in bytes per second.
type TorrentProperties struct {
	SavePath         string  `json:"save_path"`
	CreationDate     int64   `json:"creation_date"`
	PieceSize        int64   `json:"piece_size"`
	Comment          string  `json:"comment"`
	TotalWasted      int64   `json:"total_wasted"`
	TotalUploaded    int64   `json:"total_uploaded"`
	TotalDownloaded  int64   `json:"total_downloaded"`
	UploadLimit      int64   `json:"up_limit"`
	DownloadLimit    int64   `json:"dl_limit"`
	TimeElapsed      int64   `json:"time_elapsed"`
	SeedingTime      int64   `json:"seeding_time"`
	NbConnections    int     `json:"nb_connections"`
	ShareRatio       float64 `json:"share_ratio"`
	AdditionDate     int64   `json:"addition_date"`
	CompletionDate   int64   `json:"completion_date"`
	CreatedBy        string  `json:"created_by"`
	DownloadSpeedAvg int64   `json:"dl_speed_avg"`
	DownloadSpeed    int64   `json:"dl_speed"`
	ETA              int64   `json:"eta"`
	LastSeen         int64   `json:"last_seen"`
	Peers            int     `json:"peers"`
	PeersTotal       int     `json:"peers_total"`
	PiecesHave       int     `json:"pieces_have"`
	PiecesNum        int     `json:"pieces_num"`
	Reannounce       int64   `json:"reannounce"`
	Seeds            int     `json:"seeds"`
	SeedsTotal       int     `json:"seeds_total"`
	TotalSize        int64   `json:"total_size"`
	UploadSpeedAvg   int64   `json:"up_speed_avg"`
	UploadSpeed      int64   `json:"up_speed"`
	IsPrivate        bool    `json:"isPrivate"`
}

// Tracker is one tracker entry of a torrent. Status follows the WebUI
// numbering: 0 disabled, 1 not contacted, 2 working, 3 updating, 4 not working.
type Tracker struct {
	URL           string `json:"url"`
	Status        int    `json:"status"`
	Tier          int    `json:"tier"`
	NumPeers      int    `json:"num_peers"`
	NumSeeds      int    `json:"num_seeds"`
	NumLeeches    int    `json:"num_leeches"`
	NumDownloaded int    `json:"num_downloaded"`
	Message       string `json:"msg"`
}

// WebSeed is an HTTP seed of a torrent.
type WebSeed struct {
	URL string `json:"url"`
}

// TorrentProperties returns the properties of the torrent with hash.
// An unknown hash yields an error matching [ErrNotFound].
func (c *Client) TorrentProperties(ctx context.Context, hash string) (TorrentProperties, error) {
	return keyedJSON[TorrentProperties](ctx, c, "/torrents/properties", "TorrentProperties", hash)
}

// TorrentTrackers returns the trackers of the torrent with hash.
func (c *Client) TorrentTrackers(ctx context.Context, hash string) ([]Tracker, error) {
	return keyedJSON[[]Tracker](ctx, c, "/torrents/trackers", "TorrentTrackers", hash)
}

// TorrentWebSeeds returns the web seeds of the torrent with hash.
func (c *Client) TorrentWebSeeds(ctx context.Context, hash string) ([]WebSeed, error) {
	return keyedJSON[[]WebSeed](ctx, c, "/torrents/webseeds", "TorrentWebSeeds", hash)
}

func keyedJSON[T any](ctx context.Context, c *Client, path, op, hash string) (T, error) {
	var zero T
	if err := checkHash(hash); err != nil {
		return zero, invalidInput(op, err)
	}

	body, err := c.DispatchFormKeyed(ctx, path, op, NewForm().Set("hash", hash))
	if err != nil {
		return zero, err
	}

	return Decode[T](op, body)
}

// PauseTorrents pauses the selected torrents.
func (c *Client) PauseTorrents(ctx context.Context, hashes Hashes) error {
	return c.bulk(ctx, "/torrents/pause", "PauseTorrents", hashes, false)
}

// ResumeTorrents resumes the selected torrents.
func (c *Client) ResumeTorrents(ctx context.Context, hashes Hashes) error {
	return c.bulk(ctx, "/torrents/resume", "ResumeTorrents", hashes, false)
}

// IncreasePriority moves the selected torrents one step up the queue.
// It fails with [ErrConflict] when torrent queueing is disabled.
func (c *Client) IncreasePriority(ctx context.Context, hashes Hashes) error {
	return c.bulk(ctx, "/torrents/increasePrio", "IncreasePriority", hashes, true)
}

// DecreasePriority moves the selected torrents one step down the queue.
// It fails with [ErrConflict] when torrent queueing is disabled.
func (c *Client) DecreasePriority(ctx context.Context, hashes Hashes) error {
	return c.bulk(ctx, "/torrents/decreasePrio", "DecreasePriority", hashes, true)
}

func (c *Client) bulk(ctx context.Context, path, op string, hashes Hashes, queueing bool) error {
	if err := hashes.check(); err != nil {
		return invalidInput(op, err)
	}

	_, err := c.DispatchForm(ctx, path, op, NewForm().Set("hashes", hashes.String()))

	var e *Error
	if queueing && errors.As(err, &e) && e.Kind == KindUnexpectedStatus && e.StatusCode == http.StatusConflict {
		e.Kind = KindConflict
		if e.Body == "" {
			e.Body = "torrent queueing is not enabled"
		}
	}

	return err
}
