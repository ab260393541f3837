package client

import (
	"context"
	"encoding/json"
)

// MainData is an incremental snapshot of the server state. Pass RID back
// in the next call to receive only what changed; FullUpdate reports
// whether the server ignored the previous RID and sent everything.
// Torrents and categories are kept as raw JSON because partial updates
// carry only the fields that changed.
type MainData struct {
	RID               int64                      `json:"rid"`
	FullUpdate        bool                       `json:"full_update"`
	Torrents          map[string]json.RawMessage `json:"torrents"`
	TorrentsRemoved   []string                   `json:"torrents_removed"`
	Categories        map[string]json.RawMessage `json:"categories"`
	CategoriesRemoved []string                   `json:"categories_removed"`
	Tags              []string                   `json:"tags"`
	TagsRemoved       []string                   `json:"tags_removed"`
	ServerState       json.RawMessage            `json:"server_state"`
}

// PeersData is the incremental peer list of one torrent, keyed by "ip:port".
type PeersData struct {
	RID          int64                      `json:"rid"`
	FullUpdate   bool                       `json:"full_update"`
	ShowFlags    bool                       `json:"show_flags"`
	Peers        map[string]json.RawMessage `json:"peers"`
	PeersRemoved []string                   `json:"peers_removed"`
}

// MainData returns the changes since rid; 0 requests a full snapshot.
func (c *Client) MainData(ctx context.Context, rid int64) (MainData, error) {
	body, err := c.DispatchForm(ctx, "/sync/maindata", "MainData", NewForm().SetInt("rid", rid))
	if err != nil {
		return MainData{}, err
	}

	return Decode[MainData]("MainData", body)
}

// TorrentPeers returns the peer changes of one torrent since rid.
func (c *Client) TorrentPeers(ctx context.Context, hash string, rid int64) (PeersData, error) {
	const op = "TorrentPeers"
	if err := checkHash(hash); err != nil {
		return PeersData{}, invalidInput(op, err)
	}

	body, err := c.DispatchFormKeyed(ctx, "/sync/torrentPeers", op, NewForm().Set("hash", hash).SetInt("rid", rid))
	if err != nil {
		return PeersData{}, err
	}

	return Decode[PeersData](op, body)
}
