package client

import (
	"context"
	"errors"
	"strings"
)

// TransferInfo is the global transfer summary shown in the status bar.
type TransferInfo struct {
	DownloadSpeed    int64  `json:"dl_info_speed"`
	Downloaded       int64  `json:"dl_info_data"`
	UploadSpeed      int64  `json:"up_info_speed"`
	Uploaded         int64  `json:"up_info_data"`
	DownloadLimit    int64  `json:"dl_rate_limit"`
	UploadLimit      int64  `json:"up_rate_limit"`
	DHTNodes         int64  `json:"dht_nodes"`
	ConnectionStatus string `json:"connection_status"`
}

// TransferInfo returns the current global transfer summary.
func (c *Client) TransferInfo(ctx context.Context) (TransferInfo, error) {
	body, err := c.DispatchBare(ctx, "/transfer/info", "TransferInfo")
	if err != nil {
		return TransferInfo{}, err
	}

	return Decode[TransferInfo]("TransferInfo", body)
}

// GlobalDownloadLimit returns the limit in bytes per second; 0 means none.
func (c *Client) GlobalDownloadLimit(ctx context.Context) (int64, error) {
	body, err := c.DispatchBare(ctx, "/transfer/downloadLimit", "GlobalDownloadLimit")
	if err != nil {
		return 0, err
	}

	return parseInt("GlobalDownloadLimit", body)
}

// GlobalUploadLimit returns the limit in bytes per second; 0 means none.
func (c *Client) GlobalUploadLimit(ctx context.Context) (int64, error) {
	body, err := c.DispatchBare(ctx, "/transfer/uploadLimit", "GlobalUploadLimit")
	if err != nil {
		return 0, err
	}

	return parseInt("GlobalUploadLimit", body)
}

// SetGlobalDownloadLimit sets the limit in bytes per second; 0 removes it.
func (c *Client) SetGlobalDownloadLimit(ctx context.Context, limit int64) error {
	return c.setLimit(ctx, "/transfer/setDownloadLimit", "SetGlobalDownloadLimit", limit)
}

// SetGlobalUploadLimit sets the limit in bytes per second; 0 removes it.
func (c *Client) SetGlobalUploadLimit(ctx context.Context, limit int64) error {
	return c.setLimit(ctx, "/transfer/setUploadLimit", "SetGlobalUploadLimit", limit)
}

func (c *Client) setLimit(ctx context.Context, path, op string, limit int64) error {
	if limit < 0 {
		return invalidInput(op, errors.New("limit must not be negative"))
	}

	_, err := c.DispatchForm(ctx, path, op, NewForm().SetInt("limit", limit))
	return err
}

// SpeedLimitsMode reports whether the alternative speed limits are active.
func (c *Client) SpeedLimitsMode(ctx context.Context) (bool, error) {
	body, err := c.DispatchBare(ctx, "/transfer/speedLimitsMode", "SpeedLimitsMode")
	if err != nil {
		return false, err
	}

	switch strings.TrimSpace(body) {
	case "1":
		return true, nil
	case "0":
		return false, nil
	default:
		return false, &Error{Kind: KindDecode, Op: "SpeedLimitsMode", Body: body}
	}
}

// ToggleSpeedLimitsMode switches between the normal and alternative speed limits.
func (c *Client) ToggleSpeedLimitsMode(ctx context.Context) error {
	_, err := c.DispatchBare(ctx, "/transfer/toggleSpeedLimitsMode", "ToggleSpeedLimitsMode")
	return err
}

// BanPeers bans peers given as "host:port".
func (c *Client) BanPeers(ctx context.Context, peers ...string) error {
	if len(peers) == 0 {
		return invalidInput("BanPeers", errors.New("no peers given"))
	}

	_, err := c.DispatchForm(ctx, "/transfer/banPeers", "BanPeers", NewForm().Set("peers", strings.Join(peers, "|")))
	return err
}
