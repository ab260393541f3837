package client

import "context"

// LogFilter selects which severities [Client.MainLog] returns.
// LastKnownID excludes entries with an id at or below it; -1 returns all.
type LogFilter struct {
	Normal      bool
	Info        bool
	Warning     bool
	Critical    bool
	LastKnownID int64
}

// DefaultLogFilter returns every entry of every severity.
func DefaultLogFilter() LogFilter {
	return LogFilter{Normal: true, Info: true, Warning: true, Critical: true, LastKnownID: -1}
}

func (f LogFilter) form() *Form {
	return NewForm().
		SetBool("normal", f.Normal).
		SetBool("info", f.Info).
		SetBool("warning", f.Warning).
		SetBool("critical", f.Critical).
		SetInt("last_known_id", f.LastKnownID)
}

// Log severities as reported in LogEntry.Type.
const (
	LogNormal   = 1
	LogInfo     = 2
	LogWarning  = 4
	LogCritical = 8
)

// LogEntry is one line of the application log. Timestamp is in
// milliseconds since the epoch.
type LogEntry struct {
	ID        int64  `json:"id"`
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp"`
	Type      int    `json:"type"`
}

type PeerLogEntry struct {
	ID        int64  `json:"id"`
	IP        string `json:"ip"`
	Timestamp int64  `json:"timestamp"`
	Blocked   bool   `json:"blocked"`
	Reason    string `json:"reason"`
}

func (c *Client) MainLog(ctx context.Context, filter LogFilter) ([]LogEntry, error) {
	body, err := c.DispatchForm(ctx, "/log/main", "MainLog", filter.form())
	if err != nil {
		return nil, err
	}

	return Decode[[]LogEntry]("MainLog", body)
}

// PeerLog returns peer log entries newer than lastKnownID; pass -1 for all.
func (c *Client) PeerLog(ctx context.Context, lastKnownID int64) ([]PeerLogEntry, error) {
	body, err := c.DispatchForm(ctx, "/log/peers", "PeerLog", NewForm().SetInt("last_known_id", lastKnownID))
	if err != nil {
		return nil, err
	}

	return Decode[[]PeerLogEntry]("PeerLog", body)
}
