// Package qbtest runs an in-process stand-in for the qBittorrent WebUI.
// It implements the login handshake, SID checking and a handful of
// endpoints, and records every request it sees.
package qbtest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
)

// Default credentials accepted by a new Server.
const (
	Username = "admin"
	Password = "123456"
)

// Torrent is a torrent known to the Server.
type Torrent struct {
	Name     string
	SavePath string
	Data     []byte
	Trackers []string
}

// Request is what the Server recorded for one call.
type Request struct {
	Path      string
	Body      string
	Form      url.Values
	SID       string
	Referer   string
	UserAgent string
}

// Server is a fake WebUI. Handlers registered with [Server.Handle] run
// only for requests carrying a SID the server issued.
type Server struct {
	*httptest.Server

	username string
	password string
	sid      func(n int) string

	mu          sync.Mutex
	loginStatus int
	omitCookie  bool
	queueing    bool
	logins      int
	logouts     int
	active      map[string]bool
	torrents    map[string]Torrent
	routes      map[string]http.HandlerFunc
	requests    []Request
}

// Option configures a Server.
type Option func(*Server)

// WithCredentials changes the accepted username and password.
func WithCredentials(username, password string) Option {
	return func(s *Server) {
		s.username = username
		s.password = password
	}
}

// WithFixedSID makes every successful login issue sid.
func WithFixedSID(sid string) Option {
	return func(s *Server) {
		s.sid = func(int) string { return sid }
	}
}

// WithQueueing enables torrent queueing, without which priority calls
// answer 409.
func WithQueueing() Option {
	return func(s *Server) {
		s.queueing = true
	}
}

// New starts a Server and closes it when the test ends.
func New(t testing.TB, opts ...Option) *Server {
	t.Helper()

	s := &Server{
		username: Username,
		password: Password,
		sid:      func(n int) string { return fmt.Sprintf("sid-%d", n) },
		active:   make(map[string]bool),
		torrents: make(map[string]Torrent),
		routes:   make(map[string]http.HandlerFunc),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.defaultRoutes()

	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Close)

	return s
}

// Handle registers h for path below /api/v2, replacing any existing route.
func (s *Server) Handle(path string, h http.HandlerFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.routes[path] = h
}

// AddTorrent makes hash known to the keyed endpoints.
func (s *Server) AddTorrent(hash string, t Torrent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.torrents[strings.ToLower(hash)] = t
}

// SetLoginStatus makes the login endpoint answer with code. Zero restores
// normal behaviour.
func (s *Server) SetLoginStatus(code int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.loginStatus = code
}

// OmitCookie makes successful logins return no Set-Cookie header.
func (s *Server) OmitCookie(omit bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.omitCookie = omit
}

// ExpireSessions forgets every issued SID, as a server restart would.
func (s *Server) ExpireSessions() {
	s.mu.Lock()
	defer s.mu.Unlock()

	clear(s.active)
}

// Logins returns the number of login attempts received.
func (s *Server) Logins() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.logins
}

func (s *Server) Logouts() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.logouts
}

// Requests returns the recorded requests, logins included.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]Request(nil), s.requests...)
}

// RequestsTo returns the recorded requests for one path below /api/v2.
func (s *Server) RequestsTo(path string) []Request {
	var out []Request
	for _, r := range s.Requests() {
		if r.Path == path {
			out = append(out, r)
		}
	}

	return out
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	path, ok := strings.CutPrefix(r.URL.Path, "/api/v2")
	if !ok {
		http.NotFound(w, r)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	form, err := url.ParseQuery(string(body))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var sid string
	if c, err := r.Cookie("SID"); err == nil {
		sid = c.Value
	}

	s.mu.Lock()
	s.requests = append(s.requests, Request{
		Path:      path,
		Body:      string(body),
		Form:      form,
		SID:       sid,
		Referer:   r.Header.Get("Referer"),
		UserAgent: r.Header.Get("User-Agent"),
	})
	s.mu.Unlock()

	if path == "/auth/login" {
		s.login(w, form)
		return
	}

	s.mu.Lock()
	authed := s.active[sid]
	h, found := s.routes[path]
	s.mu.Unlock()

	if !authed {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}
	if !found {
		http.NotFound(w, r)
		return
	}

	r.Form = form
	h(w, r)
}

func (s *Server) login(w http.ResponseWriter, form url.Values) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.logins++

	if s.loginStatus != 0 {
		w.WriteHeader(s.loginStatus)
		fmt.Fprint(w, "Your IP address has been banned after too many failed authentication attempts.")
		return
	}

	if form.Get("username") != s.username || form.Get("password") != s.password {
		fmt.Fprint(w, "Fails.")
		return
	}

	sid := s.sid(s.logins)
	s.active[sid] = true
	if !s.omitCookie {
		w.Header().Add("Set-Cookie", "SID="+sid+"; HttpOnly; path=/")
	}
	fmt.Fprint(w, "Ok.")
}

func (s *Server) defaultRoutes() {
	s.routes["/auth/logout"] = func(w http.ResponseWriter, r *http.Request) {
		c, _ := r.Cookie("SID")

		s.mu.Lock()
		s.logouts++
		delete(s.active, c.Value)
		s.mu.Unlock()
	}

	s.routes["/app/version"] = text("v4.6.2")
	s.routes["/app/webapiVersion"] = text("2.9.3")
	s.routes["/app/defaultSavePath"] = text("/downloads")
	s.routes["/app/buildInfo"] = jsonBody(map[string]any{
		"qt": "6.4.2", "libtorrent": "2.0.9.0", "boost": "1.83.0",
		"openssl": "3.1.4", "zlib": "1.3", "bitness": 64,
	})
	s.routes["/transfer/info"] = jsonBody(map[string]any{
		"dl_info_speed": 1024, "dl_info_data": 4096, "up_info_speed": 512,
		"up_info_data": 2048, "dl_rate_limit": 0, "up_rate_limit": 0,
		"dht_nodes": 312, "connection_status": "connected",
	})
	s.routes["/transfer/speedLimitsMode"] = text("0")
	s.routes["/transfer/downloadLimit"] = text("0")
	s.routes["/transfer/uploadLimit"] = text("0")
	s.routes["/log/main"] = jsonBody([]map[string]any{
		{"id": 0, "message": "qBittorrent v4.6.2 started", "timestamp": 1700000000000, "type": 1},
		{"id": 1, "message": "UPnP / NAT-PMP support [ON]", "timestamp": 1700000000100, "type": 2},
	})
	s.routes["/log/peers"] = jsonBody([]map[string]any{
		{"id": 0, "ip": "203.0.113.7", "timestamp": 1700000000000, "blocked": true, "reason": "banned"},
	})
	s.routes["/sync/maindata"] = jsonBody(map[string]any{
		"rid": 1, "full_update": true,
		"torrents":     map[string]any{},
		"server_state": map[string]any{"connection_status": "connected"},
	})

	for _, p := range []string{"/transfer/setDownloadLimit", "/transfer/setUploadLimit", "/transfer/toggleSpeedLimitsMode", "/transfer/banPeers", "/torrents/pause", "/torrents/resume", "/app/shutdown"} {
		s.routes[p] = func(http.ResponseWriter, *http.Request) {}
	}

	priority := func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		queueing := s.queueing
		s.mu.Unlock()

		if !queueing {
			w.WriteHeader(http.StatusConflict)
		}
	}
	s.routes["/torrents/increasePrio"] = priority
	s.routes["/torrents/decreasePrio"] = priority

	s.routes["/torrents/properties"] = s.keyed(func(w http.ResponseWriter, t Torrent) {
		writeJSON(w, map[string]any{
			"save_path":  t.SavePath,
			"total_size": len(t.Data),
			"comment":    t.Name,
			"pieces_num": 1,
		})
	})
	s.routes["/torrents/trackers"] = s.keyed(func(w http.ResponseWriter, t Torrent) {
		trackers := make([]map[string]any, 0, len(t.Trackers))
		for i, u := range t.Trackers {
			trackers = append(trackers, map[string]any{"url": u, "status": 2, "tier": i})
		}
		writeJSON(w, trackers)
	})
	s.routes["/torrents/webseeds"] = s.keyed(func(w http.ResponseWriter, _ Torrent) {
		writeJSON(w, []map[string]any{})
	})
	s.routes["/torrents/export"] = s.keyed(func(w http.ResponseWriter, t Torrent) {
		w.Header().Set("Content-Type", "application/x-bittorrent")
		w.Header().Set("Content-Length", fmt.Sprint(len(t.Data)))
		w.Write(t.Data)
	})
	s.routes["/sync/torrentPeers"] = s.keyed(func(w http.ResponseWriter, _ Torrent) {
		writeJSON(w, map[string]any{
			"rid": 1, "full_update": true, "show_flags": true,
			"peers": map[string]any{"198.51.100.4:6881": map[string]any{"client": "qBittorrent/4.6.2"}},
		})
	})
}

// keyed resolves the "hash" form field, answering 404 for unknown hashes.
func (s *Server) keyed(fn func(http.ResponseWriter, Torrent)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		t, ok := s.torrents[strings.ToLower(r.Form.Get("hash"))]
		s.mu.Unlock()

		if !ok {
			http.Error(w, "Not Found", http.StatusNotFound)
			return
		}
		fn(w, t)
	}
}

func text(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, body)
	}
}

func jsonBody(v any) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, v)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
