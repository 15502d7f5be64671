package demoserver

import (
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/raysh454/repview/internal/logging"
)

// DemoServer imitates the college site: it serves the replacements fragment
// in switchable versions and can be told to fail with a chosen status.
type DemoServer struct {
	cfg       Config
	fragments map[int]Fragment
	logger    logging.Logger

	mu         sync.RWMutex
	version    int
	failStatus int // 0 serves the fragment
	requests   int
	lastTS     string
}

// State is the demo server's current behaviour.
type State struct {
	Version           int    `json:"version"`
	AvailableVersions []int  `json:"available_versions"`
	FailStatus        int    `json:"fail_status"`
	Requests          int    `json:"requests"`
	LastTS            string `json:"last_ts"`
}

// NewDemoServer creates a new demo server instance.
func NewDemoServer(cfg Config, logger logging.Logger) *DemoServer {
	if cfg.InitialVersion == 0 {
		cfg.InitialVersion = 1
	}
	if logger == nil {
		logger = logging.NewStdoutLogger("demoserver")
	}
	return &DemoServer{
		cfg:       cfg,
		fragments: Fragments(),
		logger:    logger,
		version:   cfg.InitialVersion,
	}
}

// Handler returns the demo routes.
func (s *DemoServer) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /replacements/api/fetch-rep", s.fragmentHandler)
	mux.HandleFunc("GET /replacements/view.html", s.viewHandler)

	// Control panel for version switching
	mux.HandleFunc("GET /demo/control", s.controlPanelHandler)
	mux.HandleFunc("GET /demo/state", s.stateHandler)
	mux.HandleFunc("POST /demo/set-version", s.setVersionHandler)
	mux.HandleFunc("POST /demo/set-status", s.setStatusHandler)
	mux.HandleFunc("POST /demo/reset", s.resetHandler)

	return mux
}

// Start listens on the configured port and blocks.
func (s *DemoServer) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.logger.Info("demo server starting",
		logging.Field{Key: "view", Value: "http://localhost" + addr + "/replacements/view.html"},
		logging.Field{Key: "control", Value: "http://localhost" + addr + "/demo/control"})
	srv := &http.Server{Addr: addr, Handler: s.Handler(), ReadHeaderTimeout: 10 * time.Second}
	return srv.ListenAndServe()
}

// State returns a copy of the current state.
func (s *DemoServer) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return State{
		Version:           s.version,
		AvailableVersions: s.versions(),
		FailStatus:        s.failStatus,
		Requests:          s.requests,
		LastTS:            s.lastTS,
	}
}

func (s *DemoServer) versions() []int {
	out := make([]int, 0, len(s.fragments))
	for v := range s.fragments {
		out = append(out, v)
	}
	sort.Ints(out)
	return out
}

func (s *DemoServer) fragmentHandler(w http.ResponseWriter, r *http.Request) {
	ts := r.URL.Query().Get("ts")

	s.mu.Lock()
	s.requests++
	s.lastTS = ts
	version, failStatus := s.version, s.failStatus
	s.mu.Unlock()

	if s.cfg.DelayMillis > 0 {
		select {
		case <-time.After(time.Duration(s.cfg.DelayMillis) * time.Millisecond):
		case <-r.Context().Done():
			return
		}
	}

	s.logger.Debug("fragment requested",
		logging.Field{Key: "ts", Value: ts},
		logging.Field{Key: "version", Value: version})

	w.Header().Set("Cache-Control", "no-store")
	if failStatus != 0 {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(failStatus)
		_, _ = w.Write([]byte(http.StatusText(failStatus)))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(s.fragments[version].HTML))
}

// viewHandler serves a page that loads the fragment from the browser, as
// the real site does.
func (s *DemoServer) viewHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(viewHTML))
}

func (s *DemoServer) stateHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.State())
}

// setVersionHandler selects the fragment version.
func (s *DemoServer) setVersionHandler(w http.ResponseWriter, r *http.Request) {
	version, err := strconv.Atoi(r.FormValue("version"))
	if err != nil {
		http.Error(w, "Invalid version number", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	_, ok := s.fragments[version]
	if ok {
		s.version = version
	}
	s.mu.Unlock()

	if !ok {
		http.Error(w, "Unknown version", http.StatusNotFound)
		return
	}
	s.logger.Info("version set", logging.Field{Key: "version", Value: version})
	writeJSON(w, http.StatusOK, s.State())
}

// setStatusHandler makes the fragment resource fail with status; 0 or 200
// restores normal responses.
func (s *DemoServer) setStatusHandler(w http.ResponseWriter, r *http.Request) {
	status, err := strconv.Atoi(r.FormValue("status"))
	if err != nil || status < 0 || (status != 0 && (status < 100 || status > 599)) {
		http.Error(w, "Invalid status", http.StatusBadRequest)
		return
	}
	if status == http.StatusOK {
		status = 0
	}

	s.mu.Lock()
	s.failStatus = status
	s.mu.Unlock()

	s.logger.Info("fail status set", logging.Field{Key: "status", Value: status})
	writeJSON(w, http.StatusOK, s.State())
}

// resetHandler restores the initial version and normal responses.
func (s *DemoServer) resetHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.version = s.cfg.InitialVersion
	s.failStatus = 0
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, s.State())
}

func (s *DemoServer) controlPanelHandler(w http.ResponseWriter, r *http.Request) {
	type versionInfo struct {
		Number      int
		Description string
		Active      bool
	}

	state := s.State()
	data := struct {
		Versions   []versionInfo
		FailStatus int
		Requests   int
	}{FailStatus: state.FailStatus, Requests: state.Requests}
	for _, v := range state.AvailableVersions {
		data.Versions = append(data.Versions, versionInfo{
			Number:      v,
			Description: s.fragments[v].Description,
			Active:      v == state.Version,
		})
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := controlPanel.Execute(w, data); err != nil {
		s.logger.Warn("rendering control panel", logging.Field{Key: "error", Value: err})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

const viewHTML = `<!DOCTYPE html>
<html lang="ru">
<head><meta charset="utf-8"><title>Замены</title></head>
<body>
<div id="content"></div>
<script>
function load() {
  var req = new XMLHttpRequest();
  var el = document.getElementById('content');
  function show(text, reason) { el.innerHTML = text !== '' ? text : 'error: ' + reason; }
  req.onreadystatechange = function () {
    if (req.readyState !== 4) return;
    if (req.status === 200) show(req.responseText, 'ok');
    else if (req.status === 0) show('', '0 - connection failed');
    else show('', req.status + ' - ' + req.responseText);
  };
  req.open('GET', '/replacements/api/fetch-rep?ts=' + Date.now(), true);
  try { req.send(); } catch (e) { show('', 'xhr failure'); }
}
window.addEventListener('load', load, false);
</script>
</body>
</html>`

var controlPanel = template.Must(template.New("control").Parse(`<!DOCTYPE html>
<html>
<head>
    <title>Demo Server Control Panel</title>
    <style>
        body { font-family: system-ui, sans-serif; max-width: 900px; margin: 0 auto; padding: 20px; background: #f5f5f5; }
        .card { background: white; border-radius: 8px; padding: 16px; margin: 12px 0; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        .active { font-weight: bold; color: #28a745; }
        button { padding: 6px 14px; margin-right: 6px; cursor: pointer; }
    </style>
</head>
<body>
    <h1>Demo Server Control Panel</h1>
    <p>Requests served: {{.Requests}}. <a href="/replacements/view.html" target="_blank">Open view.html</a></p>

    <div class="card">
        <h2>Fragment version</h2>
        {{range .Versions}}
        <div>
            <button onclick="post('/demo/set-version', 'version={{.Number}}')">v{{.Number}}</button>
            <span class="{{if .Active}}active{{end}}">{{.Description}}</span>
        </div>
        {{end}}
    </div>

    <div class="card">
        <h2>Failure</h2>
        <p>Current: {{if .FailStatus}}{{.FailStatus}}{{else}}none{{end}}</p>
        <button onclick="post('/demo/set-status', 'status=404')">404</button>
        <button onclick="post('/demo/set-status', 'status=500')">500</button>
        <button onclick="post('/demo/set-status', 'status=503')">503</button>
        <button onclick="post('/demo/set-status', 'status=0')">Serve normally</button>
        <button onclick="post('/demo/reset', '')">Reset</button>
    </div>

    <script>
        function post(path, body) {
            fetch(path, {
                method: 'POST',
                headers: {'Content-Type': 'application/x-www-form-urlencoded'},
                body: body
            }).then(function () { location.reload(); });
        }
    </script>
</body>
</html>`))
