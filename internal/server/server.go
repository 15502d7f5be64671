package server

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"golang.org/x/time/rate"

	"github.com/raysh454/repview/internal/logging"
	_ "github.com/raysh454/repview/internal/server/docs" // swagger document
	"github.com/raysh454/repview/internal/store"
	"github.com/raysh454/repview/internal/watcher"
)

const (
	ViewPath   = "/replacements/view.html"
	SocketPath = "/replacements/ws"
)

//go:embed templates/view.html
var templatesFS embed.FS

var viewTemplate = template.Must(template.ParseFS(templatesFS, "templates/view.html"))

// Snapshots is the read side of the snapshot store.
type Snapshots interface {
	Latest(ctx context.Context) (*store.Snapshot, error)
	Get(ctx context.Context, id string) (*store.Snapshot, error)
	List(ctx context.Context, limit int) ([]*store.Snapshot, error)
	Diff(ctx context.Context, baseID, headID string) (*store.Diff, error)
}

// Checker runs update checks on demand.
type Checker interface {
	Check(ctx context.Context) (*watcher.Result, error)
	History() []*watcher.Result
}

// Server is the HTTP + WebSocket surface: the hosted page and the JSON API.
type Server struct {
	cfg       Config
	page      *Page
	snapshots Snapshots
	checker   Checker
	router    chi.Router
	upgrader  websocket.Upgrader
	limiter   *rate.Limiter
	logger    logging.Logger
}

// NewServer wires the routes. checker may be nil, which disables refresh.
func NewServer(cfg Config, page *Page, snapshots Snapshots, checker Checker, logger logging.Logger) (*Server, error) {
	if page == nil || snapshots == nil {
		return nil, errors.New("server: page and snapshots are required")
	}
	if logger == nil {
		logger = logging.NewStdoutLogger("server")
	}
	if cfg.AllowedOrigin == "" {
		cfg.AllowedOrigin = "*"
	}

	s := &Server{
		cfg:       cfg,
		page:      page,
		snapshots: snapshots,
		checker:   checker,
		router:    chi.NewRouter(),
		logger:    logger.With(logging.Field{Key: "component", Value: "server"}),
	}
	s.upgrader = websocket.Upgrader{CheckOrigin: s.checkOrigin}
	if cfg.RefreshPerMinute > 0 {
		s.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RefreshPerMinute)), 1)
	}

	s.routes()
	return s, nil
}

func (s *Server) routes() {
	r := s.router

	r.Use(s.corsMiddleware)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, ViewPath, http.StatusFound)
	})
	r.Get(ViewPath, s.handleView)
	r.Get(SocketPath, s.handleSocket)

	r.Route("/api", func(r chi.Router) {
		r.Options("/*", s.optionsHandler("GET, POST"))
		r.Get("/schedule", s.handleSchedule)
		r.Get("/groups", s.handleListGroups)
		r.Get("/groups/{group}", s.handleGetGroup)
		r.Get("/teachers", s.handleListTeachers)
		r.Get("/teachers/{teacher}", s.handleGetTeacher)
		r.Get("/snapshots", s.handleListSnapshots)
		r.Get("/snapshots/{id}", s.handleGetSnapshot)
		r.Get("/snapshots/{id}/diff", s.handleSnapshotDiff)
		r.Get("/checks", s.handleListChecks)
		r.Post("/refresh", s.handleRefresh)
	})

	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", s.cfg.AllowedOrigin)
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Max-Age", "86400")

		next.ServeHTTP(w, r)
	})
}

func (s *Server) optionsHandler(methods string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Methods", methods)
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) checkOrigin(r *http.Request) bool {
	if s.cfg.AllowedOrigin == "*" {
		return true
	}
	origin := r.Header.Get("Origin")
	return origin == "" || origin == s.cfg.AllowedOrigin
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	fields := []logging.Field{
		{Key: "method", Value: r.Method},
		{Key: "path", Value: r.URL.Path},
	}
	if q := r.URL.Query(); len(q) > 0 {
		fields = append(fields, logging.Field{Key: "query", Value: q})
	}
	if r.Body != nil && r.Method == http.MethodPost {
		if bodyBytes, err := io.ReadAll(r.Body); err == nil {
			if len(bodyBytes) > 0 {
				fields = append(fields, logging.Field{Key: "body", Value: string(bodyBytes)})
			}
			r.Body = io.NopCloser(bytes.NewReader(bodyBytes))
		}
	}

	s.logger.Debug("http_request", fields...)

	s.router.ServeHTTP(w, r)
}

// HTTPServer creates an *http.Server ready to ListenAndServe.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:              s.cfg.ListenAddr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      0, // websocket streams
	}
}

// --- page ---

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	data := struct {
		ID         string
		Content    template.HTML
		SocketPath string
	}{
		ID:         s.page.ID(),
		Content:    template.HTML(s.page.Content()),
		SocketPath: SocketPath,
	}
	if err := viewTemplate.Execute(w, data); err != nil {
		s.logger.Warn("rendering view", logging.Field{Key: "error", Value: err})
	}
}

type contentMessage struct {
	Content string `json:"content"`
}

func (s *Server) handleSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("upgrading to websocket", logging.Field{Key: "error", Value: err.Error()})
		return
	}
	defer conn.Close()

	updates, unsubscribe := s.page.Subscribe()
	defer unsubscribe()

	// the client never talks; reading only notices the close
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	if err := conn.WriteJSON(contentMessage{Content: s.page.Content()}); err != nil {
		return
	}
	for {
		select {
		case content := <-updates:
			if err := conn.WriteJSON(contentMessage{Content: content}); err != nil {
				return
			}
		case <-closed:
			return
		case <-r.Context().Done():
			return
		}
	}
}

// --- JSON helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}
