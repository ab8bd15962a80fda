// Package api is the localhost bridge an editing shell uses to drive the
// engine: REST endpoints for exports and smart crops, and a WebSocket for
// live previews.
package api

import (
	"context"
	"net/http"
	"sync"

	"github.com/dixieflatline76/halook/config"
	"github.com/dixieflatline76/halook/pkg/preset"
	"github.com/dixieflatline76/halook/pkg/render"
	"github.com/dixieflatline76/halook/util/log"
	"github.com/gorilla/websocket"
)

// Config configures a Server.
type Config struct {
	Addr           string  // Default: config.DefaultServerAddr
	PreviewFPS     float64 // Preview renders per second per session
	PreviewQuality int     // JPEG quality of preview frames
	// SourceDir, when set, lets sessions load images by path relative to it.
	SourceDir string
}

// Server represents the Local REST/WebSocket server.
type Server struct {
	httpServer *http.Server
	mux        *http.ServeMux
	upgrader   websocket.Upgrader
	cfg        Config

	renderer *render.Renderer
	exporter *render.Exporter
	sources  *render.SourceCache
	catalog  *preset.Catalog
	faces    *render.FaceDetector

	// WebSocket management
	sessions   map[*session]bool
	sessionsMu sync.Mutex
}

// NewServer creates a new API server rendering with r.
func NewServer(r *render.Renderer, cfg Config) *Server {
	if cfg.Addr == "" {
		cfg.Addr = config.DefaultServerAddr
	}
	if cfg.PreviewQuality < 1 || cfg.PreviewQuality > 100 {
		cfg.PreviewQuality = 80
	}
	s := &Server{
		mux: http.NewServeMux(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		cfg:      cfg,
		renderer: r,
		exporter: render.NewExporter(r),
		sessions: make(map[*session]bool),
	}
	if cfg.SourceDir != "" {
		s.sources = render.NewSourceCache(render.BytesLoader(s.readSource))
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/health", s.enableCORS(s.handleHealth))
	s.mux.HandleFunc("/export", s.enableCORS(s.handleExport))
	s.mux.HandleFunc("/suggest-crop", s.enableCORS(s.handleSuggestCrop))
	s.mux.HandleFunc("/presets", s.enableCORS(s.handlePresets))
	s.mux.HandleFunc("/ws", s.handleWebSocket)
}

// enableCORS adds CORS headers to the handler.
func (s *Server) enableCORS(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Allow the editing shell to access localhost
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		// Handle preflight requests
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next(w, r)
	}
}

// SetFaceDetector enables face boost for /suggest-crop.
func (s *Server) SetFaceDetector(d *render.FaceDetector) {
	s.faces = d
}

// SetCatalog enables the /presets endpoint.
func (s *Server) SetCatalog(c *preset.Catalog) {
	s.catalog = c
}

// Handler returns the HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Addr returns the address Start listens on.
func (s *Server) Addr() string {
	return s.cfg.Addr
}

// Start starts the server. It blocks until the server stops.
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:    s.cfg.Addr,
		Handler: s.mux,
	}
	log.Printf("Bridge listening on %s", s.cfg.Addr)
	return s.httpServer.ListenAndServe()
}

// Stop closes every session and shuts the server down. A running export is
// allowed to finish.
func (s *Server) Stop(ctx context.Context) error {
	s.sessionsMu.Lock()
	for sess := range s.sessions {
		sess.conn.Close()
	}
	s.sessionsMu.Unlock()

	var err error
	if s.httpServer != nil {
		err = s.httpServer.Shutdown(ctx)
	}
	s.exporter.Wait()
	return err
}

// Sessions returns the number of open preview sessions.
func (s *Server) Sessions() int {
	s.sessionsMu.Lock()
	defer s.sessionsMu.Unlock()
	return len(s.sessions)
}
