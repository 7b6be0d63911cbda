// ABOUTME: HTTP surface of the bridge: router construction and wiring.
// ABOUTME: Connects the store, the import pipeline, and the task stream.

package server

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/fieldkit/sheetbridge/internal/importer"
	"github.com/fieldkit/sheetbridge/internal/logging"
	"github.com/fieldkit/sheetbridge/internal/store"
)

// Server holds the bridge's long-lived state: one store, one fetcher,
// a websocket hub streaming task transitions, and one import pipeline
// per editor instance.
type Server struct {
	store   *store.Store
	fetcher importer.Fetcher
	hub     *Hub

	mu        sync.Mutex
	importers map[string]*importer.Importer
}

// New wires a server around a store and a fetcher. The hub doubles as the
// importers' notifier so every task transition reaches websocket clients.
func New(s *store.Store, fetcher importer.Fetcher) *Server {
	return &Server{
		store:     s,
		fetcher:   fetcher,
		hub:       NewHub(),
		importers: make(map[string]*importer.Importer),
	}
}

// importerFor returns the pipeline for one editor instance. The busy
// guard is scoped to the edited field of one record: concurrent imports
// for unrelated records must not block each other.
func (s *Server) importerFor(recordID, editingPath string) *importer.Importer {
	key := recordID + "\x00" + editingPath
	s.mu.Lock()
	defer s.mu.Unlock()
	im, ok := s.importers[key]
	if !ok {
		im = importer.New(s.fetcher, s.hub)
		s.importers[key] = im
	}
	return im
}

// Handler builds the chi router with the full middleware chain.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(logging.Middleware(s.store))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"ok": true})
	})

	r.Post("/render", s.handleRender)
	r.Post("/import", s.handleImport)
	r.Get("/imports", s.handleImports)
	r.Get("/imports/stats", s.handleImportStats)
	r.Get("/imports/ws", s.hub.HandleWS)

	return r
}
