package api

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/rmax-ai/docgraph/pkg/blob"
	"github.com/rmax-ai/docgraph/pkg/explore"
)

// Context keys
type contextKey string

const traceIDKey contextKey = "trace_id"

// DefaultArtifactRoute is where the artifact is served verbatim.
const DefaultArtifactRoute = "/knowledge-graph.json"

// DefaultSearchLimit caps /v1/search results when no limit is given.
const DefaultSearchLimit = 20

// ErrNotLoaded is returned while no artifact has been loaded.
var ErrNotLoaded = errors.New("artifact not loaded")

// Source yields the current artifact bytes.
type Source interface {
	Load(ctx context.Context) ([]byte, error)
}

// BlobSource reads the artifact from a blob store.
type BlobSource struct {
	Store blob.BlobStore
	Key   string
}

// Load implements Source.
func (b BlobSource) Load(ctx context.Context) ([]byte, error) {
	return blob.ReadAll(ctx, b.Store, b.Key)
}

// snapshot is one loaded artifact. It is replaced as a whole on reload.
type snapshot struct {
	raw      []byte
	etag     string
	graph    *explore.Graph
	index    *explore.Index
	loadedAt time.Time
}

// Server serves the artifact and a read API over it.
type Server struct {
	server   *http.Server
	source   Source
	palette  explore.Palette
	staticFS fs.FS
	logger   *slog.Logger

	// TLS Config
	tlsCertFile string
	tlsKeyFile  string

	reloadLimiter *rate.Limiter

	mu   sync.RWMutex
	snap *snapshot
}

// NewServer creates a server reading the artifact from source. artifactRoute
// defaults to DefaultArtifactRoute and addr to ":8090".
func NewServer(source Source, addr, artifactRoute string) *Server {
	if artifactRoute == "" {
		artifactRoute = DefaultArtifactRoute
	}
	if !strings.HasPrefix(artifactRoute, "/") {
		artifactRoute = "/" + artifactRoute
	}

	s := &Server{
		source:  source,
		palette: explore.DefaultPalette,
		logger:  slog.Default(),

		reloadLimiter: rate.NewLimiter(rate.Every(time.Second), 5),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/health", s.handleHealth)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc(artifactRoute, s.handleArtifact)
	mux.HandleFunc("/v1/graph", s.handleGraph)
	mux.HandleFunc("/v1/search", s.handleSearch)
	mux.HandleFunc("/v1/neighbors", s.handleNeighbors)
	mux.HandleFunc("/v1/reload", s.handleReload)

	// Static site (catch-all), only active once SetStaticFS is called
	mux.Handle("/", s.handleStatic())

	handler := withLogging(withRecovery(withSecureHeaders(mux)))

	if addr == "" {
		addr = ":8090"
	}

	s.server = &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  15 * time.Second,
	}

	return s
}

// Handler returns the full middleware-wrapped handler.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// SetStaticFS serves a built site for every path not handled by the API.
func (s *Server) SetStaticFS(fsys fs.FS) {
	s.staticFS = fsys
}

// SetTLS configures the server to use TLS
func (s *Server) SetTLS(certFile, keyFile string) {
	s.tlsCertFile = certFile
	s.tlsKeyFile = keyFile
}

// SetPalette changes the cluster palette used on the next reload.
func (s *Server) SetPalette(p explore.Palette) {
	s.palette = p
}

// SetLogger replaces the server logger.
func (s *Server) SetLogger(l *slog.Logger) {
	s.logger = l
}

// SetReloadLimit caps POST /v1/reload to one request per interval with the
// given burst.
func (s *Server) SetReloadLimit(interval time.Duration, burst int) {
	s.reloadLimiter = rate.NewLimiter(rate.Every(interval), burst)
}

// Reload reads and validates the artifact and swaps it in. On failure the
// previous artifact keeps being served.
func (s *Server) Reload(ctx context.Context) error {
	data, err := s.source.Load(ctx)
	if err != nil {
		ArtifactReloadsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("failed to load artifact: %w", err)
	}

	g, err := explore.Load(data, s.palette)
	if err != nil {
		ArtifactReloadsTotal.WithLabelValues("invalid").Inc()
		return err
	}
	ix, err := explore.NewIndex(g, explore.DefaultCacheSize)
	if err != nil {
		return err
	}

	sum := sha256.Sum256(data)
	snap := &snapshot{
		raw:      data,
		etag:     `"` + hex.EncodeToString(sum[:8]) + `"`,
		graph:    g,
		index:    ix,
		loadedAt: time.Now(),
	}

	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()

	ArtifactReloadsTotal.WithLabelValues("ok").Inc()
	ArtifactNodes.Set(float64(len(g.Nodes)))
	ArtifactLinks.Set(float64(len(g.Links)))
	s.logger.Info("artifact_loaded", "nodes", len(g.Nodes), "links", len(g.Links), "bytes", len(data))
	return nil
}

func (s *Server) current() *snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Index returns the loaded search index, or ErrNotLoaded.
func (s *Server) Index() (*explore.Index, error) {
	snap := s.current()
	if snap == nil {
		return nil, ErrNotLoaded
	}
	return snap.index, nil
}

// Start runs the HTTP server (blocking)
func (s *Server) Start() error {
	if s.tlsCertFile != "" && s.tlsKeyFile != "" {
		s.logger.Info("server_starting_tls", "addr", s.server.Addr)
		if err := s.server.ListenAndServeTLS(s.tlsCertFile, s.tlsKeyFile); err != http.ErrServerClosed {
			return err
		}
	} else {
		s.logger.Info("server_starting", "addr", s.server.Addr)
		if err := s.server.ListenAndServe(); err != http.ErrServerClosed {
			return err
		}
	}
	return nil
}

// Stop gracefully shuts down the server
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("server_stopping")
	return s.server.Shutdown(ctx)
}

// handleArtifact returns the artifact bytes exactly as stored.
func (s *Server) handleArtifact(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, `{"error":"method_not_allowed"}`, http.StatusMethodNotAllowed)
		return
	}

	snap := s.current()
	if snap == nil {
		http.Error(w, `{"error":"artifact_not_loaded"}`, http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("ETag", snap.etag)
	w.Header().Set("Cache-Control", "no-cache")
	if match := r.Header.Get("If-None-Match"); match != "" && match == snap.etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Length", strconv.Itoa(len(snap.raw)))
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	if _, err := w.Write(snap.raw); err != nil {
		s.logger.Error("failed_to_write_artifact", "trace_id", getTraceID(r.Context()), "error", err)
	}
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, `{"error":"method_not_allowed"}`, http.StatusMethodNotAllowed)
		return
	}

	snap := s.current()
	if snap == nil {
		http.Error(w, `{"error":"graph_not_available"}`, http.StatusServiceUnavailable)
		return
	}

	s.writeJSON(w, r, snap.graph)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, `{"error":"method_not_allowed"}`, http.StatusMethodNotAllowed)
		return
	}

	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		http.Error(w, `{"error":"missing_query"}`, http.StatusBadRequest)
		return
	}

	limit := DefaultSearchLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			http.Error(w, `{"error":"invalid_limit"}`, http.StatusBadRequest)
			return
		}
		limit = n
	}

	snap := s.current()
	if snap == nil {
		http.Error(w, `{"error":"graph_not_available"}`, http.StatusServiceUnavailable)
		return
	}

	results := snap.index.Search(q, limit)
	if results == nil {
		results = []*explore.Node{}
	}
	s.writeJSON(w, r, SearchResponse{Query: q, Results: results})
}

func (s *Server) handleNeighbors(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, `{"error":"method_not_allowed"}`, http.StatusMethodNotAllowed)
		return
	}

	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, `{"error":"missing_id"}`, http.StatusBadRequest)
		return
	}

	snap := s.current()
	if snap == nil {
		http.Error(w, `{"error":"graph_not_available"}`, http.StatusServiceUnavailable)
		return
	}

	node, ok := snap.graph.Node(id)
	if !ok {
		http.Error(w, `{"error":"node_not_found"}`, http.StatusNotFound)
		return
	}
	neighbors, _ := snap.index.Neighbors(id)
	s.writeJSON(w, r, NeighborsResponse{Node: node, Neighbors: neighbors})
}

// handleReload re-reads the artifact on demand.
func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, `{"error":"method_not_allowed"}`, http.StatusMethodNotAllowed)
		return
	}
	if !s.reloadLimiter.Allow() {
		http.Error(w, `{"error":"rate_limited"}`, http.StatusTooManyRequests)
		return
	}

	if err := s.Reload(r.Context()); err != nil {
		s.logger.Error("artifact_reload_failed", "trace_id", getTraceID(r.Context()), "error", err)
		http.Error(w, `{"error":"reload_failed"}`, http.StatusInternalServerError)
		return
	}
	s.handleHealth(w, r)
}

func (s *Server) handleStatic() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.staticFS == nil {
			http.NotFound(w, r)
			return
		}

		path := strings.TrimPrefix(r.URL.Path, "/")
		if strings.HasPrefix(path, "v1/") {
			http.NotFound(w, r)
			return
		}
		if path == "" {
			path = "index.html"
		}

		// Site routes like /docs/a/b are served from docs/a/b/index.html
		candidates := []string{path, strings.TrimSuffix(path, "/") + "/index.html", path + ".html"}
		for _, p := range candidates {
			if serveFile(w, s.staticFS, p) {
				return
			}
		}

		http.NotFound(w, r)
	})
}

func serveFile(w http.ResponseWriter, fsys fs.FS, path string) bool {
	file, err := fsys.Open(path)
	if err != nil {
		return false
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil || stat.IsDir() {
		return false
	}

	switch {
	case strings.HasSuffix(path, ".css"):
		w.Header().Set("Content-Type", "text/css")
	case strings.HasSuffix(path, ".js"):
		w.Header().Set("Content-Type", "application/javascript")
	case strings.HasSuffix(path, ".html"):
		w.Header().Set("Content-Type", "text/html")
	case strings.HasSuffix(path, ".json"):
		w.Header().Set("Content-Type", "application/json")
	}
	io.Copy(w, file)
	return true
}

// handleHealth reports whether an artifact is loaded.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	resp := HealthResponse{Status: "loading"}
	if snap := s.current(); snap != nil {
		resp = HealthResponse{
			Status:   "ok",
			Nodes:    len(snap.graph.Nodes),
			Links:    len(snap.graph.Links),
			LoadedAt: snap.loadedAt.UTC().Format(time.RFC3339),
		}
	}
	s.writeJSON(w, r, resp)
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed_to_encode_response", "trace_id", getTraceID(r.Context()), "error", err)
	}
}

// Middleware: Panic Recovery
func withRecovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				slog.Error("panic_recovered", "error", err, "path", r.URL.Path)
				http.Error(w, `{"error":"internal_server_error"}`, http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// Middleware: Request Logging
func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		traceID := r.Header.Get("X-Trace-ID")
		if traceID == "" {
			traceID = uuid.NewString()
		}

		ctx := context.WithValue(r.Context(), traceIDKey, traceID)
		r = r.WithContext(ctx)

		ww := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		w.Header().Set("X-Trace-ID", traceID)

		next.ServeHTTP(ww, r)

		duration := time.Since(start)
		HTTPRequestsTotal.WithLabelValues(r.Method, strconv.Itoa(ww.status)).Inc()
		slog.Info("http_request",
			"trace_id", traceID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.status,
			"duration_ms", duration.Milliseconds(),
		)
	})
}

func getTraceID(ctx context.Context) string {
	if v, ok := ctx.Value(traceIDKey).(string); ok {
		return v
	}
	return ""
}

// statusWriter captures HTTP status code
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// Middleware: Secure Headers
func withSecureHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Security-Policy", "default-src 'self'; script-src 'self' 'unsafe-inline'; style-src 'self' 'unsafe-inline'; img-src 'self' data:;")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "no-referrer")

		next.ServeHTTP(w, r)
	})
}
