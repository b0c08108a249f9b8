// Package api implements the redline REST API: narrative evaluation, hybrid
// scoring, arena runs and task artifacts.
package api

import (
	"compress/gzip"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/redline-eval/redline/internal/artifact"
	"github.com/redline-eval/redline/pkg/arena"
	"github.com/redline-eval/redline/pkg/judge"
	"github.com/redline-eval/redline/pkg/scoring"
)

// maxBodyBytes bounds request bodies after decompression.
const maxBodyBytes = 1 << 20

// Handler is the top-level API handler.
type Handler struct {
	engine    *scoring.Engine
	judge     *judge.Judge
	generator arena.Generator
	arenaOpts []arena.Option
	store     artifact.Store
	tasks     *TaskCache
	logger    *zap.Logger
}

// Options wires a Handler's collaborators. Engine and Judge are required;
// a nil Generator disables /v1/arena and a nil Store disables tasks.
type Options struct {
	Engine    *scoring.Engine
	Judge     *judge.Judge
	Generator arena.Generator
	ArenaOpts []arena.Option
	Store     artifact.Store
	Tasks     *TaskCache
	Logger    *zap.Logger
}

// NewHandler creates a new API handler.
func NewHandler(opts Options) *Handler {
	h := &Handler{
		engine:    opts.Engine,
		judge:     opts.Judge,
		generator: opts.Generator,
		arenaOpts: opts.ArenaOpts,
		store:     opts.Store,
		tasks:     opts.Tasks,
		logger:    opts.Logger,
	}
	if h.tasks == nil {
		h.tasks = NewTaskCache(0)
	}
	if h.logger == nil {
		h.logger = zap.NewNop()
	}
	return h
}

// RegisterRoutes registers all API routes on the given ServeMux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /v1/evaluate", h.handleEvaluate)
	mux.HandleFunc("POST /v1/hybrid", h.handleHybrid)
	mux.HandleFunc("POST /v1/arena", h.handleArena)

	mux.HandleFunc("POST /v1/tasks", h.handleCreateTask)
	mux.HandleFunc("GET /v1/tasks/{taskID}", h.handleGetTask)
	mux.HandleFunc("GET /v1/tasks/{taskID}/artifacts/{name}", h.handleGetArtifact)

	mux.HandleFunc("GET /healthz", h.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// decodeJSON reads a JSON body, accepting gzip-compressed requests.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	var body io.Reader = r.Body
	if r.Header.Get("Content-Encoding") == "gzip" {
		gz, err := gzip.NewReader(r.Body)
		if err != nil {
			return fmt.Errorf("invalid gzip body: %w", err)
		}
		defer gz.Close()
		body = gz
	}
	body = http.MaxBytesReader(w, io.NopCloser(body), maxBodyBytes)

	if err := json.NewDecoder(body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return fmt.Errorf("request body exceeds %d bytes", tooLarge.Limit)
		}
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
