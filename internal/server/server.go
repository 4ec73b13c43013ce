// Package server exposes the calculator over HTTP and WebSocket. The JSON
// API computes single expressions and serves the stored history; the
// WebSocket endpoint keeps a connection open for interactive clients.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/julienschmidt/httprouter"

	"github.com/codefionn/rechenwerk/internal/cache"
	"github.com/codefionn/rechenwerk/internal/engine"
	"github.com/codefionn/rechenwerk/internal/history"
	"github.com/codefionn/rechenwerk/internal/logger"
)

// Server provides the HTTP interface for the calculator
type Server struct {
	eng    *engine.Engine
	memo   *cache.Cache
	store  *history.Store
	port   int
	server *http.Server
	router *httprouter.Router
}

type computeRequest struct {
	Expression string `json:"expression"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// NewServer creates a new calculator server. store may be nil when history
// is disabled.
func NewServer(eng *engine.Engine, memo *cache.Cache, store *history.Store, port int) *Server {
	s := &Server{
		eng:   eng,
		memo:  memo,
		store: store,
		port:  port,

		router: httprouter.New(),
	}

	s.setupRoutes()
	return s
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", s.port),
		Handler: s.router,
	}

	logger.Info("Starting calculator server on port %d", s.port)
	return s.server.ListenAndServe()
}

// Stop stops the HTTP server
func (s *Server) Stop() error {
	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return s.server.Shutdown(ctx)
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)

	s.router.POST("/api/v1/compute", s.handleCompute)
	s.router.GET("/api/v1/history", s.handleHistory)
	s.router.DELETE("/api/v1/history", s.handleHistoryClear)

	s.router.GET("/ws", s.handleWebSocket)
}

// evaluate runs one expression through the cache and the engine. Successful
// results are cached and recorded in the history store.
func (s *Server) evaluate(expr string) (engine.Result, error) {
	expr = strings.TrimSpace(expr)

	if res, ok := s.memo.Get(expr); ok {
		return res, nil
	}

	res, err := s.eng.Evaluate(expr)
	if err != nil {
		return res, err
	}

	s.memo.Put(expr, res)

	if s.store != nil {
		if _, err := s.store.Add(res); err != nil {
			logger.Warn("Failed to record history entry: %v", err)
		}
	}

	return res, nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func (s *Server) handleCompute(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req computeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	res, err := s.evaluate(req.Expression)
	if err != nil {
		logger.Debug("Compute failed for %q: %v", req.Expression, err)
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if s.store == nil {
		writeJSON(w, http.StatusOK, []*history.Entry{})
		return
	}

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid limit"})
			return
		}
		limit = n
	}

	entries, err := s.store.Recent(limit)
	if err != nil {
		logger.Error("Failed to read history: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to read history"})
		return
	}
	if entries == nil {
		entries = []*history.Entry{}
	}

	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleHistoryClear(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if s.store != nil {
		if err := s.store.Clear(); err != nil {
			logger.Error("Failed to clear history: %v", err)
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to clear history"})
			return
		}
	}

	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Failed to encode response: %v", err)
	}
}
